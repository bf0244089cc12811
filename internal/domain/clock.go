package domain

import "github.com/jonboulle/clockwork"

// clock stamps progress messages; tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for progress messages. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
