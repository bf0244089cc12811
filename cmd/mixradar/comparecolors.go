package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/mixradar/internal/domain"
	"golang.org/x/image/colornames"
)

// compareColors prints a named colour before and after blending it at the
// given severity index.
func compareColors(w io.Writer, blender domain.Blender, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	named, ok := colornames.Map[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown colour name %q", args[0])
	}
	index, err := strconv.Atoi(args[1])
	if err != nil || index < 0 {
		return fmt.Errorf("invalid severity index %q", args[1])
	}

	ref := domain.RGB(named.R, named.G, named.B)
	blended := blender.Blend(ref, index)

	fmt.Fprintf(w, "Unchanged\n R:%d G:%d B:%d\n", ref.R, ref.G, ref.B)
	fmt.Fprintf(w, "Changed\n R:%d G:%d B:%d\n", blended.R, blended.G, blended.B)
	return nil
}
