// Command gencalibration writes a normalised calibration table: every colour
// in lowercase #rrggbb, every category reference spelled out, and the blend
// formula made explicit. Start a recalibration from its output.
//
// Usage:
//
//	go run ./cmd/gencalibration -out calibration.yaml
//	go run ./cmd/gencalibration -in custom.yaml -formula linear
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/mixradar/internal/calibration"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("gencalibration", flag.ContinueOnError)
	in := fs.String("in", "", "calibration to normalise (default: embedded table)")
	out := fs.String("out", "", "output path (default: stdout)")
	formula := fs.String("formula", "", "override the blend formula (multiplicative or linear)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	table, err := calibration.Load(*in)
	if err != nil {
		return err
	}
	if *formula != "" {
		table.Blend.Formula = *formula
	}

	// Build validates the table, so only loadable calibrations are written.
	cal, err := table.Build()
	if err != nil {
		return err
	}
	data, err := calibration.FromPalettes(cal.Palettes, cal.Blender.Formula()).Marshal()
	if err != nil {
		return fmt.Errorf("encode calibration: %w", err)
	}

	if *out == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write calibration: %w", err)
	}
	log.Printf("wrote %s (%d intensity colours, %d categories, %s blend)",
		*out, cal.Palettes.Len(), len(cal.Palettes.Categories()), cal.Blender.Formula())
	return nil
}
