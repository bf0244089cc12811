// Package calibration loads the colour tables and blend formula that drive a
// merge. The tables are data rather than code so the chart legends can be
// recalibrated without a rebuild.
package calibration

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/couchcryptid/mixradar/internal/domain"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

const (
	referenceFirst = "first"
	referenceLast  = "last"
)

// Table is the YAML form of a calibration.
type Table struct {
	Sentinel   string         `yaml:"sentinel"`
	Intensity  IntensityTable `yaml:"intensity"`
	Categories []CategorySpec `yaml:"categories"`
	Blend      BlendSpec      `yaml:"blend"`
}

// IntensityTable lists the severity legend.
type IntensityTable struct {
	Order  string   `yaml:"order"`
	Colors []string `yaml:"colors"`
}

// CategorySpec lists one precipitation type's legend. Reference is "first",
// "last" or a hex colour.
type CategorySpec struct {
	Name      string   `yaml:"name"`
	Reference string   `yaml:"reference"`
	Colors    []string `yaml:"colors,flow"`
}

// BlendSpec selects the blend formula.
type BlendSpec struct {
	Formula string `yaml:"formula"`
}

// Calibration is a validated, ready-to-use table.
type Calibration struct {
	Palettes *domain.PaletteTable
	Blender  domain.Blender
}

// Parse decodes a YAML calibration. Unknown keys are rejected.
func Parse(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode calibration: %w", err)
	}
	return &t, nil
}

// Default returns the embedded calibration for the published charts.
func Default() *Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded calibration: %v", err))
	}
	return t
}

// Load reads the calibration at path, or the embedded default when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Marshal encodes the table as YAML.
func (t *Table) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build parses every colour and validates the palettes.
func (t *Table) Build() (*Calibration, error) {
	sentinel := domain.White
	if t.Sentinel != "" {
		c, err := ParseHex(t.Sentinel)
		if err != nil {
			return nil, fmt.Errorf("sentinel: %w", err)
		}
		sentinel = c
	}

	intensity, err := parsePalette(t.Intensity.Colors)
	if err != nil {
		return nil, fmt.Errorf("intensity: %w", err)
	}

	if len(t.Categories) == 0 {
		return nil, errors.New("no categories defined")
	}
	categories := make([]domain.CategoryPalette, 0, len(t.Categories))
	seen := make(map[string]bool, len(t.Categories))
	for _, spec := range t.Categories {
		name := strings.ToLower(strings.TrimSpace(spec.Name))
		if name == "" {
			return nil, errors.New("category without a name")
		}
		if seen[name] {
			return nil, fmt.Errorf("category %q defined twice", name)
		}
		seen[name] = true

		cat, err := spec.build(domain.Category(name))
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", name, err)
		}
		categories = append(categories, cat)
	}

	palettes, err := domain.NewPaletteTable(intensity, domain.SearchOrder(t.Intensity.Order), categories, sentinel)
	if err != nil {
		return nil, err
	}

	formula, err := domain.ParseFormula(t.Blend.Formula)
	if err != nil {
		return nil, err
	}
	blender, err := domain.NewBlender(formula, palettes.Len())
	if err != nil {
		return nil, err
	}

	return &Calibration{Palettes: palettes, Blender: blender}, nil
}

func (s CategorySpec) build(name domain.Category) (domain.CategoryPalette, error) {
	colors, err := parsePalette(s.Colors)
	if err != nil {
		return domain.CategoryPalette{}, err
	}
	if len(colors) == 0 {
		return domain.CategoryPalette{}, domain.ErrEmptyPalette
	}

	var ref color.NRGBA
	switch strings.ToLower(s.Reference) {
	case referenceLast, "":
		ref = colors[len(colors)-1]
	case referenceFirst:
		ref = colors[0]
	default:
		ref, err = ParseHex(s.Reference)
		if err != nil {
			return domain.CategoryPalette{}, fmt.Errorf("reference: %w", err)
		}
	}

	return domain.CategoryPalette{Category: name, Colors: colors, Reference: ref}, nil
}

// FromPalettes renders a validated palette table back into its YAML form with
// every reference spelled out as a hex colour.
func FromPalettes(p *domain.PaletteTable, formula domain.Formula) *Table {
	t := &Table{
		Sentinel: FormatHex(p.Sentinel()),
		Intensity: IntensityTable{
			Order:  string(domain.OrderNatural),
			Colors: formatPalette(p.Intensity()),
		},
		Blend: BlendSpec{Formula: string(formula)},
	}
	for _, cat := range p.Categories() {
		t.Categories = append(t.Categories, CategorySpec{
			Name:      string(cat.Category),
			Reference: FormatHex(cat.Reference),
			Colors:    formatPalette(cat.Colors),
		})
	}
	return t
}

// ParseHex parses #rrggbb or #rgb into an opaque colour.
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return domain.RGB(r, g, b), nil
}

// FormatHex renders c as #rrggbb, ignoring alpha.
func FormatHex(c color.NRGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func parsePalette(hexes []string) (domain.Palette, error) {
	p := make(domain.Palette, 0, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		p = append(p, c)
	}
	return p, nil
}

func formatPalette(p domain.Palette) []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = FormatHex(c)
	}
	return out
}
