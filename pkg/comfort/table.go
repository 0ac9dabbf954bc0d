package comfort

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed zones.yaml
var defaultZonesYAML []byte

type bandKey struct {
	style RidingStyle
	angle AngleType
}

// Table is a fully resolved, validated set of bands for every angle type and
// riding style. It is immutable after loading and safe for concurrent use.
type Table struct {
	bands map[bandKey]Band
}

type fileBand struct {
	Comfort *Range `yaml:"comfort"`
	Warning *Range `yaml:"warning"`
}

type tableFile struct {
	Defaults map[string]fileBand            `yaml:"defaults"`
	Styles   map[string]map[string]fileBand `yaml:"styles"`
}

// Load parses and validates a YAML zone table.
func Load(r io.Reader) (*Table, error) {
	var f tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return build(f)
}

// LoadFile loads a YAML zone table from disk.
func LoadFile(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zone table: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

var defaultTable = mustLoadDefault()

func mustLoadDefault() *Table {
	t, err := Load(bytes.NewReader(defaultZonesYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded zones.yaml: %v", err))
	}
	return t
}

// Default returns the built-in table.
func Default() *Table {
	return defaultTable
}

func build(f tableFile) (*Table, error) {
	defaults := make(map[AngleType]Band, len(AngleTypes))
	for name := range f.Defaults {
		if !validAngleType(name) {
			return nil, fmt.Errorf("%w: unknown angle type %q", ErrInvalidTable, name)
		}
	}
	for _, a := range AngleTypes {
		fb, ok := f.Defaults[string(a)]
		if !ok || fb.Comfort == nil || fb.Warning == nil {
			return nil, fmt.Errorf("%w: defaults for %s need comfort and warning ranges", ErrInvalidTable, a)
		}
		defaults[a] = Band{Comfort: *fb.Comfort, Warning: *fb.Warning}
	}

	for name := range f.Styles {
		if _, ok := ParseRidingStyle(name); !ok {
			return nil, fmt.Errorf("%w: unknown riding style %q", ErrInvalidTable, name)
		}
	}

	t := &Table{bands: make(map[bandKey]Band, len(RidingStyles)*len(AngleTypes))}
	for _, style := range RidingStyles {
		overrides := f.Styles[string(style)]
		for name := range overrides {
			if !validAngleType(name) {
				return nil, fmt.Errorf("%w: %s: unknown angle type %q", ErrInvalidTable, style, name)
			}
		}
		for _, a := range AngleTypes {
			b := defaults[a]
			if o, ok := overrides[string(a)]; ok {
				if o.Comfort != nil {
					b.Comfort = *o.Comfort
				}
				if o.Warning != nil {
					b.Warning = *o.Warning
				}
			}
			if err := validateBand(b); err != nil {
				return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidTable, style, a, err)
			}
			t.bands[bandKey{style, a}] = b
		}
	}
	return t, nil
}

func validateBand(b Band) error {
	for _, r := range []Range{b.Comfort, b.Warning} {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min < 0 || r.Max > 180 || r.Min > r.Max {
			return fmt.Errorf("range %v-%v must satisfy 0 <= min <= max <= 180", r.Min, r.Max)
		}
	}
	if b.Comfort.Min < b.Warning.Min || b.Comfort.Max > b.Warning.Max {
		return fmt.Errorf("comfort %v-%v must lie inside warning %v-%v",
			b.Comfort.Min, b.Comfort.Max, b.Warning.Min, b.Warning.Max)
	}
	return nil
}

// Band returns the band for an angle type under a riding style. Unknown or
// empty styles fall back to the default style.
func (t *Table) Band(angle AngleType, style RidingStyle) (Band, bool) {
	if _, ok := ParseRidingStyle(string(style)); !ok {
		style = DefaultStyle
	}
	b, ok := t.bands[bandKey{style, angle}]
	return b, ok
}

// Bands returns every band grouped by style, for display.
func (t *Table) Bands() map[RidingStyle]map[AngleType]Band {
	out := make(map[RidingStyle]map[AngleType]Band, len(RidingStyles))
	for k, b := range t.bands {
		if out[k.style] == nil {
			out[k.style] = make(map[AngleType]Band, len(AngleTypes))
		}
		out[k.style][k.angle] = b
	}
	return out
}
