package parser

import (
	"errors"
	"fmt"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
)

// Field describes one positional parameter of a card type.
type Field struct {
	Name     string
	Kind     domain.ParamKind
	Required bool
}

// CardSpec is the ordered field list of a card type.
type CardSpec []Field

// Required returns the number of required fields.
func (s CardSpec) Required() int {
	n := 0
	for _, f := range s {
		if f.Required {
			n++
		}
	}
	return n
}

// Validate checks that the spec only uses numeric kinds and that optional
// fields trail the required ones.
func (s CardSpec) Validate() error {
	if len(s) == 0 {
		return errors.New("card spec has no fields")
	}
	optional := false
	for i, f := range s {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if f.Kind != domain.ParamInt && f.Kind != domain.ParamFloat {
			return fmt.Errorf("field %s: kind must be int or float, got %s", f.Name, f.Kind)
		}
		if !f.Required {
			optional = true
		} else if optional {
			return fmt.Errorf("required field %s follows an optional field", f.Name)
		}
	}
	return nil
}

func required(kind domain.ParamKind, names ...string) CardSpec {
	spec := make(CardSpec, len(names))
	for i, n := range names {
		spec[i] = Field{Name: n, Kind: kind, Required: true}
	}
	return spec
}

func optional(kind domain.ParamKind, name string) Field {
	return Field{Name: name, Kind: kind}
}

func concat(parts ...CardSpec) CardSpec {
	var out CardSpec
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// DefaultSpecs returns the field specifications of the validated card types.
func DefaultSpecs() map[string]CardSpec {
	i, f := domain.ParamInt, domain.ParamFloat
	return map[string]CardSpec{
		"GW": concat(
			required(i, "tag", "segments"),
			required(f, "x1", "y1", "z1", "x2", "y2", "z2"),
			CardSpec{optional(f, "radius")},
		),
		"GC": concat(
			required(i, "i", "j", "k"),
			required(f, "rc", "zc"),
		),
		"FR": concat(
			required(i, "NFRF", "NFREQ", "I1", "I2"),
			required(f, "freq", "delf"),
		),
		"RP": concat(
			required(i, "j1", "j2", "M", "RHO", "PHI"),
			required(f, "DELTAPHI"),
			required(i, "NPHI"),
			CardSpec{optional(f, "L")},
		),
		"LD": concat(
			required(i, "i", "j"),
			required(f, "RHO", "PHI", "Z"),
		),
	}
}
