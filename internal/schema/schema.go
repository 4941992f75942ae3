package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptySchema   = errors.New("schema has no parameters")
	ErrEmptyName     = errors.New("parameter name is empty")
	ErrNotUppercase  = errors.New("parameter name must be uppercase")
	ErrDuplicateName = errors.New("duplicate parameter name")
	ErrNonCanonical  = errors.New("parameter name is not in canonical form")
)

// Separator divides a parameter name from its value on a response line.
const Separator = ":"

// nameCutset holds the decoration trimmed from the edges of a reported name.
const nameCutset = " \t*_#`•-"

// CanonicalName reduces a reported name to the form schema names are stored
// in: edge decoration trimmed, inner whitespace collapsed, uppercased.
func CanonicalName(name string) string {
	name = strings.Trim(name, nameCutset)
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// Parameter is a canonical engineering attribute reported for every drawing.
// Unit is the expected unit of measure, empty when the value is free text.
// Hint replaces the generic "value" placeholder in the instruction text.
type Parameter struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
	Hint string `json:"hint,omitempty"`
}

// HasUnit reports whether the parameter declares a unit of measure.
func (p Parameter) HasUnit() bool {
	return p.Unit != ""
}

// Schema is an immutable, ordered list of parameters. Order is display order.
type Schema struct {
	params []Parameter
	index  map[string]int
}

// New validates params and returns a Schema. Names must be non-empty,
// uppercase, unique after trimming, and already canonical so a backend line
// naming the parameter verbatim always resolves to it.
func New(params ...Parameter) (Schema, error) {
	if len(params) == 0 {
		return Schema{}, ErrEmptySchema
	}
	s := Schema{
		params: make([]Parameter, 0, len(params)),
		index:  make(map[string]int, len(params)),
	}
	for _, p := range params {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return Schema{}, ErrEmptyName
		}
		if name != strings.ToUpper(name) {
			return Schema{}, fmt.Errorf("%w: %q", ErrNotUppercase, name)
		}
		if strings.Contains(name, Separator) || CanonicalName(name) != name {
			return Schema{}, fmt.Errorf("%w: %q", ErrNonCanonical, name)
		}
		if _, dup := s.index[name]; dup {
			return Schema{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		s.index[name] = len(s.params)
		s.params = append(s.params, Parameter{
			Name: name,
			Unit: strings.TrimSpace(p.Unit),
			Hint: strings.TrimSpace(p.Hint),
		})
	}
	return s, nil
}

// MustNew is like New but panics on an invalid parameter list.
func MustNew(params ...Parameter) Schema {
	s, err := New(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Parameters returns a copy of the parameters in schema order.
func (s Schema) Parameters() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Names returns the canonical names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the parameter with the given canonical name.
func (s Schema) Lookup(name string) (Parameter, bool) {
	i, ok := s.index[name]
	if !ok {
		return Parameter{}, false
	}
	return s.params[i], true
}

// Len returns the number of parameters.
func (s Schema) Len() int {
	return len(s.params)
}

var cylinder = MustNew(
	Parameter{Name: "CYLINDER ACTION", Hint: "SINGLE-ACTION or DOUBLE-ACTION"},
	Parameter{Name: "BORE DIAMETER", Unit: "MM"},
	Parameter{Name: "OUTSIDE DIAMETER", Unit: "MM"},
	Parameter{Name: "ROD DIAMETER", Unit: "MM"},
	Parameter{Name: "STROKE LENGTH", Unit: "MM"},
	Parameter{Name: "CLOSE LENGTH", Unit: "MM"},
	Parameter{Name: "OPEN LENGTH", Unit: "MM"},
	Parameter{Name: "OPERATING PRESSURE", Unit: "BAR"},
	Parameter{Name: "OPERATING TEMPERATURE", Unit: "DEG C"},
	Parameter{Name: "MOUNTING"},
	Parameter{Name: "ROD END"},
	Parameter{Name: "FLUID", Hint: "Determine and Extract"},
	Parameter{Name: "DRAWING NUMBER", Hint: "Extract from Image"},
)

// Cylinder returns the hydraulic cylinder datasheet schema.
func Cylinder() Schema {
	return cylinder
}

// registry of named schemas selectable from configuration.
var registry = map[string]Schema{
	"cylinder": cylinder,
}

// ByName returns a registered schema.
func ByName(name string) (Schema, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Schema{}, fmt.Errorf("unknown parameter schema: %s", name)
	}
	return s, nil
}
