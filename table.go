package post

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Axis is one independent variable of a Table: the state-variable key used
// to look it up, and its sorted breakpoints.
type Axis struct {
	Key         string    `json:"key"`
	Breakpoints []float64 `json:"breakpoints"`
}

// UnmarshalJSON accepts the compact two-element array form used in phase
// documents: ["mach_number", [0, 1, 2]].
func (a *Axis) UnmarshalJSON(b []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &a.Key); err != nil {
		return fmt.Errorf("axis key: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &a.Breakpoints); err != nil {
		return fmt.Errorf("axis breakpoints: %w", err)
	}
	return nil
}

// MarshalJSON emits the compact two-element array form.
func (a Axis) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{a.Key, a.Breakpoints})
}

// Table is a piecewise-linear lookup of rank 0..3 keyed by state-variable
// axes (spec §4.B). Per §9's design notes, this single flat, value-typed
// representation replaces a recursive Table1D/Table2D/Table3D hierarchy: Go
// has no sum type to express that hierarchy without an interface (which
// would reintroduce the cloning/deserialization friction the notes call
// out), so rank is carried as data and dispatched on once, here, rather
// than through dynamic dispatch at every lookup.
type Table struct {
	Name      string    `json:"name,omitempty"`
	Axes      []Axis    `json:"axes,omitempty"`
	Data      []float64 `json:"-"` // flattened, row-major over Axes in order
}

type tableJSON struct {
	Name string          `json:"name,omitempty"`
	X    *Axis           `json:"x,omitempty"`
	Y    *Axis           `json:"y,omitempty"`
	Z    *Axis           `json:"z,omitempty"`
	Data json.RawMessage `json:"data"`
}

// UnmarshalJSON parses the phase-document table shape: up to three named
// axes (x, y, z) and a matching r-nested regular array of data.
func (t *Table) UnmarshalJSON(b []byte) error {
	var tj tableJSON
	if err := json.Unmarshal(b, &tj); err != nil {
		return err
	}
	var axes []Axis
	for _, a := range []*Axis{tj.X, tj.Y, tj.Z} {
		if a == nil {
			continue
		}
		if a.Key == "" {
			break
		}
		axes = append(axes, *a)
	}
	flat, shape, err := flattenNestedArray(tj.Data)
	if err != nil {
		return &ConfigError{Phase: -1, Field: "table", Msg: err.Error()}
	}
	built, err := NewTable(tj.Name, axes, flat, shape)
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

// NewTable validates and constructs a Table. shape is the extents implied
// by the nested data array as parsed (outermost axis first); it must match
// the breakpoint counts of axes, in order, or construction fails with a
// *ConfigError (spec §4.B).
func NewTable(name string, axes []Axis, data []float64, shape []int) (*Table, error) {
	rank := len(axes)
	if rank == 0 {
		if len(data) != 0 {
			return nil, &ConfigError{Phase: -1, Field: "table." + name, Msg: "rank-0 table must have empty data"}
		}
		return &Table{Name: name}, nil
	}
	if len(shape) != rank {
		return nil, &ConfigError{Phase: -1, Field: "table." + name, Msg: fmt.Sprintf("data is nested %d deep, axes imply rank %d", len(shape), rank)}
	}
	want := 1
	for i, ax := range axes {
		if len(ax.Breakpoints) == 0 {
			// An axis with no breakpoints clears the table (spec §4.J overlay rule).
			return &Table{Name: name}, nil
		}
		if !sort.Float64sAreSorted(ax.Breakpoints) {
			return nil, &ConfigError{Phase: -1, Field: "table." + name, Msg: fmt.Sprintf("axis %d (%s): non-monotonic breakpoints", i, ax.Key)}
		}
		if shape[i] != len(ax.Breakpoints) {
			return nil, &ConfigError{Phase: -1, Field: "table." + name, Msg: fmt.Sprintf("axis %d (%s): %d breakpoints but data has extent %d", i, ax.Key, len(ax.Breakpoints), shape[i])}
		}
		if err := ValidateStateKey(ax.Key); err != nil {
			return nil, &ConfigError{Phase: -1, Field: "table." + name, Msg: err.Error()}
		}
		want *= shape[i]
	}
	if want != len(data) {
		return nil, &ConfigError{Phase: -1, Field: "table." + name, Msg: fmt.Sprintf("data has %d entries, axes imply %d", len(data), want)}
	}
	return &Table{Name: name, Axes: axes, Data: data}, nil
}

// flattenNestedArray decodes an r-nested JSON array of numbers (r in 0..3)
// into a flat, row-major buffer plus its per-level extents.
func flattenNestedArray(raw json.RawMessage) ([]float64, []int, error) {
	if len(raw) == 0 {
		return nil, nil, nil
	}
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, nil, err
	}
	switch v := probe.(type) {
	case []interface{}:
		if len(v) == 0 {
			return nil, []int{0}, nil
		}
		if _, isNum := v[0].(float64); isNum {
			flat := make([]float64, len(v))
			for i, e := range v {
				n, ok := e.(float64)
				if !ok {
					return nil, nil, fmt.Errorf("data[%d] is not numeric", i)
				}
				flat[i] = n
			}
			return flat, []int{len(v)}, nil
		}
		// nested: recurse on each row and verify uniform shape.
		var flat []float64
		var innerShape []int
		for i, e := range v {
			b, err := json.Marshal(e)
			if err != nil {
				return nil, nil, err
			}
			f, s, err := flattenNestedArray(b)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i, err)
			}
			if innerShape == nil {
				innerShape = s
			} else if !equalInts(innerShape, s) {
				return nil, nil, fmt.Errorf("row %d: ragged data, expected shape %v got %v", i, innerShape, s)
			}
			flat = append(flat, f...)
		}
		return flat, append([]int{len(v)}, innerShape...), nil
	default:
		return nil, nil, fmt.Errorf("unsupported data shape")
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MarshalJSON re-emits the table in the phase-document shape.
func (t Table) MarshalJSON() ([]byte, error) {
	tj := tableJSON{Name: t.Name}
	shape := t.shape()
	switch len(t.Axes) {
	case 3:
		tj.Z = &t.Axes[2]
		fallthrough
	case 2:
		tj.Y = &t.Axes[1]
		fallthrough
	case 1:
		tj.X = &t.Axes[0]
	}
	nested := nestFlat(t.Data, shape)
	raw, err := json.Marshal(nested)
	if err != nil {
		return nil, err
	}
	tj.Data = raw
	return json.Marshal(tj)
}

func (t Table) shape() []int {
	shape := make([]int, len(t.Axes))
	for i, ax := range t.Axes {
		shape[i] = len(ax.Breakpoints)
	}
	return shape
}

func nestFlat(flat []float64, shape []int) interface{} {
	if len(shape) == 0 {
		return []float64{}
	}
	if len(shape) == 1 {
		out := make([]float64, len(flat))
		copy(out, flat)
		return out
	}
	stride := 1
	for _, s := range shape[1:] {
		stride *= s
	}
	out := make([]interface{}, shape[0])
	for i := 0; i < shape[0]; i++ {
		out[i] = nestFlat(flat[i*stride:(i+1)*stride], shape[1:])
	}
	return out
}

// Lookup extracts each axis key's value from s, clamps it to the axis's
// breakpoint range (no extrapolation, spec §4.B), and does piecewise-linear
// (multilinear for rank>1) interpolation. A well-formed empty table (no
// axes, no data) returns 0.
func (t *Table) Lookup(s *State) float64 {
	if len(t.Axes) == 0 {
		return 0
	}
	idxLo := make([]int, len(t.Axes))
	frac := make([]float64, len(t.Axes))
	for i, ax := range t.Axes {
		v := ReadStateKey(ax.Key, s)
		idxLo[i], frac[i] = locate(ax.Breakpoints, v)
	}
	return t.interpolate(idxLo, frac, 0, 0)
}

// locate clamps x to bp's range and returns the lower breakpoint index and
// the fractional distance to the next breakpoint.
func locate(bp []float64, x float64) (int, float64) {
	if len(bp) == 1 {
		return 0, 0
	}
	if x <= bp[0] {
		return 0, 0
	}
	if x >= bp[len(bp)-1] {
		return len(bp) - 2, 1
	}
	i := sort.SearchFloat64s(bp, x)
	if bp[i] == x {
		if i == len(bp)-1 {
			return i - 1, 1
		}
		return i, 0
	}
	lo := i - 1
	return lo, (x - bp[lo]) / (bp[lo+1] - bp[lo])
}

// interpolate walks the remaining axes recursively, blending the lower and
// upper corner along each axis in turn (multilinear interpolation).
func (t *Table) interpolate(idxLo []int, frac []float64, axis int, base int) float64 {
	stride := 1
	for _, ax := range t.Axes[axis+1:] {
		stride *= len(ax.Breakpoints)
	}
	loOffset := base + idxLo[axis]*stride
	var lo, hi float64
	if axis == len(t.Axes)-1 {
		lo = t.Data[loOffset]
		if frac[axis] > 0 {
			hi = t.Data[loOffset+stride]
		}
	} else {
		lo = t.interpolate(idxLo, frac, axis+1, loOffset)
		if frac[axis] > 0 {
			hi = t.interpolate(idxLo, frac, axis+1, loOffset+stride)
		}
	}
	if frac[axis] == 0 {
		return lo
	}
	return lo + frac[axis]*(hi-lo)
}
