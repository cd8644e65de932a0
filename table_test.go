package post

import (
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestTableRank0(t *testing.T) {
	tb, err := NewTable("cd0", nil, nil, nil)
	if err != nil {
		t.Fatalf("NewTable rank-0: %v", err)
	}
	s := &State{}
	if got := tb.Lookup(s); got != 0 {
		t.Fatalf("rank-0 table lookup = %f, want 0", got)
	}
}

func TestTableRank1Interpolation(t *testing.T) {
	axes := []Axis{{Key: "mach_number", Breakpoints: []float64{0, 1, 2}}}
	data := []float64{0.2, 0.4, 0.1}
	tb, err := NewTable("cd", axes, data, []int{3})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	s := &State{MachNumber: 0.5}
	if got := tb.Lookup(s); !floats.EqualWithinAbs(got, 0.3, 1e-9) {
		t.Fatalf("Lookup(0.5) = %f, want 0.3", got)
	}
	// below range clamps to the first breakpoint
	s.MachNumber = -10
	if got := tb.Lookup(s); !floats.EqualWithinAbs(got, 0.2, 1e-9) {
		t.Fatalf("Lookup(-10) = %f, want clamp to 0.2", got)
	}
	// above range clamps to the last breakpoint
	s.MachNumber = 10
	if got := tb.Lookup(s); !floats.EqualWithinAbs(got, 0.1, 1e-9) {
		t.Fatalf("Lookup(10) = %f, want clamp to 0.1", got)
	}
}

func TestTableRank2Interpolation(t *testing.T) {
	axes := []Axis{
		{Key: "mach_number", Breakpoints: []float64{0, 1}},
		{Key: "alpha", Breakpoints: []float64{0, 1}},
	}
	// data[mach][alpha]
	data := []float64{0, 1, 2, 3}
	tb, err := NewTable("cl", axes, data, []int{2, 2})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	s := &State{MachNumber: 0.5, Alpha: 0.5}
	// bilinear midpoint of 0,1,2,3 is 1.5
	if got := tb.Lookup(s); !floats.EqualWithinAbs(got, 1.5, 1e-9) {
		t.Fatalf("Lookup(0.5,0.5) = %f, want 1.5", got)
	}
}

func TestNewTableRejectsNonMonotonicBreakpoints(t *testing.T) {
	axes := []Axis{{Key: "mach_number", Breakpoints: []float64{1, 0, 2}}}
	if _, err := NewTable("bad", axes, []float64{1, 2, 3}, []int{3}); err == nil {
		t.Fatal("expected ConfigError for non-monotonic breakpoints")
	}
}

func TestNewTableRejectsShapeMismatch(t *testing.T) {
	axes := []Axis{{Key: "mach_number", Breakpoints: []float64{0, 1, 2}}}
	if _, err := NewTable("bad", axes, []float64{1, 2}, []int{2}); err == nil {
		t.Fatal("expected ConfigError for shape/breakpoint mismatch")
	}
}

func TestAxisWithNoBreakpointsClearsTable(t *testing.T) {
	axes := []Axis{{Key: "mach_number", Breakpoints: nil}}
	tb, err := NewTable("cd", axes, nil, []int{0})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if len(tb.Axes) != 0 {
		t.Fatalf("expected cleared table, got %d axes", len(tb.Axes))
	}
}

func TestTableJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"name":"cd","x":["mach_number",[0,1,2]],"data":[0.1,0.2,0.3]}`)
	var tb Table
	if err := tb.UnmarshalJSON(raw); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if len(tb.Axes) != 1 || tb.Axes[0].Key != "mach_number" {
		t.Fatalf("unexpected axes: %+v", tb.Axes)
	}
	out, err := tb.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var tb2 Table
	if err := tb2.UnmarshalJSON(out); err != nil {
		t.Fatalf("round-trip UnmarshalJSON: %v", err)
	}
	if len(tb2.Data) != 3 || !floats.EqualWithinAbs(tb2.Data[1], 0.2, 1e-9) {
		t.Fatalf("round trip data mismatch: %v", tb2.Data)
	}
}

func TestFlattenNestedArrayRejectsRagged(t *testing.T) {
	_, _, err := flattenNestedArray([]byte(`[[1,2],[3]]`))
	if err == nil {
		t.Fatal("expected error for ragged nested array")
	}
}
