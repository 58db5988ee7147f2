package state

import "testing"

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s.Set("volume", 10)

	c := s.Clone()
	c.Set("volume", 20)

	if got := s.GetOr("volume", -1); got != 10 {
		t.Fatalf("original mutated via clone: got %v, want 10", got)
	}
	if got := c.GetOr("volume", -1); got != 20 {
		t.Fatalf("clone not updated: got %v, want 20", got)
	}
}

func TestParametersGetOr(t *testing.T) {
	p := NewParameters(map[string]float64{"max_opening": 1.0})
	if got := p.GetOr("max_opening", 0); got != 1.0 {
		t.Fatalf("GetOr(max_opening) = %v, want 1.0", got)
	}
	if got := p.GetOr("missing", 42); got != 42 {
		t.Fatalf("GetOr(missing) = %v, want 42", got)
	}
}

func TestActionMissingKeyReadsAsZero(t *testing.T) {
	a := Action{"inflow": 3.5}
	if got := a.Get("dt"); got != 0 {
		t.Fatalf("Action.Get(missing) = %v, want 0", got)
	}
	if a.Has("dt") {
		t.Fatalf("Action.Has(dt) = true, want false")
	}
	if !a.Has("inflow") {
		t.Fatalf("Action.Has(inflow) = false, want true")
	}
}
