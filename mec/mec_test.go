package mec

import (
	"testing"

	"github.com/rfielding/conslevel/consmdp"
)

func dist(t *testing.T, weights map[consmdp.StateID]float64) consmdp.Distribution {
	t.Helper()
	d, err := consmdp.NewDistribution(weights)
	if err != nil {
		t.Fatalf("NewDistribution: %v", err)
	}
	return d
}

func mustFreeze(t *testing.T, m *consmdp.ConsMDP) *consmdp.ConsMDP {
	t.Helper()
	if err := m.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return m
}

// A single cycle s0 <-> s1 should be one MEC containing both states.
func TestDecomposeSingleCycle(t *testing.T) {
	m := consmdp.New()
	s0 := m.NewState("s0", true)
	s1 := m.NewState("s1", false)
	m.AddAction(s0, dist(t, map[consmdp.StateID]float64{s1: 1}), "a", 1)
	m.AddAction(s1, dist(t, map[consmdp.StateID]float64{s0: 1}), "b", 1)
	mustFreeze(t, m)

	mecs := Decompose(m)
	if len(mecs) != 1 {
		t.Fatalf("expected 1 MEC, got %d", len(mecs))
	}
	if !mecs[0].HasState(s0) || !mecs[0].HasState(s1) {
		t.Fatalf("expected MEC to contain both states, got %v", mecs[0].SortedStates())
	}
}

// A line with no way back has no non-trivial MEC, but a self-loop state
// at the end is its own MEC.
func TestDecomposeLineWithSelfLoop(t *testing.T) {
	m := consmdp.New()
	s0 := m.NewState("s0", false)
	s1 := m.NewState("s1", false)
	m.AddAction(s0, dist(t, map[consmdp.StateID]float64{s1: 1}), "go", 1)
	m.AddAction(s1, dist(t, map[consmdp.StateID]float64{s1: 1}), "stay", 1)
	mustFreeze(t, m)

	mecs := Decompose(m)
	if len(mecs) != 1 {
		t.Fatalf("expected 1 MEC, got %d", len(mecs))
	}
	if mecs[0].HasState(s0) {
		t.Errorf("did not expect s0 (no self-loop, only forward edge) in any MEC")
	}
	if !mecs[0].HasState(s1) {
		t.Errorf("expected s1 (self-loop) to be a MEC")
	}
}

// Two disjoint cycles joined by a one-way bridge: each cycle is its own
// MEC, the bridge state belongs to neither.
func TestDecomposeTwoCyclesWithBridge(t *testing.T) {
	m := consmdp.New()
	a0 := m.NewState("a0", false)
	a1 := m.NewState("a1", false)
	bridge := m.NewState("bridge", false)
	b0 := m.NewState("b0", false)
	b1 := m.NewState("b1", false)

	m.AddAction(a0, dist(t, map[consmdp.StateID]float64{a1: 1}), "forth", 1)
	m.AddAction(a1, dist(t, map[consmdp.StateID]float64{a0: 1}), "back", 1)
	m.AddAction(a1, dist(t, map[consmdp.StateID]float64{bridge: 1}), "leave", 1)
	m.AddAction(bridge, dist(t, map[consmdp.StateID]float64{b0: 1}), "cross", 1)
	m.AddAction(b0, dist(t, map[consmdp.StateID]float64{b1: 1}), "b01", 1)
	m.AddAction(b1, dist(t, map[consmdp.StateID]float64{b0: 1}), "b10", 1)
	mustFreeze(t, m)

	mecs := Decompose(m)
	if len(mecs) != 2 {
		t.Fatalf("expected 2 MECs, got %d: %+v", len(mecs), mecs)
	}
	for _, mc := range mecs {
		if mc.HasState(bridge) {
			t.Errorf("bridge state must not belong to any MEC")
		}
	}
}

// An action whose support leaves the candidate SCC must be dropped. Here
// that leaves s1 with no action, so neither s0 nor s1 ends up in any MEC,
// while sink's self-loop forms its own MEC.
func TestDecomposeDropsEscapingActions(t *testing.T) {
	m := consmdp.New()
	s0 := m.NewState("s0", false)
	s1 := m.NewState("s1", false)
	sink := m.NewState("sink", false)

	m.AddAction(s0, dist(t, map[consmdp.StateID]float64{s1: 1}), "loop", 1)
	m.AddAction(s1, dist(t, map[consmdp.StateID]float64{s0: 0.5, sink: 0.5}), "mix", 1)
	m.AddAction(sink, dist(t, map[consmdp.StateID]float64{sink: 1}), "stay", 1)
	mustFreeze(t, m)

	mecs := Decompose(m)
	foundSinkMEC := false
	for _, mc := range mecs {
		if mc.HasState(s0) || mc.HasState(s1) {
			t.Errorf("s0/s1 cannot sustain play once the escaping action to sink is removed, got MEC %v", mc.SortedStates())
		}
		if mc.HasState(sink) {
			foundSinkMEC = true
		}
	}
	if !foundSinkMEC {
		t.Fatalf("expected sink self-loop to form its own MEC")
	}
}
