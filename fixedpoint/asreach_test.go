package fixedpoint

import (
	"testing"

	"github.com/rfielding/conslevel/consmdp"
)

// hub's only action gambles between the target and a dead end that is
// itself perfectly safe (it can sustain forever via its own reload) but
// can never reach the target. Positive reachability accepts this — some
// runs do reach the target — but almost-sure reachability must not,
// since a constant 0.5 chance per attempt of landing in a branch that
// forecloses the target forever means the overall probability of ever
// reaching it is strictly less than one.
func TestAlmostSureReachabilityRejectsPermanentDeadEnd(t *testing.T) {
	m := consmdp.New()
	hub := m.NewState("hub", false)
	target := m.NewState("target", true)
	deadend := m.NewState("deadend", true)

	if _, err := m.AddAction(hub, dist(t, map[consmdp.StateID]float64{target: 0.5, deadend: 0.5}), "gamble", 2); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(target, det(t, target), "stay", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(deadend, det(t, deadend), "stay", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	mustFreeze(t, m)

	pr, _, _, err := PosReach(bg(), m, 3, NewTargets(target))
	if err != nil {
		t.Fatalf("PosReach: %v", err)
	}
	if pr[hub] != 2 {
		t.Fatalf("PosReach(hub) = %v, want 2", pr[hub])
	}

	as, _, err := AsReach(bg(), m, 3, NewTargets(target))
	if err != nil {
		t.Fatalf("AsReach: %v", err)
	}
	if as[hub] != Inf {
		t.Fatalf("AsReach(hub) = %v, want Inf (the gamble can land permanently in deadend)", as[hub])
	}
}

// A deterministic path to the target, with a reload along the way,
// should yield a finite, deterministic answer.
func TestAlmostSureReachabilityDeterministicPath(t *testing.T) {
	m := consmdp.New()
	s0 := m.NewState("s0", false)
	r := m.NewState("r", true)
	target := m.NewState("target", true)

	if _, err := m.AddAction(s0, det(t, r), "to-r", 2); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(r, det(t, target), "to-target", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(target, det(t, target), "stay", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	mustFreeze(t, m)

	values, witness, err := AsReach(bg(), m, 4, NewTargets(target))
	if err != nil {
		t.Fatalf("AsReach: %v", err)
	}
	if values[s0] == Inf {
		t.Fatalf("AsReach(s0) = Inf, want finite")
	}
	if _, ok := witness[s0]; !ok {
		t.Fatalf("expected a witness action for s0")
	}
}

func TestAsReachRejectsEmptyTargetSet(t *testing.T) {
	m := consmdp.New()
	s0 := m.NewState("s0", true)
	if _, err := m.AddAction(s0, det(t, s0), "stay", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	mustFreeze(t, m)

	if _, err := Solve(bg(), m, 2, AlmostSureReachabilityObjective(NewTargets())); err == nil {
		t.Fatalf("expected an error for an empty target set")
	} else if e, ok := err.(*consmdp.Error); !ok || e.Kind != consmdp.InvalidModel {
		t.Fatalf("expected an InvalidModel error, got %v", err)
	}
}
