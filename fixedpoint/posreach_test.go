package fixedpoint

import (
	"testing"

	"github.com/rfielding/conslevel/consmdp"
)

// A hub with three outgoing actions: two lead to dead-end branches that
// can never reach the target (despite costing less), one leads straight
// to the target. PosReach must pick the cheapest action that actually
// gets somewhere useful rather than the cheapest action overall,
// regardless of how many irrelevant branches surround it.
func TestPosReachPicksCheapestUsefulBranch(t *testing.T) {
	m := consmdp.New()
	hub := m.NewState("hub", false)
	deadA := m.NewState("deadA", false)
	deadB := m.NewState("deadB", false)
	target := m.NewState("target", true)

	if _, err := m.AddAction(hub, det(t, deadA), "to-deadA", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(hub, det(t, target), "to-target", 3); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(hub, det(t, deadB), "to-deadB", 2); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(deadA, det(t, deadA), "stuck", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(deadB, det(t, deadB), "stuck", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(target, det(t, target), "stay", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	mustFreeze(t, m)

	values, safe, witness, err := PosReach(bg(), m, 6, NewTargets(target))
	if err != nil {
		t.Fatalf("PosReach: %v", err)
	}
	if values[hub] != 3 {
		t.Fatalf("PosReach(hub) = %v, want 3", values[hub])
	}
	if safe[target] != 0 {
		t.Fatalf("Safe(target) = %v, want 0", safe[target])
	}
	if witness[hub] != consmdp.ActionID(1) {
		t.Fatalf("witness(hub) = action %d, want the to-target action (id 1)", witness[hub])
	}
}

// A gamble that can fail into an unsafe dead end is never valid, even
// though it does reach the target with positive probability: positive
// reachability still requires every possible outcome to remain
// survivable.
func TestPosReachRejectsGambleIntoUnsafeBranch(t *testing.T) {
	m := consmdp.New()
	hub := m.NewState("hub", false)
	target := m.NewState("target", true)
	unsafe := m.NewState("unsafe", false)

	if _, err := m.AddAction(hub, dist(t, map[consmdp.StateID]float64{target: 0.5, unsafe: 0.5}), "gamble", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(target, det(t, target), "stay", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	if _, err := m.AddAction(unsafe, det(t, unsafe), "drain", 1); err != nil {
		t.Fatalf("AddAction: %v", err)
	}
	mustFreeze(t, m)

	values, _, _, err := PosReach(bg(), m, 5, NewTargets(target))
	if err != nil {
		t.Fatalf("PosReach: %v", err)
	}
	if values[hub] != Inf {
		t.Fatalf("PosReach(hub) = %v, want Inf (the only action risks an unsafe branch)", values[hub])
	}
}
