package fixedpoint

import (
	"context"

	"github.com/rfielding/conslevel/consmdp"
)

// Result bundles everything a caller needs to both report minimum
// initial levels and build a selector: the objective that was solved,
// the capacity it was solved against, the resulting per-state level
// vector, the plain safe-level vector (computed as a byproduct by every
// objective except Safety itself, where it IS the result), and the
// witnessing action per state.
type Result struct {
	Objective Objective
	Capacity  int
	MinLevel  Vector
	Safe      Vector
	Witness   Witness
}

// Solve dispatches on Objective.Kind and runs the corresponding
// fixed-point computation. It freezes mdp first if it has not already
// been frozen, so structural validation (Freeze's InvalidModel checks)
// always runs before any solver touches the graph.
func Solve(ctx context.Context, mdp *consmdp.ConsMDP, capacity int, objective Objective) (*Result, error) {
	if capacity < 0 {
		return nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "capacity must be non-negative"}
	}
	if !mdp.Frozen() {
		if err := mdp.Freeze(); err != nil {
			return nil, err
		}
	}
	if err := validateTargets(mdp, objective); err != nil {
		return nil, err
	}

	switch objective.Kind {
	case Safety:
		values, witness, err := Safe(ctx, mdp, capacity)
		if err != nil {
			return nil, err
		}
		return &Result{Objective: objective, Capacity: capacity, MinLevel: values, Safe: values, Witness: witness}, nil

	case PositiveReachability:
		values, safe, witness, err := PosReach(ctx, mdp, capacity, objective.Targets)
		if err != nil {
			return nil, err
		}
		return &Result{Objective: objective, Capacity: capacity, MinLevel: values, Safe: safe, Witness: witness}, nil

	case AlmostSureReachability:
		values, witness, err := AsReach(ctx, mdp, capacity, objective.Targets)
		if err != nil {
			return nil, err
		}
		safe, _, err := Safe(ctx, mdp, capacity)
		if err != nil {
			return nil, err
		}
		return &Result{Objective: objective, Capacity: capacity, MinLevel: values, Safe: safe, Witness: witness}, nil

	case AlmostSureBuchi:
		values, witness, err := Buchi(ctx, mdp, capacity, objective.Targets)
		if err != nil {
			return nil, err
		}
		safe, _, err := Safe(ctx, mdp, capacity)
		if err != nil {
			return nil, err
		}
		return &Result{Objective: objective, Capacity: capacity, MinLevel: values, Safe: safe, Witness: witness}, nil

	default:
		return nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "unknown objective kind"}
	}
}

// validateTargets rejects a reachability-family objective with an empty
// or out-of-range target set before any solver runs.
func validateTargets(mdp *consmdp.ConsMDP, objective Objective) error {
	if objective.Kind == Safety {
		return nil
	}
	if len(objective.Targets) == 0 {
		return &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "reachability objective requires at least one target state"}
	}
	n := mdp.NumStates()
	for t := range objective.Targets {
		if int(t) < 0 || int(t) >= n {
			return &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "target state id out of range"}
		}
	}
	return nil
}
