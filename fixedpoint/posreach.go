package fixedpoint

import (
	"context"

	"github.com/rfielding/conslevel/consmdp"
)

// Targets is a set of target state ids.
type Targets map[consmdp.StateID]bool

// NewTargets builds a Targets set from a list of state ids.
func NewTargets(ids ...consmdp.StateID) Targets {
	t := make(Targets, len(ids))
	for _, id := range ids {
		t[id] = true
	}
	return t
}

// PosReach computes the minimum initial level from which some
// trajectory with non-zero probability reaches a target in targets
// while never exhausting. It requires the safe-level vector, since
// every successor not on the path towards the target must still remain
// survivable.
func PosReach(ctx context.Context, mdp *consmdp.ConsMDP, capacity int, targets Targets) (Vector, Vector, Witness, error) {
	safe, safeWitness, err := Safe(ctx, mdp, capacity)
	if err != nil {
		return nil, nil, nil, err
	}
	pr, witness, err := posReachWithSafe(ctx, mdp, capacity, targets, safe)
	if err != nil {
		return nil, nil, nil, err
	}
	witness.merge(safeWitness)
	return pr, safe, witness, nil
}

// posReachWithSafe computes positive reachability given a precomputed
// survivability vector (the plain safe-level vector, as passed by
// PosReach).
func posReachWithSafe(ctx context.Context, mdp *consmdp.ConsMDP, capacity int, targets Targets, survival Vector) (Vector, Witness, error) {
	n := mdp.NumStates()
	values := NewVector(n, Inf)
	for t := range targets {
		values[t] = survival[t]
	}

	survivalVal := func(s consmdp.StateID) Level { return survival[s] }
	actionVal := func(a consmdp.Action, v Vector) Level {
		return actionValueT(a, v, survivalVal)
	}
	skip := func(s consmdp.StateID) bool { return targets[s] }

	if err := largestFixpoint(ctx, mdp, values, actionVal, reloadCapper(mdp, capacity), skip); err != nil {
		return nil, nil, err
	}
	witness := computeWitness(mdp, values, actionVal, func(s consmdp.StateID) bool { return !targets[s] })
	return values, witness, nil
}
