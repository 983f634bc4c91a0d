package fixedpoint

import (
	"context"

	"github.com/rfielding/conslevel/consmdp"
)

// sufficientLevels computes the safe-level vector via the largest
// fixpoint of the minInitCons operator, with a subset of reloads
// (`removed`) treated as if they were ordinary (non-absorbing) states:
// their successor-contribution is no longer zeroed out, so a plan
// routing only through them no longer counts as "safe forever".
//
// `values` is reused and reset to `initVal(s)` at the start of every
// outer round (the caller may iterate this function while growing
// `removed`, as the almost-sure reachability and Büchi solvers do).
//
// This is the one genuinely iterative piece of the safety computation:
// after the inner largest-fixpoint round converges, any non-removed
// reload whose own value came out at Inf cannot sustain an infinite play
// by itself (it has no way back to a still-usable reload), so it is
// moved into `removed` and the whole computation restarts. Removed
// grows monotonically and is bounded by the number of reload states, so
// this outer loop terminates in at most |reload states| rounds.
func sufficientLevels(
	ctx context.Context,
	mdp *consmdp.ConsMDP,
	capacity int,
	values Vector,
	removed map[consmdp.StateID]bool,
	initVal func(consmdp.StateID) Level,
) (Witness, error) {
	n := len(values)
	cap1 := capOnly(capacity)

	var actionVal func(consmdp.Action, Vector) Level
	var skip func(consmdp.StateID) bool

	for {
		for s := 0; s < n; s++ {
			values[s] = initVal(consmdp.StateID(s))
		}

		zeroCond := func(s consmdp.StateID) bool {
			return mdp.IsReload(s) && !removed[s]
		}
		actionVal = func(a consmdp.Action, v Vector) Level {
			return actionValue(a, v, zeroCond)
		}
		skip = func(s consmdp.StateID) bool {
			return removed[s]
		}

		if err := largestFixpoint(ctx, mdp, values, actionVal, cap1, skip); err != nil {
			return nil, err
		}

		growing := false
		for s := 0; s < n; s++ {
			sid := consmdp.StateID(s)
			if mdp.IsReload(sid) && !removed[sid] && values[s] == Inf {
				removed[sid] = true
				growing = true
			}
		}
		if !growing {
			break
		}
	}

	// The witness must be read off the raw converged values, before the
	// reload states that survived are folded down to 0 below — that fold
	// is a reporting convention, not a change in which action realises
	// the value computed by actionVal.
	witness := computeWitness(mdp, values, actionVal, func(s consmdp.StateID) bool { return !skip(s) })

	// Reload states that survived with a raw value strictly below
	// capacity are reported as 0: once you are standing on a usable
	// reload, no further resource is required to keep playing forever. A
	// surviving reload whose raw value equals capacity keeps that value.
	for s := 0; s < n; s++ {
		sid := consmdp.StateID(s)
		if mdp.IsReload(sid) && !removed[sid] && values[s] < Level(capacity) {
			values[s] = 0
		}
	}
	return witness, nil
}

// Safe computes the minimum initial level from which a strategy exists
// that never runs out of resource while retaining the option to keep
// playing forever (the Safety objective).
func Safe(ctx context.Context, mdp *consmdp.ConsMDP, capacity int) (Vector, Witness, error) {
	values := NewVector(mdp.NumStates(), Inf)
	removed := make(map[consmdp.StateID]bool)
	witness, err := sufficientLevels(ctx, mdp, capacity, values, removed, func(consmdp.StateID) Level { return Inf })
	if err != nil {
		return nil, nil, err
	}
	return values, witness, nil
}
