package fixedpoint

import (
	"context"

	"github.com/rfielding/conslevel/consmdp"
)

// AsReach computes the minimum initial level from which a strategy
// exists that reaches targets almost surely (with probability one)
// while never exhausting.
//
// It repeatedly prunes reload states whose own "reach-safe" value comes
// out at Inf once a set of reloads is no longer trusted — a reload that
// cannot itself recover to a usable reload, or reach targets and remain
// safe afterwards, does not actually offer the almost-sure guarantee a
// plain positive-reachability plan might assume it does. The pruning set
// grows monotonically and is bounded by the number of reload states.
func AsReach(ctx context.Context, mdp *consmdp.ConsMDP, capacity int, targets Targets) (Vector, Witness, error) {
	safe, safeWitness, err := Safe(ctx, mdp, capacity)
	if err != nil {
		return nil, nil, err
	}

	n := mdp.NumStates()
	removed := make(map[consmdp.StateID]bool)
	reachSafe := NewVector(n, Inf)
	safeAfterT := func(s consmdp.StateID) Level {
		if targets[s] {
			return safe[s]
		}
		return Inf
	}

	var alsure Vector
	var reachSafeWitness Witness
	for {
		w, err := sufficientLevels(ctx, mdp, capacity, reachSafe, removed, safeAfterT)
		if err != nil {
			return nil, nil, err
		}
		reachSafeWitness = w

		alsure = NewVector(n, Inf)
		for t := range targets {
			alsure[t] = safe[t]
		}

		rs := reachSafe
		survivalVal := func(s consmdp.StateID) Level { return rs[s] }
		actionVal := func(a consmdp.Action, v Vector) Level {
			return actionValueT(a, v, survivalVal)
		}
		skip := func(s consmdp.StateID) bool { return removed[s] || targets[s] }

		if err := largestFixpoint(ctx, mdp, alsure, actionVal, reloadCapper(mdp, capacity), skip); err != nil {
			return nil, nil, err
		}

		growing := false
		for s := 0; s < n; s++ {
			sid := consmdp.StateID(s)
			if mdp.IsReload(sid) && !removed[sid] && alsure[s] == Inf {
				removed[sid] = true
				growing = true
			}
		}
		if !growing {
			rs := reachSafe
			survivalVal := func(s consmdp.StateID) Level { return rs[s] }
			actionVal := func(a consmdp.Action, v Vector) Level {
				return actionValueT(a, v, survivalVal)
			}
			witness := computeWitness(mdp, alsure, actionVal, func(s consmdp.StateID) bool { return !removed[s] && !targets[s] })
			witness.merge(reachSafeWitness)
			witness.merge(safeWitness)
			return alsure, witness, nil
		}
	}
}
