package fixedpoint

import (
	"context"

	"github.com/rfielding/conslevel/consmdp"
)

// maxIterationFactor bounds the number of sweeps largestFixpoint will run
// before giving up with a NonTerminating error. Freeze already rejects
// zero-consumption cycles, so this is a defensive backstop against a
// caller solving against a ConsMDP that was mutated without being
// re-frozen; the true worst case is O(|S|*capacity) sweeps.
const maxIterationFactor = 8

// actionValue mirrors the energy-MDP "action value" computation: the
// action's consumption plus the worst (maximum) value among its
// successors, where any successor for which zeroCond holds is treated as
// contributing 0 (a reload wipes out whatever value its own vector entry
// holds — entering it tops you back up).
func actionValue(a consmdp.Action, v Vector, zeroCond func(consmdp.StateID) bool) Level {
	best := Level(0)
	any := false
	a.Dist.ForEach(func(s consmdp.StateID, _ float64) {
		if zeroCond != nil && zeroCond(s) {
			return
		}
		any = true
		if v[s] > best {
			best = v[s]
		}
	})
	if !any {
		best = 0
	}
	if best == Inf {
		return Inf
	}
	return best + Level(a.Consumption)
}

// actionValueT computes the directed ("targeted") action value used by
// the reachability family: among the action's successors, pick the one
// minimising the value that matters for it (its own current value),
// while every OTHER successor only needs to be survivable (its
// survivalVal, typically the safe-level vector). This lets the player
// aim for the best successor without having to make every successor
// equally good.
func actionValueT(a consmdp.Action, v Vector, survivalVal func(consmdp.StateID) Level) Level {
	candidate := Inf
	succs := a.Dist.Support()
	for _, t := range succs {
		worst := v[t]
		for _, other := range succs {
			if other == t {
				continue
			}
			if sv := survivalVal(other); sv > worst {
				worst = sv
			}
		}
		if worst < candidate {
			candidate = worst
		}
	}
	if candidate == Inf {
		return Inf
	}
	return candidate + Level(a.Consumption)
}

// largestFixpoint iterates a monotonically-decreasing update over values
// until no entry changes. valueAdj post-processes each state's candidate
// value (e.g. the reload capacity clipping); skip excludes a state from
// being recomputed this round entirely.
//
// It accepts a cancellation context, checked once per sweep, and bounds
// the number of sweeps defensively; exceeding the bound signals that the
// ConsMDP was not validated against zero-consumption cycles.
func largestFixpoint(
	ctx context.Context,
	mdp *consmdp.ConsMDP,
	values Vector,
	actionVal func(consmdp.Action, Vector) Level,
	valueAdj func(consmdp.StateID, Level) Level,
	skip func(consmdp.StateID) bool,
) error {
	n := len(values)
	maxSweeps := n*maxIterationFactor + 16
	for sweep := 0; ; sweep++ {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return &consmdp.Error{Kind: consmdp.Cancelled, Msg: "fixed-point computation cancelled"}
			default:
			}
		}
		if sweep > maxSweeps {
			return &consmdp.Error{Kind: consmdp.NonTerminating, Msg: "fixed point did not converge within the expected number of sweeps"}
		}

		changed := false
		for s := 0; s < n; s++ {
			sid := consmdp.StateID(s)
			if skip != nil && skip(sid) {
				continue
			}
			current := values[s]
			best := Inf
			for _, a := range mdp.ActionsFor(sid) {
				v := actionVal(a, values)
				if v < best {
					best = v
				}
			}
			if valueAdj != nil {
				best = valueAdj(sid, best)
			}
			if best < current {
				values[s] = best
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
}

// reloadCapper implements the "[v]^cap" clipping: values strictly above
// capacity collapse to Inf; a reload state with a finite, in-capacity
// value is reported as 0 (it is always "safely at some level" once you
// are standing on it — arriving there tops you up).
func reloadCapper(mdp *consmdp.ConsMDP, capacity int) func(consmdp.StateID, Level) Level {
	return func(s consmdp.StateID, v Level) Level {
		if v > Level(capacity) {
			return Inf
		}
		if mdp.IsReload(s) {
			return 0
		}
		return v
	}
}

// capOnly clips values strictly above capacity to Inf without the
// reload-to-zero folding (used while computing minInitCons / safe-level
// helper passes, where reload zeroing already happens via the zeroCond
// successor filter instead of the vector entry itself).
func capOnly(capacity int) func(consmdp.StateID, Level) Level {
	return func(_ consmdp.StateID, v Level) Level {
		if v > Level(capacity) {
			return Inf
		}
		return v
	}
}
