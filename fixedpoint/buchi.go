package fixedpoint

import (
	"context"

	"github.com/rfielding/conslevel/consmdp"

	"github.com/rfielding/conslevel/mec"
)

// Buchi computes the minimum initial level from which a strategy exists
// to visit targets infinitely often with probability one.
//
// The computation is almost identical to AsReach: a Safe_M/PosReach_M
// pair is recomputed while shrinking away reload states that turn out
// unusable, until the reload set stabilises. The one real difference
// from almost-sure reachability is that a visited target does not reset
// to the plain safe-level requirement here — having reached T once, the
// player still has to reach it again, so buchi_safe (not the original
// safe vector) feeds the target initialisation on every round.
//
// Before running the fixpoint, targets that cannot even recur (no
// accepting Maximal End Component contains them) are identified via MEC
// decomposition so the Büchi-vs-reachability gap (a reach-once target
// with no way to loop back) is reported as Inf rather than silently
// reusing a reachability answer that does not actually sustain infinite
// visits.
func Buchi(ctx context.Context, mdp *consmdp.ConsMDP, capacity int, targets Targets) (Vector, Witness, error) {
	n := mdp.NumStates()
	recurrent := recurrentTargets(mdp, targets)

	removed := make(map[consmdp.StateID]bool)
	buchiSafe := NewVector(n, Inf)

	var buchiValues Vector
	var buchiSafeWitness Witness
	for {
		w, err := sufficientLevels(ctx, mdp, capacity, buchiSafe, removed, func(consmdp.StateID) Level { return Inf })
		if err != nil {
			return nil, nil, err
		}
		buchiSafeWitness = w

		buchiValues = NewVector(n, Inf)
		for t := range recurrent {
			buchiValues[t] = buchiSafe[t]
		}

		bs := buchiSafe
		survivalVal := func(s consmdp.StateID) Level { return bs[s] }
		actionVal := func(a consmdp.Action, v Vector) Level {
			return actionValueT(a, v, survivalVal)
		}
		skip := func(s consmdp.StateID) bool { return removed[s] || recurrent[s] }

		if err := largestFixpoint(ctx, mdp, buchiValues, actionVal, reloadCapper(mdp, capacity), skip); err != nil {
			return nil, nil, err
		}

		growing := false
		for s := 0; s < n; s++ {
			sid := consmdp.StateID(s)
			if mdp.IsReload(sid) && !removed[sid] && buchiValues[s] == Inf {
				removed[sid] = true
				growing = true
			}
		}
		if !growing {
			bs := buchiSafe
			survivalVal := func(s consmdp.StateID) Level { return bs[s] }
			actionVal := func(a consmdp.Action, v Vector) Level {
				return actionValueT(a, v, survivalVal)
			}
			witness := computeWitness(mdp, buchiValues, actionVal, func(s consmdp.StateID) bool { return !removed[s] && !recurrent[s] })
			witness.merge(buchiSafeWitness)
			return buchiValues, witness, nil
		}
	}
}

// recurrentTargets restricts targets to the subset that actually lies
// inside some Maximal End Component — a target reachable only once, with
// no cycle back through it, can never be visited infinitely often, so
// treating it as an ordinary Büchi target would wrongly reuse a
// reachability-style answer for it.
func recurrentTargets(mdp *consmdp.ConsMDP, targets Targets) Targets {
	out := make(Targets, len(targets))
	for _, m := range mec.Decompose(mdp) {
		for t := range targets {
			if m.HasState(t) {
				out[t] = true
			}
		}
	}
	return out
}
