package fixedpoint

import "github.com/rfielding/conslevel/consmdp"

// Witness maps a state to the action id that realised its minimum in the
// final round of the fixed-point computation that produced it. Selector
// construction (package selector) turns this into the per-state step
// function.
type Witness map[consmdp.StateID]consmdp.ActionID

// computeWitness scans, for every eligible state with a finite value,
// the state's actions in their stable enumeration order and records the
// first one whose actionVal reproduces the state's recorded value. Using
// the first match (rather than, say, the lowest-consumption one) is what
// makes selector output deterministic under a fixed action-insertion
// order, per the spec's selector-determinism contract.
func computeWitness(mdp *consmdp.ConsMDP, values Vector, actionVal func(consmdp.Action, Vector) Level, eligible func(consmdp.StateID) bool) Witness {
	w := make(Witness)
	for s := 0; s < len(values); s++ {
		sid := consmdp.StateID(s)
		if eligible != nil && !eligible(sid) {
			continue
		}
		if values[s] == Inf {
			continue
		}
		for _, a := range mdp.ActionsFor(sid) {
			if actionVal(a, values) == values[s] {
				w[sid] = a.ID
				break
			}
		}
	}
	return w
}

// merge copies every entry of other into w, without overwriting entries
// w already has (first-writer-wins, matching the precedence targets and
// non-targets are finalised in by each solver).
func (w Witness) merge(other Witness) {
	for s, a := range other {
		if _, ok := w[s]; !ok {
			w[s] = a
		}
	}
}
