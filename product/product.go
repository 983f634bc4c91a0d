// Package product builds the labelled-ConsMDP/deterministic-Büchi-automaton
// product described as an external-collaborator interface: the core
// fixed-point engine consumes the resulting plain ConsMDP and target set;
// automaton synthesis from a temporal-logic formula is someone else's job.
package product

import (
	"fmt"

	"github.com/rfielding/conslevel/consmdp"
	"github.com/rfielding/conslevel/fixedpoint"
)

// AtomicProp is an opaque atomic proposition name.
type AtomicProp string

// Labelling assigns a set of atomic propositions (as a lookup function)
// to a state.
type Labelling func(s consmdp.StateID) map[AtomicProp]bool

// Automaton is a deterministic Büchi automaton over AtomicProp. Delta
// must be total: it is queried for every successor label the product
// construction encounters, and returning ok=false aborts the build with
// an InvalidModel error, since a non-total transition function means
// the automaton does not actually accept the alphabet the labelling
// produces.
type Automaton struct {
	States    int
	Initial   int
	Accepting map[int]bool
	Delta     func(q int, label map[AtomicProp]bool) (next int, ok bool)
}

// Build constructs the full (state × automaton-state) product ConsMDP.
// Every action of the source is carried over with its original
// consumption and label; its successor distribution is re-routed
// through the automaton so that arriving at successor s' with the
// product in automaton state q transitions to automaton state
// Delta(q, labels(s')). The returned target set is every product state
// whose automaton component is accepting.
//
// The product preserves the source's no-zero-consumption-cycle
// invariant: every product edge carries the same consumption as the
// source edge it was derived from, so a zero-consumption cycle in the
// product projects to one in the source and vice versa.
func Build(mdp *consmdp.ConsMDP, labels Labelling, automaton Automaton) (*consmdp.ConsMDP, fixedpoint.Targets, error) {
	if automaton.States <= 0 {
		return nil, nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "product: automaton has no states"}
	}
	if automaton.Initial < 0 || automaton.Initial >= automaton.States {
		return nil, nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "product: automaton initial state out of range"}
	}

	n := mdp.NumStates()
	q := automaton.States
	out := consmdp.New()

	ids := make([]consmdp.StateID, n*q)
	for s := 0; s < n; s++ {
		for aq := 0; aq < q; aq++ {
			name := fmt.Sprintf("%s,%d", mdp.StateName(consmdp.StateID(s)), aq)
			ids[s*q+aq] = out.NewState(name, mdp.IsReload(consmdp.StateID(s)))
		}
	}

	targets := fixedpoint.NewTargets()
	for s := 0; s < n; s++ {
		for aq := 0; aq < q; aq++ {
			if automaton.Accepting[aq] {
				targets[ids[s*q+aq]] = true
			}
		}
	}

	for s := 0; s < n; s++ {
		sid := consmdp.StateID(s)
		for aq := 0; aq < q; aq++ {
			src := ids[s*q+aq]
			for _, a := range mdp.ActionsFor(sid) {
				weights := make(map[consmdp.StateID]float64)
				for _, succ := range a.Dist.Support() {
					next, ok := automaton.Delta(aq, labels(succ))
					if !ok {
						return nil, nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: fmt.Sprintf("product: automaton transition undefined for state %d, label of successor %d", aq, succ)}
					}
					pid := ids[int(succ)*q+next]
					weights[pid] += a.Dist.Prob(succ)
				}
				dist, err := consmdp.NewDistribution(weights)
				if err != nil {
					return nil, nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: err.Error()}
				}
				if _, err := out.AddAction(src, dist, a.Label, a.Consumption); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	if err := out.Freeze(); err != nil {
		return nil, nil, err
	}
	return out, targets, nil
}

// InitialState returns the product state corresponding to (s, automaton.Initial).
func InitialState(mdp *consmdp.ConsMDP, automaton Automaton, s consmdp.StateID) consmdp.StateID {
	return consmdp.StateID(int(s)*automaton.States + automaton.Initial)
}
