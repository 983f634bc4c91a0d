// Package strategy implements the counter strategy: a selector bundled
// with a resource counter that advances one action per step.
package strategy

import (
	"github.com/rfielding/conslevel/consmdp"
	"github.com/rfielding/conslevel/fixedpoint"
	"github.com/rfielding/conslevel/selector"
)

// Strategy is a pure function of (state, level): two plays from
// identical configurations agree, since it holds no state beyond the
// (state, level) pair it was last advanced to.
type Strategy struct {
	mdp      *consmdp.ConsMDP
	sel      *selector.Selector
	capacity int

	state consmdp.StateID
	level fixedpoint.Level
}

// New constructs a Strategy starting at (initialState, initialLevel).
// It fails with a NoStrategy error if the selector has no defined
// action at that configuration — most commonly because minlvl(initialState)
// is infinite, i.e. no winning strategy exists from there at all.
func New(mdp *consmdp.ConsMDP, sel *selector.Selector, initialState consmdp.StateID, initialLevel fixedpoint.Level) (*Strategy, error) {
	if _, ok := sel.Select(initialState, initialLevel); !ok {
		return nil, &consmdp.Error{
			Kind: consmdp.NoStrategy,
			Msg:  "no winning strategy from the given initial state and level",
		}
	}
	return &Strategy{
		mdp:      mdp,
		sel:      sel,
		capacity: sel.Capacity(),
		state:    initialState,
		level:    initialLevel,
	}, nil
}

// State returns the strategy's current state.
func (st *Strategy) State() consmdp.StateID {
	return st.state
}

// Level returns the strategy's current resource level.
func (st *Strategy) Level() fixedpoint.Level {
	return st.level
}

// NextAction queries the selector for the action to take from the
// current configuration without advancing the strategy. It returns an
// Exhaustion error if the current level is below the selector's
// minimum for the current state.
func (st *Strategy) NextAction() (consmdp.Action, error) {
	id, ok := st.sel.Select(st.state, st.level)
	if !ok {
		return consmdp.Action{}, &consmdp.Error{
			Kind: consmdp.Exhaustion,
			Msg:  "no action defined at the current (state, level)",
		}
	}
	return st.mdp.Action(id), nil
}

// Step picks an action via NextAction, deducts its consumption, and
// advances to sampledSuccessor — which the caller obtains by sampling
// the chosen action's distribution, or by driving the strategy through
// a fixed adversarial schedule for testing. It clips the level up to
// capacity if sampledSuccessor is a reload state.
//
// Step fails with InvalidModel if sampledSuccessor is not in the
// chosen action's support — a caller error, since the distribution the
// strategy committed to does not offer that outcome.
func (st *Strategy) Step(sampledSuccessor consmdp.StateID) (consmdp.Action, error) {
	action, err := st.NextAction()
	if err != nil {
		return consmdp.Action{}, err
	}
	if !action.Dist.Has(sampledSuccessor) {
		return consmdp.Action{}, &consmdp.Error{
			Kind: consmdp.InvalidModel,
			Msg:  "sampled successor is not in the chosen action's support",
		}
	}

	next := st.level - fixedpoint.Level(action.Consumption)
	if st.mdp.IsReload(sampledSuccessor) {
		next = fixedpoint.Level(st.capacity)
	}
	st.state = sampledSuccessor
	st.level = next
	return action, nil
}

