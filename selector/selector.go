// Package selector turns a fixed-point engine result into a compact,
// deterministic step function: for each state, a sorted list of
// (lower-bound level, action) pairs covering [minlvl(s), capacity].
package selector

import (
	"sort"

	"github.com/rfielding/conslevel/consmdp"
	"github.com/rfielding/conslevel/fixedpoint"
)

// step is one (lower-bound, action) breakpoint of a state's selector.
type step struct {
	lowerBound fixedpoint.Level
	action     consmdp.ActionID
}

// Selector is a sorted-list-of-breakpoints step function per state,
// looked up by binary search. It refers to actions by stable ConsMDP
// index and to nothing else, so it is trivially serialisable.
type Selector struct {
	capacity int
	minLevel fixedpoint.Vector
	steps    [][]step // steps[s] sorted ascending by lowerBound
}

// Build constructs a Selector from a solved Result. Every state whose
// min-level is infinite is a losing state and gets no entries. Because
// all four objectives here are monotone in resource level (an action
// valid at a state's minimum level remains valid at any higher level),
// the witness map yields exactly one breakpoint per winning state,
// whose lower bound is minlvl(s) itself.
func Build(mdp *consmdp.ConsMDP, result *fixedpoint.Result) (*Selector, error) {
	if result == nil {
		return nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "selector: nil result"}
	}
	n := mdp.NumStates()
	sel := &Selector{
		capacity: result.Capacity,
		minLevel: result.MinLevel.Clone(),
		steps:    make([][]step, n),
	}
	for s := 0; s < n; s++ {
		sid := consmdp.StateID(s)
		lvl := result.MinLevel[s]
		if lvl == fixedpoint.Inf {
			continue
		}
		action, ok := result.Witness[sid]
		if !ok {
			return nil, &consmdp.Error{Kind: consmdp.InvalidModel, Msg: "selector: no witness action for winning state"}
		}
		sel.steps[s] = []step{{lowerBound: lvl, action: action}}
	}
	return sel, nil
}

// MinLevel returns the minimum initial level for s under the solved
// objective, or fixedpoint.Inf if s is losing.
func (sel *Selector) MinLevel(s consmdp.StateID) fixedpoint.Level {
	return sel.minLevel[s]
}

// Capacity returns the capacity the selector was built against.
func (sel *Selector) Capacity() int {
	return sel.capacity
}

// Select returns the action to take from s at the given level, and
// whether one is defined. It returns ok=false if level is below the
// state's min-level (the caller should treat this as exhaustion) or if
// s is a losing state.
func (sel *Selector) Select(s consmdp.StateID, level fixedpoint.Level) (consmdp.ActionID, bool) {
	breakpoints := sel.steps[s]
	if len(breakpoints) == 0 {
		return 0, false
	}
	// Find the last breakpoint whose lower bound is <= level.
	i := sort.Search(len(breakpoints), func(i int) bool {
		return breakpoints[i].lowerBound > level
	})
	if i == 0 {
		return 0, false
	}
	return breakpoints[i-1].action, true
}
