// Package mec computes the Maximal End Component decomposition of a
// ConsMDP, ignoring consumption. It is used only by the almost-sure Büchi
// solver in package fixedpoint.
package mec

import (
	"sort"

	"github.com/rfielding/conslevel/consmdp"
)

// MEC is a maximal end component: a set of states inducing a strongly
// connected sub-graph together with the set of actions that stay entirely
// within those states. Every action of a state in States whose
// distribution stays within States is in Actions, and every action in
// Actions has all successors in States.
type MEC struct {
	States  map[consmdp.StateID]struct{}
	Actions map[consmdp.ActionID]struct{}
}

// HasState reports whether s belongs to the MEC.
func (c *MEC) HasState(s consmdp.StateID) bool {
	_, ok := c.States[s]
	return ok
}

// SortedStates returns the MEC's states sorted ascending, useful for
// deterministic iteration and tests.
func (c *MEC) SortedStates() []consmdp.StateID {
	out := make([]consmdp.StateID, 0, len(c.States))
	for s := range c.States {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Decompose returns the list of maximal end components of m, ignoring
// consumption. The algorithm follows the shrink-and-recurse scheme:
//  1. Start from the full state/action universe (every action whose
//     successors all lie in the current state set is "enabled").
//  2. Compute the strongly connected components of the graph induced by
//     enabled actions.
//  3. For each SCC: drop actions whose support escapes the SCC, then drop
//     states left with no enabled action; if anything was dropped, recurse
//     on the shrunken candidate, otherwise emit it as a MEC.
func Decompose(m *consmdp.ConsMDP) []*MEC {
	universe := make(map[consmdp.StateID]struct{}, m.NumStates())
	for s := 0; s < m.NumStates(); s++ {
		universe[consmdp.StateID(s)] = struct{}{}
	}

	var out []*MEC
	shrink(m, universe, &out)
	return out
}

// enabledActions returns, for every state in states, the actions whose
// entire support lies within states.
func enabledActions(m *consmdp.ConsMDP, states map[consmdp.StateID]struct{}) map[consmdp.StateID][]consmdp.ActionID {
	enabled := make(map[consmdp.StateID][]consmdp.ActionID)
	for s := range states {
		for _, a := range m.ActionsFor(s) {
			stays := true
			for _, t := range a.Dist.Support() {
				if _, ok := states[t]; !ok {
					stays = false
					break
				}
			}
			if stays {
				enabled[s] = append(enabled[s], a.ID)
			}
		}
	}
	return enabled
}

// shrink implements one level of the decomposition recursion over the
// candidate state set `states`.
func shrink(m *consmdp.ConsMDP, states map[consmdp.StateID]struct{}, out *[]*MEC) {
	if len(states) == 0 {
		return
	}
	enabled := enabledActions(m, states)

	for _, scc := range stronglyConnectedComponents(m, states, enabled) {
		if len(scc) < 2 {
			// A singleton SCC is only an end component if it has a
			// self-loop action; otherwise it cannot sustain play.
			s := scc[0]
			hasSelfLoop := false
			for _, aid := range enabled[s] {
				a := m.Action(aid)
				if a.Dist.Has(s) {
					hasSelfLoop = true
					break
				}
			}
			if !hasSelfLoop {
				continue
			}
		}

		sccSet := make(map[consmdp.StateID]struct{}, len(scc))
		for _, s := range scc {
			sccSet[s] = struct{}{}
		}

		// Drop actions whose support escapes the SCC.
		mecActions := make(map[consmdp.ActionID]struct{})
		changed := false
		for _, s := range scc {
			for _, aid := range enabled[s] {
				a := m.Action(aid)
				stays := true
				for _, t := range a.Dist.Support() {
					if _, ok := sccSet[t]; !ok {
						stays = false
						break
					}
				}
				if stays {
					mecActions[aid] = struct{}{}
				} else {
					changed = true
				}
			}
		}

		// Drop states left with no surviving action.
		liveStates := make(map[consmdp.StateID]struct{}, len(scc))
		for _, s := range scc {
			hasAction := false
			for _, aid := range enabled[s] {
				if _, ok := mecActions[aid]; ok {
					hasAction = true
					break
				}
			}
			if hasAction {
				liveStates[s] = struct{}{}
			} else {
				changed = true
			}
		}

		if changed {
			if len(liveStates) > 0 {
				shrink(m, liveStates, out)
			}
			continue
		}

		*out = append(*out, &MEC{States: sccSet, Actions: mecActions})
	}
}

// stronglyConnectedComponents computes Tarjan's SCCs of the directed graph
// s -> s' restricted to `states`, where an edge exists whenever some
// enabled action from s has s' in its support.
func stronglyConnectedComponents(m *consmdp.ConsMDP, states map[consmdp.StateID]struct{}, enabled map[consmdp.StateID][]consmdp.ActionID) [][]consmdp.StateID {
	succOf := func(s consmdp.StateID) []consmdp.StateID {
		seen := map[consmdp.StateID]bool{}
		var out []consmdp.StateID
		for _, aid := range enabled[s] {
			for _, t := range m.Action(aid).Dist.Support() {
				if !seen[t] {
					seen[t] = true
					out = append(out, t)
				}
			}
		}
		return out
	}

	ordered := make([]consmdp.StateID, 0, len(states))
	for s := range states {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	index := make(map[consmdp.StateID]int)
	lowlink := make(map[consmdp.StateID]int)
	onStack := make(map[consmdp.StateID]bool)
	var stack []consmdp.StateID
	counter := 0
	var sccs [][]consmdp.StateID

	type frame struct {
		s        consmdp.StateID
		succs    []consmdp.StateID
		i        int
	}

	for _, root := range ordered {
		if _, done := index[root]; done {
			continue
		}

		var callStack []*frame
		push := func(s consmdp.StateID) {
			index[s] = counter
			lowlink[s] = counter
			counter++
			stack = append(stack, s)
			onStack[s] = true
			callStack = append(callStack, &frame{s: s, succs: succOf(s)})
		}
		push(root)

		for len(callStack) > 0 {
			f := callStack[len(callStack)-1]
			if f.i < len(f.succs) {
				t := f.succs[f.i]
				f.i++
				if _, ok := index[t]; !ok {
					push(t)
					continue
				} else if onStack[t] {
					if lowlink[t] < lowlink[f.s] {
						lowlink[f.s] = lowlink[t]
					}
				}
				continue
			}

			// Done with f.s: pop it, propagate lowlink, emit SCC if root.
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := callStack[len(callStack)-1]
				if lowlink[f.s] < lowlink[parent.s] {
					lowlink[parent.s] = lowlink[f.s]
				}
			}
			if lowlink[f.s] == index[f.s] {
				var scc []consmdp.StateID
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[top] = false
					scc = append(scc, top)
					if top == f.s {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}

	return sccs
}
