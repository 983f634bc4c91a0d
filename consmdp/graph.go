// Package consmdp implements the graph data model for Consumption Markov
// Decision Processes: states, non-deterministic actions carrying integer
// resource consumption and a successor distribution, and a designated
// subset of reload states.
//
// A ConsMDP is built once via NewState/AddAction, then frozen. Freezing
// validates the structural invariants required by the fixed-point solvers
// (every state has an outgoing action, no zero-consumption cycle) and
// builds the reverse (incoming-action) index served by IncomingActions.
// Appending actions after Freeze succeeds but clears the frozen flag; the
// next successful Freeze bumps FreezeVersion.
package consmdp

// StateID is an opaque state identifier: an integer in [0, NumStates()).
type StateID int

// ActionID is an opaque, stable index into the ConsMDP's action list.
// Selectors refer to actions by this index.
type ActionID int

// State holds the data attached to a single state: an optional
// human-readable name, the reload flag, and its outgoing actions in
// insertion order.
type State struct {
	Name    string
	Reload  bool
	actions []ActionID
}

// Action is an immutable (source, consumption, label, successor
// distribution) tuple. Once appended to a ConsMDP an Action is never
// mutated.
type Action struct {
	ID          ActionID
	Src         StateID
	Consumption int
	Label       string
	Dist        Distribution
}

// ConsMDP is a mutable builder that aggregates states and actions plus the
// reload mask. It owns its states and actions; solvers hold a read-only
// borrowing reference.
type ConsMDP struct {
	Name string

	states  []State
	actions []Action

	frozen      bool
	incoming    [][]ActionID // built at Freeze; incoming[s] = actions with s in their support
	freezeGen   int
}

// New returns an empty ConsMDP builder.
func New() *ConsMDP {
	return &ConsMDP{}
}

// NewState appends a new state and returns its id. O(1).
func (m *ConsMDP) NewState(name string, reload bool) StateID {
	id := StateID(len(m.states))
	m.states = append(m.states, State{Name: name, Reload: reload})
	return id
}

// NumStates returns the number of states in the builder.
func (m *ConsMDP) NumStates() int {
	return len(m.states)
}

// NumActions returns the number of actions in the builder.
func (m *ConsMDP) NumActions() int {
	return len(m.actions)
}

// IsReload reports whether s is a reload state.
func (m *ConsMDP) IsReload(s StateID) bool {
	return m.states[s].Reload
}

// StateName returns the human-readable name of s, or "" if none was given.
func (m *ConsMDP) StateName(s StateID) string {
	return m.states[s].Name
}

// Frozen reports whether Freeze has succeeded on this builder since the
// last AddAction.
func (m *ConsMDP) Frozen() bool {
	return m.frozen
}

// FreezeVersion changes every time Freeze succeeds; callers can use it to
// detect that a ConsMDP has been appended-to and re-frozen since a cache
// was built.
func (m *ConsMDP) FreezeVersion() int {
	return m.freezeGen
}

// AddAction appends a non-deterministic action from src with the given
// successor distribution, display label and non-negative consumption.
// It fails immediately (an InvalidModel *Error) if the distribution is
// invalid, refers to a non-existent successor, or consumption is
// negative; these are programmer errors.
func (m *ConsMDP) AddAction(src StateID, dist Distribution, label string, consumption int) (ActionID, error) {
	if src < 0 || int(src) >= len(m.states) {
		return 0, newError(InvalidModel, "add_action: source state %d does not exist", src)
	}
	if consumption < 0 {
		return 0, newError(InvalidModel, "add_action: negative consumption %d on action from state %d", consumption, src)
	}
	if dist.Len() == 0 {
		return 0, newError(InvalidModel, "add_action: distribution has no successors")
	}
	for _, s := range dist.Support() {
		if s < 0 || int(s) >= len(m.states) {
			return 0, newError(InvalidModel, "add_action: successor state %d does not exist", s)
		}
	}

	id := ActionID(len(m.actions))
	m.actions = append(m.actions, Action{
		ID:          id,
		Src:         src,
		Consumption: consumption,
		Label:       label,
		Dist:        dist,
	})
	st := &m.states[src]
	st.actions = append(st.actions, id)

	m.frozen = false
	return id, nil
}

// ActionsFor returns the outgoing actions of s in stable insertion order.
// The order matters: reproducibility of ties in the fixed-point solvers
// and determinism of selector output both depend on it.
func (m *ConsMDP) ActionsFor(s StateID) []Action {
	ids := m.states[s].actions
	out := make([]Action, len(ids))
	for i, id := range ids {
		out[i] = m.actions[id]
	}
	return out
}

// ActionIDsFor returns the outgoing action ids of s in stable insertion
// order, without copying the Action payloads.
func (m *ConsMDP) ActionIDsFor(s StateID) []ActionID {
	return m.states[s].actions
}

// Action returns the action with the given id.
func (m *ConsMDP) Action(id ActionID) Action {
	return m.actions[id]
}

// IncomingActions returns the actions whose successor distribution
// contains s, built at Freeze time. Calling this before Freeze panics
// with a programmer-error message, since the reverse index does not
// exist yet.
func (m *ConsMDP) IncomingActions(s StateID) []Action {
	if !m.frozen {
		panic("consmdp: IncomingActions called before Freeze")
	}
	ids := m.incoming[s]
	out := make([]Action, len(ids))
	for i, id := range ids {
		out[i] = m.actions[id]
	}
	return out
}

// Freeze validates the structural invariants required at solve time and
// builds the reverse-action index:
//   - every state has at least one outgoing action;
//   - consumption is non-negative (already checked eagerly by AddAction);
//   - no zero-consumption cycle exists among the actions.
//
// Freeze may be called repeatedly (e.g. after appending more actions);
// each success bumps FreezeVersion.
func (m *ConsMDP) Freeze() error {
	for s := range m.states {
		if len(m.states[s].actions) == 0 {
			return newError(InvalidModel, "state %d has no outgoing action", s)
		}
	}

	if cyc, ok := findZeroConsumptionCycle(m); ok {
		return newError(InvalidModel, "zero-consumption cycle through state %d", cyc)
	}

	incoming := make([][]ActionID, len(m.states))
	for _, a := range m.actions {
		for _, s := range a.Dist.Support() {
			incoming[s] = append(incoming[s], a.ID)
		}
	}
	m.incoming = incoming
	m.frozen = true
	m.freezeGen++
	return nil
}

// findZeroConsumptionCycle reports whether the directed graph formed by
// consumption-zero actions (s -> s' whenever some zero-cost action from s
// has s' in its support) contains a cycle, via iterative three-colour DFS.
func findZeroConsumptionCycle(m *ConsMDP) (StateID, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]byte, len(m.states))

	type frame struct {
		s   StateID
		i   int // index into the zero-cost successor list already visited
		zs  []StateID
	}

	zeroSuccs := func(s StateID) []StateID {
		seen := map[StateID]bool{}
		var out []StateID
		for _, id := range m.states[s].actions {
			a := m.actions[id]
			if a.Consumption != 0 {
				continue
			}
			for _, t := range a.Dist.Support() {
				if !seen[t] {
					seen[t] = true
					out = append(out, t)
				}
			}
		}
		return out
	}

	for start := range m.states {
		if color[start] != white {
			continue
		}
		stack := []frame{{s: StateID(start), zs: zeroSuccs(StateID(start))}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.i >= len(top.zs) {
				color[top.s] = black
				stack = stack[:len(stack)-1]
				continue
			}
			next := top.zs[top.i]
			top.i++
			switch color[next] {
			case white:
				color[next] = gray
				stack = append(stack, frame{s: next, zs: zeroSuccs(next)})
			case gray:
				return next, true
			case black:
				// already fully explored, safe
			}
		}
	}
	return 0, false
}
