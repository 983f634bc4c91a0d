package consmdp

import (
	"fmt"
	"strings"
)

// DOT renders m as a Graphviz DOT digraph: reload states are drawn as
// double circles, actions as a synthetic point node whose incoming edge
// is labelled "label/consumption", fanning out to each successor with an
// edge labelled by its probability.
func (m *ConsMDP) DOT() string {
	var sb strings.Builder

	sb.WriteString("digraph ConsMDP {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle];\n\n")

	for s := 0; s < m.NumStates(); s++ {
		sid := StateID(s)
		shape := "circle"
		if m.IsReload(sid) {
			shape = "doublecircle"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\" [shape=%s];\n", m.StateName(sid), shape))
	}
	sb.WriteString("\n")

	for s := 0; s < m.NumStates(); s++ {
		sid := StateID(s)
		for _, a := range m.ActionsFor(sid) {
			actionNode := fmt.Sprintf("a%d", a.ID)
			sb.WriteString(fmt.Sprintf("  %s [shape=point,label=\"\"];\n", actionNode))
			sb.WriteString(fmt.Sprintf("  \"%s\" -> %s [label=\"%s/%d\",arrowhead=none];\n", m.StateName(sid), actionNode, a.Label, a.Consumption))
			a.Dist.ForEach(func(succ StateID, prob float64) {
				sb.WriteString(fmt.Sprintf("  %s -> \"%s\" [label=\"%.2f\"];\n", actionNode, m.StateName(succ), prob))
			})
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}
