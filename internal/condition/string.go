package condition

import "strings"

// String renders a terminal as "variable op value".
func (t *Terminal) String() string {
	return t.Variable + " " + string(t.Operation) + " " + t.Value
}

// String renders a group with parentheses, mirroring the tree. The
// rendering is stable: rebuilding the tree from its stored form yields the
// same string.
func (g *Group) String() string {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		parts = append(parts, child.String())
	}
	rendered := "(" + strings.Join(parts, " "+string(g.Operation)+" ") + ")"
	if g.Negate {
		rendered = "not " + rendered
	}
	return rendered
}
