package condition

import (
	"encoding/json"
	"fmt"
)

// Operation combines child conditions of a group node.
type Operation string

const (
	OpAnd Operation = "and"
	OpOr  Operation = "or"
	OpNor Operation = "nor"
)

// CompareOp is the comparison of a terminal condition.
type CompareOp string

const (
	CmpEqual        CompareOp = "="
	CmpNotEqual     CompareOp = "!="
	CmpLessThan     CompareOp = "<"
	CmpLessOrEqual  CompareOp = "<="
	CmpGreaterThan  CompareOp = ">"
	CmpGreaterEqual CompareOp = ">="
	CmpContains     CompareOp = "contains"
	CmpIContains    CompareOp = "icontains"
)

// ActionVariable is the pseudo-variable bound by the caller at evaluation
// time instead of resolving to a stored attribute.
const ActionVariable = "action"

// Node is one node of a condition tree: either a Group combining children
// or a Terminal comparing an attribute path against a literal.
type Node interface {
	// String renders the node; groups are parenthesized.
	String() string

	isNode()
}

// Group is a non-terminal combinator over child conditions.
type Group struct {
	Operation Operation `json:"operation"`
	Negate    bool      `json:"negate,omitempty"`
	Children  []Node    `json:"children"`
}

// Terminal is a leaf comparison. Variable is either a dotted attribute path
// (e.g. "PaymentChannel.regular_payments") or the literal word "action".
type Terminal struct {
	Variable  string    `json:"variable"`
	Operation CompareOp `json:"operation"`
	Value     string    `json:"value"`
}

func (g *Group) isNode()    {}
func (t *Terminal) isNode() {}

// nodeEnvelope is the stored JSON shape. Kind disambiguates the union when
// trees are loaded back from the database.
type nodeEnvelope struct {
	Kind      string            `json:"kind"`
	Operation Operation         `json:"operation,omitempty"`
	Negate    bool              `json:"negate,omitempty"`
	Children  []json.RawMessage `json:"children,omitempty"`
	Variable  string            `json:"variable,omitempty"`
	Compare   CompareOp         `json:"compare,omitempty"`
	Value     string            `json:"value,omitempty"`
}

// MarshalNode serializes a tree in its normalized stored form.
func MarshalNode(n Node) ([]byte, error) {
	env, err := toEnvelope(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func toEnvelope(n Node) (*nodeEnvelope, error) {
	switch node := n.(type) {
	case *Terminal:
		return &nodeEnvelope{
			Kind:     "terminal",
			Variable: node.Variable,
			Compare:  node.Operation,
			Value:    node.Value,
		}, nil
	case *Group:
		env := &nodeEnvelope{
			Kind:      "group",
			Operation: node.Operation,
			Negate:    node.Negate,
		}
		for _, child := range node.Children {
			raw, err := MarshalNode(child)
			if err != nil {
				return nil, err
			}
			env.Children = append(env.Children, raw)
		}
		return env, nil
	default:
		return nil, fmt.Errorf("unknown condition node type %T", n)
	}
}

// UnmarshalNode rebuilds a tree from its stored form.
func UnmarshalNode(data []byte) (Node, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case "terminal":
		return &Terminal{Variable: env.Variable, Operation: env.Compare, Value: env.Value}, nil
	case "group":
		group := &Group{Operation: env.Operation, Negate: env.Negate}
		for _, raw := range env.Children {
			child, err := UnmarshalNode(raw)
			if err != nil {
				return nil, err
			}
			group.Children = append(group.Children, child)
		}
		return group, nil
	default:
		return nil, fmt.Errorf("unknown condition node kind %q", env.Kind)
	}
}

// Validate checks a tree before it is stored.
func Validate(n Node) error {
	switch node := n.(type) {
	case *Terminal:
		if node.Variable == "" {
			return fmt.Errorf("terminal condition is missing a variable")
		}
		switch node.Operation {
		case CmpEqual, CmpNotEqual, CmpLessThan, CmpLessOrEqual, CmpGreaterThan, CmpGreaterEqual, CmpContains, CmpIContains:
		default:
			return fmt.Errorf("unknown comparison operation %q", node.Operation)
		}
		if node.Variable != ActionVariable {
			if _, _, err := resolveAttribute(node.Variable); err != nil {
				return err
			}
		}
		return nil
	case *Group:
		switch node.Operation {
		case OpAnd, OpOr, OpNor:
		default:
			return fmt.Errorf("unknown group operation %q", node.Operation)
		}
		if len(node.Children) == 0 {
			return fmt.Errorf("group condition has no children")
		}
		for _, child := range node.Children {
			if err := Validate(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown condition node type %T", n)
	}
}
