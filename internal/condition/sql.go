package condition

import (
	"fmt"
	"strings"
	"time"
)

// Attribute paths resolve against the channel/profile join the evaluator
// queries: payment_channels aliased ch, profiles aliased p. Only listed
// columns are reachable from stored conditions.
var channelColumns = map[string]bool{
	"regular_payments":              true,
	"regular_frequency":             true,
	"regular_amount":                true,
	"number_of_payments":            true,
	"payment_total":                 true,
	"last_payment_date":             true,
	"last_payment_amount":           true,
	"expected_regular_payment_date": true,
	"no_upgrade":                    true,
	"registered_support":            true,
	"variable_symbol":               true,
	"specific_symbol":               true,
	"event_id":                      true,
	"money_account_id":              true,
	"end_of_regular_payments":       true,
}

var profileColumns = map[string]bool{
	"kind":       true,
	"username":   true,
	"email":      true,
	"first_name": true,
	"last_name":  true,
	"sex":        true,
	"language":   true,
	"is_active":  true,
	"age_group":  true,
	"city":       true,
	"zip_code":   true,
	"created_at": true,
	"updated_at": true,

	// free-form per-supporter condition fields set by operators
	"time_condition": true,
	"int_condition":  true,
}

// resolveAttribute maps a dotted variable path to a qualified SQL column.
func resolveAttribute(variable string) (alias, column string, err error) {
	prefix, column, found := strings.Cut(variable, ".")
	if !found {
		return "", "", fmt.Errorf("condition variable %q is not a dotted attribute path", variable)
	}
	switch prefix {
	case "UserInCampaign", "PaymentChannel":
		if !channelColumns[column] {
			return "", "", fmt.Errorf("unknown payment channel attribute %q", column)
		}
		return "ch", column, nil
	case "User", "UserProfile", "Profile", "CompanyProfile":
		if !profileColumns[column] {
			return "", "", fmt.Errorf("unknown profile attribute %q", column)
		}
		return "p", column, nil
	default:
		return "", "", fmt.Errorf("unknown condition variable prefix %q", prefix)
	}
}

// CompileResult is a WHERE fragment with positional args, ready to be
// appended to the channel/profile join query.
type CompileResult struct {
	Condition  string
	Args       []interface{}
	NextArgPos int
}

// Compile turns a condition tree into a SQL predicate. The action label the
// caller is firing with decides "action" terminals: a matching label
// contributes TRUE, anything else FALSE.
func Compile(n Node, action string, now time.Time, startArgPos int) (*CompileResult, error) {
	c := &compiler{action: action, now: now, argPos: startArgPos}
	cond, err := c.visit(n)
	if err != nil {
		return nil, err
	}
	return &CompileResult{Condition: cond, Args: c.args, NextArgPos: c.argPos}, nil
}

type compiler struct {
	action string
	now    time.Time
	args   []interface{}
	argPos int
}

func (c *compiler) visit(n Node) (string, error) {
	switch node := n.(type) {
	case *Terminal:
		return c.visitTerminal(node)
	case *Group:
		return c.visitGroup(node)
	default:
		return "", fmt.Errorf("unknown condition node type %T", n)
	}
}

func (c *compiler) visitGroup(g *Group) (string, error) {
	if len(g.Children) == 0 {
		return "", fmt.Errorf("group condition has no children")
	}
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		part, err := c.visit(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}

	var combined string
	switch g.Operation {
	case OpAnd:
		combined = "(" + strings.Join(parts, " AND ") + ")"
	case OpOr:
		combined = "(" + strings.Join(parts, " OR ") + ")"
	case OpNor:
		combined = "NOT (" + strings.Join(parts, " OR ") + ")"
	default:
		return "", fmt.Errorf("unknown group operation %q", g.Operation)
	}
	if g.Negate {
		combined = "NOT " + combined
	}
	return combined, nil
}

func (c *compiler) visitTerminal(t *Terminal) (string, error) {
	if t.Variable == ActionVariable {
		// Bound at evaluation time, not against stored data.
		if t.Value == c.action {
			return "TRUE", nil
		}
		return "FALSE", nil
	}

	alias, column, err := resolveAttribute(t.Variable)
	if err != nil {
		return "", err
	}
	field := alias + "." + column

	switch t.Operation {
	case CmpContains:
		c.args = append(c.args, "%"+t.Value+"%")
		cond := fmt.Sprintf("%s LIKE $%d", field, c.argPos)
		c.argPos++
		return cond, nil
	case CmpIContains:
		c.args = append(c.args, "%"+t.Value+"%")
		cond := fmt.Sprintf("%s ILIKE $%d", field, c.argPos)
		c.argPos++
		return cond, nil
	}

	var sqlOp string
	switch t.Operation {
	case CmpEqual:
		sqlOp = "="
	case CmpNotEqual:
		sqlOp = "!="
	case CmpLessThan:
		sqlOp = "<"
	case CmpLessOrEqual:
		sqlOp = "<="
	case CmpGreaterThan:
		sqlOp = ">"
	case CmpGreaterEqual:
		sqlOp = ">="
	default:
		return "", fmt.Errorf("unknown comparison operation %q", t.Operation)
	}

	c.args = append(c.args, ParseValue(t.Value, c.now))
	cond := fmt.Sprintf("%s %s $%d", field, sqlOp, c.argPos)
	c.argPos++
	return cond, nil
}
