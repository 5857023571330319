package condition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2016, 3, 15, 10, 30, 0, 0, time.UTC)

func TestCompileActionTerminal(t *testing.T) {
	node := &Terminal{Variable: ActionVariable, Operation: CmpEqual, Value: "new-payment"}

	result, err := Compile(node, "new-payment", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", result.Condition)
	assert.Empty(t, result.Args)
	assert.Equal(t, 1, result.NextArgPos)

	result, err = Compile(node, "new-user", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", result.Condition)
}

func TestCompileAttributeResolution(t *testing.T) {
	cases := []struct {
		variable string
		expected string
	}{
		{"PaymentChannel.regular_payments", "ch.regular_payments = $1"},
		{"UserInCampaign.variable_symbol", "ch.variable_symbol = $1"},
		{"User.email", "p.email = $1"},
		{"UserProfile.sex", "p.sex = $1"},
		{"Profile.language", "p.language = $1"},
		{"CompanyProfile.city", "p.city = $1"},
		{"User.time_condition", "p.time_condition = $1"},
		{"User.int_condition", "p.int_condition = $1"},
	}
	for _, tc := range cases {
		node := &Terminal{Variable: tc.variable, Operation: CmpEqual, Value: "x"}
		result, err := Compile(node, "", testNow, 1)
		require.NoError(t, err, tc.variable)
		assert.Equal(t, tc.expected, result.Condition)
	}
}

func TestCompileUnknownAttribute(t *testing.T) {
	node := &Terminal{Variable: "PaymentChannel.shoe_size", Operation: CmpEqual, Value: "42"}
	_, err := Compile(node, "", testNow, 1)
	assert.ErrorContains(t, err, "unknown payment channel attribute")

	node = &Terminal{Variable: "Invoice.total", Operation: CmpEqual, Value: "1"}
	_, err = Compile(node, "", testNow, 1)
	assert.ErrorContains(t, err, "unknown condition variable prefix")
}

func TestCompileGroupOperations(t *testing.T) {
	left := &Terminal{Variable: "PaymentChannel.regular_payments", Operation: CmpEqual, Value: "regular"}
	right := &Terminal{Variable: "User.is_active", Operation: CmpEqual, Value: "true"}

	and := &Group{Operation: OpAnd, Children: []Node{left, right}}
	result, err := Compile(and, "", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "(ch.regular_payments = $1 AND p.is_active = $2)", result.Condition)
	assert.Equal(t, []interface{}{"regular", true}, result.Args)
	assert.Equal(t, 3, result.NextArgPos)

	or := &Group{Operation: OpOr, Children: []Node{left, right}}
	result, err = Compile(or, "", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "(ch.regular_payments = $1 OR p.is_active = $2)", result.Condition)

	nor := &Group{Operation: OpNor, Children: []Node{left, right}}
	result, err = Compile(nor, "", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "NOT (ch.regular_payments = $1 OR p.is_active = $2)", result.Condition)

	negated := &Group{Operation: OpAnd, Negate: true, Children: []Node{left}}
	result, err = Compile(negated, "", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "NOT (ch.regular_payments = $1)", result.Condition)
}

func TestCompileStartArgPos(t *testing.T) {
	node := &Group{Operation: OpAnd, Children: []Node{
		&Terminal{Variable: "PaymentChannel.regular_amount", Operation: CmpGreaterEqual, Value: "200"},
		&Terminal{Variable: "User.last_name", Operation: CmpIContains, Value: "nov"},
	}}

	result, err := Compile(node, "", testNow, 5)
	require.NoError(t, err)
	assert.Equal(t, "(ch.regular_amount >= $5 AND p.last_name ILIKE $6)", result.Condition)
	assert.Equal(t, []interface{}{int64(200), "%nov%"}, result.Args)
	assert.Equal(t, 7, result.NextArgPos)
}

func TestCompileContains(t *testing.T) {
	node := &Terminal{Variable: "User.email", Operation: CmpContains, Value: "@example.com"}
	result, err := Compile(node, "", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "p.email LIKE $1", result.Condition)
	assert.Equal(t, []interface{}{"%@example.com%"}, result.Args)
}

func TestCompileRelativeDateValues(t *testing.T) {
	node := &Terminal{Variable: "PaymentChannel.last_payment_date", Operation: CmpLessThan, Value: "month_ago"}
	result, err := Compile(node, "", testNow, 1)
	require.NoError(t, err)
	assert.Equal(t, "ch.last_payment_date < $1", result.Condition)
	require.Len(t, result.Args, 1)
	assert.Equal(t, testNow.AddDate(0, 0, -30), result.Args[0])
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, ParseValue("true", testNow))
	assert.Equal(t, false, ParseValue("false", testNow))
	assert.Equal(t, testNow.AddDate(0, 0, -30), ParseValue("month_ago", testNow))

	today := time.Date(2016, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today.AddDate(0, 0, -7), ParseValue("days_ago.7", testNow))
	assert.Equal(t, 14*24*time.Hour, ParseValue("timedelta.14", testNow))
	assert.Equal(t,
		time.Date(2016, 1, 31, 12, 0, 0, 0, time.UTC),
		ParseValue("datetime.2016-01-31 12:00", testNow))

	assert.Equal(t, int64(200), ParseValue("200", testNow))
	assert.Equal(t, "regular", ParseValue("regular", testNow))
	// malformed tags fall through to strings
	assert.Equal(t, "days_ago.often", ParseValue("days_ago.often", testNow))
}

func TestMarshalRoundTrip(t *testing.T) {
	tree := &Group{Operation: OpAnd, Children: []Node{
		&Terminal{Variable: ActionVariable, Operation: CmpEqual, Value: "new-payment"},
		&Group{Operation: OpOr, Negate: true, Children: []Node{
			&Terminal{Variable: "PaymentChannel.regular_payments", Operation: CmpEqual, Value: "regular"},
			&Terminal{Variable: "User.email", Operation: CmpIContains, Value: "@example.com"},
		}},
	}}

	data, err := MarshalNode(tree)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"group"`)
	assert.Contains(t, string(data), `"kind":"terminal"`)

	rebuilt, err := UnmarshalNode(data)
	require.NoError(t, err)
	assert.Equal(t, tree, rebuilt)
	assert.Equal(t, tree.String(), rebuilt.String())
}

func TestUnmarshalUnknownKind(t *testing.T) {
	_, err := UnmarshalNode([]byte(`{"kind":"ternary"}`))
	assert.ErrorContains(t, err, "unknown condition node kind")
}

func TestValidate(t *testing.T) {
	valid := &Group{Operation: OpAnd, Children: []Node{
		&Terminal{Variable: ActionVariable, Operation: CmpEqual, Value: "new-user"},
		&Terminal{Variable: "User.sex", Operation: CmpNotEqual, Value: "unknown"},
	}}
	assert.NoError(t, Validate(valid))

	assert.ErrorContains(t,
		Validate(&Terminal{Operation: CmpEqual, Value: "x"}),
		"missing a variable")
	assert.ErrorContains(t,
		Validate(&Terminal{Variable: "User.email", Operation: "~", Value: "x"}),
		"unknown comparison operation")
	assert.ErrorContains(t,
		Validate(&Terminal{Variable: "User.favorite_color", Operation: CmpEqual, Value: "x"}),
		"unknown profile attribute")
	assert.ErrorContains(t,
		Validate(&Group{Operation: "xor", Children: []Node{valid}}),
		"unknown group operation")
	assert.ErrorContains(t,
		Validate(&Group{Operation: OpOr}),
		"no children")
}

func TestConditionString(t *testing.T) {
	tree := &Group{Operation: OpAnd, Children: []Node{
		&Terminal{Variable: "action", Operation: CmpEqual, Value: "new-payment"},
		&Group{Operation: OpOr, Negate: true, Children: []Node{
			&Terminal{Variable: "User.sex", Operation: CmpEqual, Value: "male"},
			&Terminal{Variable: "User.sex", Operation: CmpEqual, Value: "female"},
		}},
	}}

	assert.Equal(t,
		"(action = new-payment and not (User.sex = male or User.sex = female))",
		tree.String())
}
