package expr

import "fmt"

// Expression is a node of the parsed rule expression.
type Expression interface {
	expressionNode()
	String() string
}

// ColumnRef references a table column by name.
type ColumnRef struct {
	Name string
}

func (c *ColumnRef) expressionNode() {}
func (c *ColumnRef) String() string  { return c.Name }

// NumberLit is a numeric literal. All numbers evaluate as float64.
type NumberLit struct {
	Value float64
}

func (n *NumberLit) expressionNode() {}
func (n *NumberLit) String() string  { return fmt.Sprintf("%v", n.Value) }

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

func (s *StringLit) expressionNode() {}
func (s *StringLit) String() string  { return fmt.Sprintf("%q", s.Value) }

// BoolLit is true or false.
type BoolLit struct {
	Value bool
}

func (b *BoolLit) expressionNode() {}
func (b *BoolLit) String() string  { return fmt.Sprintf("%v", b.Value) }

// UnaryExpression applies "not" or unary minus.
type UnaryExpression struct {
	Operator string // "not" or "-"
	Operand  Expression
}

func (u *UnaryExpression) expressionNode() {}
func (u *UnaryExpression) String() string {
	return fmt.Sprintf("(%s %s)", u.Operator, u.Operand.String())
}

// BinaryExpression: Left Operator Right.
type BinaryExpression struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (e *BinaryExpression) expressionNode() {}
func (e *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Operator, e.Right.String())
}
