package expr

import (
	"fmt"
	"math"

	"github.com/deltakit/deltakit/internal/domain/value"
)

type operandKind int

const (
	nullOp operandKind = iota
	numberOp
	stringOp
	boolOp
)

// operand is an intermediate evaluation result.
type operand struct {
	kind operandKind
	num  float64
	str  string
	b    bool
}

// EvalBool evaluates e against one table row. The expression must
// produce a boolean. Null operands make comparisons false rather than
// erroring, so a single null cell fails its row without poisoning the
// rule.
func EvalBool(e Expression, row map[string]value.Value) (bool, error) {
	res, err := eval(e, row)
	if err != nil {
		return false, err
	}
	switch res.kind {
	case boolOp:
		return res.b, nil
	case nullOp:
		return false, nil
	default:
		return false, fmt.Errorf("expression %s did not produce a boolean", e.String())
	}
}

func eval(e Expression, row map[string]value.Value) (operand, error) {
	switch node := e.(type) {
	case *ColumnRef:
		v, ok := row[node.Name]
		if !ok {
			return operand{}, fmt.Errorf("unknown column %q", node.Name)
		}
		return operandOf(v), nil
	case *NumberLit:
		return operand{kind: numberOp, num: node.Value}, nil
	case *StringLit:
		return operand{kind: stringOp, str: node.Value}, nil
	case *BoolLit:
		return operand{kind: boolOp, b: node.Value}, nil
	case *UnaryExpression:
		return evalUnary(node, row)
	case *BinaryExpression:
		return evalBinary(node, row)
	default:
		return operand{}, fmt.Errorf("unsupported expression node %T", e)
	}
}

func operandOf(v value.Value) operand {
	switch v.Kind() {
	case value.KindNull:
		return operand{kind: nullOp}
	case value.KindInt, value.KindFloat:
		f, _ := v.AsFloat()
		return operand{kind: numberOp, num: f}
	default:
		return operand{kind: stringOp, str: v.String()}
	}
}

func evalUnary(node *UnaryExpression, row map[string]value.Value) (operand, error) {
	res, err := eval(node.Operand, row)
	if err != nil {
		return operand{}, err
	}
	switch node.Operator {
	case "not":
		if res.kind == nullOp {
			return operand{kind: boolOp, b: true}, nil
		}
		if res.kind != boolOp {
			return operand{}, fmt.Errorf("not requires a boolean operand")
		}
		return operand{kind: boolOp, b: !res.b}, nil
	case "-":
		if res.kind == nullOp {
			return operand{kind: nullOp}, nil
		}
		if res.kind != numberOp {
			return operand{}, fmt.Errorf("unary minus requires a numeric operand")
		}
		return operand{kind: numberOp, num: -res.num}, nil
	default:
		return operand{}, fmt.Errorf("unsupported unary operator %q", node.Operator)
	}
}

func evalBinary(node *BinaryExpression, row map[string]value.Value) (operand, error) {
	left, err := eval(node.Left, row)
	if err != nil {
		return operand{}, err
	}
	right, err := eval(node.Right, row)
	if err != nil {
		return operand{}, err
	}

	switch node.Operator {
	case "and", "or":
		return evalLogical(node.Operator, left, right)
	case "==", "!=", "<", "<=", ">", ">=":
		return evalComparison(node.Operator, left, right)
	case "+", "-", "*", "/", "%":
		return evalArithmetic(node.Operator, left, right)
	default:
		return operand{}, fmt.Errorf("unsupported operator %q", node.Operator)
	}
}

func evalLogical(op string, left, right operand) (operand, error) {
	lb, err := truthy(left)
	if err != nil {
		return operand{}, err
	}
	rb, err := truthy(right)
	if err != nil {
		return operand{}, err
	}
	if op == "and" {
		return operand{kind: boolOp, b: lb && rb}, nil
	}
	return operand{kind: boolOp, b: lb || rb}, nil
}

// truthy maps a null operand to false so boolean composition over
// sparse columns stays total.
func truthy(o operand) (bool, error) {
	switch o.kind {
	case boolOp:
		return o.b, nil
	case nullOp:
		return false, nil
	default:
		return false, fmt.Errorf("logical operator requires boolean operands")
	}
}

func evalComparison(op string, left, right operand) (operand, error) {
	if left.kind == nullOp || right.kind == nullOp {
		return operand{kind: boolOp, b: false}, nil
	}

	if left.kind == numberOp && right.kind == numberOp {
		return operand{kind: boolOp, b: compareFloats(op, left.num, right.num)}, nil
	}
	if left.kind == stringOp && right.kind == stringOp {
		return operand{kind: boolOp, b: compareStrings(op, left.str, right.str)}, nil
	}
	if left.kind == boolOp && right.kind == boolOp {
		switch op {
		case "==":
			return operand{kind: boolOp, b: left.b == right.b}, nil
		case "!=":
			return operand{kind: boolOp, b: left.b != right.b}, nil
		default:
			return operand{}, fmt.Errorf("operator %q not defined for booleans", op)
		}
	}
	return operand{}, fmt.Errorf("cannot compare mixed operand types with %q", op)
}

func compareFloats(op string, a, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func compareStrings(op string, a, b string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func evalArithmetic(op string, left, right operand) (operand, error) {
	if left.kind == nullOp || right.kind == nullOp {
		return operand{kind: nullOp}, nil
	}
	if left.kind != numberOp || right.kind != numberOp {
		return operand{}, fmt.Errorf("operator %q requires numeric operands", op)
	}
	switch op {
	case "+":
		return operand{kind: numberOp, num: left.num + right.num}, nil
	case "-":
		return operand{kind: numberOp, num: left.num - right.num}, nil
	case "*":
		return operand{kind: numberOp, num: left.num * right.num}, nil
	case "/":
		if right.num == 0 {
			return operand{}, fmt.Errorf("division by zero")
		}
		return operand{kind: numberOp, num: left.num / right.num}, nil
	default:
		if right.num == 0 {
			return operand{}, fmt.Errorf("modulo by zero")
		}
		return operand{kind: numberOp, num: math.Mod(left.num, right.num)}, nil
	}
}
