package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atom122158003/pandyle/internal/value"
)

// EvalLiteral evaluates a literal expression. An empty expression is null.
func EvalLiteral(src string) (any, error) {
	n, err := parse(src)
	if err != nil {
		return nil, err
	}
	return evalNode(n)
}

// EvalCondition evaluates src and reports its truthiness.
func EvalCondition(src string) (bool, error) {
	v, err := EvalLiteral(src)
	if err != nil {
		return false, err
	}
	return value.Truthy(v), nil
}

// Substitution renders v the way it is spliced into a condition before
// evaluation: null for nil, the plain string form otherwise.
func Substitution(v any) string {
	if v == nil {
		return "null"
	}
	return value.String(v)
}

func evalNode(n *node) (any, error) {
	switch n.kind {
	case nodeLiteral:
		return n.value, nil
	case nodeUnary:
		operand, err := evalNode(n.children[0])
		if err != nil {
			return nil, err
		}
		switch n.op {
		case "!":
			return !value.Truthy(operand), nil
		case "-":
			return -toNumber(operand), nil
		default:
			return toNumber(operand), nil
		}
	}

	// && and || short-circuit and yield an operand, not a bool.
	left, err := evalNode(n.children[0])
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "&&":
		if !value.Truthy(left) {
			return left, nil
		}
		return evalNode(n.children[1])
	case "||":
		if value.Truthy(left) {
			return left, nil
		}
		return evalNode(n.children[1])
	}
	right, err := evalNode(n.children[1])
	if err != nil {
		return nil, err
	}
	return binary(n.op, left, right)
}

func binary(op string, left, right any) (any, error) {
	switch op {
	case "+":
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs {
			return value.String(left) + value.String(right), nil
		}
		return toNumber(left) + toNumber(right), nil
	case "-":
		return toNumber(left) - toNumber(right), nil
	case "*":
		return toNumber(left) * toNumber(right), nil
	case "/":
		return toNumber(left) / toNumber(right), nil
	case "%":
		return math.Mod(toNumber(left), toNumber(right)), nil
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "===":
		return strictEqual(left, right), nil
	case "!==":
		return !strictEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(op, left, right), nil
	}
	return nil, fmt.Errorf("%w: unknown operator %q", ErrSyntax, op)
}

func toNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	}
	if n, ok := value.Number(v); ok {
		return n
	}
	return math.NaN()
}

func strictEqual(left, right any) bool {
	if value.KindOf(left) != value.KindOf(right) {
		return false
	}
	switch value.KindOf(left) {
	case value.KindNull:
		return true
	case value.KindNumber:
		return toNumber(left) == toNumber(right)
	case value.KindString, value.KindBool:
		return left == right
	}
	return false
}

func looseEqual(left, right any) bool {
	lk, rk := value.KindOf(left), value.KindOf(right)
	if lk == value.KindNull || rk == value.KindNull {
		return lk == rk
	}
	if lk == rk {
		return strictEqual(left, right)
	}
	return toNumber(left) == toNumber(right)
}

func compare(op string, left, right any) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		c := strings.Compare(ls, rs)
		switch op {
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		case ">":
			return c > 0
		default:
			return c >= 0
		}
	}
	l, r := toNumber(left), toNumber(right)
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	default:
		return l >= r
	}
}
