package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Evaluate evaluates a binary expression
func (e *BinaryExpression) Evaluate(record Record) (interface{}, error) {
	left, err := e.Left.Evaluate(record)
	if err != nil {
		return nil, err
	}

	// && and || short-circuit so guards like `x != null && x.y == 1` are safe
	switch e.Operator {
	case OpAnd:
		if !toBool(left) {
			return false, nil
		}
	case OpOr:
		if toBool(left) {
			return true, nil
		}
	}

	right, err := e.Right.Evaluate(record)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case OpEqual:
		return isEqual(left, right), nil
	case OpNotEqual:
		return !isEqual(left, right), nil
	case OpGreaterThan:
		return compare(left, right) > 0, nil
	case OpLessThan:
		return compare(left, right) < 0, nil
	case OpGreaterOrEqual:
		return compare(left, right) >= 0, nil
	case OpLessOrEqual:
		return compare(left, right) <= 0, nil
	case OpContains:
		return contains(left, right), nil
	case OpMatches:
		return matches(left, right)
	case OpAnd, OpOr:
		return toBool(right), nil
	default:
		return nil, fmt.Errorf("unknown operator: %s", e.Operator)
	}
}

// EvaluateBool parses and evaluates expr against record, coercing the
// result to a boolean. An empty expression is true.
func EvaluateBool(expr string, record Record) (bool, error) {
	parsed, err := Parse(expr)
	if err != nil {
		return false, err
	}
	if parsed == nil {
		return true, nil
	}
	v, err := parsed.Evaluate(record)
	if err != nil {
		return false, err
	}
	return toBool(v), nil
}

func isEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func compare(a, b interface{}) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func contains(container, item interface{}) bool {
	if container == nil {
		return false
	}
	if list, ok := container.([]interface{}); ok {
		for _, v := range list {
			if isEqual(v, item) {
				return true
			}
		}
		return false
	}
	if list, ok := container.([]string); ok {
		for _, v := range list {
			if isEqual(v, item) {
				return true
			}
		}
		return false
	}
	return strings.Contains(fmt.Sprintf("%v", container), fmt.Sprintf("%v", item))
}

func matches(value, pattern interface{}) (bool, error) {
	if value == nil {
		return false, nil
	}
	re, err := regexp.Compile(fmt.Sprintf("%v", pattern))
	if err != nil {
		return false, fmt.Errorf("invalid pattern: %w", err)
	}
	return re.MatchString(fmt.Sprintf("%v", value)), nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if v == nil {
		return false
	}
	s := fmt.Sprintf("%v", v)
	return s != "" && s != "false" && s != "0"
}
