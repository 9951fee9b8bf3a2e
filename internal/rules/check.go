package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// Kind identifies how a check's expression is interpreted
type Kind string

const (
	// KindExpression evaluates a boolean expression over the whole record
	KindExpression Kind = "expression"
	// KindPattern matches the target element's value against a regular expression
	KindPattern Kind = "pattern"
	// KindEnumeration requires the target value to be one of a comma-separated list
	KindEnumeration Kind = "enumeration"
	// KindLength bounds the target value's length, written "min..max" (either side optional)
	KindLength Kind = "length"
	// KindCustom delegates to a registered Predicate named by the expression
	KindCustom Kind = "custom"
)

// Check is a single rule applied to a record
type Check struct {
	Kind       Kind
	Target     string
	Expression string
}

// Predicate is a pluggable check body for KindCustom rules
type Predicate func(value interface{}, record Record) (bool, error)

// Evaluator evaluates checks against records
type Evaluator interface {
	Evaluate(check Check, record Record) (bool, error)
}

// UnknownPredicateError indicates a custom check names an unregistered predicate
type UnknownPredicateError struct {
	Name string
}

func (e UnknownPredicateError) Error() string {
	return fmt.Sprintf("unknown predicate: %s", e.Name)
}

// DefaultEvaluator evaluates the built-in kinds and dispatches custom ones
// to registered predicates. Safe for concurrent use.
type DefaultEvaluator struct {
	mu         sync.RWMutex
	predicates map[string]Predicate
	patterns   map[string]*regexp.Regexp
}

// NewEvaluator creates an evaluator with no custom predicates
func NewEvaluator() *DefaultEvaluator {
	return &DefaultEvaluator{
		predicates: make(map[string]Predicate),
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// RegisterPredicate makes a predicate available to custom checks
func (e *DefaultEvaluator) RegisterPredicate(name string, p Predicate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.predicates[name] = p
}

// Evaluate reports whether the record satisfies the check. Element-scoped
// kinds pass when the target element is absent; presence is enforced by
// obligations, not by rules.
func (e *DefaultEvaluator) Evaluate(check Check, record Record) (bool, error) {
	value, present := record[check.Target]

	switch check.Kind {
	case KindExpression, "":
		return EvaluateBool(check.Expression, record)
	case KindPattern:
		if !present || value == nil {
			return true, nil
		}
		re, err := e.pattern(check.Expression)
		if err != nil {
			return false, err
		}
		return allValues(value, func(s string) bool { return re.MatchString(s) }), nil
	case KindEnumeration:
		if !present || value == nil {
			return true, nil
		}
		allowed := make(map[string]bool)
		for _, opt := range strings.Split(check.Expression, ",") {
			allowed[strings.TrimSpace(opt)] = true
		}
		return allValues(value, func(s string) bool { return allowed[s] }), nil
	case KindLength:
		if !present || value == nil {
			return true, nil
		}
		lo, hi, err := ParseLengthRange(check.Expression)
		if err != nil {
			return false, err
		}
		return allValues(value, func(s string) bool {
			n := utf8.RuneCountInString(s)
			return (lo < 0 || n >= lo) && (hi < 0 || n <= hi)
		}), nil
	case KindCustom:
		e.mu.RLock()
		p, ok := e.predicates[check.Expression]
		e.mu.RUnlock()
		if !ok {
			return false, UnknownPredicateError{Name: check.Expression}
		}
		return p(value, record)
	default:
		return false, fmt.Errorf("unknown rule kind: %s", check.Kind)
	}
}

// Compile checks that a check is well formed without evaluating it
func Compile(check Check) error {
	switch check.Kind {
	case KindExpression, "":
		_, err := Parse(check.Expression)
		return err
	case KindPattern:
		_, err := regexp.Compile(check.Expression)
		return err
	case KindEnumeration:
		if strings.TrimSpace(check.Expression) == "" {
			return fmt.Errorf("enumeration cannot be empty")
		}
		return nil
	case KindLength:
		_, _, err := ParseLengthRange(check.Expression)
		return err
	case KindCustom:
		if strings.TrimSpace(check.Expression) == "" {
			return fmt.Errorf("custom rule must name a predicate")
		}
		return nil
	default:
		return fmt.Errorf("unknown rule kind: %s", check.Kind)
	}
}

// ParseLengthRange parses "min..max"; a missing bound is returned as -1
func ParseLengthRange(expr string) (int, int, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(expr), "..")
	if !ok {
		return 0, 0, fmt.Errorf("length range must be written min..max: %q", expr)
	}
	parse := func(s string) (int, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return -1, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid length bound %q", s)
		}
		return n, nil
	}
	min, err := parse(lo)
	if err != nil {
		return 0, 0, err
	}
	max, err := parse(hi)
	if err != nil {
		return 0, 0, err
	}
	if min >= 0 && max >= 0 && min > max {
		return 0, 0, fmt.Errorf("length range %q has min greater than max", expr)
	}
	return min, max, nil
}

func (e *DefaultEvaluator) pattern(expr string) (*regexp.Regexp, error) {
	e.mu.RLock()
	re, ok := e.patterns[expr]
	e.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	e.mu.Lock()
	e.patterns[expr] = re
	e.mu.Unlock()
	return re, nil
}

// allValues applies fn to a scalar value or to every item of a repeatable one
func allValues(value interface{}, fn func(string) bool) bool {
	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			if !fn(fmt.Sprintf("%v", item)) {
				return false
			}
		}
		return true
	case []string:
		for _, item := range v {
			if !fn(item) {
				return false
			}
		}
		return true
	default:
		return fn(fmt.Sprintf("%v", v))
	}
}
