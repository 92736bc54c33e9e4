package store

import (
	"fmt"
	"strings"
)

// Op is a condition operator
type Op uint8

const (
	// OpEq matches field = value
	OpEq Op = iota
	// OpIn matches field IN (values...)
	OpIn
)

// Cond is one condition of a Predicate
type Cond struct {
	Field  string
	Op     Op
	Values []any
}

// Predicate is a conjunction of conditions. The empty predicate matches all.
type Predicate []Cond

// Where builds a predicate from conditions
func Where(conds ...Cond) Predicate { return Predicate(conds) }

// Eq matches records whose field equals v
func Eq(field string, v any) Cond { return Cond{Field: field, Op: OpEq, Values: []any{v}} }

// In matches records whose field is one of vs. An In without values matches nothing.
func In(field string, vs ...any) Cond { return Cond{Field: field, Op: OpIn, Values: vs} }

// InStrings is In for a string slice
func InStrings(field string, vs []string) Cond {
	vals := make([]any, len(vs))
	for i, v := range vs {
		vals[i] = v
	}
	return In(field, vals...)
}

// Empty reports whether the predicate can never match (an In with no values)
func (p Predicate) Empty() bool {
	for _, c := range p {
		if c.Op == OpIn && len(c.Values) == 0 {
			return true
		}
	}
	return false
}

// Match evaluates the predicate against rec
func (p Predicate) Match(rec Record) bool {
	for _, c := range p {
		got, ok := rec[c.Field]
		if !ok {
			return false
		}
		if !c.matches(got) {
			return false
		}
	}
	return true
}

func (c Cond) matches(got any) bool {
	for _, want := range c.Values {
		if equalValues(got, want) {
			return true
		}
	}
	return false
}

// String renders the predicate for logs
func (p Predicate) String() string {
	if len(p) == 0 {
		return "true"
	}
	parts := make([]string, len(p))
	for i, c := range p {
		switch c.Op {
		case OpIn:
			parts[i] = fmt.Sprintf("%s IN %v", c.Field, c.Values)
		default:
			parts[i] = fmt.Sprintf("%s = %v", c.Field, c.Values[0])
		}
	}
	return strings.Join(parts, " AND ")
}

func equalValues(a, b any) bool {
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			return ai == bi
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
