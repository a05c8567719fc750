// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package recommend

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// MatchMode selects how the clauses of a condition combine.
type MatchMode string

const (
	// MatchAny is satisfied when at least one clause holds.
	MatchAny MatchMode = "any"
	// MatchAll is satisfied only when every clause holds.
	MatchAll MatchMode = "all"
)

// Valid reports whether m is a known match mode.
func (m MatchMode) Valid() bool {
	return m == MatchAny || m == MatchAll
}

// Clause is a single attribute test. Value carries the operator as a
// prefix (">=50", "<4", "female"); a bare value means equality.
type Clause struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

func (c Clause) String() string {
	return c.Path + " " + c.Value
}

// Condition is the predicate of a personalization rule.
type Condition struct {
	Clauses []Clause

	// parseErr is kept so a rule with an unparseable condition can still be
	// loaded and then reported when evaluated.
	parseErr error
}

// NewCondition builds a condition from clauses.
func NewCondition(clauses ...Clause) Condition {
	return Condition{Clauses: clauses}
}

// ParseCondition parses an expression such as
// "progress.stage >= 4 && progress.completion < 50%".
func ParseCondition(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Condition{}, nil
	}
	if strings.Contains(expr, "||") {
		return Condition{}, fmt.Errorf("%w: disjunction is expressed by match mode, not ||", ErrMalformedCondition)
	}

	parts := strings.Split(expr, "&&")
	clauses := make([]Clause, 0, len(parts))
	for _, part := range parts {
		clause, err := parseClauseExpr(part)
		if err != nil {
			return Condition{}, err
		}
		clauses = append(clauses, clause)
	}
	return Condition{Clauses: clauses}, nil
}

// MustParseCondition is ParseCondition for literals known to be valid.
func MustParseCondition(expr string) Condition {
	c, err := ParseCondition(expr)
	if err != nil {
		panic(err)
	}
	return c
}

var exprOperators = []string{">=", "<=", "!=", "==", ">", "<", "="}

func parseClauseExpr(part string) (Clause, error) {
	part = strings.TrimSpace(part)

	at, op := -1, ""
	for _, candidate := range exprOperators {
		idx := strings.Index(part, candidate)
		if idx < 0 {
			continue
		}
		// Earliest position wins; two-character operators are listed first.
		if at < 0 || idx < at {
			at, op = idx, candidate
		}
	}
	if at <= 0 {
		return Clause{}, fmt.Errorf("%w: no operator in %q", ErrMalformedCondition, part)
	}

	path := strings.TrimSpace(part[:at])
	value := strings.TrimSpace(part[at+len(op):])
	if path == "" || value == "" {
		return Clause{}, fmt.Errorf("%w: incomplete clause %q", ErrMalformedCondition, part)
	}
	value = strings.Trim(value, `"'`)

	switch op {
	case "==", "=":
		return Clause{Path: path, Value: value}, nil
	default:
		return Clause{Path: path, Value: op + value}, nil
	}
}

// Err returns the error recorded while decoding the condition, if any.
func (c Condition) Err() error {
	return c.parseErr
}

func (c Condition) String() string {
	if c.parseErr != nil {
		return "<invalid>"
	}
	parts := make([]string, len(c.Clauses))
	for i, cl := range c.Clauses {
		parts[i] = cl.String()
	}
	return strings.Join(parts, " && ")
}

// MarshalJSON encodes the condition as a clause list.
func (c Condition) MarshalJSON() ([]byte, error) {
	if c.Clauses == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Clauses)
}

// UnmarshalJSON accepts an expression string, a clause list, or an
// attribute map such as {"user.age": ">=50"}. Decoding never fails on a
// bad condition; the problem is kept and surfaces at evaluation.
func (c *Condition) UnmarshalJSON(data []byte) error {
	*c = Condition{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var expr string
		if err := json.Unmarshal(data, &expr); err != nil {
			return err
		}
		parsed, err := ParseCondition(expr)
		if err != nil {
			c.parseErr = err
			return nil
		}
		*c = parsed
	case '[':
		var clauses []Clause
		if err := json.Unmarshal(data, &clauses); err != nil {
			c.parseErr = fmt.Errorf("%w: %v", ErrMalformedCondition, err)
			return nil
		}
		c.Clauses = clauses
	case '{':
		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			c.parseErr = fmt.Errorf("%w: %v", ErrMalformedCondition, err)
			return nil
		}
		paths := make([]string, 0, len(raw))
		for path := range raw {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			switch v := raw[path].(type) {
			case string:
				c.Clauses = append(c.Clauses, Clause{Path: path, Value: v})
			case float64:
				c.Clauses = append(c.Clauses, Clause{Path: path, Value: strconv.FormatFloat(v, 'f', -1, 64)})
			case bool:
				c.Clauses = append(c.Clauses, Clause{Path: path, Value: strconv.FormatBool(v)})
			default:
				c.Clauses = nil
				c.parseErr = fmt.Errorf("%w: unsupported value for %s", ErrMalformedCondition, path)
				return nil
			}
		}
	default:
		c.parseErr = fmt.Errorf("%w: unexpected JSON %q", ErrMalformedCondition, string(data))
	}
	return nil
}

// Evaluator evaluates rule conditions. It holds no state besides its mode
// and is safe for concurrent use.
type Evaluator struct {
	mode MatchMode
}

// NewEvaluator returns an evaluator using mode, defaulting to MatchAny.
func NewEvaluator(mode MatchMode) *Evaluator {
	if !mode.Valid() {
		mode = MatchAny
	}
	return &Evaluator{mode: mode}
}

// Mode returns the evaluator's match mode.
func (ev *Evaluator) Mode() MatchMode {
	return ev.mode
}

// Evaluate reports whether cond holds for the given profile and progress.
// A malformed or unsupported condition evaluates to false together with a
// non-nil error describing the first offending clause. An empty condition
// always holds.
func (ev *Evaluator) Evaluate(cond Condition, user *UserProfile, progress *ProgramProgress) (bool, error) {
	if cond.parseErr != nil {
		return false, cond.parseErr
	}
	if len(cond.Clauses) == 0 {
		return true, nil
	}

	// Compile every clause before evaluating any, so the result of a
	// malformed condition never depends on clause order.
	compiled := make([]compiledClause, len(cond.Clauses))
	for i, cl := range cond.Clauses {
		cc, err := compileClause(cl)
		if err != nil {
			return false, err
		}
		compiled[i] = cc
	}

	for _, cc := range compiled {
		ok, err := cc.eval(user, progress)
		if err != nil {
			return false, err
		}
		switch {
		case ok && ev.mode == MatchAny:
			return true, nil
		case !ok && ev.mode == MatchAll:
			return false, nil
		}
	}
	return ev.mode == MatchAll, nil
}

type operator int

const (
	opEq operator = iota
	opNe
	opGe
	opGt
	opLe
	opLt
)

type attrKind int

const (
	attrNumber attrKind = iota
	attrString
	attrSet
)

type attribute struct {
	kind   attrKind
	number func(*UserProfile, *ProgramProgress) (float64, bool)
	str    func(*UserProfile, *ProgramProgress) (string, bool)
	set    func(*UserProfile, *ProgramProgress) ([]string, bool)
}

// attributes maps normalized paths (lower case, no separators) to accessors.
var attributes = map[string]attribute{
	"user.age": {kind: attrNumber, number: func(u *UserProfile, _ *ProgramProgress) (float64, bool) {
		if u == nil {
			return 0, false
		}
		return float64(u.Age), true
	}},
	"user.gender": {kind: attrString, str: func(u *UserProfile, _ *ProgramProgress) (string, bool) {
		if u == nil {
			return "", false
		}
		return u.Gender, true
	}},
	"user.id": {kind: attrString, str: func(u *UserProfile, _ *ProgramProgress) (string, bool) {
		if u == nil {
			return "", false
		}
		return u.ID, true
	}},
	"user.preferences": {kind: attrSet, set: func(u *UserProfile, _ *ProgramProgress) ([]string, bool) {
		if u == nil {
			return nil, false
		}
		return u.Preferences, true
	}},
	"progress.stage":                {kind: attrNumber, number: progressStage},
	"progress.currentstage":         {kind: attrNumber, number: progressStage},
	"progress.completion":           {kind: attrNumber, number: progressCompletion},
	"progress.completionpercentage": {kind: attrNumber, number: progressCompletion},
	"progress.programid": {kind: attrString, str: func(_ *UserProfile, p *ProgramProgress) (string, bool) {
		if p == nil {
			return "", false
		}
		return p.ProgramID, true
	}},
}

func progressStage(_ *UserProfile, p *ProgramProgress) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return float64(p.CurrentStage), true
}

func progressCompletion(_ *UserProfile, p *ProgramProgress) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return p.CompletionPercentage, true
}

func normalizePath(path string) string {
	path = strings.ToLower(strings.TrimSpace(path))
	return strings.NewReplacer("_", "", "-", "").Replace(path)
}

type compiledClause struct {
	attr   attribute
	op     operator
	number float64
	text   string
}

func compileClause(cl Clause) (compiledClause, error) {
	attr, ok := attributes[normalizePath(cl.Path)]
	if !ok {
		return compiledClause{}, fmt.Errorf("%w: %q", ErrUnsupportedAttribute, cl.Path)
	}

	op, rest := splitOperator(strings.TrimSpace(cl.Value))
	cc := compiledClause{attr: attr, op: op, text: rest}

	switch attr.kind {
	case attrNumber:
		n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(rest), "%"), 64)
		if err != nil {
			return compiledClause{}, fmt.Errorf("%w: %s expects a number, got %q", ErrMalformedCondition, cl.Path, cl.Value)
		}
		cc.number = n
	case attrString, attrSet:
		if op != opEq && op != opNe {
			return compiledClause{}, fmt.Errorf("%w: %s supports only equality", ErrMalformedCondition, cl.Path)
		}
		if rest == "" {
			return compiledClause{}, fmt.Errorf("%w: empty value for %s", ErrMalformedCondition, cl.Path)
		}
	}
	return cc, nil
}

func splitOperator(value string) (operator, string) {
	switch {
	case strings.HasPrefix(value, ">="):
		return opGe, strings.TrimSpace(value[2:])
	case strings.HasPrefix(value, "<="):
		return opLe, strings.TrimSpace(value[2:])
	case strings.HasPrefix(value, "!="):
		return opNe, strings.TrimSpace(value[2:])
	case strings.HasPrefix(value, "=="):
		return opEq, strings.TrimSpace(value[2:])
	case strings.HasPrefix(value, ">"):
		return opGt, strings.TrimSpace(value[1:])
	case strings.HasPrefix(value, "<"):
		return opLt, strings.TrimSpace(value[1:])
	default:
		return opEq, value
	}
}

func (cc compiledClause) eval(user *UserProfile, progress *ProgramProgress) (bool, error) {
	switch cc.attr.kind {
	case attrNumber:
		v, ok := cc.attr.number(user, progress)
		if !ok {
			return false, nil
		}
		return compareNumbers(v, cc.op, cc.number), nil
	case attrString:
		v, ok := cc.attr.str(user, progress)
		if !ok {
			return false, nil
		}
		eq := strings.EqualFold(strings.TrimSpace(v), cc.text)
		return eq == (cc.op == opEq), nil
	case attrSet:
		values, ok := cc.attr.set(user, progress)
		if !ok {
			return false, nil
		}
		found := false
		for _, v := range values {
			if strings.EqualFold(v, cc.text) {
				found = true
				break
			}
		}
		return found == (cc.op == opEq), nil
	}
	return false, fmt.Errorf("%w: unknown attribute kind", ErrUnsupportedAttribute)
}

func compareNumbers(v float64, op operator, want float64) bool {
	switch op {
	case opEq:
		return v == want
	case opNe:
		return v != want
	case opGe:
		return v >= want
	case opGt:
		return v > want
	case opLe:
		return v <= want
	case opLt:
		return v < want
	}
	return false
}
