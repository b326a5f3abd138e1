package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-entgen/pkg/choice"
)

type node interface {
	eval(built choice.BuiltEntity) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(built choice.BuiltEntity) bool {
	return n.left.eval(built) || n.right.eval(built)
}

type andNode struct{ left, right node }

func (n andNode) eval(built choice.BuiltEntity) bool {
	return n.left.eval(built) && n.right.eval(built)
}

type notNode struct{ inner node }

func (n notNode) eval(built choice.BuiltEntity) bool {
	return !n.inner.eval(built)
}

type truthyNode struct{ identifier string }

func (n truthyNode) eval(built choice.BuiltEntity) bool {
	value, ok := lookup(built, n.identifier)
	return ok && truthy(value)
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

type compareNode struct {
	identifier string
	op         tokenKind
	literal    literal
}

func (n compareNode) eval(built choice.BuiltEntity) bool {
	value, _ := lookup(built, n.identifier)

	switch n.literal.kind {
	case litNull:
		isNull := value == nil
		if n.op == tokenNeq {
			return !isNull
		}
		return isNull
	case litBool:
		want := n.literal.raw == "true"
		got := truthy(value)
		if n.op == tokenNeq {
			return got != want
		}
		return got == want
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false
		}
		got, ok := coerceNumber(value)
		if !ok {
			return false
		}
		switch n.op {
		case tokenEq:
			return got == want
		case tokenNeq:
			return got != want
		case tokenGt:
			return got > want
		case tokenGte:
			return got >= want
		case tokenLt:
			return got < want
		case tokenLte:
			return got <= want
		}
		return false
	default:
		got := coerceString(value)
		if n.op == tokenNeq {
			return got != n.literal.raw
		}
		return got == n.literal.raw
	}
}

type stream struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	s := &stream{tokens: tokens}
	n, err := parseOr(s)
	if err != nil {
		return nil, err
	}
	if s.pos < len(s.tokens) {
		return nil, fmt.Errorf("prereq/expr: unexpected token %q", s.tokens[s.pos].raw)
	}
	return n, nil
}

func parseOr(s *stream) (node, error) {
	left, err := parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenOr) {
		right, err := parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(s *stream) (node, error) {
	left, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenAnd) {
		right, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(s *stream) (node, error) {
	if s.match(tokenNot) {
		inner, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(s)
}

func parsePrimary(s *stream) (node, error) {
	if s.match(tokenLParen) {
		inner, err := parseOr(s)
		if err != nil {
			return nil, err
		}
		if !s.match(tokenRParen) {
			return nil, errors.New("prereq/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := s.consume(tokenIdentifier)
	if !ok {
		if s.pos >= len(s.tokens) {
			return nil, errors.New("prereq/expr: empty expression")
		}
		return nil, fmt.Errorf("prereq/expr: expected identifier, got %q", s.tokens[s.pos].raw)
	}

	for _, op := range []tokenKind{tokenEq, tokenNeq, tokenGte, tokenLte, tokenGt, tokenLt} {
		if s.match(op) {
			lit, err := s.literal()
			if err != nil {
				return nil, err
			}
			return compareNode{identifier: ident.raw, op: op, literal: lit}, nil
		}
	}
	return truthyNode{identifier: ident.raw}, nil
}

func (s *stream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *stream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *stream) literal() (literal, error) {
	if s.pos >= len(s.tokens) {
		return literal{}, errors.New("prereq/expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString:
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, raw: "null"}, nil
	case tokenIdentifier:
		// Bare identifiers compare as strings, keeping rules like
		// class == wizard forgiving.
		return literal{kind: litString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("prereq/expr: expected literal, got %q", tok.raw)
	}
}

// lookup resolves an identifier against the built entity with dot-path
// traversal into nested map values. Exact dotted keys win over
// traversal.
func lookup(built choice.BuiltEntity, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" || built.Values == nil {
		return nil, false
	}
	if v, ok := built.Values[key]; ok {
		return v, true
	}

	parts := strings.Split(key, ".")
	var current any = map[string]any(built.Values)
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			if values, isValues := current.(choice.Values); isValues {
				m = map[string]any(values)
			} else {
				return nil, false
			}
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
