// Package expr compiles a small, dependency-free rule grammar into
// prerequisite predicates.
//
// Supported forms:
//   - truthy checks: `darkvision`
//   - comparisons: `class == "wizard"`, `level >= 3`, `hp != 0`
//   - boolean composition: `a && (b || !c)`
//
// Identifiers resolve against the built entity's values with dot-path
// traversal into nested maps. An empty rule always qualifies.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/prereq"
)

// Compile parses rule once and returns the predicate evaluating it.
func Compile(rule string) (prereq.Predicate, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return func(choice.BuiltEntity) bool { return true }, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	node, err := parse(tokens)
	if err != nil {
		return nil, err
	}
	return func(built choice.BuiltEntity) bool {
		return node.eval(built)
	}, nil
}

// MustCompile panics on a malformed rule. Useful for fixed template
// literals.
func MustCompile(rule string) prereq.Predicate {
	p, err := Compile(rule)
	if err != nil {
		panic(err)
	}
	return p
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenGte
	tokenLte
	tokenGt
	tokenLt
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				i += 2
				break
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case ch == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("prereq/expr: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			i += 2
		case ch == '>':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenGte, raw: ">="})
				i += 2
				break
			}
			tokens = append(tokens, token{kind: tokenGt, raw: ">"})
			i++
		case ch == '<':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenLte, raw: "<="})
				i += 2
				break
			}
			tokens = append(tokens, token{kind: tokenLt, raw: "<"})
			i++
		case ch == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errors.New("prereq/expr: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case ch == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errors.New("prereq/expr: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case ch == '"' || ch == '\'':
			lit, next, err := scanString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: lit})
			i = next
		default:
			raw, next := scanWord(input, i)
			if raw == "" {
				return nil, fmt.Errorf("prereq/expr: unexpected character %q", ch)
			}
			i = next
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "nil":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

// scanString consumes a quoted literal. A backslash escapes the next
// character literally; no other escape processing happens.
func scanString(input string, start int) (string, int, error) {
	quote := input[start]
	var out strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		i++
		switch c {
		case '\\':
			if i >= len(input) {
				return "", 0, errors.New("prereq/expr: unterminated string literal")
			}
			out.WriteByte(input[i])
			i++
		case quote:
			return out.String(), i, nil
		default:
			out.WriteByte(c)
		}
	}
	return "", 0, errors.New("prereq/expr: unterminated string literal")
}

func scanWord(input string, start int) (string, int) {
	i := start
	for i < len(input) {
		c := input[i]
		if strings.ContainsRune(" \t\n\r()!=&|<>", rune(c)) {
			break
		}
		i++
	}
	return strings.TrimSpace(input[start:i]), i
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}
