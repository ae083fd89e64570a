// Package alerts evaluates user-defined condition expressions against seeing
// reports. Expressions are parsed once at registration into an AST over a
// fixed set of variables, so arbitrary code can never run.
package alerts

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Variables an expression may reference.
var allowedVariables = map[string]bool{
	"score":             true,
	"cloud_cover":       true,
	"wind_speed":        true,
	"humidity":          true,
	"temperature":       true,
	"moon_illumination": true,
	"moon_altitude":     true,
}

// Expr is a parsed alert condition.
type Expr interface {
	// Eval evaluates the expression against a variable binding.
	Eval(vars map[string]float64) bool
}

type comparison struct {
	variable string
	op       string
	value    float64
}

func (c comparison) Eval(vars map[string]float64) bool {
	v := vars[c.variable]
	switch c.op {
	case ">":
		return v > c.value
	case "<":
		return v < c.value
	case ">=":
		return v >= c.value
	case "<=":
		return v <= c.value
	case "==":
		return v == c.value
	case "!=":
		return v != c.value
	}
	return false
}

type andExpr struct{ left, right Expr }

func (a andExpr) Eval(vars map[string]float64) bool {
	return a.left.Eval(vars) && a.right.Eval(vars)
}

type orExpr struct{ left, right Expr }

func (o orExpr) Eval(vars map[string]float64) bool {
	return o.left.Eval(vars) || o.right.Eval(vars)
}

type notExpr struct{ inner Expr }

func (n notExpr) Eval(vars map[string]float64) bool {
	return !n.inner.Eval(vars)
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := rune(input[i])
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case ch == '>' || ch == '<' || ch == '=' || ch == '!':
			op := string(ch)
			if i+1 < len(input) && input[i+1] == '=' {
				op += "="
				i++
			}
			i++
			if op == "=" || op == "!" {
				return nil, fmt.Errorf("invalid operator %q", op)
			}
			tokens = append(tokens, token{tokOp, op})
		case unicode.IsDigit(ch) || ch == '-' || ch == '.':
			start := i
			i++
			for i < len(input) && (unicode.IsDigit(rune(input[i])) || input[i] == '.') {
				i++
			}
			tokens = append(tokens, token{tokNumber, input[start:i]})
		case unicode.IsLetter(ch) || ch == '_':
			start := i
			for i < len(input) && (unicode.IsLetter(rune(input[i])) || unicode.IsDigit(rune(input[i])) || input[i] == '_') {
				i++
			}
			tokens = append(tokens, token{tokIdent, input[start:i]})
		default:
			return nil, fmt.Errorf("unexpected character %q", ch)
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

// ParseExpr parses a condition string into an evaluable expression. Grammar,
// lowest precedence first: or, and, not, comparison, parenthesized group.
func ParseExpr(input string) (Expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected token %q", p.tokens[p.pos].text)
	}
	return expr, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokIdent || tok.text != "or" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left, right}
	}
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokIdent || tok.text != "and" {
			return left, nil
		}
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = andExpr{left, right}
	}
}

func (p *parser) parseNot() (Expr, error) {
	if tok, ok := p.peek(); ok && tok.kind == tokIdent && tok.text == "not" {
		p.pos++
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of expression")
	}

	if tok.kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	}

	if tok.kind != tokIdent {
		return nil, fmt.Errorf("expected variable, got %q", tok.text)
	}
	if !allowedVariables[tok.text] {
		return nil, fmt.Errorf("unknown variable %q", tok.text)
	}
	variable := tok.text
	p.pos++

	opTok, ok := p.peek()
	if !ok || opTok.kind != tokOp {
		return nil, fmt.Errorf("expected comparison operator after %q", variable)
	}
	p.pos++

	numTok, ok := p.peek()
	if !ok || numTok.kind != tokNumber {
		return nil, fmt.Errorf("expected number after operator %q", opTok.text)
	}
	value, err := strconv.ParseFloat(numTok.text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", numTok.text)
	}
	p.pos++

	return comparison{variable: variable, op: opTok.text, value: value}, nil
}
