package rules

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Parse parses a rule expression such as `status == "final" && pages > 0`.
// An empty expression parses to a nil Expression.
func Parse(expr string) (Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	var s scanner.Scanner
	s.Init(strings.NewReader(expr))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings
	s.Error = func(s *scanner.Scanner, msg string) {}

	p := &parser{s: &s}
	p.next()

	res, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.tok != scanner.EOF {
		return nil, fmt.Errorf("unexpected token at end of expression: %s", p.lit)
	}

	return res, nil
}

// opToken marks a multi-character operator token
const opToken = -1

type parser struct {
	s   *scanner.Scanner
	tok rune
	lit string
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.lit = p.s.TokenText()

	two := func(second rune, lit string) {
		if p.s.Peek() == second {
			p.s.Scan()
			p.lit = lit
			p.tok = opToken
		}
	}

	switch p.tok {
	case '=':
		two('=', "==")
	case '!':
		two('=', "!=")
	case '<':
		two('=', "<=")
	case '>':
		two('=', ">=")
	case '&':
		two('&', "&&")
	case '|':
		two('|', "||")
	}
}

func (p *parser) parseExpression() (Expression, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expression, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.lit == "||" {
		p.next()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpression{Left: lhs, Operator: OpOr, Right: rhs}
	}

	return lhs, nil
}

func (p *parser) parseAnd() (Expression, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.lit == "&&" {
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpression{Left: lhs, Operator: OpAnd, Right: rhs}
	}

	return lhs, nil
}

func (p *parser) parseUnary() (Expression, error) {
	if p.tok == '!' {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotExpression{Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expression, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	switch p.lit {
	case "==", "!=", ">", "<", ">=", "<=", "contains", "matches":
		op := Operator(p.lit)
		p.next()
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Left: lhs, Operator: op, Right: rhs}, nil
	}

	return lhs, nil
}

func (p *parser) parsePrimary() (Expression, error) {
	switch p.tok {
	case scanner.Ident:
		name := p.lit
		p.next()
		switch name {
		case "true", "false":
			return &Literal{Value: name == "true", Type: TypeBoolean}, nil
		case "null":
			return &Literal{Value: nil, Type: TypeNull}, nil
		}
		var expr Expression = &Identifier{Name: name}
		for p.lit == "." {
			p.next()
			if p.tok != scanner.Ident {
				return nil, fmt.Errorf("expected identifier after dot")
			}
			expr = &PropertyAccess{Object: expr, Property: p.lit}
			p.next()
		}
		return expr, nil
	case scanner.String:
		val, err := strconv.Unquote(p.lit)
		if err != nil {
			val = strings.Trim(p.lit, "\"")
		}
		p.next()
		return &Literal{Value: val, Type: TypeString}, nil
	case scanner.Int, scanner.Float:
		val, err := strconv.ParseFloat(p.lit, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p.lit, err)
		}
		p.next()
		return &Literal{Value: val, Type: TypeNumber}, nil
	case '-':
		p.next()
		if p.tok != scanner.Int && p.tok != scanner.Float {
			return nil, fmt.Errorf("expected number after '-'")
		}
		val, err := strconv.ParseFloat(p.lit, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p.lit, err)
		}
		p.next()
		return &Literal{Value: -val, Type: TypeNumber}, nil
	case '(':
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.lit != ")" {
			return nil, fmt.Errorf("expected closing parenthesis")
		}
		p.next()
		return expr, nil
	case scanner.EOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected token: %s", p.lit)
	}
}
