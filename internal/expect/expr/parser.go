package expr

import (
	"fmt"
	"strconv"
)

// Parser builds an Expression from a token stream. Precedence, loosest
// first: OR, AND, NOT, comparison, additive, multiplicative, unary
// minus, atom.
type Parser struct {
	tokens []Token
	curPos int
	curTok Token
}

// Parse compiles a rule expression.
func Parse(input string) (Expression, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	p.nextToken()

	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != EOF {
		return nil, fmt.Errorf("unexpected trailing token %q", p.curTok.Literal)
	}
	return e, nil
}

func (p *Parser) nextToken() {
	if p.curPos < len(p.tokens) {
		p.curTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.curTok = Token{Type: EOF}
	}
}

func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curTok.Type == OR {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Left: left, Operator: "or", Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.curTok.Type == AND {
		p.nextToken()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Left: left, Operator: "and", Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expression, error) {
	if p.curTok.Type == NOT {
		p.nextToken()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Operator: "not", Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[TokenType]string{
	EQ:  "==",
	NEQ: "!=",
	LT:  "<",
	LTE: "<=",
	GT:  ">",
	GTE: ">=",
}

func (p *Parser) parseComparison() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.curTok.Type]; ok {
		p.nextToken()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Left: left, Operator: op, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.curTok.Type == PLUS || p.curTok.Type == MINUS {
		op := p.curTok.Literal
		p.nextToken()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curTok.Type == ASTERISK || p.curTok.Type == SLASH || p.curTok.Type == PERCENT {
		op := p.curTok.Literal
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expression, error) {
	if p.curTok.Type == MINUS {
		p.nextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Operator: "-", Operand: operand}, nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (Expression, error) {
	switch p.curTok.Type {
	case IDENTIFIER:
		name := p.curTok.Literal
		p.nextToken()
		return &ColumnRef{Name: name}, nil
	case NUMBER:
		lit := p.curTok.Literal
		p.nextToken()
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", lit)
		}
		return &NumberLit{Value: f}, nil
	case STRING:
		lit := p.curTok.Literal
		p.nextToken()
		return &StringLit{Value: lit}, nil
	case TRUE:
		p.nextToken()
		return &BoolLit{Value: true}, nil
	case FALSE:
		p.nextToken()
		return &BoolLit{Value: false}, nil
	case PAREN_OPEN:
		p.nextToken()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != PAREN_CLOSE {
			return nil, fmt.Errorf("expected ), got %q", p.curTok.Literal)
		}
		p.nextToken()
		return inner, nil
	default:
		return nil, fmt.Errorf("unexpected token in expression: %q", p.curTok.Literal)
	}
}
