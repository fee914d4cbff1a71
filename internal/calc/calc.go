// Package calc evaluates arithmetic expressions without touching a
// general-purpose interpreter. The grammar is closed: numeric literals,
// + - * / % ** and unary minus. Anything else is rejected.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidExpression = errors.New("invalid expression")

// DefaultMaxValue bounds the magnitude of any literal. Without it an
// expression like 10**10**10 turns into a denial of service.
const DefaultMaxValue = 1e10

type Evaluator struct {
	maxValue float64
}

func New() *Evaluator {
	return &Evaluator{maxValue: DefaultMaxValue}
}

func NewWithLimit(maxValue float64) *Evaluator {
	if maxValue <= 0 {
		maxValue = DefaultMaxValue
	}
	return &Evaluator{maxValue: maxValue}
}

// Eval parses and reduces expr. Division by zero, overflow and any
// token outside the grammar all surface as ErrInvalidExpression.
func (e *Evaluator) Eval(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}

	p := &parser{tokens: tokens, maxValue: e.maxValue}

	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	if p.pos != len(p.tokens) {
		return 0, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, p.tokens[p.pos].text)
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: result out of range", ErrInvalidExpression)
	}

	return result, nil
}

// FormatResult renders a value the way a calculator would: integers
// without a trailing ".0", everything else with minimal digits.
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func tokenize(expr string) ([]token, error) {
	var tokens []token

	runes := []rune(expr)
	i := 0

	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++
		case r >= '0' && r <= '9' || r == '.':
			start := i
			for i < len(runes) && (runes[i] >= '0' && runes[i] <= '9' || runes[i] == '.') {
				i++
			}
			text := string(runes[start:i])
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad number %q", ErrInvalidExpression, text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, num: num})
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case r == '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				tokens = append(tokens, token{kind: tokOp, text: "**"})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokOp, text: "*"})
				i++
			}
		case strings.ContainsRune("+-/%", r):
			tokens = append(tokens, token{kind: tokOp, text: string(r)})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", ErrInvalidExpression, string(r))
		}
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	return tokens, nil
}

type parser struct {
	tokens   []token
	pos      int
	maxValue float64
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.pos++

		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}

		if tok.text == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

// term := unary (('*' | '/' | '%') unary)*
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp || (tok.text != "*" && tok.text != "/" && tok.text != "%") {
			return left, nil
		}
		p.pos++

		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}

		switch tok.text {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrInvalidExpression)
			}
			left /= right
		case "%":
			if right == 0 {
				return 0, fmt.Errorf("%w: modulo by zero", ErrInvalidExpression)
			}
			left = math.Mod(left, right)
		}

		if math.IsInf(left, 0) || math.IsNaN(left) {
			return 0, fmt.Errorf("%w: result out of range", ErrInvalidExpression)
		}
	}
}

// unary := '-' unary | power
//
// Unary minus binds looser than '**', so -2**2 is -(2**2).
func (p *parser) parseUnary() (float64, error) {
	tok, ok := p.peek()
	if ok && tok.kind == tokOp && tok.text == "-" {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}

	return p.parsePower()
}

// power := primary ('**' unary)?
//
// The exponent re-enters unary, which keeps '**' right associative
// and allows a signed exponent like 2**-3.
func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	tok, ok := p.peek()
	if !ok || tok.kind != tokOp || tok.text != "**" {
		return base, nil
	}
	p.pos++

	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	result := math.Pow(base, exp)
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: result out of range", ErrInvalidExpression)
	}

	return result, nil
}

// primary := number | '(' expr ')'
func (p *parser) parsePrimary() (float64, error) {
	tok, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("%w: unexpected end of expression", ErrInvalidExpression)
	}

	switch tok.kind {
	case tokNumber:
		p.pos++
		if math.Abs(tok.num) > p.maxValue {
			return 0, fmt.Errorf("%w: number too large", ErrInvalidExpression)
		}
		return tok.num, nil
	case tokLParen:
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
		}
		p.pos++
		return v, nil
	default:
		return 0, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, tok.text)
	}
}
