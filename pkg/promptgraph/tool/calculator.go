package tool

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Calculator evaluates arithmetic expressions: the four operators, unary
// minus, parentheses, decimal numbers, and the functions sqrt, pow, sin,
// cos, tan, log, exp. Expressions are parsed with a recursive-descent
// parser; nothing is ever interpreted as code.
type Calculator struct{}

// NewCalculator creates a calculator tool.
func NewCalculator() *Calculator { return &Calculator{} }

func (c *Calculator) Name() string { return "calculator" }

func (c *Calculator) Description() string {
	return "Performs mathematical calculations. Input should be a mathematical expression like '2 + 3' or 'sqrt(16)'"
}

// Execute implements Tool.
func (c *Calculator) Execute(_ context.Context, input string) (string, error) {
	p := &exprParser{input: strings.TrimSpace(input)}
	result, err := p.parseExpr()
	if err != nil {
		return "", fmt.Errorf("calculation error: %w", err)
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return "", fmt.Errorf("calculation error: unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return "", fmt.Errorf("calculation error: result is not a finite number")
	}
	return strconv.FormatFloat(result, 'f', -1, 64), nil
}

// exprParser is a recursive-descent parser with the grammar
//
//	expr   = term   (('+' | '-') term)*
//	term   = unary  (('*' | '/') unary)*
//	unary  = '-' unary | atom
//	atom   = number | func '(' expr (',' expr)* ')' | '(' expr ')'
type exprParser struct {
	input string
	pos   int
}

var calcFuncs = map[string]func(args []float64) (float64, error){
	"sqrt": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("sqrt takes 1 argument")
		}
		if args[0] < 0 {
			return 0, fmt.Errorf("sqrt of negative number")
		}
		return math.Sqrt(args[0]), nil
	},
	"pow": func(args []float64) (float64, error) {
		if len(args) != 2 {
			return 0, fmt.Errorf("pow takes 2 arguments")
		}
		return math.Pow(args[0], args[1]), nil
	},
	"sin": oneArg("sin", math.Sin),
	"cos": oneArg("cos", math.Cos),
	"tan": oneArg("tan", math.Tan),
	"log": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("log takes 1 argument")
		}
		if args[0] <= 0 {
			return 0, fmt.Errorf("log of non-positive number")
		}
		return math.Log(args[0]), nil
	},
	"exp": oneArg("exp", math.Exp),
}

func oneArg(name string, fn func(float64) float64) func([]float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s takes 1 argument", name)
		}
		return fn(args[0]), nil
	}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	ch := p.input[p.pos]

	if ch == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	if ch >= '0' && ch <= '9' || ch == '.' {
		return p.parseNumber()
	}

	if unicode.IsLetter(rune(ch)) {
		return p.parseFunc()
	}

	return 0, fmt.Errorf("unexpected %q at position %d", ch, p.pos)
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch >= '0' && ch <= '9' || ch == '.' {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) parseFunc() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && unicode.IsLetter(rune(p.input[p.pos])) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	fn, ok := calcFuncs[name]
	if !ok {
		return 0, fmt.Errorf("unknown function %q", name)
	}

	p.skipSpace()
	if p.peek() != '(' {
		return 0, fmt.Errorf("expected '(' after %s", name)
	}
	p.pos++

	var args []float64
	for {
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if p.peek() != ')' {
		return 0, fmt.Errorf("missing closing parenthesis in %s call", name)
	}
	p.pos++

	return fn(args)
}
