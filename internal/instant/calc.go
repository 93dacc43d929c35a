package instant

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	errSyntax         = errors.New("syntax error")
	errDivisionByZero = errors.New("division by zero")
)

var calcFuncs = map[string]func(float64) float64{
	"sqrt": math.Sqrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"log":  math.Log10,
	"ln":   math.Log,
	"abs":  math.Abs,
}

var calcConsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type tokenKind int

const (
	tokNum tokenKind = iota
	tokOp
	tokLParen
	tokRParen
	tokIdent
)

type token struct {
	kind tokenKind
	num  float64
	text string
}

// Calculate evaluates an arithmetic expression. ok is false when the input
// is not a calculation: unknown tokens, no operator or function, a bad
// result (division by zero, NaN, Inf).
func Calculate(expr string) (result float64, ok bool) {
	expr = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(expr), "="))
	if expr == "" {
		return 0, false
	}

	tokens, err := tokenize(expr)
	if err != nil {
		return 0, false
	}

	p := &parser{tokens: tokens}
	v, err := p.expr()
	if err != nil || p.pos != len(p.tokens) || !p.operated {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v with at most 12 significant digits.
func FormatNumber(v float64) string {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	if err != nil {
		r = v
	}
	if r == 0 {
		return "0"
	}
	if a := math.Abs(r); a >= 1e15 || a < 1e-6 {
		return strconv.FormatFloat(r, 'g', -1, 64)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func tokenize(s string) ([]token, error) {
	var out []token
	rs := []rune(s)
	for i := 0; i < len(rs); {
		c := rs[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || c == '.':
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(string(rs[i:j]), 64)
			if err != nil {
				return nil, errSyntax
			}
			out = append(out, token{kind: tokNum, num: n})
			i = j
		case strings.ContainsRune("+-*/%^", c):
			out = append(out, token{kind: tokOp, text: string(c)})
			i++
		case c == '×' || c == 'x' && i > 0 && i+1 < len(rs) && !unicode.IsLetter(rs[i+1]) && !unicode.IsLetter(rs[i-1]):
			out = append(out, token{kind: tokOp, text: "*"})
			i++
		case c == '÷':
			out = append(out, token{kind: tokOp, text: "/"})
			i++
		case c == '(':
			out = append(out, token{kind: tokLParen})
			i++
		case c == ')':
			out = append(out, token{kind: tokRParen})
			i++
		case unicode.IsLetter(c):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			name := strings.ToLower(string(rs[i:j]))
			if _, fn := calcFuncs[name]; !fn {
				if _, cst := calcConsts[name]; !cst {
					return nil, errSyntax
				}
			}
			out = append(out, token{kind: tokIdent, text: name})
			i = j
		default:
			return nil, errSyntax
		}
	}
	return out, nil
}

// parser is a recursive descent evaluator:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/" | "%") unary }
//	unary  = "-" unary | "+" unary | power
//	power  = atom [ "^" unary ]
//	atom   = number | const | func "(" expr ")" | "(" expr ")"
type parser struct {
	tokens   []token
	pos      int
	operated bool // a binary operator or function was applied
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) peekOp(ops string) (string, bool) {
	t, ok := p.peek()
	if !ok || t.kind != tokOp || !strings.Contains(ops, t.text) {
		return "", false
	}
	return t.text, true
}

func (p *parser) expr() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("+-")
		if !ok {
			return v, nil
		}
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		p.operated = true
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *parser) term() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("*/%")
		if !ok {
			return v, nil
		}
		p.pos++
		rhs, err := p.unary()
		if err != nil {
			return 0, err
		}
		p.operated = true
		switch op {
		case "*":
			v *= rhs
		case "/":
			if rhs == 0 {
				return 0, errDivisionByZero
			}
			v /= rhs
		case "%":
			if rhs == 0 {
				return 0, errDivisionByZero
			}
			v = math.Mod(v, rhs)
		}
	}
}

func (p *parser) unary() (float64, error) {
	if op, ok := p.peekOp("+-"); ok {
		p.pos++
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.power()
}

func (p *parser) power() (float64, error) {
	base, err := p.atom()
	if err != nil {
		return 0, err
	}
	if _, ok := p.peekOp("^"); !ok {
		return base, nil
	}
	p.pos++
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	p.operated = true
	return math.Pow(base, exp), nil
}

func (p *parser) atom() (float64, error) {
	t, ok := p.peek()
	if !ok {
		return 0, errSyntax
	}
	p.pos++

	switch t.kind {
	case tokNum:
		return t.num, nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokRParen); err != nil {
			return 0, err
		}
		return v, nil
	case tokIdent:
		if c, ok := calcConsts[t.text]; ok {
			return c, nil
		}
		fn := calcFuncs[t.text]
		if err := p.expect(tokLParen); err != nil {
			return 0, err
		}
		arg, err := p.expr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokRParen); err != nil {
			return 0, err
		}
		p.operated = true
		return fn(arg), nil
	}
	return 0, errSyntax
}

func (p *parser) expect(kind tokenKind) error {
	t, ok := p.peek()
	if !ok || t.kind != kind {
		return errSyntax
	}
	p.pos++
	return nil
}
