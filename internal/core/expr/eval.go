// Package expr evaluates the restricted arithmetic used by SY definitions and
// numeric card fields.
//
// Grammar, loosest binding first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "**" unary ]
//	primary = number | name | "(" expr ")"
//
// "**" is right-associative and binds tighter than a leading sign, so -2**2 is -4
// and 2**-1 is 0.5. Names must already be present in the symbol table.
package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
)

// EvaluationError describes why an expression was rejected.
type EvaluationError struct {
	Expr   string
	Pos    int
	Reason string
}

func newError(src string, pos int, reason string) *EvaluationError {
	return &EvaluationError{Expr: src, Pos: pos, Reason: reason}
}

func (e *EvaluationError) Error() string {
	if e.Pos < 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s at position %d", e.Reason, e.Pos)
}

// Evaluator is the ports.Evaluator backed by this package.
type Evaluator struct{}

// NewEvaluator returns an Evaluator.
func NewEvaluator() *Evaluator { return &Evaluator{} }

// Evaluate implements ports.Evaluator.
func (*Evaluator) Evaluate(expression string, table domain.SymbolTable) (float64, error) {
	return Evaluate(expression, table)
}

// Evaluate computes expression against table. Errors are always *EvaluationError.
func Evaluate(expression string, table domain.SymbolTable) (float64, error) {
	src := strings.TrimSpace(expression)
	if src == "" {
		return 0, newError(src, -1, "empty expression")
	}
	toks, err := lex(src)
	if err != nil {
		return 0, err
	}
	p := &evaluator{src: src, toks: toks, table: table}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return 0, newError(src, tok.pos, fmt.Sprintf("unexpected %s", describe(tok)))
	}
	if math.IsNaN(v) {
		return 0, newError(src, -1, "result is not a real number")
	}
	if math.IsInf(v, 0) {
		return 0, newError(src, -1, "result overflows")
	}
	return v, nil
}

// ToInt truncates v toward zero, rejecting values outside the int64 range.
func ToInt(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, newError("", -1, fmt.Sprintf("cannot convert %v to integer", v))
	}
	t := math.Trunc(v)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, newError("", -1, fmt.Sprintf("value %v out of integer range", v))
	}
	return int64(t), nil
}

func describe(tok token) string {
	if tok.kind == tokNumber || tok.kind == tokIdent {
		return fmt.Sprintf("%s %q", tok.kind, tok.text)
	}
	return tok.kind.String()
}

type evaluator struct {
	src   string
	toks  []token
	pos   int
	table domain.SymbolTable
}

func (p *evaluator) peek() token { return p.toks[p.pos] }

func (p *evaluator) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *evaluator) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op.kind != tokPlus && op.kind != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op.kind == tokPlus {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *evaluator) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op.kind != tokStar && op.kind != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op.kind == tokStar {
			left *= right
			continue
		}
		if right == 0 {
			return 0, newError(p.src, op.pos, "division by zero")
		}
		left /= right
	}
}

func (p *evaluator) unary() (float64, error) {
	switch p.peek().kind {
	case tokPlus:
		p.next()
		return p.unary()
	case tokMinus:
		p.next()
		v, err := p.unary()
		return -v, err
	}
	return p.power()
}

func (p *evaluator) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	op := p.next()
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	if base == 0 && exp < 0 {
		return 0, newError(p.src, op.pos, "zero cannot be raised to a negative power")
	}
	return math.Pow(base, exp), nil
}

func (p *evaluator) primary() (float64, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return tok.value, nil
	case tokIdent:
		v, ok := p.table[tok.text]
		if !ok {
			return 0, newError(p.src, tok.pos, fmt.Sprintf("unknown symbol %q", tok.text))
		}
		return v, nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return 0, newError(p.src, closing.pos, fmt.Sprintf("expected ')' but found %s", describe(closing)))
		}
		return v, nil
	}
	return 0, newError(p.src, tok.pos, fmt.Sprintf("unexpected %s", describe(tok)))
}
