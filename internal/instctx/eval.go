package instctx

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Evaluator computes the value of a call in a context.
type Evaluator interface {
	Eval(c *Context, call Call) (float64, error)
}

var (
	ErrUndefined = errors.New("undefined name")
	ErrSyntax    = errors.New("malformed expression")
	ErrDepth     = errors.New("expression nesting too deep")
)

// maxDepth bounds recursion through parameters and function bodies.
const maxDepth = 64

// Numeric evaluates arithmetic expressions over the parameters and user
// functions of a context. It knows the usual math built-ins; anything else
// is an error.
type Numeric struct{}

func (Numeric) Eval(c *Context, call Call) (float64, error) {
	e := &evaluator{ctx: c, busy: map[string]bool{}}
	return e.eval(call.Expr, nil, 0)
}

type evaluator struct {
	ctx  *Context
	busy map[string]bool
}

func (e *evaluator) eval(text string, locals map[string]float64, depth int) (float64, error) {
	if depth > maxDepth {
		return 0, ErrDepth
	}
	p := &parser{src: strings.ToUpper(text), e: e, locals: locals, depth: depth}
	v, err := p.ternary()
	if err != nil {
		return 0, err
	}
	p.skip()
	if p.pos < len(p.src) {
		return 0, fmt.Errorf("%w: unexpected %q in %s", ErrSyntax, p.src[p.pos:], text)
	}
	return v, nil
}

func (e *evaluator) param(name string, depth int) (float64, error) {
	v, ok := e.ctx.Params.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUndefined, name)
	}
	if e.busy[name] {
		return 0, fmt.Errorf("%w: %s refers to itself", ErrSyntax, name)
	}
	e.busy[name] = true
	defer delete(e.busy, name)
	return e.eval(v, nil, depth+1)
}

// parser is a recursive descent parser evaluating while it reads.
type parser struct {
	src    string
	pos    int
	e      *evaluator
	locals map[string]float64
	depth  int
}

func (p *parser) skip() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\'') {
		p.pos++
	}
}

func (p *parser) accept(op string) bool {
	p.skip()
	if strings.HasPrefix(p.src[p.pos:], op) {
		p.pos += len(op)
		return true
	}
	return false
}

func (p *parser) ternary() (float64, error) {
	cond, err := p.or()
	if err != nil || !p.accept("?") {
		return cond, err
	}
	a, err := p.ternary()
	if err != nil {
		return 0, err
	}
	if !p.accept(":") {
		return 0, fmt.Errorf("%w: ternary without ':'", ErrSyntax)
	}
	b, err := p.ternary()
	if err != nil {
		return 0, err
	}
	if cond != 0 {
		return a, nil
	}
	return b, nil
}

func (p *parser) or() (float64, error) {
	l, err := p.and()
	for err == nil && p.accept("||") {
		var r float64
		if r, err = p.and(); err == nil {
			l = truth(l != 0 || r != 0)
		}
	}
	return l, err
}

func (p *parser) and() (float64, error) {
	l, err := p.compare()
	for err == nil && p.accept("&&") {
		var r float64
		if r, err = p.compare(); err == nil {
			l = truth(l != 0 && r != 0)
		}
	}
	return l, err
}

func (p *parser) compare() (float64, error) {
	l, err := p.sum()
	if err != nil {
		return 0, err
	}
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		if !p.accept(op) {
			continue
		}
		r, err := p.sum()
		if err != nil {
			return 0, err
		}
		switch op {
		case "==":
			return truth(l == r), nil
		case "!=":
			return truth(l != r), nil
		case "<=":
			return truth(l <= r), nil
		case ">=":
			return truth(l >= r), nil
		case "<":
			return truth(l < r), nil
		default:
			return truth(l > r), nil
		}
	}
	return l, nil
}

func (p *parser) sum() (float64, error) {
	l, err := p.product()
	for err == nil {
		var r float64
		switch {
		case p.accept("+"):
			if r, err = p.product(); err == nil {
				l += r
			}
		case p.accept("-"):
			if r, err = p.product(); err == nil {
				l -= r
			}
		default:
			return l, nil
		}
	}
	return l, err
}

func (p *parser) product() (float64, error) {
	l, err := p.power()
	for err == nil {
		var r float64
		p.skip()
		// '**' belongs to power
		if strings.HasPrefix(p.src[p.pos:], "**") {
			return l, nil
		}
		switch {
		case p.accept("*"):
			if r, err = p.power(); err == nil {
				l *= r
			}
		case p.accept("/"):
			if r, err = p.power(); err == nil {
				l /= r
			}
		default:
			return l, nil
		}
	}
	return l, err
}

func (p *parser) power() (float64, error) {
	base, err := p.unary()
	if err != nil {
		return 0, err
	}
	if p.accept("**") || p.accept("^") {
		exp, err := p.power()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) unary() (float64, error) {
	switch {
	case p.accept("-"):
		v, err := p.unary()
		return -v, err
	case p.accept("+"):
		return p.unary()
	case p.accept("!"):
		v, err := p.unary()
		return truth(v == 0), err
	}
	return p.primary()
}

func (p *parser) primary() (float64, error) {
	p.skip()
	if p.pos >= len(p.src) {
		return 0, fmt.Errorf("%w: unexpected end", ErrSyntax)
	}
	ch := p.src[p.pos]
	switch {
	case ch == '(' || ch == '{':
		closer := ")"
		if ch == '{' {
			closer = "}"
		}
		p.pos++
		v, err := p.ternary()
		if err != nil {
			return 0, err
		}
		if !p.accept(closer) {
			return 0, fmt.Errorf("%w: missing %s", ErrSyntax, closer)
		}
		return v, nil
	case isDigit(ch) || ch == '.':
		return p.number()
	case isIdentStart(ch):
		start := p.pos
		for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
			p.pos++
		}
		name := p.src[start:p.pos]
		if p.accept("(") {
			return p.call(name)
		}
		if v, ok := p.locals[name]; ok {
			return v, nil
		}
		if name == "PI" {
			return math.Pi, nil
		}
		return p.e.param(name, p.depth)
	}
	return 0, fmt.Errorf("%w: unexpected %q", ErrSyntax, ch)
}

func (p *parser) call(name string) (float64, error) {
	var args []float64
	if !p.accept(")") {
		for {
			v, err := p.ternary()
			if err != nil {
				return 0, err
			}
			args = append(args, v)
			if p.accept(")") {
				break
			}
			if !p.accept(",") {
				return 0, fmt.Errorf("%w: expected ',' in call of %s", ErrSyntax, name)
			}
		}
	}
	if fn, ok := p.e.ctx.Funcs[name]; ok {
		if len(args) != len(fn.Args) {
			return 0, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSyntax, name, len(fn.Args), len(args))
		}
		locals := make(map[string]float64, len(args))
		for i, a := range fn.Args {
			locals[a] = args[i]
		}
		return p.e.eval(fn.Body, locals, p.depth+1)
	}
	return builtin(name, args)
}

func builtin(name string, args []float64) (float64, error) {
	one := func(f func(float64) float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%w: %s takes one argument", ErrSyntax, name)
		}
		return f(args[0]), nil
	}
	two := func(f func(a, b float64) float64) (float64, error) {
		if len(args) != 2 {
			return 0, fmt.Errorf("%w: %s takes two arguments", ErrSyntax, name)
		}
		return f(args[0], args[1]), nil
	}
	switch name {
	case "ABS":
		return one(math.Abs)
	case "SQRT":
		return one(math.Sqrt)
	case "EXP":
		return one(math.Exp)
	case "LOG", "LN":
		return one(math.Log)
	case "LOG10":
		return one(math.Log10)
	case "SIN":
		return one(math.Sin)
	case "COS":
		return one(math.Cos)
	case "TAN":
		return one(math.Tan)
	case "ATAN":
		return one(math.Atan)
	case "SINH":
		return one(math.Sinh)
	case "COSH":
		return one(math.Cosh)
	case "TANH":
		return one(math.Tanh)
	case "INT":
		return one(math.Trunc)
	case "FLOOR":
		return one(math.Floor)
	case "CEIL":
		return one(math.Ceil)
	case "SGN", "SIGN":
		if len(args) == 2 {
			return math.Copysign(math.Abs(args[0]), args[1]), nil
		}
		return one(func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			}
			return 0
		})
	case "MIN":
		return two(math.Min)
	case "MAX":
		return two(math.Max)
	case "POW", "PWR":
		return two(math.Pow)
	case "ATAN2":
		return two(math.Atan2)
	case "LIMIT":
		if len(args) != 3 {
			return 0, fmt.Errorf("%w: LIMIT takes three arguments", ErrSyntax)
		}
		return math.Max(args[1], math.Min(args[2], args[0])), nil
	case "IF":
		if len(args) != 3 {
			return 0, fmt.Errorf("%w: IF takes three arguments", ErrSyntax)
		}
		if args[0] != 0 {
			return args[1], nil
		}
		return args[2], nil
	}
	return 0, fmt.Errorf("%w: function %s", ErrUndefined, name)
}

// siScale maps unit suffixes to multipliers; longer suffixes first.
var siScale = []struct {
	suffix string
	scale  float64
}{
	{"MEG", 1e6}, {"MIL", 25.4e-6},
	{"T", 1e12}, {"G", 1e9}, {"X", 1e6}, {"K", 1e3}, {"M", 1e-3},
	{"U", 1e-6}, {"N", 1e-9}, {"P", 1e-12}, {"F", 1e-15}, {"A", 1e-18},
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == 'E' {
		k := p.pos + 1
		if k < len(p.src) && (p.src[k] == '+' || p.src[k] == '-') {
			k++
		}
		if k < len(p.src) && isDigit(p.src[k]) {
			for k < len(p.src) && isDigit(p.src[k]) {
				k++
			}
			p.pos = k
		}
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q", ErrSyntax, p.src[start:p.pos])
	}
	unit := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	letters := p.src[unit:p.pos]
	for _, s := range siScale {
		if strings.HasPrefix(letters, s.suffix) {
			return v * s.scale, nil
		}
	}
	// plain unit letters such as V or HZ
	return v, nil
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func isDigit(ch byte) bool      { return ch >= '0' && ch <= '9' }
func isLetter(ch byte) bool     { return ch >= 'A' && ch <= 'Z' || ch >= 'a' && ch <= 'z' }
func isIdentStart(ch byte) bool { return isLetter(ch) || ch == '_' }
func isIdentPart(ch byte) bool  { return isIdentStart(ch) || isDigit(ch) || ch == '.' }
