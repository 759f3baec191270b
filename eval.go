package wordcalc

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Context is a context for evaluating expressions. It is not safe to use a
// Context concurrently.
type Context struct {
	stack []*big.Float
	names map[string]*big.Float
	prec  uint
	err   error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  *big.Float
	}
	varsopt map[string]*big.Float
	precopt uint
)

func (varopt) ctxOption()  {}
func (varsopt) ctxOption() {}
func (precopt) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val *big.Float) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]*big.Float) ContextOption {
	return varsopt(vars)
}

// Prec sets the precision of calculations in bits.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{prec: 64}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. a missing variable definition or a division by zero, then the result
// is nil and ctx.Err returns the error.
func (ctx *Context) Eval(e *Expr) *big.Float {
	switch len(ctx.stack) {
	case 0: // do nothing
	case 1:
		// Keep the previous result valid for whoever holds it.
		ctx.stack[0] = new(big.Float).SetPrec(ctx.prec)
		ctx.stack = ctx.stack[:0]
	default:
		panic("wordcalc: Eval during Eval")
	}
	err := ctx.run(e.n)
	ctx.err = err
	if err != nil {
		ctx.stack = ctx.stack[:0]
		return nil
	}
	return ctx.Result()
}

// run evaluates n, converting arithmetic panics into errors.
func (ctx *Context) run(n *node) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var nan big.ErrNaN
		if e, ok := r.(error); ok && errors.As(e, &nan) {
			err = &DomainError{Op: "NaN", Msg: nan.Error()}
			return
		}
		panic(r)
	}()
	return n.eval(ctx)
}

// Exec executes a statement. For an assignment, the value is also bound to
// the statement's name in ctx, so later evaluations with ctx see it.
func (ctx *Context) Exec(st *Statement) (*big.Float, error) {
	if st.Expr == nil {
		panic("wordcalc: Exec of statement that failed to parse")
	}
	r := ctx.Eval(st.Expr)
	if r == nil {
		return nil, ctx.Err()
	}
	if st.Kind == StmtAssign {
		ctx.Set(st.Name, r)
	}
	return r, nil
}

// Result returns the result obtained after evaluating an expression. Panics if
// ctx has not been used to evaluate an expression. Returns nil if an error
// occurred during evaluation.
func (ctx *Context) Result() *big.Float {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("wordcalc: Context.Result called before evaluating any expression")
	case 1:
		return ctx.stack[0]
	default:
		panic("wordcalc: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the error that occurred while evaluating the last expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set sets the value of a variable. Returns ctx for chaining. Calling Set
// while the context is being used to evaluate an expression panics.
func (ctx *Context) Set(name string, value *big.Float) *Context {
	if len(ctx.stack) > 1 {
		panic("wordcalc: Set on in-use context")
	}
	if ctx.names == nil {
		ctx.names = make(map[string]*big.Float)
	}
	ctx.names[name] = new(big.Float).SetPrec(ctx.prec).Set(value)
	return ctx
}

// Lookup returns a copy of the value of a variable. If there is no such
// variable in the context, then the result is nil.
func (ctx *Context) Lookup(name string) *big.Float {
	v := ctx.names[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// Names returns the names of the variables set in the context, in no
// particular order.
func (ctx *Context) Names() []string {
	r := make([]string, 0, len(ctx.names))
	for k := range ctx.names {
		r = append(r, k)
	}
	return r
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Clone creates a copy of a context and applies options to it. The returned
// context has no Result and is safe to use to evaluate an expression.
// Assignments executed with the clone do not affect ctx.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack: make([]*big.Float, 0, cap(ctx.stack)),
		names: make(map[string]*big.Float, len(ctx.names)),
		prec:  ctx.prec,
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// Copy variables. Set always replaces the pointer, so with the same
	// precision we can share values.
	if n.prec == ctx.prec {
		for name, val := range ctx.names {
			n.names[name] = val
		}
	} else {
		for name, val := range ctx.names {
			n.names[name] = new(big.Float).SetPrec(n.prec).Set(val)
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = new(big.Float).SetPrec(n.prec).Set(opt.val)
		case varsopt:
			for k, v := range opt {
				n.names[k] = new(big.Float).SetPrec(n.prec).Set(v)
			}
		case precopt:
			// Already done. Do nothing.
		default:
			panic("wordcalc: unknown option type")
		}
	}
	return &n
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float).SetPrec(ctx.prec)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float).SetPrec(ctx.prec))
	}
	return ctx.stack[len(ctx.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		ctx.push().SetInt64(n.val)
		return nil
	case nodeName:
		v := ctx.names[n.name]
		if v == nil {
			return &NameError{Name: n.name}
		}
		ctx.push().Set(v)
		return nil
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
		return nil
	}
	if err := n.left.eval(ctx); err != nil {
		return err
	}
	if err := n.right.eval(ctx); err != nil {
		return err
	}
	r := ctx.pop()
	l := ctx.top()
	switch n.kind {
	case nodeAdd:
		l.Add(l, r)
	case nodeSub:
		l.Sub(l, r)
	case nodeMul:
		l.Mul(l, r)
	case nodeDiv:
		if r.Sign() == 0 {
			return &DomainError{X: new(big.Float).Copy(l), Op: "/", Msg: "division by zero"}
		}
		l.Quo(l, r)
	case nodePow:
		return pow(l, l, r)
	default:
		panic("wordcalc: invalid AST node " + n.kind.String())
	}
	return nil
}

// pow sets z to x**y. Integral exponents are computed by repeated squaring, so
// negative bases are allowed with them. z may alias x but not y.
func pow(z, x, y *big.Float) error {
	if y.IsInt() {
		if x.Sign() == 0 && y.Sign() < 0 {
			return &DomainError{X: new(big.Float).Copy(x), Op: "**", Msg: "zero to a negative power"}
		}
		if y.MantExp(nil) > int(z.Prec())+64 {
			// Such an exponent is even, and squaring any base other than ±1
			// reaches 0 or Inf long before its top bit.
			powabs(z, new(big.Float).Abs(x), y)
			return nil
		}
		powint(z, x, bigint(y))
		return nil
	}
	switch x.Sign() {
	case -1:
		return &DomainError{X: new(big.Float).Copy(x), Op: "**", Msg: "negative base with fractional exponent"}
	case 0:
		if y.Sign() < 0 {
			return &DomainError{X: new(big.Float).Copy(x), Op: "**", Msg: "zero to a negative power"}
		}
		z.SetInt64(0)
		return nil
	}
	powabs(z, x, y)
	return nil
}

// powabs sets z to x**y for positive x. y's integer part is raised by
// repeated squaring and only the fraction goes through bigfloat.Pow, which
// loses the result for large arguments. Infinities are resolved here.
func powabs(z, x, y *big.Float) {
	switch {
	case x.IsInf():
		if y.Sign() > 0 {
			z.SetInf(false)
		} else {
			z.SetInt64(0)
		}
	case y.IsInf(), y.IsInt():
		c := x.Cmp(big.NewFloat(1))
		switch {
		case c == 0:
			z.SetInt64(1)
		case (c > 0) == (y.Sign() > 0):
			z.SetInf(false)
		default:
			z.SetInt64(0)
		}
	default:
		n := bigint(y)
		f := new(big.Float).SetPrec(y.Prec()).SetInt(n)
		f.Sub(y, f)
		// Pow may return a different Float than the one it is given.
		r := bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), x, f)
		powint(z, x, n)
		z.Mul(z, r)
	}
}

// powint sets z to x**k. z may alias x.
func powint(z, x *big.Float, k *big.Int) {
	b := new(big.Float).SetPrec(z.Prec()).Set(x)
	e := new(big.Int).Abs(k)
	z.SetInt64(1)
	n := e.BitLen()
	for i := 0; i < n; i++ {
		if e.Bit(i) != 0 {
			z.Mul(z, b)
		}
		if i == n-1 {
			break
		}
		b.Mul(b, b)
		if b.IsInf() || b.Sign() == 0 {
			// Every higher power is the same, and the top bit is set.
			z.Mul(z, b)
			break
		}
		if b.Cmp(big.NewFloat(1)) == 0 {
			break
		}
	}
	if k.Sign() < 0 {
		z.Quo(new(big.Float).SetPrec(z.Prec()).SetInt64(1), z)
	}
}

// bigint returns the integer part of a finite float.
func bigint(x *big.Float) *big.Int {
	i, _ := x.Int(nil)
	return i
}

// Format formats a value the way the calculator prints it: integers in full
// without a decimal point, anything else in the shortest form that identifies
// the value at its precision. An integral value with more integer bits than
// its precision may have been rounded, so it is not printed in full.
func Format(v *big.Float) string {
	switch {
	case v.Sign() == 0:
		return "0"
	case v.IsInf():
		return v.String()
	case v.IsInt() && v.MantExp(nil) <= int(v.Prec()):
		return v.Text('f', 0)
	default:
		return v.Text('g', -1)
	}
}

// EvalString is a shortcut to parse and execute a one-line statement and
// return its value.
func EvalString(src string, opts ...ContextOption) (*big.Float, error) {
	ctx := NewContext(opts...)
	st, err := Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return ctx.Exec(st)
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// DomainError is an error from an operation applied to operands outside its
// domain.
type DomainError struct {
	// X is the left operand, if there is one.
	X *big.Float
	// Op is the operator.
	Op string
	// Msg describes the problem.
	Msg string
}

func (err *DomainError) Error() string {
	if err.X == nil {
		return "invalid operation " + err.Op + ": " + err.Msg
	}
	return "invalid operation " + Format(err.X) + " " + err.Op + ": " + err.Msg
}
