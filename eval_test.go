package wordcalc_test

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/zephyrtronium/wordcalc"
)

func TestEval(t *testing.T) {
	type vv struct {
		n string
		v float64
	}
	type vc struct {
		vars []vv
		r    float64
	}
	cases := []struct {
		name string
		src  string
		r    []vc
	}{
		{"num", "1", []vc{{nil, 1}}},
		{"word", "seven", []vc{{nil, 7}}},
		{"numeral", "Nineteen Hundred Eighty Four", []vc{{nil, 1984}}},
		{"ident", "x", []vc{
			{[]vv{{"x", 4}}, 4},
			{[]vv{{"x", 5}}, 5},
			{[]vv{{"x", 6}}, 6},
		}},
		{"neg", "-x", []vc{
			{[]vv{{"x", 4}}, -4},
			{[]vv{{"x", 5}}, -5},
			{[]vv{{"x", -6}}, 6},
		}},
		{"add", "4+5+6", []vc{{nil, 4 + 5 + 6}}},
		{"sub", "4-5-6", []vc{{nil, 4 - 5 - 6}}},
		{"mul", "4*5*6", []vc{{nil, 4 * 5 * 6}}},
		{"div", "4/5/8", []vc{{nil, 4.0 / 5.0 / 8.0}}},
		{"div-real", "7/2", []vc{{nil, 3.5}}},
		{"pow-left", "2**3**2", []vc{{nil, 64}}},
		{"pow-word", "two exp three exp two", []vc{{nil, 64}}},
		{"neg-pow", "-2**2", []vc{{nil, 4}}},
		{"neg-pow-odd", "-2**3", []vc{{nil, -8}}},
		{"neg-group-pow", "-(2**2)", []vc{{nil, -4}}},
		{"pow-neg", "2**-2", []vc{{nil, 0.25}}},
		{"pow-zero", "0**0", []vc{{nil, 1}}},
		{"pow-mul", "2*3**2", []vc{{nil, 18}}},
		{"words", "3 plus 4", []vc{{nil, 7}}},
		{"group", "(1+2)*3", []vc{{nil, 9}}},
		{"prec", "1+2*3", []vc{{nil, 7}}},
		{"mixed", "one hundred divide eight", []vc{{nil, 12.5}}},
		{"square", "x exp two", []vc{
			{[]vv{{"x", 3}}, 9},
			{[]vv{{"x", -3}}, 9},
			{[]vv{{"x", 0.5}}, 0.25},
		}},
		{"assign", "y = x times ten", []vc{
			{[]vv{{"x", 2}}, 20},
		}},
	}
	ctx := wordcalc.NewContext(wordcalc.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st, err := wordcalc.ParseString(c.src)
			if err != nil {
				t.Fatal(c.src, "failed to parse:", err)
			}
			for _, v := range c.r {
				ctx := ctx.Clone()
				for _, x := range v.vars {
					ctx.Set(x.n, new(big.Float).SetFloat64(x.v))
				}
				r, err := ctx.Exec(st)
				if err != nil {
					t.Error("evaluation error:", err)
				}
				if r == nil {
					t.Fatal("nil result")
				}
				if q := ctx.Result(); r.Cmp(q) != 0 {
					t.Errorf("different results: Exec returned %g, Result returned %g", r, q)
				}
				if f, _ := r.Float64(); f != v.r {
					t.Errorf("wrong result: want %g, got %g", v.r, r)
				}
			}
		})
	}
}

func TestEvalLargePow(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
		exp  int
	}{
		{"half-step", "2 ** (20001/2)", "2**10000 * 2**(1/2)", 10001},
		{"half-step-far", "2 ** (2000001/2)", "2**1000000 * 2**(1/2)", 1000001},
		{"small-base", "(1/2) ** (2000001/2)", "(1/2)**1000000 * (1/2)**(1/2)", -1000000},
		{"neg-frac", "2 ** (-20001/2)", "2**-10000 * 2**(-1/2)", -10000},
		{"control", "2 ** (2001/2)", "2**1000 * 2**(1/2)", 1001},
	}
	tol := new(big.Float).SetMantExp(big.NewFloat(1), -56)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := wordcalc.EvalString(c.src)
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			want, err := wordcalc.EvalString(c.want)
			if err != nil {
				t.Fatalf("%q failed: %v", c.want, err)
			}
			if r.Sign() <= 0 {
				t.Fatalf("%q gave non-positive %g", c.src, r)
			}
			if e := r.MantExp(nil); e != c.exp {
				t.Errorf("%q has binary exponent %d, want %d (%g)", c.src, e, c.exp, r)
			}
			d := new(big.Float).Sub(r, want)
			d.Quo(d, want).Abs(d)
			if d.Cmp(tol) > 0 {
				t.Errorf("%q = %g, want %g", c.src, r, want)
			}
		})
	}
}

func TestEvalPowOverflow(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"2 ** 100000000000", "+Inf"},
		{"(1/2) ** 100000000000", "0"},
		{"-1 ** 100000000001", "-1"},
		{"1 ** (2 ** 200)", "1"},
		{"3 ** (2 ** 200)", "+Inf"},
		{"3 ** -(2 ** 200)", "0"},
		{"2 ** (2**40 + 1/2)", "+Inf"},
	}
	for _, c := range cases {
		r, err := wordcalc.EvalString(c.src)
		if err != nil {
			t.Errorf("%q failed: %v", c.src, err)
			continue
		}
		if got := wordcalc.Format(r); got != c.want {
			t.Errorf("%q formatted as %q, want %q", c.src, got, c.want)
		}
	}
}

func TestEvalUndefNames(t *testing.T) {
	cases := []struct {
		name string
		src  string
		r    []string
	}{
		{"x", "x", []string{"x"}},
		{"neg", "-x", []string{"x"}},
		{"add-lhs", "x+1", []string{"x"}},
		{"add-rhs", "1+x", []string{"x"}},
		{"sub-lhs", "x-1", []string{"x"}},
		{"sub-rhs", "1-x", []string{"x"}},
		{"mul-lhs", "x*1", []string{"x"}},
		{"mul-rhs", "1*x", []string{"x"}},
		{"div-lhs", "x/1", []string{"x"}},
		{"div-rhs", "1/x", []string{"x"}},
		{"pow-lhs", "x**1", []string{"x"}},
		{"pow-rhs", "1**x", []string{"x"}},
		{"group", "(x plus two)", []string{"x"}},
		{"assign", "y = x", []string{"x"}},
	}
	ure := regexp.MustCompile(`(?i)\bundef`)
	vre := regexp.MustCompile(`(?i)\bvar`)
	ctx := wordcalc.NewContext(wordcalc.Prec(64))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st, err := wordcalc.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if v := st.Expr.Vars(); !reflect.DeepEqual(c.r, v) {
				t.Errorf("%q gave wrong variables: want %q, got %q", c.src, c.r, v)
			}
			r, err := ctx.Exec(st)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %g", c.src, r)
			}
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			if err != ctx.Err() {
				t.Errorf("Exec error %v differs from Err %v", err, ctx.Err())
			}
			var u *wordcalc.NameError
			if !errors.As(err, &u) {
				t.Fatalf("error was %#v, not NameError", err)
			}
			msg := err.Error()
			if !ure.MatchString(msg) {
				t.Errorf(`%q doesn't mention "undef"`, msg)
			}
			if !vre.MatchString(msg) {
				t.Errorf(`%q doesn't mention "var"`, msg)
			}
			for _, v := range c.r {
				if v == u.Name {
					xre := regexp.MustCompile(`\b` + v + `\b`)
					if !xre.MatchString(msg) {
						t.Errorf(`%q doesn't mention %q`, msg, v)
					}
					return
				}
			}
			t.Errorf("NameError on %q, not in %q", u.Name, c.r)
		})
	}
}

func TestEvalOpError(t *testing.T) {
	cases := []struct {
		name string
		src  string
		op   string
	}{
		{"div-zero", "1/0", "/"},
		{"div-zero-zero", "0/0", "/"},
		{"div-word", "one divide zero", "/"},
		{"div-neg-zero", "5/-0", "/"},
		{"div-expr", "1/(2-2)", "/"},
		{"pow-zero-neg", "0**-1", "**"},
		{"pow-zero-neg-frac", "0**(-1/2)", "**"},
		{"pow-neg-frac", "(-1)**(1/2)", "**"},
		{"pow-neg-frac-word", "minus eight exp (one divide three)", "**"},
		{"nested", "1 + 2 * (3 / 0)", "/"},
	}
	ctx := wordcalc.NewContext()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := ctx.Clone()
			st, err := wordcalc.ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			r, err := ctx.Exec(st)
			if r != nil {
				t.Errorf("evaluating %q gave non-nil result %g", c.src, r)
			}
			if err == nil {
				t.Fatalf("evaluating %q gave no error", c.src)
			}
			var de *wordcalc.DomainError
			if !errors.As(err, &de) {
				t.Fatalf("%#v is not *wordcalc.DomainError", err)
			}
			if de.Op != c.op {
				t.Errorf("error on operator %q, want %q", de.Op, c.op)
			}
		})
	}
}

func TestEvalAfterError(t *testing.T) {
	ctx := wordcalc.NewContext()
	bad, err := wordcalc.ParseString("2 * (1 + 1/0)")
	if err != nil {
		t.Fatal(err)
	}
	good, err := wordcalc.ParseString("2 * (1 + 1/2)")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Exec(bad); err == nil {
		t.Fatal("no error from division by zero")
	}
	r, err := ctx.Exec(good)
	if err != nil {
		t.Fatalf("error after recovering: %v", err)
	}
	if got := wordcalc.Format(r); got != "3" {
		t.Errorf("wrong result after error: want 3, got %s", got)
	}
	if ctx.Err() != nil {
		t.Errorf("stale error %v", ctx.Err())
	}
}

func TestExecAssign(t *testing.T) {
	ctx := wordcalc.NewContext()
	exec := func(ctx *wordcalc.Context, src string) *big.Float {
		t.Helper()
		st, err := wordcalc.ParseString(src)
		if err != nil {
			t.Fatalf("%q failed to parse: %v", src, err)
		}
		r, err := ctx.Exec(st)
		if err != nil {
			t.Fatalf("%q failed to evaluate: %v", src, err)
		}
		return r
	}
	if r := exec(ctx, "x = two plus three"); wordcalc.Format(r) != "5" {
		t.Errorf("assignment value should be 5, got %g", r)
	}
	if x := ctx.Lookup("x"); x == nil || wordcalc.Format(x) != "5" {
		t.Errorf("x should be 5, got %v", x)
	}
	if r := exec(ctx, "x times 2"); wordcalc.Format(r) != "10" {
		t.Errorf("x times 2 should be 10, got %g", r)
	}
	if r := exec(ctx, "x equals x exp two"); wordcalc.Format(r) != "25" {
		t.Errorf("reassignment should be 25, got %g", r)
	}

	clone := ctx.Clone()
	exec(clone, "x = 1")
	exec(clone, "y = 2")
	if x := ctx.Lookup("x"); wordcalc.Format(x) != "25" {
		t.Errorf("assignment in clone changed x to %v", x)
	}
	if y := ctx.Lookup("y"); y != nil {
		t.Errorf("assignment in clone set y to %v", y)
	}
}

func TestContextVars(t *testing.T) {
	zero := new(big.Float)
	one := new(big.Float).SetFloat64(1)
	ctx := wordcalc.NewContext(wordcalc.Prec(64), wordcalc.SetVar("x", zero))
	if x := ctx.Lookup("x"); x == nil || x.Cmp(zero) != 0 {
		t.Errorf("x should be %[1]v at %[1]p but is %[2]v at %[2]p", zero, x)
	}
	if y := ctx.Lookup("y"); y != nil {
		t.Errorf("context has y: %[1]v at %[1]p", y)
	}
	ctx.Set("y", one)
	if x := ctx.Lookup("x"); x == nil || x.Cmp(zero) != 0 {
		t.Errorf("x should be %[1]v at %[1]p but is %[2]v at %[2]p", zero, x)
	}
	if y := ctx.Lookup("y"); y == nil || y.Cmp(one) != 0 {
		t.Errorf("y should be %[1]v at %[1]p but is %[2]v at %[2]p", one, y)
	}
	ctx.Set("x", one)
	if x := ctx.Lookup("x"); x == nil || x.Cmp(one) != 0 {
		t.Errorf("x should be %[1]v at %[1]p but is %[2]v at %[2]p", one, x)
	}
	if y := ctx.Lookup("y"); y == nil || y.Cmp(one) != 0 {
		t.Errorf("y should be %[1]v at %[1]p but is %[2]v at %[2]p", zero, y)
	}
	names := ctx.Names()
	if len(names) != 2 {
		t.Errorf("wrong names %q", names)
	}
}

func TestContextPrec(t *testing.T) {
	ctx := wordcalc.NewContext(wordcalc.SetVars(map[string]*big.Float{"x": big.NewFloat(1)}))
	if ctx.Prec() != 64 {
		t.Errorf("default precision should be 64, got %d", ctx.Prec())
	}
	wide := ctx.Clone(wordcalc.Prec(256), wordcalc.Prec(200))
	if wide.Prec() != 200 {
		t.Errorf("last precision should win, got %d", wide.Prec())
	}
	if x := wide.Lookup("x"); x == nil || x.Prec() != 200 {
		t.Errorf("x should have been rounded to the clone's precision, got %v", x)
	}
	r, err := wordcalc.EvalString("1/3", wordcalc.Prec(200))
	if err != nil {
		t.Fatal(err)
	}
	if r.Prec() != 200 {
		t.Errorf("result has precision %d, want 200", r.Prec())
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"0", "0"},
		{"-0", "0"},
		{"7/2", "3.5"},
		{"-7/2", "-3.5"},
		{"2**3**2", "64"},
		{"-2**2", "4"},
		{"2**-2", "0.25"},
		{"1000000 * 1000000", "1000000000000"},
		{"2**60", "1152921504606846976"},
		{"2**64", "1.8446744073709551616e+19"},
		{"nine hundred ninety nine thousand nine hundred ninety nine plus one", "1000000"},
	}
	for _, c := range cases {
		r, err := wordcalc.EvalString(c.src)
		if err != nil {
			t.Errorf("%q failed: %v", c.src, err)
			continue
		}
		if got := wordcalc.Format(r); got != c.want {
			t.Errorf("%q formatted as %q, want %q", c.src, got, c.want)
		}
	}
	r, err := wordcalc.EvalString("1/3")
	if err != nil {
		t.Fatal(err)
	}
	if got := wordcalc.Format(r); !strings.HasPrefix(got, "0.33333333333333") {
		t.Errorf("1/3 formatted as %q", got)
	}

	// Integers wider than the precision are rounded and must not print as
	// exact digits.
	rounded := []struct {
		src    string
		exact  string
		suffix string
	}{
		{"99999999999 * 99999999999", "9999999999800000000001", "e+21"},
		{"3 ** 41", "36472996377170786403", "e+19"},
		{"2 ** 100", "1267650600228229401496703205376", "e+30"},
	}
	for _, c := range rounded {
		r, err := wordcalc.EvalString(c.src)
		if err != nil {
			t.Errorf("%q failed: %v", c.src, err)
			continue
		}
		got := wordcalc.Format(r)
		if got == c.exact || !strings.HasSuffix(got, c.suffix) {
			t.Errorf("%q formatted as %q", c.src, got)
		}
	}
	r, err = wordcalc.EvalString("99999999999 * 99999999999", wordcalc.Prec(128))
	if err != nil {
		t.Fatal(err)
	}
	if got := wordcalc.Format(r); got != "9999999999800000000001" {
		t.Errorf("wide product formatted as %q", got)
	}
}

func TestEvalStringErrors(t *testing.T) {
	_, err := wordcalc.EvalString("1 +")
	var se *wordcalc.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("want *SyntaxError, got %#v", err)
	}
	_, err = wordcalc.EvalString("five hundred hundred")
	var me *wordcalc.MalformedNumeralError
	if !errors.As(err, &me) {
		t.Errorf("want *MalformedNumeralError, got %#v", err)
	}
	var ie wordcalc.InputError
	if !errors.As(err, &ie) || ie.Pos() != 1 {
		t.Errorf("want InputError at 1, got %#v", err)
	}
}

func BenchmarkEval(b *testing.B) {
	vars := map[string]*big.Float{
		"x": big.NewFloat(2),
		"y": big.NewFloat(3),
		"z": big.NewFloat(4),
	}
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		ctx := wordcalc.NewContext(wordcalc.Prec(64))
		st, err := wordcalc.ParseString("two plus three plus four")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Clone().Exec(st)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		ctx := wordcalc.NewContext(wordcalc.SetVars(vars), wordcalc.Prec(64))
		st, err := wordcalc.ParseString("x+y+z")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Clone().Exec(st)
		}
	})
	b.Run("pow", func(b *testing.B) {
		b.ReportAllocs()
		ctx := wordcalc.NewContext(wordcalc.Prec(64))
		st, err := wordcalc.ParseString("x = 3 ** 40 / 7")
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ctx.Exec(st)
		}
	})
}

func Example() {
	ctx := wordcalc.NewContext()
	for _, line := range []string{
		"Two Hundred Fifty plus 3",
		"2 ** 3 ** 2",
		"-2 ** 2",
		"seven divide two",
		"x = one thousand two hundred",
		"x minus 200",
	} {
		st, err := wordcalc.ParseString(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		r, err := ctx.Exec(st)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("%-30s %s %s\n", line, st.Kind, wordcalc.Format(r))
	}

	// Output:
	// Two Hundred Fifty plus 3       evaluate 253
	// 2 ** 3 ** 2                    evaluate 64
	// -2 ** 2                        evaluate 4
	// seven divide two               evaluate 3.5
	// x = one thousand two hundred   assign 1200
	// x minus 200                    evaluate 1000
}
