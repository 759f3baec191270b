package wordcalc

import (
	"errors"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// StatementKind is the form of a statement.
type StatementKind int8

const (
	// StmtEvaluate is a bare expression whose value is reported.
	StmtEvaluate StatementKind = iota
	// StmtAssign is "name = expression".
	StmtAssign
)

func (k StatementKind) String() string {
	switch k {
	case StmtEvaluate:
		return "evaluate"
	case StmtAssign:
		return "assign"
	default:
		return "invalid"
	}
}

// Statement is one parsed input line.
type Statement struct {
	// Kind is the form of the statement.
	Kind StatementKind
	// Name is the assigned name for StmtAssign.
	Name string
	// Expr is the expression to evaluate. It is nil if parsing failed.
	Expr *Expr
	// Diagnostics holds the recoverable problems found while lexing the
	// line, such as illegal characters, as a *multierror.Error. It is nil if
	// there were none.
	Diagnostics error
}

// Warnings returns the individual diagnostics of the statement.
func (st *Statement) Warnings() []error {
	var merr *multierror.Error
	if errors.As(st.Diagnostics, &merr) {
		return merr.WrappedErrors()
	}
	if st.Diagnostics != nil {
		return []error{st.Diagnostics}
	}
	return nil
}

// Parse parses one line into a statement. The given options are applied in
// order.
//
// The returned statement is never nil, even when the error is not, so that
// its Diagnostics remain available. A statement with a nil error has a
// non-nil Expr.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Statement, error) {
	p := parsectx{
		names: make(map[string]bool),
	}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	st := new(Statement)
	toks, diags, err := scanall(lex(src))
	st.Diagnostics = diags.ErrorOrNil()
	if err != nil {
		return st, err
	}
	p.debug("lexed", logrus.Fields{"tokens": toks, "diagnostics": len(st.Warnings())})
	toks, err = reduce(toks)
	if err != nil {
		return st, err
	}
	p.debug("reduced numerals", logrus.Fields{"tokens": toks})
	scan := &tokens{toks: toks}
	if !p.noassign && len(toks) > 2 && toks[0].Kind == TokenIdent && toks[1].Kind == TokenEquals {
		st.Kind = StmtAssign
		st.Name = toks[0].Text
		scan.i = 2
	}
	e, err := parseexpr(scan, &p)
	if err != nil {
		return st, err
	}
	st.Expr = e
	p.debug("parsed", logrus.Fields{"kind": st.Kind, "name": st.Name, "expr": e.String()})
	return st, nil
}

// ParseString is a shortcut to parse a string.
func ParseString(src string, opts ...ParseOption) (*Statement, error) {
	return Parse(strings.NewReader(src), opts...)
}

// scanall lexes all of the input. Recoverable diagnostics are collected in
// the second result; any other error ends the scan.
func scanall(scan *lexer) ([]Token, *multierror.Error, error) {
	var (
		toks  []Token
		diags *multierror.Error
	)
	for {
		tok, err := scan.next()
		switch err.(type) {
		case nil: // do nothing
		case *LexError, *OverflowError:
			diags = multierror.Append(diags, err)
		default:
			if errors.Is(err, io.EOF) {
				return toks, diags, nil
			}
			return nil, diags, err
		}
		if tok.Kind != TokenNone {
			toks = append(toks, tok)
		}
		if tok.Kind == TokenEOF {
			return toks, diags, nil
		}
	}
}
