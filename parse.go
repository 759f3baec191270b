package wordcalc

import (
	"sort"
	"strings"
)

// Stmt = name '=' Expr | Expr
// Expr = num | name | Neg | Add | Sub | Mul | Div | Pow | '(' Expr ')'
// num = digits | numeral run
// Neg = '-' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Pow = Expr '**' Expr
//
// Every operator also has a word form, e.g. "times" for '*' and "equals" for
// '='. Numeral runs are reduced to single num tokens before parsing.

// Expr is a parsed expression that can be evaluated with a context.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
}

// tokens is a token stream over a reduced token slice with one token of
// pushback. The slice must end with an EOF token.
type tokens struct {
	toks []Token
	i    int
	p    Token
}

// next returns the next token. Once the stream reaches EOF, every call
// returns the EOF token.
func (s *tokens) next() Token {
	if s.p.Kind != TokenNone {
		tok := s.p
		s.p = Token{}
		return tok
	}
	tok := s.toks[s.i]
	if s.i < len(s.toks)-1 {
		s.i++
	}
	return tok
}

// push unreads a token so that it is the next token returned from next.
// Panics if there is already a pushed token.
func (s *tokens) push(tok Token) {
	if s.p.Kind != TokenNone {
		panic("wordcalc: double push")
	}
	s.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (s *tokens) must() Token {
	tok := s.p
	if tok.Kind == TokenNone {
		panic("wordcalc: no pushed token")
	}
	s.p = Token{}
	return tok
}

// parseexpr parses an entire expression from scan, which must be exhausted
// by it.
func parseexpr(scan *tokens, p *parsectx) (*Expr, error) {
	n, err := parseterm(scan, p, exprprec)
	if err != nil {
		return nil, err
	}
	if tok := scan.must(); tok.Kind != TokenEOF {
		if tok.Kind == TokenRParen {
			return nil, syntaxError(tok, "unmatched )")
		}
		return nil, syntaxError(tok, "expected operator or end of input")
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sort.Strings(ex.names)
	return &ex, nil
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, which is either a close paren, an operator binding
// no more tightly than until, or EOF.
func parseterm(scan *tokens, p *parsectx, until operator) (*node, error) {
	n, err := parselhs(scan, p)
	if err != nil {
		return nil, err
	}
	for {
		tok := scan.next()
		switch tok.Kind {
		case TokenPlus, TokenMinus, TokenTimes, TokenDivide, TokenExp:
			prec := binop(tok.Kind)
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: prec.op, left: n, right: rhs}
		case TokenRParen, TokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			// Terms must be joined by operators.
			return nil, syntaxError(tok, "expected operator")
		}
	}
}

// parselhs parses the first component of a term. Operators are unary, and any
// encountered token must be valid as the start of a subexpression.
func parselhs(scan *tokens, p *parsectx) (*node, error) {
	tok := scan.next()
	switch tok.Kind {
	case TokenDigits:
		return &node{kind: nodeNum, val: tok.Val}, nil
	case TokenIdent:
		p.names[tok.Text] = true
		return &node{kind: nodeName, name: tok.Text}, nil
	case TokenMinus:
		rhs, err := parseterm(scan, p, negprec)
		if err != nil {
			return nil, err
		}
		return &node{kind: nodeNeg, left: rhs}, nil
	case TokenLParen:
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		if end := scan.must(); end.Kind != TokenRParen {
			return nil, syntaxError(end, "unmatched (")
		}
		return rhs, nil
	default:
		return nil, syntaxError(tok, "expected operand")
	}
}

// Vars returns the variable names used when evaluating the expression, in
// sorted order.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false)
	return b.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets the binary operator for a token kind. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(k TokenKind) operator {
	switch k {
	case TokenPlus:
		return operator{1, false, nodeAdd}
	case TokenMinus:
		return operator{1, false, nodeSub}
	case TokenTimes:
		return operator{5, false, nodeMul}
	case TokenDivide:
		return operator{5, false, nodeDiv}
	case TokenExp:
		// Exponentiation is left-associative: 2**3**2 is (2**3)**2.
		return operator{15, false, nodePow}
	default:
		return operator{}
	}
}

var (
	// negprec is the precedence of unary minus. It binds more tightly than
	// every binary operator, so -2**2 is (-2)**2.
	negprec = operator{20, true, nodeNeg}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)
