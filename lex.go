package wordcalc

import (
	"errors"
	"io"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Token is a classified lexical unit.
type Token struct {
	// Kind is the token's classification.
	Kind TokenKind
	// Val is the numeric payload of Digits, Ones, Teen, and Tens tokens.
	Val int64
	// Text is the source text of the token as written.
	Text string
	// Pos is the column of the token's first rune, counting from 1.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// TokenKind is the classification of a token.
type TokenKind int8

const (
	TokenNone TokenKind = iota
	// TokenEOF indicates the end of the input.
	TokenEOF
	// TokenDigits is a decimal digit string.
	TokenDigits
	// TokenOnes is one of the number words one through nine.
	TokenOnes
	// TokenTeen is one of the number words ten through nineteen.
	TokenTeen
	// TokenTens is one of the number words twenty, thirty, ..., ninety.
	TokenTens
	// TokenHundred is the multiplier word hundred.
	TokenHundred
	// TokenThousand is the multiplier word thousand.
	TokenThousand

	TokenPlus   // + or plus
	TokenMinus  // - or minus
	TokenTimes  // * or times
	TokenDivide // / or divide
	TokenExp    // ** or exp
	TokenEquals // = or equals
	TokenLParen // (
	TokenRParen // )

	// TokenIdent is a name that is not in the vocabulary.
	TokenIdent
)

var tokenKindNames = [...]string{
	TokenNone:     "None",
	TokenEOF:      "EOF",
	TokenDigits:   "Digits",
	TokenOnes:     "Ones",
	TokenTeen:     "Teen",
	TokenTens:     "Tens",
	TokenHundred:  "Hundred",
	TokenThousand: "Thousand",
	TokenPlus:     "Plus",
	TokenMinus:    "Minus",
	TokenTimes:    "Times",
	TokenDivide:   "Divide",
	TokenExp:      "Exp",
	TokenEquals:   "Equals",
	TokenLParen:   "LParen",
	TokenRParen:   "RParen",
	TokenIdent:    "Ident",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Numeral returns whether tokens of kind k belong in a numeral run.
func (k TokenKind) Numeral() bool {
	return TokenOnes <= k && k <= TokenThousand
}

// Operators contains the runes which lex as single-rune symbols. '*' also
// begins "**".
const Operators = "+-*/=()"

var operkinds = [...]TokenKind{TokenPlus, TokenMinus, TokenTimes, TokenDivide, TokenEquals, TokenLParen, TokenRParen}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	fold cases.Caser
	rune int
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		fold: cases.Fold(),
		rune: 1,
	}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is reached, the
// result is an EOF token with a nil error. Subsequent calls return an empty
// token with io.EOF.
//
// A *LexError or *OverflowError result is recoverable: the lexer has already
// skipped the offending input, and scanning may continue. With an
// *OverflowError, the returned token is a valid Digits token with value 0.
func (l *lexer) next() (Token, error) {
	if l.eof {
		return Token{}, io.EOF
	}
	defer l.buf.Reset()
	tok := Token{Pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.Kind = TokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case r == ' ', r == '\t', r == '\n', r == '\r':
			tok.Pos++
			continue
		case '0' <= r && r <= '9':
			l.unreadRune()
			if err := l.scanDigits(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.Kind = TokenDigits
			v, err := strconv.ParseInt(tok.Text, 10, 64)
			if err != nil {
				// Only a range error is possible for a digit string.
				return tok, &OverflowError{Text: tok.Text, Col: tok.Pos}
			}
			tok.Val = v
			return tok, nil
		case r == '_', isASCIILetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			l.classify(&tok)
			return tok, nil
		case r == '*':
			tok.Text, tok.Kind = "*", TokenTimes
			r, err := l.readRune()
			switch {
			case err != nil:
				if !errors.Is(err, io.EOF) {
					return tok, err
				}
			case r == '*':
				tok.Text, tok.Kind = "**", TokenExp
			default:
				l.unreadRune()
			}
			return tok, nil
		default:
			if k := strings.IndexRune(Operators, r); k >= 0 {
				tok.Text = Operators[k : k+1]
				tok.Kind = operkinds[k]
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return Token{Pos: tok.Pos}, l.error(tok.Pos)
		}
	}
}

func (l *lexer) scanDigits() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if r < '0' || '9' < r {
			l.unreadRune()
			return nil
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case r == '_', isASCIILetter(r), '0' <= r && r <= '9':
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

// classify sets the kind and value of a scanned word.
func (l *lexer) classify(tok *Token) {
	w, ok := vocabulary[l.fold.String(tok.Text)]
	if !ok {
		tok.Kind = TokenIdent
		return
	}
	tok.Kind, tok.Val = w.kind, w.val
}

func isASCIILetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func (l *lexer) error(col int) error {
	return &LexError{
		Text: l.buf.String(),
		Col:  col,
	}
}

// Tokens returns the token sequence of src. Each iteration lexes src from the
// start. A non-nil error in the sequence is a recoverable diagnostic; its
// token is meaningful only if its Kind is not TokenNone. The last token is
// always TokenEOF.
func Tokens(src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		scan := lex(strings.NewReader(src))
		for {
			tok, err := scan.next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(tok, err) {
				return
			}
		}
	}
}

// Tokenize lexes src completely. The resulting slice omits unrecognized
// characters and ends with a TokenEOF token. If any diagnostics were produced,
// the error is a *multierror.Error holding them in order; the tokens are
// usable either way.
func Tokenize(src string) ([]Token, error) {
	// Reading from a strings.Reader cannot fail, so only diagnostics remain.
	toks, diags, _ := scanall(lex(strings.NewReader(src)))
	return toks, diags.ErrorOrNil()
}

// LexError indicates an illegal character. It implements InputError.
type LexError struct {
	// Text is the illegal character.
	Text string
	// Col is the column of the illegal character.
	Col int
}

func (err *LexError) Error() string {
	return errpos(err.Col, "illegal character "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int {
	return err.Col
}

// OverflowError indicates a digit string too large to represent. The lexer
// treats the number as zero. It implements InputError.
type OverflowError struct {
	// Text is the digit string.
	Text string
	// Col is the column of the first digit.
	Col int
}

func (err *OverflowError) Error() string {
	return errpos(err.Col, "integer value too large, using 0: "+err.Text)
}

func (err *OverflowError) Pos() int {
	return err.Col
}
