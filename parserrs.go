package wordcalc

import "strconv"

// SyntaxError is an error indicating a token sequence that is not a
// statement. It implements InputError.
type SyntaxError struct {
	// Col is the position of the offending token.
	Col int
	// Text is the offending token as written. It is empty at the end of the
	// input.
	Text string
	// EOF is whether the error occurred at the end of the input.
	EOF bool
	// Reason is a short description of what the parser expected, if known.
	Reason string
}

func (err *SyntaxError) Error() string {
	at := "end of input"
	if !err.EOF {
		at = strconv.Quote(err.Text)
	}
	msg := "syntax error at " + at
	if err.Reason != "" {
		msg += ": " + err.Reason
	}
	return errpos(err.Col, msg)
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// syntaxError creates a syntax error at tok.
func syntaxError(tok Token, reason string) error {
	return &SyntaxError{Col: tok.Pos, Text: tok.Text, EOF: tok.Kind == TokenEOF, Reason: reason}
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the column of the input at which the error was detected.
	Pos() int
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*OverflowError)(nil)
	_ InputError = (*MalformedNumeralError)(nil)
	_ InputError = (*SyntaxError)(nil)
)
