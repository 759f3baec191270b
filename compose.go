package wordcalc

import (
	"strconv"
	"strings"
)

// Compose reads a run of number words as a single integer using English
// place value. Ones, teens, and tens accumulate into the current group;
// hundred scales the group by 100; thousand moves the group, scaled by 1000,
// into the total. A multiplier with no quantity before it counts as one, so
// a bare "hundred" is 100.
//
// Runs with no valid reading, such as "hundred thousand", "five five", or
// "thousand thousand", produce a *MalformedNumeralError.
func Compose(run []Token) (int64, error) {
	if len(run) == 0 {
		return 0, &MalformedNumeralError{Reason: "empty numeral"}
	}
	var (
		total, group int64
		// seg is the kind of the last word in the current phrase below one
		// hundred, or TokenNone at the start of a phrase.
		seg TokenKind
		// hund and thou record whether the current group has been scaled by
		// a hundred and whether the run has a thousand.
		hund, thou bool
		prev       TokenKind
	)
	for i, tok := range run {
		bad := func(reason string) (int64, error) {
			return 0, &MalformedNumeralError{Text: runText(run), Col: run[0].Pos, At: tok, Reason: reason}
		}
		switch tok.Kind {
		case TokenOnes:
			if seg == TokenOnes || seg == TokenTeen {
				return bad(strconv.Quote(tok.Text) + " cannot follow " + strconv.Quote(run[i-1].Text))
			}
			group += tok.Val
			seg = TokenOnes
		case TokenTeen, TokenTens:
			if seg != TokenNone {
				return bad(strconv.Quote(tok.Text) + " cannot follow " + strconv.Quote(run[i-1].Text))
			}
			group += tok.Val
			seg = tok.Kind
		case TokenHundred:
			switch {
			case prev == TokenHundred:
				return bad("repeated hundred")
			case hund:
				return bad("second hundred in one group")
			}
			group = max(group, 1) * 100
			hund = true
			seg = TokenNone
		case TokenThousand:
			switch {
			case prev == TokenThousand:
				return bad("repeated thousand")
			case prev == TokenHundred:
				return bad("thousand directly after hundred")
			case thou:
				return bad("second thousand")
			}
			total += max(group, 1) * 1000
			group = 0
			hund, thou = false, true
			seg = TokenNone
		default:
			return bad(tok.Kind.String() + " token in numeral")
		}
		prev = tok.Kind
	}
	return total + group, nil
}

// runText joins the words of a run.
func runText(run []Token) string {
	var b strings.Builder
	for i, tok := range run {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// reduce replaces each maximal numeral run in toks with one Digits token
// holding its value. The input slice is not modified.
func reduce(toks []Token) ([]Token, error) {
	r := make([]Token, 0, len(toks))
	for i := 0; i < len(toks); {
		if !toks[i].Kind.Numeral() {
			r = append(r, toks[i])
			i++
			continue
		}
		j := i + 1
		for j < len(toks) && toks[j].Kind.Numeral() {
			j++
		}
		run := toks[i:j]
		v, err := Compose(run)
		if err != nil {
			return nil, err
		}
		r = append(r, Token{Kind: TokenDigits, Val: v, Text: runText(run), Pos: run[0].Pos})
		i = j
	}
	return r, nil
}

// MalformedNumeralError indicates a run of number words that does not spell a
// number. It implements InputError.
type MalformedNumeralError struct {
	// Text is the words of the run.
	Text string
	// Col is the column of the run's first word.
	Col int
	// At is the word at which the run became invalid.
	At Token
	// Reason describes the problem.
	Reason string
}

func (err *MalformedNumeralError) Error() string {
	return errpos(err.Col, "malformed number "+strconv.Quote(err.Text)+": "+err.Reason)
}

func (err *MalformedNumeralError) Pos() int {
	return err.Col
}
