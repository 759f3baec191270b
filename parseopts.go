package wordcalc

import "github.com/sirupsen/logrus"

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	noassignopt struct{}
	logopt      struct {
		log logrus.FieldLogger
	}
)

// parsectx holds general data for parsing. It is also a ParseOption.
type parsectx struct {
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
	// noassign disables the assignment statement form.
	noassign bool
	// log receives debug traces of each parsing stage. It is nil when
	// tracing is off.
	log logrus.FieldLogger
}

// ExpressionOnly tells the parser to accept only bare expressions. Input of
// the form "name = expression" is then a syntax error at the "=".
func ExpressionOnly() ParseOption {
	return noassignopt{}
}

func (noassignopt) parseOption(p parsectx) parsectx {
	p.noassign = true
	return p
}

// Logger sets a logger to receive debug-level traces of the tokens, reduced
// numerals, and statement form of each parse. A nil logger disables tracing.
func Logger(log logrus.FieldLogger) ParseOption {
	return &logopt{log}
}

func (o *logopt) parseOption(p parsectx) parsectx {
	p.log = o.log
	return p
}

// ParsingPreset creates a parsing preset to reuse the same non-default
// parsing options for many calls to Parse. A preset panics when it would
// change any option from the default, but it is safe to apply other options
// after a preset.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return &p
}

func (o *parsectx) parseOption(p parsectx) parsectx {
	if p.noassign || p.log != nil {
		panic("wordcalc: preset applied to non-default parse config")
	}
	p.noassign = o.noassign
	p.log = o.log
	return p
}

// debug logs a trace message if tracing is enabled.
func (p *parsectx) debug(msg string, fields logrus.Fields) {
	if p.log == nil {
		return
	}
	p.log.WithFields(fields).Debug(msg)
}
