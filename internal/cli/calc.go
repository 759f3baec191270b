package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/wordcalc"
	"github.com/zephyrtronium/wordcalc/internal/config"
)

// runner evaluates input lines one at a time and reports their results.
type runner struct {
	out  io.Writer
	errw io.Writer
	log  *logrus.Logger
	base *wordcalc.Context
	opts []wordcalc.ParseOption
	json *json.Encoder
}

func newRunner(out, errw io.Writer, s *session) *runner {
	r := &runner{
		out:  out,
		errw: errw,
		log:  s.log,
		base: s.base,
	}
	if s.log.IsLevelEnabled(logrus.DebugLevel) {
		r.opts = append(r.opts, wordcalc.Logger(s.log))
	}
	if s.cfg.Output == config.OutputJSON {
		r.json = json.NewEncoder(out)
	}
	return r
}

// result is the outcome of one line.
type result struct {
	Line        string   `json:"line"`
	Kind        string   `json:"kind,omitempty"`
	Name        string   `json:"name,omitempty"`
	Value       string   `json:"value,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Error       string   `json:"error,omitempty"`

	warnings []error
	err      error
}

// eval parses and executes one line in a fresh clone of the base context, so
// that no assignment outlives its line.
func (r *runner) eval(line string) *result {
	res := &result{Line: line}
	st, err := wordcalc.ParseString(line, r.opts...)
	res.warnings = st.Warnings()
	for _, w := range res.warnings {
		res.Diagnostics = append(res.Diagnostics, w.Error())
	}
	if err != nil {
		res.err = err
		res.Error = err.Error()
		return res
	}
	res.Kind = st.Kind.String()
	res.Name = st.Name
	v, err := r.base.Clone().Exec(st)
	if err != nil {
		res.err = err
		res.Error = err.Error()
		return res
	}
	res.Value = wordcalc.Format(v)
	if st.Kind == wordcalc.StmtAssign {
		r.log.WithFields(logrus.Fields{"name": st.Name, "value": res.Value}).Debug("bound")
	}
	return res
}

// line evaluates and reports one line. Blank lines are skipped. It reports
// whether the line succeeded. The line is parsed as written so that reported
// columns match the input.
func (r *runner) line(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	res := r.eval(line)
	if err := r.report(res); err != nil {
		r.log.WithError(err).Error("writing result")
	}
	return res.err == nil
}

// report writes a result. In text mode, diagnostics and errors go to the
// error stream one per line and only evaluated values are printed. In JSON
// mode, each result is one object on the output stream.
func (r *runner) report(res *result) error {
	if r.json != nil {
		return r.json.Encode(res)
	}
	for _, w := range res.warnings {
		if _, err := fmt.Fprintf(r.errw, "warning: %v\n", w); err != nil {
			return err
		}
	}
	if res.err != nil {
		_, err := fmt.Fprintf(r.errw, "error: %v\n", res.err)
		return err
	}
	if res.Kind == wordcalc.StmtEvaluate.String() {
		_, err := fmt.Fprintln(r.out, res.Value)
		return err
	}
	return nil
}

// batch evaluates every line. The error reports how many lines failed.
func (r *runner) batch(lines iter.Seq[string]) error {
	var total, failed int
	for line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		total++
		if !r.line(line) {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d lines failed", failed, total)
	}
	return nil
}

// scan evaluates each line of in.
func (r *runner) scan(in io.Reader) error {
	sc := bufio.NewScanner(in)
	err := r.batch(func(yield func(string) bool) {
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
	})
	var merr *multierror.Error
	if err != nil {
		merr = multierror.Append(merr, err)
	}
	if err := sc.Err(); err != nil {
		merr = multierror.Append(merr, errors.Wrap(err, "reading input"))
	}
	if merr != nil {
		merr.ErrorFormat = joinErrors
	}
	return merr.ErrorOrNil()
}

func joinErrors(es []error) string {
	msgs := make([]string, len(es))
	for i, err := range es {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
