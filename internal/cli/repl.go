package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"github.com/zephyrtronium/wordcalc"
	"github.com/zephyrtronium/wordcalc/internal/config"
)

// lineReader is the part of *readline.Instance the REPL uses.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

func newReadline(cfg *config.Config) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      cfg.Prompt,
		HistoryFile: cfg.History,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem(".help"),
			readline.PcItem(".vars"),
			readline.PcItem(".quit"),
			readline.PcItem(".exit"),
		),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize REPL")
	}
	return rl, nil
}

// repl evaluates lines from rl until EOF or .quit. Failed lines are
// reported but do not end the loop.
func (r *runner) repl(rl lineReader) error {
	_, _ = fmt.Fprintln(r.out, "Type .help for commands, .quit to exit")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading input")
		}

		cmd := strings.TrimSpace(line)
		if cmd == "" {
			continue
		}
		if strings.HasPrefix(cmd, ".") {
			if quit := r.dotCommand(cmd); quit {
				return nil
			}
			continue
		}
		r.line(line)
	}
}

// dotCommand handles a REPL command. It reports whether the REPL should end.
func (r *runner) dotCommand(line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])
	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(r.out)
	case ".vars":
		renderVars(r.out, r.base)
	default:
		_, _ = fmt.Fprintf(r.errw, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .vars           List the given variables
  .quit / .exit   Exit the REPL

Lines:
  Two Hundred Fifty plus 3      numbers may be digits or words
  2 ** 3 ** 2                   ** and exp group left to right: 64
  -2 exp 2                      minus binds tightest: 4
  x = seven divide two          assignments last for their own line
`
	_, _ = fmt.Fprintln(w, help)
}

// renderVars writes a table of the variables in ctx.
func renderVars(w io.Writer, ctx *wordcalc.Context) {
	names := ctx.Names()
	if len(names) == 0 {
		_, _ = fmt.Fprintln(w, "(no variables)")
		return
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Value"})
	for _, name := range names {
		t.AppendRow(table.Row{name, wordcalc.Format(ctx.Lookup(name))})
	}
	t.Render()
}
