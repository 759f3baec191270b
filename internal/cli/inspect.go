package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/wordcalc"
	"github.com/zephyrtronium/wordcalc/internal/config"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <line>",
		Short: "Show the tokens of a line",
		Long: `Lex a line and list its tokens with their kinds, values, and columns.
Arguments are joined with spaces. Illegal characters are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getSession(cmd.Context())
			src := strings.Join(args, " ")
			var toks []wordcalc.Token
			for tok, err := range wordcalc.Tokens(src) {
				if err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
				if tok.Kind != wordcalc.TokenNone {
					toks = append(toks, tok)
				}
			}
			if s.cfg.Output == config.OutputJSON {
				return renderTokensJSON(cmd.OutOrStdout(), toks)
			}
			renderTokens(cmd.OutOrStdout(), toks)
			return nil
		},
	}
}

func renderTokens(w io.Writer, toks []wordcalc.Token) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Kind", "Text", "Value", "Col"})
	for i, tok := range toks {
		val := ""
		if tok.Kind == wordcalc.TokenDigits || tok.Kind.Numeral() {
			val = strconv.FormatInt(tok.Val, 10)
		}
		t.AppendRow(table.Row{i, tok.Kind, tok.Text, val, tok.Pos})
	}
	t.Render()
}

type tokenJSON struct {
	Kind  string `json:"kind"`
	Text  string `json:"text,omitempty"`
	Value *int64 `json:"value,omitempty"`
	Col   int    `json:"col"`
}

func renderTokensJSON(w io.Writer, toks []wordcalc.Token) error {
	r := make([]tokenJSON, len(toks))
	for i, tok := range toks {
		r[i] = tokenJSON{Kind: tok.Kind.String(), Text: tok.Text, Col: tok.Pos}
		if tok.Kind == wordcalc.TokenDigits || tok.Kind.Numeral() {
			v := tok.Val
			r[i].Value = &v
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <line>",
		Short: "Show how a line parses",
		Long: `Parse a line and print its statement kind, the assigned name if any, and
the expression tree with every term bracketed. Arguments are joined with
spaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getSession(cmd.Context())
			var opts []wordcalc.ParseOption
			if s.log.IsLevelEnabled(logrus.DebugLevel) {
				opts = append(opts, wordcalc.Logger(s.log))
			}
			st, err := wordcalc.ParseString(strings.Join(args, " "), opts...)
			for _, w := range st.Warnings() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
			}
			if err != nil {
				return err
			}
			if s.cfg.Output == config.OutputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"kind": st.Kind.String(),
					"name": st.Name,
					"tree": st.Expr.String(),
					"vars": st.Expr.Vars(),
				})
			}
			out := cmd.OutOrStdout()
			if st.Kind == wordcalc.StmtAssign {
				_, _ = fmt.Fprintf(out, "%v %s %v\n", st.Kind, st.Name, st.Expr)
			} else {
				_, _ = fmt.Fprintf(out, "%v %v\n", st.Kind, st.Expr)
			}
			if vars := st.Expr.Vars(); len(vars) > 0 {
				_, _ = fmt.Fprintf(out, "vars: %s\n", strings.Join(vars, " "))
			}
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display wordcalc version information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wordcalc v%s\n", version)
		},
	}
}
