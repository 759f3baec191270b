// Package cli provides the command-line interface for wordcalc.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zephyrtronium/wordcalc"
	"github.com/zephyrtronium/wordcalc/internal/config"
)

// Version is the program version, set at build time.
var Version = "0.1.0"

// sessionKey is used to store the session in the command context.
type sessionKey struct{}

// session is the state shared by every command of one invocation.
type session struct {
	cfg *config.Config
	log *logrus.Logger
	// base holds the given variables. Lines are evaluated in clones of it.
	base *wordcalc.Context
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	rootCmd := &cobra.Command{
		Use:   "wordcalc [flags] [expression ...]",
		Short: "Evaluate arithmetic written in English number words",
		Long: `wordcalc evaluates arithmetic written with digits, English number words,
and operator words, e.g. "Two Hundred Fifty plus 3" or "x = seven divide two".

Each argument is one line. With no arguments, lines are read from standard
input, interactively if it is a terminal. Put -- before a line that starts
with a minus sign. Assignments last only for their own line; use --given to
bind variables for every line.`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, used, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg)
			if used != "" {
				log.WithField("file", used).Debug("using config file")
			}
			base, err := givenContext(cfg)
			if err != nil {
				return err
			}
			s := &session{cfg: cfg, log: log, base: base}
			cmd.SetContext(context.WithValue(cmd.Context(), sessionKey{}, s))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := getSession(cmd.Context())
			r := newRunner(cmd.OutOrStdout(), cmd.ErrOrStderr(), s)
			switch {
			case len(args) > 0:
				return r.batch(slices.Values(args))
			case isTerminal(cmd.InOrStdin()):
				rl, err := newReadline(s.cfg)
				if err != nil {
					return err
				}
				defer func() { _ = rl.Close() }()
				return r.repl(rl)
			default:
				return r.scan(cmd.InOrStdin())
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./wordcalc.yaml)")
	flags.IntP("prec", "p", config.DefaultPrec, "precision of calculations in bits")
	flags.StringP("output", "o", config.DefaultOutput, "output format (text|json)")
	flags.BoolP("verbose", "v", false, "log each parsing stage and binding")
	flags.String("log-level", config.DefaultLogLevel, "log level (trace|debug|info|warn|error)")
	flags.String("prompt", config.DefaultPrompt, "interactive prompt")
	flags.String("history", "", "interactive history file")
	flags.StringArray(config.GivenFlag, nil, "name=value variable definition (any number of times)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputText, config.OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewTokensCommand())
	rootCmd.AddCommand(NewParseCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getSession retrieves the session from the command context.
func getSession(ctx context.Context) *session {
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s
	}
	cfg := &config.Config{
		Prec:     config.DefaultPrec,
		Output:   config.DefaultOutput,
		LogLevel: config.DefaultLogLevel,
		Prompt:   config.DefaultPrompt,
	}
	return &session{
		cfg:  cfg,
		log:  newLogger(os.Stderr, cfg),
		base: wordcalc.NewContext(wordcalc.Prec(uint(cfg.Prec))),
	}
}

func newLogger(w io.Writer, cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(cfg.Level())
	return log
}

// givenContext creates the base context holding the given variables. Each
// value is a bare expression evaluated on its own, so givens cannot refer to
// each other.
func givenContext(cfg *config.Config) (*wordcalc.Context, error) {
	prec := wordcalc.Prec(uint(cfg.Prec))
	base := wordcalc.NewContext(prec)
	names := make([]string, 0, len(cfg.Given))
	for name := range cfg.Given {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st, err := wordcalc.ParseString(cfg.Given[name], wordcalc.ExpressionOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "setting %s", name)
		}
		v, err := wordcalc.NewContext(prec).Exec(st)
		if err != nil {
			return nil, errors.Wrapf(err, "setting %s", name)
		}
		base.Set(name, v)
	}
	return base, nil
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
