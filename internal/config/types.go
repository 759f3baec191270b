// Package config loads the wordcalc command's settings.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/wordcalc"
)

// Default values.
const (
	DefaultPrec     = 64
	DefaultOutput   = OutputText
	DefaultPrompt   = "wordcalc> "
	DefaultLogLevel = "info"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the settings of the wordcalc command.
type Config struct {
	// Prec is the precision of calculations in bits.
	Prec int `koanf:"prec"`
	// Output is the result format, text or json.
	Output string `koanf:"output"`
	// Verbose enables debug logging, overriding LogLevel.
	Verbose bool `koanf:"verbose"`
	// LogLevel is a logrus level name.
	LogLevel string `koanf:"log_level"`
	// Prompt is the interactive prompt.
	Prompt string `koanf:"prompt"`
	// History is the interactive history file. Empty disables history.
	History string `koanf:"history"`
	// Given maps variable names to number-word expressions giving their
	// values. Every line is evaluated with these variables bound.
	Given map[string]string `koanf:"given"`
}

// Validate checks the settings for values the command cannot use.
func (c *Config) Validate() error {
	if c.Prec <= 0 {
		return errors.Errorf("precision (%d) must be positive", c.Prec)
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return errors.Errorf("unknown output format %q, choose from: %s, %s", c.Output, OutputText, OutputJSON)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	for name := range c.Given {
		if strings.TrimSpace(name) == "" {
			return errors.New("given variable with empty name")
		}
		if !isName(name) {
			return errors.Errorf("given variable %q is not a name", name)
		}
	}
	return nil
}

// isName reports whether s lexes as exactly one identifier, so that lines can
// refer to it.
func isName(s string) bool {
	toks, err := wordcalc.Tokenize(s)
	return err == nil && len(toks) == 2 && toks[0].Kind == wordcalc.TokenIdent && toks[0].Text == s
}

// Level returns the logging level for the settings. Validate must have
// succeeded.
func (c *Config) Level() logrus.Level {
	if c.Verbose {
		return logrus.DebugLevel
	}
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
