package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables holding settings, e.g.
// WORDCALC_PREC. Given variables use WORDCALC_GIVEN_<name>.
const EnvPrefix = "WORDCALC_"

// GivenFlag is the name of the repeatable name=value flag merged into
// Config.Given.
const GivenFlag = "given"

// configNames are the file names searched in the working directory when no
// config file is named explicitly.
var configNames = []string{"wordcalc.yaml", "wordcalc.yml"}

// findConfigFile finds the config file to use.
// Priority: explicit path > wordcalc.yaml > wordcalc.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads settings from defaults, a YAML config file, environment
// variables, and flags, each overriding the ones before. The second result is
// the config file that was read, if any.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"prec":      DefaultPrec,
		"output":    DefaultOutput,
		"verbose":   false,
		"log_level": DefaultLogLevel,
		"prompt":    DefaultPrompt,
		"history":   "",
	}, "."), nil); err != nil {
		return nil, "", errors.Wrap(err, "failed to load defaults")
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", errors.Wrapf(err, "error reading config file %s", used)
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, "", errors.Wrap(err, "failed to load env vars")
	}

	// 4. Flags that were set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" || f.Name == GivenFlag {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", errors.Wrap(err, "unable to decode config")
	}
	if flags != nil && flags.Lookup(GivenFlag) != nil {
		defs, err := flags.GetStringArray(GivenFlag)
		if err != nil {
			return nil, "", errors.Wrapf(err, "reading --%s", GivenFlag)
		}
		for _, d := range defs {
			name, val, err := ParseGiven(d)
			if err != nil {
				return nil, "", err
			}
			if cfg.Given == nil {
				cfg.Given = make(map[string]string)
			}
			cfg.Given[name] = val
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}

// envKey maps WORDCALC_LOG_LEVEL to log_level and WORDCALC_GIVEN_x to
// given.x.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	if rest, ok := strings.CutPrefix(s, "GIVEN_"); ok && rest != "" {
		return GivenFlag + "." + rest
	}
	return strings.ToLower(s)
}

// ParseGiven splits a name=value variable definition.
func ParseGiven(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" {
		return "", "", errors.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	return name, value, nil
}
