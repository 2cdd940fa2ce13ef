// Package cli turns command-line arguments into a runnable configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sakura-flow/sakura/internal/app"
	"github.com/sakura-flow/sakura/internal/config"
	"github.com/sakura-flow/sakura/internal/value"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is the fully resolved invocation: application config plus the
// run parameters.
type Options struct {
	App           app.Config
	InputPath     string
	InitialValues value.Environment
	DryRun        bool
}

// stringList collects repeatable flags.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns the resolved options,
// a boolean indicating the program should exit cleanly (help), or an
// ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("sakura", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Sakura - a scripting runtime for hierarchical, partly parallel workflows.

Usage:
  sakura [options] [INPUT_PATH]

Arguments:
  INPUT_PATH
    Path to a script file, or a directory containing `+app.DefaultEntryFile+`.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("i", "", "Path to the script file or directory (shorthand for the positional argument).")
	valuesFlag := flagSet.String("values", "", "Path to a YAML file with initial values for the root tree.")
	var setFlags stringList
	flagSet.Var(&setFlags, "set", "Set one initial value as key=value. May be repeated.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Parse and validate only, without executing anything.")
	workersFlag := flagSet.Int("workers", 0, "Number of execution workers. Overrides the config file.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	configFlag := flagSet.String("config", "", "Path to the "+config.DefaultFileName+" configuration file.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *inputFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if *workersFlag > 0 {
		cfg.Workers = *workersFlag
	}
	if *logLevelFlag != "" {
		cfg.LogLevel = strings.ToLower(*logLevelFlag)
	}
	if *logFormatFlag != "" {
		cfg.LogFormat = strings.ToLower(*logFormatFlag)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	initial, err := collectInitialValues(*valuesFlag, setFlags)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return &Options{
		App: app.Config{
			LogLevel:  cfg.LogLevel,
			LogFormat: cfg.LogFormat,
			Workers:   cfg.Workers,
		},
		InputPath:     path,
		InitialValues: initial,
		DryRun:        *dryRunFlag,
	}, false, nil
}

// collectInitialValues merges the YAML values file with --set overrides,
// later --set entries winning.
func collectInitialValues(valuesPath string, sets stringList) (value.Environment, error) {
	env := value.NewEnvironment()

	if valuesPath != "" {
		data, err := os.ReadFile(valuesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file %s: %w", valuesPath, err)
		}
		var decoded map[string]any
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("failed to parse values file %s: %w", valuesPath, err)
		}
		fileEnv, err := value.EnvironmentFromGo(decoded)
		if err != nil {
			return nil, fmt.Errorf("values file %s: %w", valuesPath, err)
		}
		value.Merge(env, fileEnv, value.Replace)
	}

	for _, entry := range sets {
		key, raw, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set entry %q, expected key=value", entry)
		}
		// A --set value is a YAML scalar, so numbers and booleans come
		// through typed.
		var decoded any
		if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
			decoded = raw
		}
		v, err := value.FromGo(decoded)
		if err != nil {
			return nil, fmt.Errorf("invalid --set value for %q: %w", key, err)
		}
		env[key] = v
	}

	return env, nil
}
