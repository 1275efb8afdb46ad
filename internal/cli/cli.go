package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/vk/zregistry/internal/app"
	"github.com/vk/zregistry/internal/hcl"
	"github.com/vk/zregistry/internal/publish"
)

// EnvPrefix prefixes every environment variable that provides a flag default.
const EnvPrefix = "ZREG"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envDefaults holds flag defaults that may be overridden from the
// environment, e.g. ZREG_LOG_LEVEL=debug. Explicit flags win.
type envDefaults struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	Pattern   string `envconfig:"PATTERN" default:"**/BUILD.hcl"`
	Output    string `envconfig:"OUTPUT" default:"text"`
}

// listFlag collects a comma separated flag that may also be repeated.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var env envDefaults
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid environment: %v", err)}
	}

	flagSet := flag.NewFlagSet("zregistry", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
zregistry - discovers registered tests, validates them and prints the run plan.

Usage:
  zregistry [options] [ROOT]

Arguments:
  ROOT
    Directory searched for registration scripts (BUILD.hcl).

Options:
`)
		flagSet.PrintDefaults()
		fmt.Fprintf(output, "\nDefaults for -log-format, -log-level, -pattern and -output can be set with %s_LOG_FORMAT, %s_LOG_LEVEL, %s_PATTERN and %s_OUTPUT.\n",
			EnvPrefix, EnvPrefix, EnvPrefix, EnvPrefix)
	}

	rootFlag := flagSet.String("root", "", "Directory to discover registration scripts in.")
	rFlag := flagSet.String("r", "", "Directory to discover registration scripts in (shorthand).")
	patternFlag := flagSet.String("pattern", env.Pattern, "Glob (doublestar syntax) matching registration scripts, relative to the root.")
	kindFlag := flagSet.String("kind", "", "Only plan tests of this kind: 'host_test' or 'target_test'.")
	filterFlag := flagSet.String("filter", "", "Only plan tests whose name matches this glob.")
	var tests listFlag
	flagSet.Var(&tests, "test", "Plan only the named test. Repeatable, or comma separated.")
	outputFlag := flagSet.String("output", env.Output, "Plan output format. Options: 'text', 'json' or 'yaml'.")
	logFormatFlag := flagSet.String("log-format", env.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	publishURLFlag := flagSet.String("publish-url", "", "socket.io endpoint to publish the run plan to. Empty disables publishing.")
	publishNamespaceFlag := flagSet.String("publish-namespace", "/", "socket.io namespace used for publishing.")
	publishEventFlag := flagSet.String("publish-event", "plan", "Event name the run plan is emitted under.")
	publishAckFlag := flagSet.String("publish-ack-event", "", "Event the server sends to acknowledge the plan. Empty means the server acknowledges the emit through the socket.io ack callback.")
	publishTimeoutFlag := flagSet.Duration("publish-timeout", publish.DefaultTimeout, "Timeout for publishing the run plan.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected at most one ROOT argument, got %d", flagSet.NArg())}
	}

	// -root, -r and ROOT may repeat each other but must not disagree.
	root := ""
	for _, candidate := range []string{*rootFlag, *rFlag, flagSet.Arg(0)} {
		if candidate == "" {
			continue
		}
		if root != "" && candidate != root {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("conflicting roots %q and %q: pass the root once", root, candidate)}
		}
		root = candidate
	}
	slog.Debug("Discovery root determined.", "root", root)

	if root == "" {
		slog.Debug("No root provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *publishTimeoutFlag <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid publish-timeout: must be positive"}
	}
	slog.Debug("CLI parameter validation complete.")

	pattern := *patternFlag
	if pattern == "" {
		pattern = hcl.DefaultPattern
	}

	config, err := app.NewConfig(app.Config{
		Root:             root,
		Pattern:          pattern,
		Kind:             *kindFlag,
		NamePattern:      *filterFlag,
		Tests:            tests,
		Output:           strings.ToLower(*outputFlag),
		LogFormat:        logFormat,
		LogLevel:         logLevel,
		PublishURL:       *publishURLFlag,
		PublishNamespace: *publishNamespaceFlag,
		PublishEvent:     *publishEventFlag,
		PublishAckEvent:  *publishAckFlag,
		PublishTimeout:   *publishTimeoutFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
