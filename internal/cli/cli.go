// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/spawnsci/spawnrun/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("spawnrun", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
spawnrun - region run driver for the herring spawn survey spatial analysis.

Usage:
  spawnrun [options] [RUN_PATH]

Arguments:
  RUN_PATH
    Path to a single .hcl run file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	runFlag := flagSet.String("run", "", "Path to the run file or directory.")
	rFlag := flagSet.String("r", "", "Path to the run file or directory (shorthand).")
	regionsFlag := flagSet.String("regions", "", "Comma-separated region codes, overriding the run file selection.")
	outFlag := flagSet.String("out", "", "Workspace snapshot output path, overriding the run file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *runFlag != "" {
		path = *runFlag
	} else if *rFlag != "" {
		path = *rFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
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

	var regions []string
	if *regionsFlag != "" {
		for _, code := range strings.Split(*regionsFlag, ",") {
			code = strings.TrimSpace(code)
			if code == "" {
				return nil, false, &ExitError{Code: 2, Message: "invalid -regions: empty region code"}
			}
			regions = append(regions, code)
		}
	}

	config, err := app.NewConfig(app.Config{
		RunPath:      path,
		Regions:      regions,
		SnapshotPath: *outFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
