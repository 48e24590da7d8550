package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/albertocavalcante/go-schemareg"
	"github.com/albertocavalcante/go-schemareg/internal/logging"
	"github.com/albertocavalcante/go-schemareg/report"
)

// errChecksFailed is returned when a report has error-severity issues. The
// report has already been printed, so main only sets the exit status.
var errChecksFailed = errors.New("checks failed")

// env is the per-invocation state shared by the subcommands.
type env struct {
	runner *schemareg.Runner
	logger *zap.Logger
	out    io.Writer
	format string
	text   report.TextOptions
}

// setup loads the configuration, applies flag overrides and creates the runner.
func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Flags()

	level, err := flags.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if baseRef, _ := flags.GetString("base-ref"); baseRef != "" {
		cfg.Policy.BaseRef = baseRef
	}

	opts := []schemareg.Option{schemareg.WithLogger(logger)}
	if jobs, _ := flags.GetInt("jobs"); jobs > 0 {
		opts = append(opts, schemareg.WithConcurrency(jobs))
	}
	runner, err := schemareg.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	format, _ := flags.GetString("format")
	format = strings.ToLower(format)
	colorFlag, _ := flags.GetString("color")
	quiet, _ := flags.GetBool("quiet")

	out := cmd.OutOrStdout()
	return &env{
		runner: runner,
		logger: logger,
		out:    out,
		format: format,
		text:   report.TextOptions{Color: useColor(colorFlag, out), Quiet: quiet},
	}, nil
}

func loadConfig(cmd *cobra.Command) (schemareg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return schemareg.LoadConfig(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return schemareg.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return schemareg.DiscoverConfig(wd)
}

// useColor resolves --color; auto colorizes only when writing to a terminal.
func useColor(flag string, out io.Writer) bool {
	switch flag {
	case "on":
		return true
	case "off":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// emit prints rep in the selected format and maps a failing report to
// errChecksFailed.
func (e *env) emit(rep *report.Report) error {
	if err := e.write(rep); err != nil {
		return err
	}
	if rep.ExitCode() != 0 {
		return errChecksFailed
	}
	return nil
}

func (e *env) write(rep *report.Report) error {
	switch e.format {
	case "json":
		return report.WriteJSON(e.out, rep)
	case "text", "table", "":
		return report.WriteText(e.out, rep, e.text)
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", e.format)
	}
}

func (e *env) close() {
	_ = e.logger.Sync()
}
