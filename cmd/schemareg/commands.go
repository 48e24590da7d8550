package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-schemareg/report"
)

// reportFunc runs one check.
type reportFunc func(cmd *cobra.Command, e *env, args []string) (*report.Report, error)

// runReport wires a check into a cobra RunE.
func runReport(fn reportFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		rep, err := fn(cmd, e, args)
		if err != nil {
			return err
		}
		return e.emit(rep)
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Aliases: []string{"all", "run"},
		Short:   "Run compatibility, deprecation and overlap checks",
		Args:    cobra.NoArgs,
		RunE: runReport(func(cmd *cobra.Command, e *env, _ []string) (*report.Report, error) {
			return e.runner.Run(cmd.Context())
		}),
	}
}

func newCompatCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "compat",
		Aliases: []string{"compatibility"},
		Short:   "Compare the registry against the base reference",
		Args:    cobra.NoArgs,
		RunE: runReport(func(cmd *cobra.Command, e *env, _ []string) (*report.Report, error) {
			return e.runner.CheckCompatibility(cmd.Context())
		}),
	}
}

func newOverlapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overlap",
		Short: "Check the version overlap of deprecated schemas",
		Args:  cobra.NoArgs,
		RunE: runReport(func(cmd *cobra.Command, e *env, _ []string) (*report.Report, error) {
			return e.runner.CheckOverlap(cmd.Context())
		}),
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate schema structure and venue enums",
		Args:  cobra.NoArgs,
		RunE: runReport(func(cmd *cobra.Command, e *env, _ []string) (*report.Report, error) {
			return e.runner.Validate(cmd.Context())
		}),
	}
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Validate example payloads against their schemas",
		Args:  cobra.NoArgs,
		RunE: runReport(func(cmd *cobra.Command, e *env, _ []string) (*report.Report, error) {
			return e.runner.ValidateExamples(cmd.Context())
		}),
	}
}

func newChangelogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "changelog",
		Short: "Require a changelog entry when registry files changed",
		Args:  cobra.NoArgs,
		RunE: runReport(func(cmd *cobra.Command, e *env, _ []string) (*report.Report, error) {
			return e.runner.CheckChangelog(cmd.Context())
		}),
	}
}

func newTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag [tag]",
		Short: "Check that the package version matches the release tag",
		Long: `Check that the version in the package manifest equals the release tag
without its leading "v". The tag defaults to $GITHUB_REF_NAME.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReport(func(cmd *cobra.Command, e *env, args []string) (*report.Report, error) {
			tag := releaseTag(args)
			if tag == "" {
				return nil, fmt.Errorf("no tag given and GITHUB_REF_NAME is not set")
			}
			return e.runner.CheckReleaseTag(cmd.Context(), tag)
		}),
	}
}

// releaseTag returns the tag argument or, without one, $GITHUB_REF_NAME.
func releaseTag(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return os.Getenv("GITHUB_REF_NAME")
}
