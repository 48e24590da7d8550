package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-schemareg"
	"github.com/albertocavalcante/go-schemareg/report"
)

const defaultReportFile = "deprecation-report.json"

func newDeprecationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deprecations",
		Short: "Validate deprecation metadata and list deprecated schemas",
		Long: `Validate the x-deprecated metadata of every schema. The table format lists
deprecated schemas; json prints the machine-readable deprecation report.
--report additionally writes that report to a file.`,
		Args: cobra.NoArgs,
		RunE: runDeprecations,
	}
	cmd.Flags().String("report", "", "write the JSON deprecation report to this file")
	cmd.Flags().Lookup("report").NoOptDefVal = defaultReportFile
	return cmd
}

func runDeprecations(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.runner.CheckDeprecations(cmd.Context())
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := writeDeprecationReport(path, res); err != nil {
			return err
		}
		e.logger.Sugar().Infof("deprecation report saved to %s", path)
		res.Report.Notice("report saved to " + path)
	}

	switch e.format {
	case "json":
		if err := report.WriteJSON(e.out, res); err != nil {
			return err
		}
	case "text", "table", "":
		if err := writeDeprecationTable(e, res); err != nil {
			return err
		}
		if err := report.WriteText(e.out, res.Report, e.text); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (expected table or json)", e.format)
	}

	if res.Report.ExitCode() != 0 {
		return errChecksFailed
	}
	return nil
}

func writeDeprecationReport(path string, res *schemareg.DeprecationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	if err := report.WriteJSON(f, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// writeDeprecationTable prints the schema counts and one row per deprecated schema.
func writeDeprecationTable(e *env, res *schemareg.DeprecationResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Schemas: %d  Active: %d  Deprecated: %d  Urgent: %d\n",
		res.Total, res.Active, res.Deprecated, res.Urgent())

	if len(res.Statuses) > 0 {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("SCHEMA", "DEPRECATED IN", "REMOVAL", "URGENCY", "REPLACED BY", "ATTENTION")
		for _, s := range res.Statuses {
			t.Row(s.Schema, dash(s.DeprecatedInVersion), dash(s.PlannedRemoval), urgency(s.Urgency, s.Urgent),
				dash(s.ReplacedBy), strconv.FormatBool(s.NeedsAttention))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	for _, r := range res.Recommendations {
		fmt.Fprintf(&b, "[%s] %s: %s\n", r.Priority, r.Schema, r.Action)
	}
	b.WriteString("\n")

	_, err := fmt.Fprint(e.out, b.String())
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func urgency(level string, urgent bool) string {
	if urgent {
		return level + " (urgent)"
	}
	return level
}
