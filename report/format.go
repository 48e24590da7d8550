package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const separatorWidth = 60 // Width of separator lines in text output

// TextOptions controls text rendering.
type TextOptions struct {
	// Color enables ANSI colors.
	Color bool

	// Quiet omits notices and the summary block.
	Quiet bool
}

type palette struct {
	err, warn, ok, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		ok:   color.New(color.FgGreen, color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.ok, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteText renders r as human-readable text: errors first, then warnings,
// one line per issue, followed by notices and a status line.
func WriteText(w io.Writer, r *Report, opts TextOptions) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = "registry"
	}
	fmt.Fprintf(&b, "Schema registry check: %s\n", title)
	b.WriteString(strings.Repeat("=", separatorWidth) + "\n")

	if r.Skipped {
		fmt.Fprintf(&b, "%s %s\n", p.warn.Sprint("skipped:"), r.SkipReason)
	}

	errs := r.Errors()
	warns := r.Warnings()

	if len(errs) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.err.Sprintf("Errors (%d):", len(errs)))
		for _, i := range errs {
			writeIssueLine(&b, p.err, "✗", i)
		}
	}

	if len(warns) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.warn.Sprintf("Warnings (%d):", len(warns)))
		for _, i := range warns {
			writeIssueLine(&b, p.warn, "!", i)
		}
	}

	if !opts.Quiet && len(r.Notices) > 0 {
		b.WriteString("\nNotes:\n")
		for _, n := range r.Notices {
			fmt.Fprintf(&b, "  %s %s\n", p.dim.Sprint("-"), n)
		}
	}

	if !opts.Quiet {
		s := r.Summary()
		fmt.Fprintf(&b, "\n%s\n", strings.Repeat("-", separatorWidth))
		fmt.Fprintf(&b, "Errors: %d  Warnings: %d\n", s.Errors, s.Warnings)
	}

	switch r.Status() {
	case StatusFail:
		fmt.Fprintf(&b, "%s\n", p.err.Sprint("FAIL"))
	case StatusSkipped:
		fmt.Fprintf(&b, "%s\n", p.warn.Sprint("SKIPPED"))
	default:
		fmt.Fprintf(&b, "%s\n", p.ok.Sprint("PASS"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeIssueLine(b *strings.Builder, c *color.Color, marker string, i Issue) {
	fmt.Fprintf(b, "  %s %s [%s]\n", c.Sprint(marker), i.String(), i.Kind)
	if i.Suggestion != "" {
		fmt.Fprintf(b, "      → suggested: %s\n", i.Suggestion)
	}
}

// jsonReport is the machine-readable shape of a Report.
type jsonReport struct {
	Title      string   `json:"title,omitempty"`
	Status     Status   `json:"status"`
	Summary    Summary  `json:"summary"`
	Issues     []Issue  `json:"issues"`
	Notices    []string `json:"notices,omitempty"`
	SkipReason string   `json:"skip_reason,omitempty"`
}

// MarshalJSON adds the derived status and summary to the encoded report.
func (r *Report) MarshalJSON() ([]byte, error) {
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(jsonReport{
		Title:      r.Title,
		Status:     r.Status(),
		Summary:    r.Summary(),
		Issues:     issues,
		Notices:    r.Notices,
		SkipReason: r.SkipReason,
	})
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
