package report

// Status is the terminal outcome of a run.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Summary counts the issues of a report by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Total returns errors + warnings.
func (s Summary) Total() int {
	return s.Errors + s.Warnings
}

// Report is the ordered, append-only outcome of one run.
//
// A report is built by a single run and handed to the caller; it is not safe
// for concurrent mutation.
type Report struct {
	// Title names the check that produced the report, e.g. "compatibility".
	Title string `json:"title,omitempty"`

	Issues []Issue `json:"issues"`

	// Notices are informational lines that never affect the status,
	// e.g. compatible venue additions.
	Notices []string `json:"notices,omitempty"`

	// Skipped is set when the run had nothing to compare against.
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// New creates an empty report.
func New(title string) *Report {
	return &Report{Title: title, Issues: []Issue{}}
}

// Add appends issues in order.
func (r *Report) Add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// Notice appends an informational line.
func (r *Report) Notice(msg string) {
	r.Notices = append(r.Notices, msg)
}

// Skip marks the report as skipped.
func (r *Report) Skip(reason string) {
	r.Skipped = true
	r.SkipReason = reason
}

// Merge appends every issue and notice of other, preserving order.
// A skipped sub-report does not mark r as skipped.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.Notices = append(r.Notices, other.Notices...)
	if other.Skipped {
		r.Notices = append(r.Notices, other.Title+" skipped: "+other.SkipReason)
	}
}

// Errors returns the error-severity issues in order.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues in order.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Summary counts issues by severity.
func (r *Report) Summary() Summary {
	var s Summary
	for _, i := range r.Issues {
		if i.IsError() {
			s.Errors++
		} else {
			s.Warnings++
		}
	}
	return s
}

// Passed reports whether no issue has error severity.
func (r *Report) Passed() bool {
	for _, i := range r.Issues {
		if i.IsError() {
			return false
		}
	}
	return true
}

// Status returns skipped, pass, or fail.
func (r *Report) Status() Status {
	switch {
	case r.Skipped && len(r.Issues) == 0:
		return StatusSkipped
	case r.Passed():
		return StatusPass
	default:
		return StatusFail
	}
}

// ExitCode maps the status to a process exit status: 0 pass, 1 fail.
func (r *Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}
