package schemareg

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/albertocavalcante/go-schemareg/deprecation"
	"github.com/albertocavalcante/go-schemareg/report"
)

// DeprecationResult is the outcome of a deprecation check.
type DeprecationResult struct {
	Report *report.Report

	Total      int
	Active     int
	Deprecated int

	// Statuses has one entry per deprecated schema, in file order.
	Statuses        []deprecation.Status
	Recommendations []deprecation.Recommendation

	GeneratedAt time.Time
}

// Urgent counts deprecated schemas that need priority handling.
func (d *DeprecationResult) Urgent() int {
	n := 0
	for _, s := range d.Statuses {
		if s.Urgent {
			n++
		}
	}
	return n
}

// MarshalJSON renders the machine-readable deprecation report.
func (d *DeprecationResult) MarshalJSON() ([]byte, error) {
	type summary struct {
		Total      int `json:"totalSchemas"`
		Active     int `json:"activeSchemas"`
		Deprecated int `json:"deprecatedSchemas"`
		Urgent     int `json:"urgentDeprecations"`
	}
	statuses := d.Statuses
	if statuses == nil {
		statuses = []deprecation.Status{}
	}
	recs := d.Recommendations
	if recs == nil {
		recs = []deprecation.Recommendation{}
	}
	issues := d.Report.Issues
	if issues == nil {
		issues = []report.Issue{}
	}
	return json.Marshal(struct {
		ReportDate       string                       `json:"reportDate"`
		Status           report.Status                `json:"status"`
		Summary          summary                      `json:"summary"`
		Deprecations     []deprecation.Status         `json:"deprecations"`
		Recommendations  []deprecation.Recommendation `json:"recommendations"`
		ValidationIssues report.Summary               `json:"validationIssues"`
		Issues           []report.Issue               `json:"issues"`
	}{
		ReportDate:       d.GeneratedAt.UTC().Format(time.RFC3339),
		Status:           d.Report.Status(),
		Summary:          summary{Total: d.Total, Active: d.Active, Deprecated: d.Deprecated, Urgent: d.Urgent()},
		Deprecations:     statuses,
		Recommendations:  recs,
		ValidationIssues: d.Report.Summary(),
		Issues:           issues,
	})
}

// CheckDeprecations validates the x-deprecated metadata of every schema.
func (r *Runner) CheckDeprecations(ctx context.Context) (*DeprecationResult, error) {
	wt, err := r.loadWorkingTree(ctx)
	if err != nil {
		return nil, err
	}
	res := r.deprecations(wt)
	res.Report.Issues = append(wt.loadIssues(), res.Report.Issues...)
	return res, nil
}

func (r *Runner) deprecations(wt *workingTree) *DeprecationResult {
	now := r.now()
	res := &DeprecationResult{
		Report:      report.New("Deprecation check"),
		GeneratedAt: now,
	}

	for _, s := range wt.parsed() {
		res.Total++
		if !s.IsDeprecated() {
			res.Active++
			continue
		}
		res.Deprecated++

		d := *s.Deprecation
		res.Report.Add(deprecation.ValidateMetadata(s.Name, d, now)...)
		res.Report.Add(deprecation.CheckDescription(s.Name, s.Description, r.cfg.Policy.DeprecationMarker)...)

		status := deprecation.NewStatus(s.Name, d, now, r.cfg.UrgentWindow())
		res.Statuses = append(res.Statuses, status)
		r.logger.Info("deprecated schema",
			zap.String("schema", s.Name),
			zap.String("deprecated_in", d.DeprecatedInVersion),
			zap.String("planned_removal", status.PlannedRemoval),
			zap.String("urgency", status.Urgency),
			zap.Bool("urgent", status.Urgent),
		)
	}
	res.Recommendations = deprecation.Recommendations(res.Statuses)
	return res
}

// CheckOverlap applies the version overlap policy to every deprecated schema
// and reports removals that are overdue.
func (r *Runner) CheckOverlap(ctx context.Context) (*report.Report, error) {
	wt, err := r.loadWorkingTree(ctx)
	if err != nil {
		return nil, err
	}
	rep := report.New("Version overlap check")
	rep.Add(wt.loadIssues()...)
	r.overlap(wt, rep, true)
	return rep, nil
}

// overlap checks every deprecated schema. withOverdue adds the overdue check,
// which Run already gets from the metadata validation. Without it, records
// lacking a version timeline are left to the metadata validation as well.
func (r *Runner) overlap(wt *workingTree, rep *report.Report, withOverdue bool) {
	now := r.now()
	for _, s := range wt.parsed() {
		if !s.IsDeprecated() {
			continue
		}
		d := *s.Deprecation
		if !withOverdue && !d.HasTimeline() {
			continue
		}
		issues := deprecation.CheckOverlap(s.Name, d, r.cfg.Policy.RequiredOverlap)
		if withOverdue {
			issues = append(issues, deprecation.CheckOverdue(s.Name, d, now)...)
		}
		if len(issues) == 0 {
			r.logger.Debug("valid overlap", zap.String("schema", s.Name))
		}
		rep.Add(issues...)
	}
}
