package deprecation

import (
	"errors"
	"strings"
	"time"

	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
)

// DefaultMarker is the keyword a deprecated schema's description should contain.
const DefaultMarker = "DEPRECATED"

// DefaultUrgentWindow is how close a planned removal must be to count as urgent.
const DefaultUrgentWindow = 30 * 24 * time.Hour

// ErrInvalidDate is returned by ParseDate for unrecognized input.
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order. Date-only values are midnight UTC.
var dateLayouts = []string{time.DateOnly, time.RFC3339}

// ParseDate parses a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ValidateMetadata checks one deprecation record against now.
// Records that are not deprecated produce no issues.
func ValidateMetadata(subject string, d registry.Deprecation, now time.Time) []report.Issue {
	if !d.Deprecated {
		return nil
	}

	var issues []report.Issue

	if d.Reason == "" {
		issues = append(issues, report.Errorf(subject, report.KindMissingReason,
			"missing required field 'reason' in x-deprecated").WithField("reason"))
	}
	if d.DeprecatedInVersion == "" {
		issues = append(issues, report.Warnf(subject, report.KindMissingDeprecatedVersion,
			"missing 'deprecatedInVersion' - when was this deprecated?").WithField("deprecatedInVersion"))
	}
	if d.ReplacedBy == "" {
		issues = append(issues, report.Warnf(subject, report.KindMissingReplacement,
			"no 'replacedBy' specified - what should users migrate to?").WithField("replacedBy"))
	}
	if d.MigrationGuide == "" {
		issues = append(issues, report.Warnf(subject, report.KindMissingMigrationGuide,
			"no 'migrationGuide' - consider adding migration documentation").WithField("migrationGuide"))
	}
	if d.PlannedRemovalDate == "" && d.RemovalPlannedInVersion == "" {
		issues = append(issues, report.Warnf(subject, report.KindMissingRemovalTimeline,
			"no removal timeline specified - when will this be removed?"))
	}

	if d.DeprecationDate != "" {
		if _, err := ParseDate(d.DeprecationDate); err != nil {
			issues = append(issues, report.Errorf(subject, report.KindInvalidDate,
				"invalid deprecationDate %q", d.DeprecationDate).WithField("deprecationDate").WithValue(d.DeprecationDate))
		}
	}
	if d.PlannedRemovalDate != "" {
		if _, err := ParseDate(d.PlannedRemovalDate); err != nil {
			issues = append(issues, report.Errorf(subject, report.KindInvalidDate,
				"invalid plannedRemovalDate %q", d.PlannedRemovalDate).WithField("plannedRemovalDate").WithValue(d.PlannedRemovalDate))
		}
	}
	issues = append(issues, CheckOverdue(subject, d, now)...)

	switch d.Urgency {
	case "", registry.UrgencyLow, registry.UrgencyMedium, registry.UrgencyHigh:
	default:
		issues = append(issues, report.Warnf(subject, report.KindInvalidUrgency,
			"unknown urgency %q (expected low, medium or high)", d.Urgency).WithField("urgency").WithValue(d.Urgency))
	}

	return issues
}

// CheckOverdue reports a planned removal date that lies strictly before now.
// Missing or malformed dates produce no issue here.
func CheckOverdue(subject string, d registry.Deprecation, now time.Time) []report.Issue {
	if !d.Deprecated || d.PlannedRemovalDate == "" {
		return nil
	}
	removal, err := ParseDate(d.PlannedRemovalDate)
	if err != nil || !removal.Before(now) {
		return nil
	}
	return []report.Issue{
		report.Errorf(subject, report.KindOverdueRemoval,
			"removal date passed (%s) - remove the schema or update the date", d.PlannedRemovalDate).
			WithField("plannedRemovalDate").
			WithValue(d.PlannedRemovalDate),
	}
}

// CheckDescription warns when a deprecated schema's description lacks the
// marker keyword. An empty marker means DefaultMarker.
func CheckDescription(subject, description, marker string) []report.Issue {
	if marker == "" {
		marker = DefaultMarker
	}
	if strings.Contains(description, marker) {
		return nil
	}
	return []report.Issue{
		report.Warnf(subject, report.KindMissingDescriptionMarker,
			"schema description should include a %s warning", marker).WithField("description"),
	}
}

// IsUrgent reports whether a deprecation needs priority handling: urgency is
// high, or the planned removal date is no more than window away.
// Overdue removals are urgent too.
func IsUrgent(d registry.Deprecation, now time.Time, window time.Duration) bool {
	if d.Urgency == registry.UrgencyHigh {
		return true
	}
	if d.PlannedRemovalDate == "" {
		return false
	}
	removal, err := ParseDate(d.PlannedRemovalDate)
	if err != nil {
		return false
	}
	return removal.Sub(now) <= window
}
