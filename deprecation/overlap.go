package deprecation

import (
	"strings"

	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
	"github.com/albertocavalcante/go-schemareg/version"
)

// DefaultRequiredOverlap is the number of minor releases a deprecated schema
// must survive before removal.
const DefaultRequiredOverlap = 1

// Overlap is the evaluated release window between deprecation and removal.
type Overlap struct {
	// Known is false when either version is missing; nothing else is set then.
	Known bool

	// Valid is false when a version does not parse or the removal major
	// precedes the deprecation major.
	Valid bool

	Distance int
	Required int

	// SuggestedRemoval is set when the window is too short.
	SuggestedRemoval string
}

// Sufficient reports whether the window satisfies the required overlap.
func (o Overlap) Sufficient() bool {
	return o.Known && o.Valid && o.Distance >= o.Required
}

// EvaluateOverlap computes the minor-release distance from dep to rem.
func EvaluateOverlap(dep, rem string, required int) Overlap {
	o := Overlap{Required: required}
	if dep == "" || rem == "" {
		return o
	}
	o.Known = true

	o.Distance, o.Valid = version.MinorDistance(dep, rem)
	if o.Valid && o.Distance < required {
		o.SuggestedRemoval, _ = version.SuggestRemoval(dep, required)
	}
	return o
}

// CheckOverlap applies the overlap policy to one deprecation record.
// Records that are not deprecated produce no issues.
func CheckOverlap(subject string, d registry.Deprecation, required int) []report.Issue {
	if !d.Deprecated {
		return nil
	}

	o := EvaluateOverlap(d.DeprecatedInVersion, d.RemovalPlannedInVersion, required)
	switch {
	case !o.Known:
		var missing []string
		if d.DeprecatedInVersion == "" {
			missing = append(missing, "deprecatedInVersion")
		}
		if d.RemovalPlannedInVersion == "" {
			missing = append(missing, "removalPlannedInVersion")
		}
		return []report.Issue{
			report.Warnf(subject, report.KindMissingTimeline, "missing %s", strings.Join(missing, " and ")),
		}
	case !o.Valid:
		return []report.Issue{
			report.Errorf(subject, report.KindInvalidVersion,
				"invalid version format in deprecation metadata (%s → %s)", d.DeprecatedInVersion, d.RemovalPlannedInVersion),
		}
	case !o.Sufficient():
		return []report.Issue{
			report.Errorf(subject, report.KindInsufficientOverlap,
				"only %d minor version(s) overlap (minimum: %d)", o.Distance, o.Required).
				WithValue(d.RemovalPlannedInVersion).
				WithSuggestion(o.SuggestedRemoval),
		}
	}
	return nil
}
