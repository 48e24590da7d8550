package registry

import (
	"github.com/albertocavalcante/go-schemareg/report"
)

// DefaultVenueFields are the properties whose enums must name registered venues.
var DefaultVenueFields = []string{"venue_id", "long_venue", "short_venue"}

// CheckVenueEnums reports every enum literal of the given venue fields that
// is not in the venue registry. Fields without an enum are skipped.
func CheckVenueEnums(s *Schema, venues VenueList, fields []string) []report.Issue {
	var issues []report.Issue
	for _, field := range fields {
		p, ok := s.Properties[field]
		if !ok || !p.HasEnum() {
			continue
		}
		for _, v := range p.Enum {
			lit := report.Literal(v)
			if str, isStr := v.(string); isStr && venues.Contains(str) {
				continue
			}
			issues = append(issues,
				report.Errorf(s.Name, report.KindInvalidVenue, "field %s references unregistered venue %q", field, lit).
					WithField(field).
					WithValue(lit),
			)
		}
	}
	return issues
}
