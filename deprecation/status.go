package deprecation

import (
	"time"

	"github.com/albertocavalcante/go-schemareg/registry"
)

// Status is the machine-readable summary of one deprecated schema.
type Status struct {
	Schema              string `json:"schema"`
	Status              string `json:"status"`
	DeprecatedInVersion string `json:"deprecatedInVersion,omitempty"`
	PlannedRemoval      string `json:"plannedRemoval,omitempty"`
	Urgency             string `json:"urgency"`
	Urgent              bool   `json:"urgent"`
	ReplacedBy          string `json:"replacedBy,omitempty"`
	MigrationGuide      string `json:"migrationGuide,omitempty"`
	NeedsAttention      bool   `json:"needsAttention"`
}

// NewStatus summarizes a deprecation record as of now.
func NewStatus(schema string, d registry.Deprecation, now time.Time, window time.Duration) Status {
	urgent := IsUrgent(d, now, window)
	return Status{
		Schema:              schema,
		Status:              "deprecated",
		DeprecatedInVersion: d.DeprecatedInVersion,
		PlannedRemoval:      d.PlannedRemoval(),
		Urgency:             d.EffectiveUrgency(),
		Urgent:              urgent,
		ReplacedBy:          d.ReplacedBy,
		MigrationGuide:      d.MigrationGuide,
		NeedsAttention:      d.MigrationGuide == "" || d.ReplacedBy == "" || urgent,
	}
}

// Recommendation types and priorities.
const (
	TypeDocumentation = "documentation"
	TypeClarification = "clarification"
	TypeUrgent        = "urgent"

	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Recommendation is a follow-up action for a deprecated schema.
type Recommendation struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Schema      string `json:"schema"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Recommendations lists follow-up actions in status order.
func Recommendations(statuses []Status) []Recommendation {
	var recs []Recommendation
	for _, s := range statuses {
		if s.MigrationGuide == "" {
			recs = append(recs, Recommendation{
				Type:        TypeDocumentation,
				Priority:    PriorityMedium,
				Schema:      s.Schema,
				Action:      "Create migration guide",
				Description: "No migration guide available for " + s.Schema,
			})
		}
		if s.ReplacedBy == "" {
			recs = append(recs, Recommendation{
				Type:        TypeClarification,
				Priority:    PriorityHigh,
				Schema:      s.Schema,
				Action:      "Specify replacement",
				Description: "No replacement schema specified for " + s.Schema,
			})
		}
		if s.Urgent {
			recs = append(recs, Recommendation{
				Type:        TypeUrgent,
				Priority:    PriorityCritical,
				Schema:      s.Schema,
				Action:      "Immediate attention required",
				Description: s.Schema + " removal is imminent - ensure migration is complete",
			})
		}
	}
	return recs
}
