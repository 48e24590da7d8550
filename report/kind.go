package report

// Kind tags the rule that produced an issue.
type Kind string

// Schema compatibility.
const (
	KindRequiredFieldAdded   Kind = "required-field-added"
	KindRequiredFieldRemoved Kind = "required-field-removed"
	KindPropertyRemoved      Kind = "property-removed"
	KindEnumNarrowed         Kind = "enum-narrowed"
)

// Registry artifacts.
const (
	KindTopicReassigned     Kind = "topic-reassigned"
	KindTopicMappingRemoved Kind = "topic-mapping-removed"
	KindVenueRemoved        Kind = "venue-removed"
)

// OpenAPI documents.
const (
	KindEndpointRemoved              Kind = "endpoint-removed"
	KindMethodRemoved                Kind = "method-removed"
	KindRequiredParamAdded           Kind = "required-param-added"
	KindParamTypeChanged             Kind = "param-type-changed"
	KindRequiredResponseFieldRemoved Kind = "required-response-field-removed"
)

// Deprecation metadata.
const (
	KindMissingReason            Kind = "missing-reason"
	KindMissingDeprecatedVersion Kind = "missing-deprecated-version"
	KindMissingReplacement       Kind = "missing-replacement"
	KindMissingMigrationGuide    Kind = "missing-migration-guide"
	KindMissingRemovalTimeline   Kind = "missing-removal-timeline"
	KindMissingDescriptionMarker Kind = "missing-description-marker"
	KindInvalidDate              Kind = "invalid-date"
	KindOverdueRemoval           Kind = "overdue-removal"
	KindInvalidUrgency           Kind = "invalid-urgency"
)

// Version overlap.
const (
	KindMissingTimeline     Kind = "missing-timeline"
	KindInvalidVersion      Kind = "invalid-version"
	KindInsufficientOverlap Kind = "insufficient-overlap"
)

// Structural validation and release hygiene.
const (
	KindMissingField        Kind = "missing-field"
	KindDraftMismatch       Kind = "draft-mismatch"
	KindInvalidID           Kind = "invalid-id"
	KindRequiredNotDeclared Kind = "required-not-declared"
	KindInvalidSchema       Kind = "invalid-schema"
	KindInvalidVenue        Kind = "invalid-venue"
	KindExampleInvalid      Kind = "example-invalid"
	KindExampleUnmatched    Kind = "example-unmatched"
	KindChangelogMissing    Kind = "changelog-missing"
	KindChangelogStale      Kind = "changelog-stale"
	KindVersionMismatch     Kind = "version-mismatch"
)

// Loading.
const (
	KindParseError Kind = "parse-error"
	KindLoadError  Kind = "load-error"
)
