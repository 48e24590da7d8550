package registry

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Schema is the structural snapshot of one schema file at one point in time.
// It is decoded once and never mutated; comparisons take two snapshots.
type Schema struct {
	// Name is the file-derived identifier, e.g. "orders" for orders.schema.json.
	Name string `json:"-"`

	// File is the path the schema was loaded from, relative to the registry root.
	File string `json:"-"`

	ID          string              `json:"$id,omitempty"`
	Dialect     string              `json:"$schema,omitempty"`
	Title       string              `json:"title,omitempty"`
	Type        TypeSet             `json:"type,omitempty"`
	Description string              `json:"description,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`

	// Deprecation is the x-deprecated extension; nil when absent.
	Deprecation *Deprecation `json:"x-deprecated,omitempty"`

	// present records which top-level keys appeared in the document,
	// so that "missing" and "empty" stay distinguishable.
	present map[string]bool

	// doc is the normalized JSON document used for meta-schema checks.
	doc []byte
}

// Has reports whether the top-level key appeared in the source document.
func (s *Schema) Has(key string) bool {
	return s.present[key]
}

// JSON returns the normalized JSON document (YAML sources are converted).
func (s *Schema) JSON() []byte {
	return s.doc
}

// PropertyNames returns the declared property names in sorted order.
func (s *Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasProperty reports whether name is declared in properties.
func (s *Schema) HasProperty(name string) bool {
	_, ok := s.Properties[name]
	return ok
}

// IsRequired reports whether name is listed in required.
func (s *Schema) IsRequired(name string) bool {
	return slices.Contains(s.Required, name)
}

// IsDeprecated reports whether the schema carries x-deprecated with deprecated: true.
func (s *Schema) IsDeprecated() bool {
	return s.Deprecation != nil && s.Deprecation.Deprecated
}

// Identifier returns the schema name used for example lookup: the const of a
// "schema" property when declared, otherwise the file-derived name.
func (s *Schema) Identifier() string {
	if p, ok := s.Properties["schema"]; ok {
		if c, ok := p.Const.(string); ok && c != "" {
			return c
		}
	}
	return s.Name
}

// Property is the type descriptor of one declared property.
type Property struct {
	Type        TypeSet `json:"type,omitempty"`
	Enum        []any   `json:"enum,omitempty"`
	Const       any     `json:"const,omitempty"`
	Description string  `json:"description,omitempty"`
}

// UnmarshalJSON also accepts the boolean subschemas true and false, which
// carry no type and no enum.
func (p *Property) UnmarshalJSON(b []byte) error {
	var allowed bool
	if err := json.Unmarshal(b, &allowed); err == nil {
		*p = Property{}
		return nil
	}
	type plain Property
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Property(v)
	return nil
}

// HasEnum reports whether the property declares an enum facet.
func (p Property) HasEnum() bool {
	return p.Enum != nil
}

// EnumStrings returns the string members of the enum, skipping non-strings.
func (p Property) EnumStrings() []string {
	var out []string
	for _, v := range p.Enum {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// TypeSet holds a JSON Schema "type", which is either a string or a list of strings.
type TypeSet []string

// UnmarshalJSON accepts "string" or ["string", "null"].
func (t *TypeSet) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*t = TypeSet{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("type must be a string or a list of strings: %w", err)
	}
	*t = many
	return nil
}

// MarshalJSON writes a single type as a string.
func (t TypeSet) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Urgency levels for deprecations.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Deprecation is the x-deprecated metadata attached to a schema.
//
// Only Reason is mandatory once Deprecated is true; every other field is
// advisory. Empty strings mean "not provided".
type Deprecation struct {
	Deprecated bool `json:"deprecated"`

	// DeprecatedInVersion is the release that announced the deprecation, e.g. "v1.2.0".
	DeprecatedInVersion string `json:"deprecatedInVersion,omitempty"`

	// RemovalPlannedInVersion is the release that will drop the schema.
	RemovalPlannedInVersion string `json:"removalPlannedInVersion,omitempty"`

	Reason string `json:"reason,omitempty"`

	// ReplacedBy names the schema consumers should migrate to.
	ReplacedBy string `json:"replacedBy,omitempty"`

	// MigrationGuide is a URL or repository path.
	MigrationGuide string `json:"migrationGuide,omitempty"`

	// DeprecationDate and PlannedRemovalDate are calendar dates (YYYY-MM-DD or RFC 3339).
	DeprecationDate    string `json:"deprecationDate,omitempty"`
	PlannedRemovalDate string `json:"plannedRemovalDate,omitempty"`

	// Urgency is low, medium or high. Empty means medium.
	Urgency string `json:"urgency,omitempty"`

	Contact     string `json:"contact,omitempty"`
	ImpactLevel string `json:"impactLevel,omitempty"`
}

// EffectiveUrgency returns the urgency, defaulting to medium.
func (d Deprecation) EffectiveUrgency() string {
	if d.Urgency == "" {
		return UrgencyMedium
	}
	return d.Urgency
}

// HasTimeline reports whether both version fields are present.
func (d Deprecation) HasTimeline() bool {
	return d.DeprecatedInVersion != "" && d.RemovalPlannedInVersion != ""
}

// PlannedRemoval returns the removal version, falling back to the removal date.
func (d Deprecation) PlannedRemoval() string {
	if d.RemovalPlannedInVersion != "" {
		return d.RemovalPlannedInVersion
	}
	return d.PlannedRemovalDate
}

// TopicMapping maps one schema id to its topic(s).
type TopicMapping struct {
	Topic  string   `json:"topic,omitempty"`
	Topics []string `json:"topics,omitempty"`
}

// Primary returns Topic, or the first of Topics, or "".
func (m TopicMapping) Primary() string {
	if m.Topic != "" {
		return m.Topic
	}
	if len(m.Topics) > 0 {
		return m.Topics[0]
	}
	return ""
}

// TopicMap is the topics.json artifact: schema id → mapping.
type TopicMap map[string]TopicMapping

// IDs returns the schema ids in sorted order.
func (m TopicMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VenueList is the venues.json artifact: an ordered list of venue ids.
type VenueList []string

// Contains reports whether venue is registered.
func (v VenueList) Contains(venue string) bool {
	return slices.Contains(v, venue)
}
