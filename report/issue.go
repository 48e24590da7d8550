package report

import (
	"encoding/json"
	"fmt"
)

// Severity classifies an issue as advisory or failing.
type Severity int

const (
	// SeverityWarning is advisory and never fails a run.
	SeverityWarning Severity = iota
	// SeverityError fails the run.
	SeverityError
)

// String returns "warning" or "error".
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", string(b))
	}
	return nil
}

// Issue is a single finding. Issues are values: checks produce them and
// reports collect them, nothing mutates them afterwards.
type Issue struct {
	Severity Severity `json:"severity"`

	// Subject is the schema name or registry artifact the issue is about.
	Subject string `json:"subject"`

	Kind Kind `json:"kind"`

	// Field is the property, parameter or metadata field involved, if any.
	Field string `json:"field,omitempty"`

	// Value is the literal (enum value, venue, topic) involved, if any.
	Value string `json:"value,omitempty"`

	Message string `json:"message"`

	// Suggestion is an actionable replacement, such as a removal version.
	Suggestion string `json:"suggestion,omitempty"`
}

// Errorf builds an error-severity issue.
func Errorf(subject string, kind Kind, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Subject: subject, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-severity issue.
func Warnf(subject string, kind Kind, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Subject: subject, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithField returns a copy of the issue annotated with a field name.
func (i Issue) WithField(field string) Issue {
	i.Field = field
	return i
}

// WithValue returns a copy of the issue annotated with a literal value.
func (i Issue) WithValue(value string) Issue {
	i.Value = value
	return i
}

// WithSuggestion returns a copy of the issue carrying a suggestion.
func (i Issue) WithSuggestion(s string) Issue {
	i.Suggestion = s
	return i
}

// IsError reports whether the issue fails a run.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// String formats the issue as a single line: "subject: message".
func (i Issue) String() string {
	if i.Subject == "" {
		return i.Message
	}
	return i.Subject + ": " + i.Message
}

// Literal renders an enum literal for messages: strings as-is, anything else
// as its JSON encoding.
func Literal(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
