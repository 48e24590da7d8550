package registry

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-schemareg/report"
)

// FieldError represents a validation failure for a specific field.
type FieldError struct {
	Field   string      // Field path (e.g., "required[2]")
	Kind    report.Kind // Rule that failed
	Message string      // Human-readable error message
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Issue converts the error into an error-severity report issue.
func (e *FieldError) Issue(subject string) report.Issue {
	return report.Issue{
		Severity: report.SeverityError,
		Subject:  subject,
		Kind:     e.Kind,
		Field:    e.Field,
		Message:  e.Error(),
	}
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []*FieldError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field string, kind report.Kind, message string) {
	e.Errors = append(e.Errors, &FieldError{Field: field, Kind: kind, Message: message})
}

// HasErrors returns true if any errors were collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if no errors, otherwise returns self.
func (e *ValidationErrors) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Issues converts every collected error into a report issue.
func (e *ValidationErrors) Issues(subject string) []report.Issue {
	out := make([]report.Issue, 0, len(e.Errors))
	for _, err := range e.Errors {
		out = append(out, err.Issue(subject))
	}
	return out
}

// requiredKeys must appear at the top level of every schema document.
var requiredKeys = []string{"$id", "$schema", "title", "type", "properties"}

// Draft2020 is the dialect fragment every schema is expected to declare.
const Draft2020 = "2020-12"

// ValidateOptions configures structural validation.
type ValidateOptions struct {
	// IDPrefix, when set, is the required prefix of every $id.
	IDPrefix string
}

// Validate checks that the schema has the structure the registry expects.
// Returns nil if valid, or *ValidationErrors containing all issues found.
//
// Structural problems stop at the first missing required key, since the
// remaining checks need those keys.
func (s *Schema) Validate(opts ValidateOptions) error {
	var errs ValidationErrors

	var missing []string
	for _, key := range requiredKeys {
		if !s.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		errs.Add("", report.KindMissingField, "missing required fields: "+strings.Join(missing, ", "))
		return errs.ToError()
	}

	if opts.IDPrefix != "" && !strings.HasPrefix(s.ID, opts.IDPrefix) {
		errs.Add("$id", report.KindInvalidID, fmt.Sprintf("should start with %s", opts.IDPrefix))
	}

	var undeclared []string
	for _, name := range s.Required {
		if !s.HasProperty(name) {
			undeclared = append(undeclared, name)
		}
	}
	if len(undeclared) > 0 {
		errs.Add("required", report.KindRequiredNotDeclared,
			"required fields not in properties: "+strings.Join(undeclared, ", "))
	}

	return errs.ToError()
}

// UsesDraft2020 reports whether $schema names JSON Schema draft 2020-12.
func (s *Schema) UsesDraft2020() bool {
	return strings.Contains(s.Dialect, Draft2020)
}
