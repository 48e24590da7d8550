package compat

import (
	"encoding/json"
	"fmt"

	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
)

// CheckSchema compares two snapshots of the same schema.
//
// Issues are ordered by rule, then by the order names appear in the previous
// or current document (required lists) or by sorted property name.
func CheckSchema(subject string, prev, cur *registry.Schema) []report.Issue {
	if prev == nil || cur == nil {
		return nil
	}

	var issues []report.Issue

	for _, name := range cur.Required {
		if !prev.IsRequired(name) {
			issues = append(issues,
				report.Errorf(subject, report.KindRequiredFieldAdded, "new required field %q", name).WithField(name))
		}
	}

	for _, name := range prev.Required {
		if !cur.IsRequired(name) {
			issues = append(issues,
				report.Errorf(subject, report.KindRequiredFieldRemoved, "required field %q is no longer required", name).WithField(name))
		}
	}

	for _, name := range prev.PropertyNames() {
		if !cur.HasProperty(name) {
			issues = append(issues,
				report.Errorf(subject, report.KindPropertyRemoved, "property %q was removed", name).WithField(name))
		}
	}

	for _, name := range prev.PropertyNames() {
		prevProp := prev.Properties[name]
		curProp, ok := cur.Properties[name]
		if !ok || !prevProp.HasEnum() || !curProp.HasEnum() {
			continue
		}
		for _, v := range removedLiterals(prevProp.Enum, curProp.Enum) {
			lit := report.Literal(v)
			issues = append(issues,
				report.Errorf(subject, report.KindEnumNarrowed, "enum value %q removed from %q", lit, name).
					WithField(name).
					WithValue(lit))
		}
	}

	return issues
}

// removedLiterals returns the members of prev missing from cur, in prev order.
// Literals compare by their JSON encoding so that "1" and 1 stay distinct.
func removedLiterals(prev, cur []any) []any {
	seen := make(map[string]bool, len(cur))
	for _, v := range cur {
		seen[literalKey(v)] = true
	}
	var removed []any
	for _, v := range prev {
		if !seen[literalKey(v)] {
			removed = append(removed, v)
		}
	}
	return removed
}

func literalKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%T:%v", v, v)
	}
	return string(b)
}
