// Package compat decides whether a change to a registry artifact is backward
// compatible.
//
// Every comparator takes the previous and current form of one artifact and
// returns the issues it finds in a deterministic order. A nil previous form
// means the artifact is new, and new artifacts are always compatible.
//
// Schema rules:
//
//	required-field-added    a name in current.required absent from previous.required
//	required-field-removed  a name in previous.required absent from current.required
//	property-removed        a key of previous.properties absent from current.properties
//	enum-narrowed           a literal of a previous enum absent from the current enum
//
// All four are errors. Removing a required constraint relaxes a JSON Schema,
// yet it is still flagged so that the change gets a manual review.
package compat
