// Package deprecation validates x-deprecated metadata and the version
// overlap a deprecated schema must honor before it is removed.
//
// The checks only run for schemas whose metadata says deprecated: true.
// Missing recommended fields are warnings. A missing reason, a malformed
// date, an overdue removal and an insufficient overlap are errors.
package deprecation
