// Package schemareg enforces the compatibility and deprecation policy of a
// schema registry.
//
// A registry is a directory of JSON Schema files plus a topic mapping, a
// venue registry and OpenAPI documents, kept in git. On every change the
// current artifacts are compared with the same paths at a base reference and
// every deprecated schema is checked for complete metadata and a sufficient
// release window before removal.
//
// # Quick Start
//
//	cfg, err := schemareg.DiscoverConfig(".")
//	if err != nil {
//	    return err
//	}
//	runner, err := schemareg.New(cfg, schemareg.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	rep, err := runner.Run(ctx)
//	if err != nil {
//	    return err // environment failure: unreadable history
//	}
//	report.WriteText(os.Stdout, rep, report.TextOptions{})
//	os.Exit(rep.ExitCode())
//
// # Failure Semantics
//
// Bad artifacts and policy violations never abort a run. Each becomes an
// issue in the report and the remaining artifacts are still checked. A run
// fails only when some issue has error severity; warnings are advisory.
//
// Errors returned by the Runner are environment failures, matched with
// errors.Is against ErrRegistryNotFound, ErrHistoryUnavailable and
// ErrInvalidConfig.
//
// # Individual Checks
//
//   - CheckCompatibility: breaking changes against the base reference
//   - CheckDeprecations: x-deprecated metadata, with a JSON status report
//   - CheckOverlap: release window between deprecation and removal
//   - Validate: structure, meta-schema and venue enums
//   - ValidateExamples: example payloads against their schemas
//   - CheckChangelog: changelog entry for schema changes
//   - CheckReleaseTag: package version against a release tag
//
// # Thread Safety
//
// A Runner may be used from multiple goroutines; each call builds its own
// report.
package schemareg
