// Package report defines the findings produced by the registry policy checks
// and renders them for humans and tooling.
//
// Every check in this module returns plain [Issue] values. A [Report] collects
// them in the order they were produced, which is deterministic for a given
// input, and derives the terminal status from their severities:
//
//   - any [SeverityError] issue fails the run (exit status 1)
//   - warnings are advisory and never affect the exit status
//
// # Rendering
//
//	report.WriteText(os.Stdout, r, report.TextOptions{Color: true})
//	report.WriteJSON(os.Stdout, r)
package report
