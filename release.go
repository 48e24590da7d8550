package schemareg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
	"github.com/albertocavalcante/go-schemareg/version"
)

// headRef is the revision changelog checks diff against the base.
const headRef = "HEAD"

// fallbackBase is used when the base reference does not exist, e.g. on a
// branch build without the main branch fetched.
const fallbackBase = "HEAD~1"

var versionEntry = regexp.MustCompile(`(?m)^## \[\d+\.\d+\.\d+\]`)

// CheckChangelog requires a changelog entry when schema, OpenAPI or version
// files changed between the base reference and HEAD.
func (r *Runner) CheckChangelog(ctx context.Context) (*report.Report, error) {
	rep := report.New("Changelog check")
	if r.history == nil {
		return nil, fmt.Errorf("%w: no git repository at %s", ErrHistoryUnavailable, r.cfg.Root)
	}

	base, ok, err := r.changelogBase(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		rep.Skip("no earlier revision to diff against")
		return rep, nil
	}

	changed, err := r.history.ChangedFiles(ctx, base, headRef)
	if err != nil {
		return nil, fmt.Errorf("%w: diff %s..%s: %w", ErrHistoryUnavailable, base, headRef, err)
	}
	watched := r.watchedChanges(changed)
	if len(watched) == 0 {
		rep.Notice("no schema changes detected, changelog check skipped")
		return rep, nil
	}
	r.logger.Info("schema changes detected", zap.String("base", base), zap.Strings("files", watched))
	rep.Notice("changed files: " + strings.Join(watched, ", "))

	file := r.cfg.Registry.ChangelogFile
	content, ok := r.readArtifact(rep, file, file)
	if !ok {
		if len(rep.Issues) == 0 {
			rep.Add(report.Errorf(file, report.KindChangelogMissing, "%s not found", file))
		}
		return rep, nil
	}
	if !hasUnreleasedEntry(content) && !versionEntry.Match(content) {
		rep.Add(report.Errorf(file, report.KindChangelogStale,
			"must have an entry under ## [Unreleased] or a new ## [X.Y.Z] version entry"))
	}
	return rep, nil
}

func (r *Runner) changelogBase(ctx context.Context) (string, bool, error) {
	for _, ref := range []string{r.cfg.Policy.BaseRef, fallbackBase} {
		ok, err := r.history.ResolveRef(ctx, ref)
		if err != nil {
			return "", false, fmt.Errorf("%w: resolve %s: %w", ErrHistoryUnavailable, ref, err)
		}
		if ok {
			return ref, true, nil
		}
	}
	return "", false, nil
}

func (r *Runner) watchedChanges(changed []string) []string {
	var out []string
	for _, f := range changed {
		if f == r.cfg.Registry.VersionFile {
			out = append(out, f)
			continue
		}
		for _, prefix := range r.cfg.Registry.WatchPaths {
			if strings.HasPrefix(f, prefix) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// hasUnreleasedEntry reports whether the "## [Unreleased]" section has any
// line other than blank lines and ### headings.
func hasUnreleasedEntry(content []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(content))
	inUnreleased := false
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, "## [Unreleased]") {
			inUnreleased = true
			continue
		}
		if !inUnreleased {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			return false
		}
		if strings.TrimSpace(line) != "" && !strings.HasPrefix(line, "###") {
			return true
		}
	}
	return false
}

// CheckReleaseTag verifies that the package manifest version equals the
// release tag without its leading "v".
func (r *Runner) CheckReleaseTag(ctx context.Context, tag string) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: no release tag given", ErrInvalidConfig)
	}

	rep := report.New("Release tag check")
	file := r.cfg.Registry.VersionFile
	data, ok := r.readArtifact(rep, file, file)
	if !ok {
		if len(rep.Issues) == 0 {
			rep.Add(report.Errorf(file, report.KindLoadError, "%s not found", file))
		}
		return rep, nil
	}
	m, err := registry.ParseManifest(data)
	if err != nil {
		rep.Add(report.Errorf(file, report.KindParseError, "%v", err))
		return rep, nil
	}

	if _, ok := version.Parse(tag); !ok {
		rep.Add(report.Errorf(file, report.KindInvalidVersion, "tag %s is not a release version", tag).WithValue(tag))
		return rep, nil
	}
	if !version.SameRelease(tag, m.Version) {
		rep.Add(report.Errorf(file, report.KindVersionMismatch,
			"version %s does not match tag %s", m.Version, tag).
			WithValue(m.Version).
			WithSuggestion(strings.TrimPrefix(tag, "v")))
		return rep, nil
	}
	rep.Notice(fmt.Sprintf("version %s matches tag %s", m.Version, tag))
	return rep, nil
}
