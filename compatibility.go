package schemareg

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-schemareg/compat"
	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
)

// CheckCompatibility compares the working tree against the base reference.
//
// A missing repository or an unresolvable base reference produces a skipped
// report, which passes.
// Artifacts absent at the base are new and always compatible.
func (r *Runner) CheckCompatibility(ctx context.Context) (*report.Report, error) {
	wt, err := r.loadWorkingTree(ctx)
	if err != nil {
		return nil, err
	}
	rep := report.New("Compatibility check")
	rep.Add(wt.loadIssues()...)
	if err := r.compatibility(ctx, wt, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// revision is an artifact's content at the base reference.
type revision struct {
	data []byte
	ok   bool
}

// prefetch reads paths at ref concurrently. Results keep the order of paths.
func (r *Runner) prefetch(ctx context.Context, ref string, paths []string) ([]revision, error) {
	out := make([]revision, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			data, ok, err := r.history.FileAtRef(ctx, p, ref)
			if err != nil {
				return fmt.Errorf("read %s at %s: %w", p, ref, err)
			}
			out[i] = revision{data: data, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}
	return out, nil
}

func (r *Runner) compatibility(ctx context.Context, wt *workingTree, rep *report.Report) error {
	if !wt.found {
		return nil
	}
	if r.history == nil {
		r.logger.Info("no git history, skipping compatibility check", zap.String("root", r.cfg.Root))
		rep.Skip("no git history, nothing to compare against")
		return nil
	}

	base := r.cfg.Policy.BaseRef
	ok, err := r.history.ResolveRef(ctx, base)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %w", ErrHistoryUnavailable, base, err)
	}
	if !ok {
		r.logger.Info("base reference not found, skipping compatibility check", zap.String("ref", base))
		rep.Skip(fmt.Sprintf("base reference %s not found, nothing to compare against", base))
		return nil
	}

	openapiFiles, err := globFiles(r.fs, r.cfg.Registry.OpenAPIFiles)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(wt.schemas)+2+len(openapiFiles))
	for _, sf := range wt.schemas {
		paths = append(paths, sf.path)
	}
	topicsAt := len(paths)
	paths = append(paths, r.cfg.Registry.TopicsFile, r.cfg.Registry.VenuesFile)
	paths = append(paths, openapiFiles...)

	revs, err := r.prefetch(ctx, base, paths)
	if err != nil {
		return err
	}

	for i, sf := range wt.schemas {
		if sf.schema == nil {
			continue
		}
		r.compareSchema(rep, base, sf, revs[i])
	}
	r.compareTopics(rep, base, revs[topicsAt])
	r.compareVenues(rep, base, revs[topicsAt+1])
	for i, f := range openapiFiles {
		r.compareOpenAPI(rep, base, f, revs[topicsAt+2+i])
	}
	return nil
}

func (r *Runner) compareSchema(rep *report.Report, base string, sf schemaFile, prev revision) {
	if !prev.ok {
		r.logger.Debug("new schema, no compatibility check", zap.String("schema", sf.name))
		return
	}
	old, err := registry.ParseSchema(sf.path, prev.data)
	if err != nil {
		rep.Add(report.Warnf(sf.name, report.KindParseError,
			"previous revision at %s does not parse, comparison skipped: %v", base, err))
		return
	}

	issues := compat.CheckSchema(sf.name, old, sf.schema)
	if len(issues) == 0 {
		r.logger.Debug("schema compatible", zap.String("schema", sf.name))
		return
	}
	for _, is := range issues {
		r.logger.Warn("breaking change detected",
			zap.String("schema", sf.name),
			zap.String("kind", string(is.Kind)),
			zap.String("field", is.Field),
			zap.String("value", is.Value),
		)
	}
	rep.Add(issues...)
}

// readArtifact reads a registry-wide artifact from the working tree. A read
// failure is recorded as a load-error issue and reported as absent.
func (r *Runner) readArtifact(rep *report.Report, subject, path string) ([]byte, bool) {
	data, ok, err := readFile(r.fs, path)
	if err != nil {
		rep.Add(report.Errorf(subject, report.KindLoadError, "failed to load %s: %v", path, err))
		return nil, false
	}
	return data, ok
}

func (r *Runner) compareTopics(rep *report.Report, base string, prev revision) {
	path := r.cfg.Registry.TopicsFile
	cur, curOK := r.readArtifact(rep, compat.TopicsSubject, path)
	current := registry.TopicMap{}
	if curOK {
		var err error
		if current, err = registry.ParseTopics(path, cur); err != nil {
			rep.Add(report.Errorf(compat.TopicsSubject, report.KindParseError, "failed to parse %s: %v", path, err))
			return
		}
	}
	if !prev.ok {
		return
	}

	old, err := registry.ParseTopics(path, prev.data)
	if err != nil {
		rep.Add(report.Warnf(compat.TopicsSubject, report.KindParseError,
			"previous revision at %s does not parse, comparison skipped: %v", base, err))
		return
	}
	rep.Add(compat.CheckTopics(old, current)...)
}

func (r *Runner) compareVenues(rep *report.Report, base string, prev revision) {
	path := r.cfg.Registry.VenuesFile
	cur, curOK := r.readArtifact(rep, compat.VenuesSubject, path)
	current := registry.VenueList{}
	if curOK {
		var err error
		if current, err = registry.ParseVenues(path, cur); err != nil {
			rep.Add(report.Errorf(compat.VenuesSubject, report.KindParseError, "failed to parse %s: %v", path, err))
			return
		}
	}
	if !prev.ok {
		return
	}

	old, err := registry.ParseVenues(path, prev.data)
	if err != nil {
		rep.Add(report.Warnf(compat.VenuesSubject, report.KindParseError,
			"previous revision at %s does not parse, comparison skipped: %v", base, err))
		return
	}

	diff := compat.CheckVenues(old, current)
	if len(diff.Added) > 0 {
		r.logger.Info("venues added", zap.Strings("venues", diff.Added))
		rep.Notice("venues added (compatible): " + strings.Join(diff.Added, ", "))
	}
	rep.Add(diff.Issues...)
}

func (r *Runner) compareOpenAPI(rep *report.Report, base, path string, prev revision) {
	subject := registry.Name(path)
	cur, curOK := r.readArtifact(rep, subject, path)
	if !curOK {
		return
	}
	newDoc, err := compat.LoadOpenAPI(cur)
	if err != nil {
		rep.Add(report.Errorf(subject, report.KindParseError, "failed to parse %s: %v", path, err))
		return
	}
	if !prev.ok {
		return
	}
	oldDoc, err := compat.LoadOpenAPI(prev.data)
	if err != nil {
		rep.Add(report.Warnf(subject, report.KindParseError,
			"previous revision at %s does not parse, comparison skipped: %v", base, err))
		return
	}
	rep.Add(compat.DiffOpenAPI(subject, oldDoc, newDoc)...)
}
