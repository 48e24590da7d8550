package schemareg

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/albertocavalcante/go-schemareg/compat"
	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
)

// Validate checks every schema's structure, compiles it against its
// meta-schema, and checks venue enums against the venue registry.
func (r *Runner) Validate(ctx context.Context) (*report.Report, error) {
	wt, err := r.loadWorkingTree(ctx)
	if err != nil {
		return nil, err
	}
	rep := report.New("Schema validation")
	rep.Add(wt.loadIssues()...)

	venues := r.loadVenues(rep)
	opts := registry.ValidateOptions{IDPrefix: r.cfg.Policy.IDPrefix}

	for _, s := range wt.parsed() {
		if err := s.Validate(opts); err != nil {
			var verrs *registry.ValidationErrors
			if !errors.As(err, &verrs) {
				return nil, err
			}
			rep.Add(verrs.Issues(s.Name)...)
		}
		if s.Has("$schema") && !s.UsesDraft2020() {
			rep.Add(report.Warnf(s.Name, report.KindDraftMismatch,
				"$schema should reference JSON Schema draft %s (found %s)", registry.Draft2020, s.Dialect).WithField("$schema"))
		}
		if _, err := registry.Compile(s); err != nil {
			rep.Add(report.Errorf(s.Name, report.KindInvalidSchema, "%v", err))
		}
		if venues != nil {
			rep.Add(registry.CheckVenueEnums(s, venues, r.cfg.Policy.VenueFields)...)
		}
	}

	r.logger.Debug("validated schemas", zap.Int("count", len(wt.schemas)), zap.Int("issues", len(rep.Issues)))
	return rep, nil
}

// loadVenues reads the venue registry. It returns nil when the file is
// absent or broken; a broken file is reported.
func (r *Runner) loadVenues(rep *report.Report) registry.VenueList {
	path := r.cfg.Registry.VenuesFile
	data, ok := r.readArtifact(rep, compat.VenuesSubject, path)
	if !ok {
		return nil
	}
	venues, err := registry.ParseVenues(path, data)
	if err != nil {
		rep.Add(report.Errorf(compat.VenuesSubject, report.KindParseError, "failed to parse %s: %v", path, err))
		return nil
	}
	return venues
}

// ValidateExamples validates every example payload against the schema it
// names.
func (r *Runner) ValidateExamples(ctx context.Context) (*report.Report, error) {
	wt, err := r.loadWorkingTree(ctx)
	if err != nil {
		return nil, err
	}
	rep := report.New("Example validation")
	rep.Add(wt.loadIssues()...)

	catalog, issues := registry.NewCatalog(wt.parsed())
	rep.Add(issues...)

	dir := r.cfg.Registry.ExamplesDir
	files, err := walkMatch(r.fs, dir, r.cfg.Registry.ExamplePattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		rep.Notice(fmt.Sprintf("no examples found in %s", dir))
		return rep, nil
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, ok := r.readArtifact(rep, registry.Name(f), f)
		if !ok {
			continue
		}
		rep.Add(catalog.ValidateExample(f, data)...)
	}
	r.logger.Debug("validated examples", zap.Int("count", len(files)), zap.Int("schemas", catalog.Len()))
	return rep, nil
}
