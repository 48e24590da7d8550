package schemareg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/albertocavalcante/go-schemareg/history"
	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
)

// Runner checks one registry. Its configuration is fixed for its lifetime.
type Runner struct {
	cfg         Config
	fs          billy.Filesystem
	history     history.Source
	logger      *zap.Logger
	now         func() time.Time
	concurrency int
}

// New creates a runner for cfg.
//
// Without WithFilesystem the working tree is cfg.Root on disk, and unless
// WithHistory is given the git repository containing it is opened. A
// directory outside any repository leaves the runner without history.
func New(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rc, err := newRunConfig(opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}

	r := &Runner{
		cfg:         cfg,
		fs:          rc.fs,
		history:     rc.history,
		logger:      rc.logger,
		now:         rc.clock,
		concurrency: rc.concurrency,
	}

	if r.fs == nil {
		r.fs = osfs.New(cfg.Root)
		if r.history == nil {
			src, err := history.OpenGit(cfg.Root)
			switch {
			case err == nil:
				r.logger.Debug("opened git history", zap.String("root", cfg.Root), zap.String("prefix", src.Prefix()))
				r.history = src
			case errors.Is(err, history.ErrNotRepository):
				r.logger.Debug("no git repository", zap.String("root", cfg.Root))
			default:
				return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
			}
		}
	}
	return r, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// schemaFile is one schema artifact of the working tree.
type schemaFile struct {
	path   string
	name   string
	schema *registry.Schema

	// err is set when the file could not be read (kind load-error) or
	// parsed (kind parse-error).
	err     error
	errKind report.Kind
}

// workingTree is the current state of the registry.
type workingTree struct {
	// found is false when the schemas directory does not exist.
	found   bool
	schemas []schemaFile
}

// loadWorkingTree reads and parses every schema file in sorted order. A file
// that fails to load is kept with its error so the rest still get checked.
func (r *Runner) loadWorkingTree(ctx context.Context) (*workingTree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := r.cfg.Registry.SchemasDir
	files, ok, err := listDir(r.fs, dir, r.cfg.Registry.SchemaPattern)
	if err != nil {
		return nil, err
	}
	if !ok {
		if r.cfg.Policy.RequireRegistry {
			return nil, fmt.Errorf("%w: %s", ErrRegistryNotFound, dir)
		}
		r.logger.Info("schemas directory not found, nothing to check", zap.String("dir", dir))
		return &workingTree{}, nil
	}

	wt := &workingTree{found: true, schemas: make([]schemaFile, 0, len(files))}
	for _, f := range files {
		sf := schemaFile{path: f, name: registry.Name(f)}
		data, _, err := readFile(r.fs, f)
		if err != nil {
			sf.err, sf.errKind = err, report.KindLoadError
		} else if sf.schema, err = registry.ParseSchema(f, data); err != nil {
			sf.err, sf.errKind = err, report.KindParseError
		}
		if sf.err != nil {
			r.logger.Warn("failed to load schema", zap.String("file", f), zap.Error(sf.err))
		}
		wt.schemas = append(wt.schemas, sf)
	}
	r.logger.Debug("loaded schemas", zap.String("dir", dir), zap.Int("count", len(files)))
	return wt, nil
}

// loadIssues reports every schema that failed to load.
func (wt *workingTree) loadIssues() []report.Issue {
	var issues []report.Issue
	for _, sf := range wt.schemas {
		if sf.err != nil {
			issues = append(issues, report.Errorf(sf.name, sf.errKind, "failed to load %s: %v", sf.path, sf.err))
		}
	}
	return issues
}

// parsed returns the schemas that loaded, in file order.
func (wt *workingTree) parsed() []*registry.Schema {
	out := make([]*registry.Schema, 0, len(wt.schemas))
	for _, sf := range wt.schemas {
		if sf.schema != nil {
			out = append(out, sf.schema)
		}
	}
	return out
}

// Run performs the complete registry check: compatibility against the base
// reference, deprecation metadata and version overlap. It fails iff any
// issue has error severity.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	wt, err := r.loadWorkingTree(ctx)
	if err != nil {
		return nil, err
	}

	rep := report.New("Registry check")
	rep.Add(wt.loadIssues()...)

	compatRep := report.New("Compatibility check")
	if err := r.compatibility(ctx, wt, compatRep); err != nil {
		return nil, err
	}
	rep.Merge(compatRep)

	rep.Merge(r.deprecations(wt).Report)

	overlap := report.New("Version overlap check")
	r.overlap(wt, overlap, false)
	rep.Merge(overlap)

	s := rep.Summary()
	r.logger.Info("registry check finished",
		zap.String("status", string(rep.Status())),
		zap.Int("schemas", len(wt.schemas)),
		zap.Int("errors", s.Errors),
		zap.Int("warnings", s.Warnings),
	)
	return rep, nil
}
