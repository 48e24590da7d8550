package schemareg

import (
	"errors"
	"time"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/albertocavalcante/go-schemareg/history"
)

// DefaultConcurrency bounds concurrent historical lookups.
const DefaultConcurrency = 8

// Option configures a Runner.
type Option func(*runConfig) error

// runConfig holds the collaborators of a run.
type runConfig struct {
	fs          billy.Filesystem
	history     history.Source
	logger      *zap.Logger
	clock       func() time.Time
	concurrency int
}

// WithFilesystem reads the working tree from fs instead of the Root directory
// on disk. No git repository is opened implicitly when it is set.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *runConfig) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		c.fs = fs
		return nil
	}
}

// WithHistory sets the source of historical artifacts.
func WithHistory(src history.Source) Option {
	return func(c *runConfig) error {
		c.history = src
		return nil
	}
}

// WithLogger sets a structured logger for run diagnostics.
// If not set, logging is disabled.
func WithLogger(l *zap.Logger) Option {
	return func(c *runConfig) error {
		c.logger = l
		return nil
	}
}

// WithClock sets the time source used for date checks.
func WithClock(now func() time.Time) Option {
	return func(c *runConfig) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		c.clock = now
		return nil
	}
}

// WithConcurrency bounds concurrent historical lookups.
func WithConcurrency(n int) Option {
	return func(c *runConfig) error {
		c.concurrency = n
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *runConfig) validate() error {
	if c.concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	return nil
}

// newRunConfig applies opts over defaults and validates the result.
func newRunConfig(opts ...Option) (*runConfig, error) {
	c := &runConfig{
		clock:       time.Now,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}
