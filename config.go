package schemareg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/albertocavalcante/go-schemareg/deprecation"
	"github.com/albertocavalcante/go-schemareg/registry"
)

// ConfigFileName is the configuration file looked up from the working directory.
const ConfigFileName = "schemareg.toml"

// Config is the configuration of one run. Paths are slash-separated and
// relative to Root.
type Config struct {
	// Root is the registry root on disk. It is the directory holding
	// schemareg.toml when the config was loaded from a file.
	Root string `toml:"-"`

	Registry RegistryConfig `toml:"registry"`
	Policy   PolicyConfig   `toml:"policy"`
}

// RegistryConfig locates registry artifacts.
type RegistryConfig struct {
	SchemasDir string `toml:"schemas_dir"`

	// SchemaPattern is a doublestar pattern matched against file names in SchemasDir.
	SchemaPattern string `toml:"schema_pattern"`

	TopicsFile string `toml:"topics_file"`
	VenuesFile string `toml:"venues_file"`

	ExamplesDir string `toml:"examples_dir"`

	// ExamplePattern is matched against paths relative to ExamplesDir.
	ExamplePattern string `toml:"example_pattern"`

	// OpenAPIFiles are doublestar patterns relative to Root.
	OpenAPIFiles []string `toml:"openapi_files"`

	ChangelogFile string `toml:"changelog_file"`

	// VersionFile is the package manifest whose version must match release tags.
	VersionFile string `toml:"version_file"`

	// WatchPaths are path prefixes whose changes require a changelog entry.
	// VersionFile is always watched.
	WatchPaths []string `toml:"watch_paths"`
}

// PolicyConfig holds the compatibility and deprecation policy knobs.
type PolicyConfig struct {
	// BaseRef is the reference current artifacts are compared against.
	BaseRef string `toml:"base_ref"`

	// IDPrefix, when set, is the required prefix of every schema $id.
	IDPrefix string `toml:"id_prefix"`

	RequiredOverlap   int    `toml:"required_overlap"`
	UrgentWindowDays  int    `toml:"urgent_window_days"`
	DeprecationMarker string `toml:"deprecation_marker"`

	// VenueFields are properties whose enums must name registered venues.
	VenueFields []string `toml:"venue_fields"`

	// RequireRegistry makes a missing schemas directory fatal.
	RequireRegistry bool `toml:"require_registry"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Root: ".",
		Registry: RegistryConfig{
			SchemasDir:     "schemas/json",
			SchemaPattern:  "*.{json,yaml,yml}",
			TopicsFile:     "schemas/topics.json",
			VenuesFile:     "schemas/registries/venues.json",
			ExamplesDir:    "schemas/examples",
			ExamplePattern: "**/*.{json,yaml,yml}",
			OpenAPIFiles:   []string{"openapi/*.{yaml,yml,json}"},
			ChangelogFile:  "CHANGELOG.md",
			VersionFile:    "packages/ts/package.json",
			WatchPaths:     []string{"schemas/", "openapi/"},
		},
		Policy: PolicyConfig{
			BaseRef:           "main",
			RequiredOverlap:   deprecation.DefaultRequiredOverlap,
			UrgentWindowDays:  int(deprecation.DefaultUrgentWindow / (24 * time.Hour)),
			DeprecationMarker: deprecation.DefaultMarker,
			VenueFields:       append([]string(nil), registry.DefaultVenueFields...),
		},
	}
}

// UrgentWindow returns the urgency window as a duration.
func (c Config) UrgentWindow() time.Duration {
	return time.Duration(c.Policy.UrgentWindowDays) * 24 * time.Hour
}

// Validate checks the configuration for logical consistency.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Registry.SchemasDir) == "" {
		problems = append(problems, "registry.schemas_dir must not be empty")
	}
	patterns := map[string]string{
		"registry.schema_pattern":  c.Registry.SchemaPattern,
		"registry.example_pattern": c.Registry.ExamplePattern,
	}
	for i, p := range c.Registry.OpenAPIFiles {
		patterns[fmt.Sprintf("registry.openapi_files[%d]", i)] = p
	}
	for _, key := range sortedKeys(patterns) {
		if !doublestar.ValidatePattern(patterns[key]) {
			problems = append(problems, fmt.Sprintf("%s: invalid pattern %q", key, patterns[key]))
		}
	}
	if strings.TrimSpace(c.Policy.BaseRef) == "" {
		problems = append(problems, "policy.base_ref must not be empty")
	}
	if c.Policy.RequiredOverlap < 0 {
		problems = append(problems, "policy.required_overlap must not be negative")
	}
	if c.Policy.UrgentWindowDays < 0 {
		problems = append(problems, "policy.urgent_window_days must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LoadConfig reads a schemareg.toml file. Keys absent from the file keep
// their DefaultConfig values. Root is set to the file's directory.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	cfg.Root = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig walks up from startDir to locate schemareg.toml.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// DiscoverConfig loads the nearest schemareg.toml above startDir, or returns
// DefaultConfig rooted at startDir when there is none.
func DiscoverConfig(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		cfg := DefaultConfig()
		if startDir != "" {
			cfg.Root = startDir
		}
		return cfg, nil
	}
	return LoadConfig(path)
}
