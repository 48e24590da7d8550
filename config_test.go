package schemareg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if got, want := cfg.UrgentWindow(), 30*24*time.Hour; got != want {
		t.Errorf("UrgentWindow() = %v, want %v", got, want)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[registry]
schemas_dir = "registry/schemas"
openapi_files = ["api/**/*.yaml"]

[policy]
base_ref = "develop"
required_overlap = 2
urgent_window_days = 14
venue_fields = ["venue"]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Root != dir {
		t.Errorf("Root = %q, want %q", cfg.Root, dir)
	}
	if cfg.Registry.SchemasDir != "registry/schemas" {
		t.Errorf("SchemasDir = %q", cfg.Registry.SchemasDir)
	}
	if len(cfg.Registry.OpenAPIFiles) != 1 || cfg.Registry.OpenAPIFiles[0] != "api/**/*.yaml" {
		t.Errorf("OpenAPIFiles = %v", cfg.Registry.OpenAPIFiles)
	}
	if cfg.Policy.BaseRef != "develop" || cfg.Policy.RequiredOverlap != 2 {
		t.Errorf("Policy = %+v", cfg.Policy)
	}
	if cfg.UrgentWindow() != 14*24*time.Hour {
		t.Errorf("UrgentWindow() = %v", cfg.UrgentWindow())
	}
	if len(cfg.Policy.VenueFields) != 1 || cfg.Policy.VenueFields[0] != "venue" {
		t.Errorf("VenueFields = %v", cfg.Policy.VenueFields)
	}

	// Unset keys keep their defaults.
	if cfg.Registry.TopicsFile != "schemas/topics.json" {
		t.Errorf("TopicsFile = %q, want default", cfg.Registry.TopicsFile)
	}
	if cfg.Policy.DeprecationMarker != "DEPRECATED" {
		t.Errorf("DeprecationMarker = %q, want default", cfg.Policy.DeprecationMarker)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "syntax", content: "[registry\nschemas_dir = 1"},
		{name: "unknown key", content: "[policy]\nbase_branch = \"main\"\n", invalid: true},
		{name: "negative overlap", content: "[policy]\nrequired_overlap = -1\n", invalid: true},
		{name: "bad pattern", content: "[registry]\nschema_pattern = \"[a-\"\n", invalid: true},
		{name: "empty base ref", content: "[policy]\nbase_ref = \"\"\n", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = %v, want %v (err: %v)", got, tt.invalid, err)
			}
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "schemas", "json")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig() error = %v", err)
	}
	if !ok {
		t.Fatal("FindConfig() did not find the config")
	}
	if got != want {
		t.Errorf("FindConfig() = %q, want %q", got, want)
	}
}

func TestDiscoverConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	// Guard against a schemareg.toml somewhere above the temp directory.
	if _, ok, _ := FindConfig(dir); ok {
		t.Skip("a schemareg.toml exists above the temp directory")
	}

	cfg, err := DiscoverConfig(dir)
	if err != nil {
		t.Fatalf("DiscoverConfig() error = %v", err)
	}
	if cfg.Root != dir {
		t.Errorf("Root = %q, want %q", cfg.Root, dir)
	}
	if cfg.Registry.SchemasDir != DefaultConfig().Registry.SchemasDir {
		t.Errorf("SchemasDir = %q", cfg.Registry.SchemasDir)
	}
}

func TestDiscoverConfig_File(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[policy]\nbase_ref = \"trunk\"\n")

	cfg, err := DiscoverConfig(root)
	if err != nil {
		t.Fatalf("DiscoverConfig() error = %v", err)
	}
	if cfg.Policy.BaseRef != "trunk" {
		t.Errorf("BaseRef = %q, want trunk", cfg.Policy.BaseRef)
	}
}
