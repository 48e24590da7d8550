package schemareg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/albertocavalcante/go-schemareg/history"
	"github.com/albertocavalcante/go-schemareg/report"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	ordersV1 = `{
  "$id": "https://schemas.example.com/orders.json",
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Orders",
  "type": "object",
  "properties": {
    "schema": {"const": "orders.v1"},
    "id": {"type": "string"},
    "status": {"type": "string", "enum": ["open", "closed"]},
    "note": {"type": "string"}
  },
  "required": ["schema", "id"]
}`

	ordersV2 = `{
  "$id": "https://schemas.example.com/orders.json",
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Orders",
  "type": "object",
  "properties": {
    "schema": {"const": "orders.v1"},
    "id": {"type": "string"},
    "status": {"type": "string", "enum": ["open"]}
  },
  "required": ["schema", "id", "status"]
}`

	tradesV1 = `{
  "$id": "https://schemas.example.com/trades.json",
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Trades",
  "type": "object",
  "properties": {"price": {"type": "number"}, "venue_id": {"type": "string", "enum": ["XNAS"]}},
  "required": ["price"]
}`

	quotesDeprecated = `{
  "$id": "https://schemas.example.com/quotes.json",
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Quotes",
  "type": "object",
  "description": "DEPRECATED: use quotes.v2",
  "properties": {"bid": {"type": "number"}},
  "x-deprecated": {
    "deprecated": true,
    "deprecatedInVersion": "v1.2.0",
    "removalPlannedInVersion": "v1.2.0",
    "reason": "replaced by quotes.v2",
    "replacedBy": "quotes.v2",
    "migrationGuide": "docs/migrations/quotes-v2.md",
    "plannedRemovalDate": "2026-02-01"
  }
}`
)

func writeTree(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for p, content := range files {
		if err := util.WriteFile(fs, p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return fs
}

func newTestRunner(t *testing.T, cfg Config, files map[string]string, src history.Source) *Runner {
	t.Helper()
	opts := []Option{
		WithFilesystem(writeTree(t, files)),
		WithClock(func() time.Time { return testNow }),
	}
	if src != nil {
		opts = append(opts, WithHistory(src))
	}
	r, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

type wantIssue struct {
	subject string
	kind    report.Kind
	sev     report.Severity
}

func assertIssues(t *testing.T, rep *report.Report, wants []wantIssue) {
	t.Helper()
	if len(rep.Issues) != len(wants) {
		t.Fatalf("got %d issues, want %d:\n%v", len(rep.Issues), len(wants), rep.Issues)
	}
	for i, w := range wants {
		got := rep.Issues[i]
		if got.Subject != w.subject || got.Kind != w.kind || got.Severity != w.sev {
			t.Errorf("issue[%d] = {%s %s %s}, want {%s %s %s}",
				i, got.Subject, got.Kind, got.Severity, w.subject, w.kind, w.sev)
		}
	}
}

func TestRun_EmptyRegistry(t *testing.T) {
	r := newTestRunner(t, DefaultConfig(), nil, history.NewMemorySource())

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Issues) != 0 || rep.Status() != report.StatusPass || rep.ExitCode() != 0 {
		t.Errorf("empty registry: status %s, issues %v", rep.Status(), rep.Issues)
	}
}

func TestRun_EmptyRegistryWithoutHistory(t *testing.T) {
	r := newTestRunner(t, DefaultConfig(), nil, nil)

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !rep.Passed() {
		t.Errorf("issues = %v", rep.Issues)
	}
}

func TestRun_RequireRegistry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.RequireRegistry = true
	r := newTestRunner(t, cfg, nil, history.NewMemorySource())

	if _, err := r.Run(context.Background()); !errors.Is(err, ErrRegistryNotFound) {
		t.Errorf("Run() error = %v, want ErrRegistryNotFound", err)
	}
}

func TestCheckCompatibility_EmptySchemasDir(t *testing.T) {
	src := history.NewMemorySource()
	src.AddRef("main")
	r := newTestRunner(t, DefaultConfig(), map[string]string{"schemas/json/README.txt": "docs"}, src)

	rep, err := r.CheckCompatibility(context.Background())
	if err != nil {
		t.Fatalf("CheckCompatibility() error = %v", err)
	}
	if len(rep.Issues) != 0 || !rep.Passed() {
		t.Errorf("issues = %v", rep.Issues)
	}
}

func TestCheckCompatibility_BreakingChanges(t *testing.T) {
	src := history.NewMemorySource()
	src.SetFile("main", "schemas/json/orders.schema.json", []byte(ordersV1))
	src.SetFile("main", "schemas/topics.json", []byte(`{"orders": {"topic": "orders.v1"}, "trades": {"topic": "trades.v1"}}`))
	src.SetFile("main", "schemas/registries/venues.json", []byte(`["XNAS", "XLON"]`))

	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/orders.schema.json": ordersV2,
		"schemas/json/trades.schema.json": tradesV1,
		"schemas/topics.json":             `{"orders": {"topic": "orders.v2"}}`,
		"schemas/registries/venues.json":  `["XNAS", "XTKS"]`,
	}, src)

	rep, err := r.CheckCompatibility(context.Background())
	if err != nil {
		t.Fatalf("CheckCompatibility() error = %v", err)
	}

	assertIssues(t, rep, []wantIssue{
		{"orders", report.KindRequiredFieldAdded, report.SeverityError},
		{"orders", report.KindPropertyRemoved, report.SeverityError},
		{"orders", report.KindEnumNarrowed, report.SeverityError},
		{"topics", report.KindTopicReassigned, report.SeverityError},
		{"topics", report.KindTopicMappingRemoved, report.SeverityError},
		{"venues", report.KindVenueRemoved, report.SeverityError},
	})
	if rep.Issues[2].Value != "closed" {
		t.Errorf("enum-narrowed value = %q, want closed", rep.Issues[2].Value)
	}
	if rep.Issues[5].Value != "XLON" {
		t.Errorf("venue-removed value = %q, want XLON", rep.Issues[5].Value)
	}
	if len(rep.Notices) != 1 || rep.Notices[0] != "venues added (compatible): XTKS" {
		t.Errorf("Notices = %v", rep.Notices)
	}
	if rep.Status() != report.StatusFail || rep.ExitCode() != 1 {
		t.Errorf("Status() = %s", rep.Status())
	}
}

func TestCheckCompatibility_Deterministic(t *testing.T) {
	src := history.NewMemorySource()
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		p := "schemas/json/" + name + ".schema.json"
		src.SetFile("main", p, []byte(ordersV1))
		files[p] = ordersV2
	}

	var first []report.Issue
	for run := 0; run < 5; run++ {
		r := newTestRunner(t, DefaultConfig(), files, src)
		rep, err := r.CheckCompatibility(context.Background())
		if err != nil {
			t.Fatalf("CheckCompatibility() error = %v", err)
		}
		if run == 0 {
			first = rep.Issues
			if len(first) != 30 {
				t.Fatalf("got %d issues, want 30", len(first))
			}
			continue
		}
		for i := range first {
			if rep.Issues[i] != first[i] {
				t.Fatalf("run %d differs at %d: %v vs %v", run, i, rep.Issues[i], first[i])
			}
		}
	}
	if first[0].Subject != "a" || first[len(first)-1].Subject != "j" {
		t.Errorf("issues not in file order: first %s, last %s", first[0].Subject, first[len(first)-1].Subject)
	}
}

func TestCheckCompatibility_NewSchema(t *testing.T) {
	src := history.NewMemorySource()
	src.AddRef("main")
	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/orders.schema.json": ordersV2,
	}, src)

	rep, err := r.CheckCompatibility(context.Background())
	if err != nil {
		t.Fatalf("CheckCompatibility() error = %v", err)
	}
	if len(rep.Issues) != 0 {
		t.Errorf("new schema produced issues: %v", rep.Issues)
	}
}

func TestCheckCompatibility_SkippedWithoutBase(t *testing.T) {
	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/orders.schema.json": ordersV2,
	}, history.NewMemorySource())

	rep, err := r.CheckCompatibility(context.Background())
	if err != nil {
		t.Fatalf("CheckCompatibility() error = %v", err)
	}
	if rep.Status() != report.StatusSkipped || rep.ExitCode() != 0 {
		t.Errorf("Status() = %s, want skipped", rep.Status())
	}
	if rep.SkipReason == "" {
		t.Error("SkipReason is empty")
	}
}

func TestCheckCompatibility_ParseFailuresContinue(t *testing.T) {
	src := history.NewMemorySource()
	src.SetFile("main", "schemas/json/orders.schema.json", []byte(ordersV1))
	src.SetFile("main", "schemas/json/trades.schema.json", []byte(`{"title": `))
	src.SetFile("main", "schemas/topics.json", []byte(`{}`))

	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/broken.schema.json": `{"properties": `,
		"schemas/json/orders.schema.json": ordersV2,
		"schemas/json/trades.schema.json": tradesV1,
		"schemas/topics.json":             `[not json`,
	}, src)

	rep, err := r.CheckCompatibility(context.Background())
	if err != nil {
		t.Fatalf("CheckCompatibility() error = %v", err)
	}
	assertIssues(t, rep, []wantIssue{
		{"broken", report.KindParseError, report.SeverityError},
		{"orders", report.KindRequiredFieldAdded, report.SeverityError},
		{"orders", report.KindPropertyRemoved, report.SeverityError},
		{"orders", report.KindEnumNarrowed, report.SeverityError},
		{"trades", report.KindParseError, report.SeverityWarning},
		{"topics", report.KindParseError, report.SeverityError},
	})
}

func TestCheckCompatibility_OpenAPI(t *testing.T) {
	const api = `openapi: "3.0.0"
info:
  title: Market
  version: "1.0.0"
paths:
  /orders:
    get:
      responses:
        "200":
          description: ok
  /venues:
    get:
      responses:
        "200":
          description: ok
`
	const apiV2 = `openapi: "3.0.0"
info:
  title: Market
  version: "2.0.0"
paths:
  /orders:
    get:
      responses:
        "200":
          description: ok
`
	src := history.NewMemorySource()
	src.SetFile("main", "openapi/market.yaml", []byte(api))
	src.AddRef("main")

	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/trades.schema.json": tradesV1,
		"openapi/market.yaml":             apiV2,
		"openapi/README.md":               "not matched",
	}, src)

	rep, err := r.CheckCompatibility(context.Background())
	if err != nil {
		t.Fatalf("CheckCompatibility() error = %v", err)
	}
	assertIssues(t, rep, []wantIssue{
		{"market", report.KindEndpointRemoved, report.SeverityError},
	})
}

func TestCheckCompatibility_HistoryErrors(t *testing.T) {
	files := map[string]string{"schemas/json/orders.schema.json": ordersV2}

	r := newTestRunner(t, DefaultConfig(), files, &history.FailingSource{Err: errors.New("disk on fire")})
	if _, err := r.CheckCompatibility(context.Background()); !errors.Is(err, ErrHistoryUnavailable) {
		t.Errorf("error = %v, want ErrHistoryUnavailable", err)
	}

}

func TestCheckCompatibility_WithoutHistory(t *testing.T) {
	r := newTestRunner(t, DefaultConfig(), map[string]string{"schemas/json/orders.schema.json": ordersV2}, nil)

	rep, err := r.CheckCompatibility(context.Background())
	if err != nil {
		t.Fatalf("CheckCompatibility() error = %v", err)
	}
	if !rep.Skipped || !rep.Passed() {
		t.Errorf("Skipped = %v, Passed = %v, want a passing skip", rep.Skipped, rep.Passed())
	}
}

func TestRun_WithoutHistoryStillChecksDeprecations(t *testing.T) {
	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/quotes.schema.json": quotesDeprecated,
	}, nil)

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Notices) != 1 {
		t.Errorf("Notices = %v, want the compatibility skip", rep.Notices)
	}
	assertIssues(t, rep, []wantIssue{
		{"quotes", report.KindOverdueRemoval, report.SeverityError},
		{"quotes", report.KindInsufficientOverlap, report.SeverityError},
	})
}

func TestRun_Aggregates(t *testing.T) {
	src := history.NewMemorySource()
	src.SetFile("main", "schemas/json/orders.schema.json", []byte(ordersV1))

	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/orders.schema.json": ordersV2,
		"schemas/json/quotes.schema.json": quotesDeprecated,
	}, src)

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assertIssues(t, rep, []wantIssue{
		{"orders", report.KindRequiredFieldAdded, report.SeverityError},
		{"orders", report.KindPropertyRemoved, report.SeverityError},
		{"orders", report.KindEnumNarrowed, report.SeverityError},
		{"quotes", report.KindOverdueRemoval, report.SeverityError},
		{"quotes", report.KindInsufficientOverlap, report.SeverityError},
	})
	if got := rep.Issues[4].Suggestion; got != "v1.4.0" {
		t.Errorf("Suggestion = %q, want v1.4.0", got)
	}
}

func TestRun_SkippedBaseStillChecksDeprecations(t *testing.T) {
	r := newTestRunner(t, DefaultConfig(), map[string]string{
		"schemas/json/quotes.schema.json": quotesDeprecated,
	}, history.NewMemorySource())

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.Skipped {
		t.Error("combined report must not be skipped")
	}
	if len(rep.Notices) != 1 {
		t.Errorf("Notices = %v, want the compatibility skip", rep.Notices)
	}
	assertIssues(t, rep, []wantIssue{
		{"quotes", report.KindOverdueRemoval, report.SeverityError},
		{"quotes", report.KindInsufficientOverlap, report.SeverityError},
	})
}

func TestNew_InvalidOptions(t *testing.T) {
	if _, err := New(DefaultConfig(), WithFilesystem(memfs.New()), WithConcurrency(0)); err == nil {
		t.Error("expected error for zero concurrency")
	}
	if _, err := New(DefaultConfig(), WithFilesystem(nil)); err == nil {
		t.Error("expected error for nil filesystem")
	}
	if _, err := New(DefaultConfig(), WithFilesystem(memfs.New()), WithClock(nil)); err == nil {
		t.Error("expected error for nil clock")
	}

	cfg := DefaultConfig()
	cfg.Policy.BaseRef = ""
	if _, err := New(cfg, WithFilesystem(memfs.New())); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
