package registry

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/albertocavalcante/go-schemareg/report"
)

// newCompiler returns a compiler defaulting to draft 2020-12 for documents
// that do not declare $schema.
func newCompiler() *jsonschema.Compiler {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	return c
}

// resourceName is the location a schema is registered under in a compiler.
func resourceName(s *Schema) string {
	return s.Name + ".schema.json"
}

// Compile checks the schema against its JSON Schema meta-schema and returns
// the compiled validator.
func Compile(s *Schema) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(s.JSON()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON schema: %w", err)
	}

	c := newCompiler()
	if err := c.AddResource(resourceName(s), doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile(resourceName(s))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// Catalog indexes compiled schemas by identifier for example validation.
type Catalog struct {
	byID  map[string]*jsonschema.Schema
	names []string
}

// NewCatalog compiles every schema. Schemas that do not compile are left out
// and reported as invalid-schema errors.
func NewCatalog(schemas []*Schema) (*Catalog, []report.Issue) {
	cat := &Catalog{byID: make(map[string]*jsonschema.Schema, len(schemas))}
	var issues []report.Issue

	for _, s := range schemas {
		compiled, err := Compile(s)
		if err != nil {
			issues = append(issues, report.Errorf(s.Name, report.KindInvalidSchema, "%s", flatten(err)))
			continue
		}
		id := s.Identifier()
		if _, dup := cat.byID[id]; !dup {
			cat.names = append(cat.names, id)
		}
		cat.byID[id] = compiled
	}
	return cat, issues
}

// Len returns the number of compiled schemas.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// ValidateExample validates one example payload. The payload names its
// schema in a top-level "schema" property.
func (c *Catalog) ValidateExample(file string, data []byte) []report.Issue {
	subject := Name(file)

	doc, err := normalize(file, data)
	if err != nil {
		return []report.Issue{report.Errorf(subject, report.KindParseError, "%v", err)}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return []report.Issue{report.Errorf(subject, report.KindParseError, "invalid JSON: %v", err)}
	}

	obj, ok := inst.(map[string]any)
	if !ok {
		return []report.Issue{report.Errorf(subject, report.KindExampleInvalid, "example must be a JSON object")}
	}

	id, _ := obj["schema"].(string)
	compiled, ok := c.byID[id]
	if !ok {
		return []report.Issue{
			report.Warnf(subject, report.KindExampleUnmatched, "no schema found for example (looking for schema: %q)", id).WithValue(id),
		}
	}

	if err := compiled.Validate(inst); err != nil {
		return []report.Issue{
			report.Errorf(subject, report.KindExampleInvalid, "does not match %s: %s", id, flatten(err)).WithValue(id),
		}
	}
	return nil
}

// flatten joins a multi-line validator error into a single report line.
func flatten(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "; ")
}
