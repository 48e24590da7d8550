package compat

import (
	"fmt"
	"slices"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/albertocavalcante/go-schemareg/report"
)

// LoadOpenAPI parses an OpenAPI 3 document from JSON or YAML.
func LoadOpenAPI(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

// CheckOpenAPI compares two revisions of an OpenAPI document. A nil prev means
// the document is new. Load failures are returned as errors and the caller
// decides how to report them.
func CheckOpenAPI(subject string, prev, cur []byte) ([]report.Issue, error) {
	if prev == nil {
		return nil, nil
	}
	oldDoc, err := LoadOpenAPI(prev)
	if err != nil {
		return nil, fmt.Errorf("previous revision: %w", err)
	}
	newDoc, err := LoadOpenAPI(cur)
	if err != nil {
		return nil, err
	}
	return DiffOpenAPI(subject, oldDoc, newDoc), nil
}

// DiffOpenAPI reports breaking changes from oldDoc to newDoc, walking paths
// and operations in sorted order.
func DiffOpenAPI(subject string, oldDoc, newDoc *openapi3.T) []report.Issue {
	if oldDoc.Paths == nil {
		return nil
	}

	oldPaths := oldDoc.Paths.Map()
	var newPaths map[string]*openapi3.PathItem
	if newDoc.Paths != nil {
		newPaths = newDoc.Paths.Map()
	}

	var issues []report.Issue
	for _, path := range sortedKeys(oldPaths) {
		newItem, ok := newPaths[path]
		if !ok {
			issues = append(issues,
				report.Errorf(subject, report.KindEndpointRemoved, "endpoint %s was removed", path).WithField(path))
			continue
		}

		oldOps := oldPaths[path].Operations()
		for _, method := range sortedKeys(oldOps) {
			newOp := newItem.GetOperation(method)
			if newOp == nil {
				issues = append(issues,
					report.Errorf(subject, report.KindMethodRemoved, "%s %s was removed", method, path).WithField(path))
				continue
			}
			op := operation{subject: subject, path: path, method: method}
			issues = append(issues, op.check(oldOps[method], newOp)...)
		}
	}
	return issues
}

// operation identifies one path+method pair being compared.
type operation struct {
	subject string
	path    string
	method  string
}

func (o operation) String() string {
	return o.method + " " + o.path
}

func (o operation) errorf(kind report.Kind, field, format string, args ...any) report.Issue {
	msg := fmt.Sprintf(format, args...)
	return report.Errorf(o.subject, kind, "%s: %s", o, msg).WithField(field)
}

func (o operation) check(oldOp, newOp *openapi3.Operation) []report.Issue {
	var issues []report.Issue

	oldParams := paramMap(oldOp.Parameters)
	for _, ref := range newOp.Parameters {
		p := ref.Value
		if p == nil {
			continue
		}
		old, existed := oldParams[paramKey(p)]
		if !existed {
			if p.Required {
				issues = append(issues,
					o.errorf(report.KindRequiredParamAdded, p.Name, "required parameter %q (%s) was added", p.Name, p.In))
			}
			continue
		}

		oldSchema, newSchema := schemaOf(old.Schema), schemaOf(p.Schema)
		if oldSchema == nil || newSchema == nil {
			continue
		}
		if was, now := typeString(oldSchema), typeString(newSchema); was != now {
			issues = append(issues,
				o.errorf(report.KindParamTypeChanged, p.Name, "parameter %q type changed from %s to %s", p.Name, was, now))
		}
		if len(oldSchema.Enum) > 0 && len(newSchema.Enum) > 0 {
			for _, v := range removedLiterals(oldSchema.Enum, newSchema.Enum) {
				lit := report.Literal(v)
				issues = append(issues,
					o.errorf(report.KindEnumNarrowed, p.Name, "enum value %q removed from parameter %q", lit, p.Name).WithValue(lit))
			}
		}
	}

	if oldBody, newBody := requestSchema(oldOp), requestSchema(newOp); oldBody != nil && newBody != nil {
		for _, name := range newBody.Required {
			if slices.Contains(oldBody.Required, name) {
				continue
			}
			issues = append(issues,
				o.errorf(report.KindRequiredFieldAdded, name, "required request body field %q was added", name))
		}
	}

	if oldOp.Responses != nil && newOp.Responses != nil {
		oldResps := oldOp.Responses.Map()
		for _, code := range sortedKeys(oldResps) {
			oldResp, newResp := oldResps[code], newOp.Responses.Value(code)
			if newResp == nil || oldResp.Value == nil || newResp.Value == nil {
				continue
			}
			for _, ct := range sortedKeys(oldResp.Value.Content) {
				newMT, ok := newResp.Value.Content[ct]
				if !ok {
					continue
				}
				oldSchema, newSchema := schemaOf(oldResp.Value.Content[ct].Schema), schemaOf(newMT.Schema)
				if oldSchema == nil || newSchema == nil {
					continue
				}
				for _, name := range oldSchema.Required {
					if _, exists := newSchema.Properties[name]; !exists {
						issues = append(issues,
							o.errorf(report.KindRequiredResponseFieldRemoved, name,
								"required response field %q was removed from %s response", name, code))
					}
				}
			}
		}
	}

	return issues
}

func paramKey(p *openapi3.Parameter) string {
	return p.Name + ":" + p.In
}

func paramMap(params openapi3.Parameters) map[string]*openapi3.Parameter {
	m := make(map[string]*openapi3.Parameter, len(params))
	for _, ref := range params {
		if ref.Value != nil {
			m[paramKey(ref.Value)] = ref.Value
		}
	}
	return m
}

func schemaOf(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref == nil {
		return nil
	}
	return ref.Value
}

func typeString(s *openapi3.Schema) string {
	types := s.Type.Slice()
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

// requestSchema returns the schema of the first request body media type,
// by sorted content type.
func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, ct := range sortedKeys(content) {
		if s := schemaOf(content[ct].Schema); s != nil {
			return s
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
