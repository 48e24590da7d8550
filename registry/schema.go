package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-yaml"
)

// schemaSuffixes are stripped from file names to derive schema names,
// longest first.
var schemaSuffixes = []string{
	".schema.json",
	".schema.yaml",
	".schema.yml",
	".json",
	".yaml",
	".yml",
}

// Name derives the schema identifier from a file path:
// "schemas/json/orders.v1.schema.json" → "orders.v1".
func Name(file string) string {
	base := path.Base(strings.ReplaceAll(file, "\\", "/"))
	for _, suffix := range schemaSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// isYAML reports whether the file should be decoded as YAML.
func isYAML(file string) bool {
	return strings.HasSuffix(file, ".yaml") || strings.HasSuffix(file, ".yml")
}

// normalize returns the JSON form of an artifact, converting YAML sources.
func normalize(file string, data []byte) ([]byte, error) {
	if !isYAML(file) {
		return data, nil
	}
	out, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return out, nil
}

// ParseSchema decodes a schema file. YAML is accepted for .yaml/.yml files.
// The document must be a JSON object.
func ParseSchema(file string, data []byte) (*Schema, error) {
	doc, err := normalize(file, data)
	if err != nil {
		return nil, err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(doc, &keys); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if keys == nil {
		return nil, errors.New("invalid JSON: schema must be an object")
	}

	var s Schema
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	s.Name = Name(file)
	s.File = file
	s.doc = doc
	s.present = make(map[string]bool, len(keys))
	for k := range keys {
		s.present[k] = true
	}
	return &s, nil
}

// ParseTopics decodes a topics.json artifact.
func ParseTopics(file string, data []byte) (TopicMap, error) {
	doc, err := normalize(file, data)
	if err != nil {
		return nil, err
	}
	var m TopicMap
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("invalid topic mapping: %w", err)
	}
	if m == nil {
		return nil, errors.New("invalid topic mapping: must be an object")
	}
	return m, nil
}

// ParseVenues decodes a venues.json artifact.
func ParseVenues(file string, data []byte) (VenueList, error) {
	doc, err := normalize(file, data)
	if err != nil {
		return nil, err
	}
	var v VenueList
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("invalid venue registry: %w", err)
	}
	if v == nil {
		return nil, errors.New("invalid venue registry: must be a list")
	}
	return v, nil
}

// Manifest is the subset of a package manifest (package.json) read for
// release checks.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ParseManifest decodes a package manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := unmarshalLenient(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if m.Version == "" {
		return nil, errors.New("invalid manifest: missing version")
	}
	return &m, nil
}

// unmarshalLenient decodes a single JSON value, ignoring unknown fields
// but rejecting trailing data.
func unmarshalLenient(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
