// Package registry provides types and validation for schema registry artifacts.
//
// A registry checkout follows a fixed layout (paths are configurable):
//
//	schemas/
//	├── json/
//	│   └── {name}.schema.json    # JSON Schema (or .schema.yaml), optional x-deprecated
//	├── examples/
//	│   └── {example}.json        # example payloads naming their schema
//	├── registries/
//	│   └── venues.json           # venue registry: ["polymarket", "kalshi"]
//	└── topics.json               # schema id → {"topic": ...} or {"topics": [...]}
//
// # Usage
//
// Decode and validate a schema:
//
//	s, err := registry.ParseSchema("orders.schema.json", data)
//	if err != nil {
//	    // malformed JSON/YAML
//	}
//	if err := s.Validate(registry.ValidateOptions{IDPrefix: "https://schemas.example.dev/"}); err != nil {
//	    // *ValidationErrors with one FieldError per problem
//	}
//
// Check a schema against the JSON Schema meta-schema:
//
//	if err := registry.Compile(s); err != nil { ... }
package registry
