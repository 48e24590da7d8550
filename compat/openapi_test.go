package compat

import (
	"strings"
	"testing"

	"github.com/albertocavalcante/go-schemareg/report"
)

const baseAPI = `
openapi: "3.0.0"
info:
  title: Market Data API
  version: "1.0.0"
paths:
  /orders:
    get:
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
        - name: side
          in: query
          schema:
            type: string
            enum: ["buy", "sell"]
      responses:
        "200":
          description: Orders
          content:
            application/json:
              schema:
                type: object
                required: ["orders", "total"]
                properties:
                  orders:
                    type: array
                    items:
                      type: object
                  total:
                    type: integer
    post:
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: ["symbol"]
              properties:
                symbol:
                  type: string
                note:
                  type: string
      responses:
        "201":
          description: Created
  /venues:
    get:
      responses:
        "200":
          description: Venues
`

func TestCheckOpenAPI_Identical(t *testing.T) {
	issues, err := CheckOpenAPI("market", []byte(baseAPI), []byte(baseAPI))
	if err != nil {
		t.Fatalf("CheckOpenAPI() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("identical documents produced issues: %v", issues)
	}
}

func TestCheckOpenAPI_NoPrevious(t *testing.T) {
	issues, err := CheckOpenAPI("market", nil, []byte(baseAPI))
	if err != nil || len(issues) != 0 {
		t.Errorf("CheckOpenAPI(nil) = %v, %v", issues, err)
	}
}

func TestCheckOpenAPI_BreakingChanges(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
		want want
	}{
		{
			name: "endpoint removed",
			edit: func(s string) string {
				i := strings.Index(s, "  /venues:")
				return s[:i]
			},
			want: want{report.KindEndpointRemoved, "/venues", ""},
		},
		{
			name: "method removed",
			edit: func(s string) string {
				start := strings.Index(s, "    post:")
				end := strings.Index(s, "  /venues:")
				return s[:start] + s[end:]
			},
			want: want{report.KindMethodRemoved, "/orders", ""},
		},
		{
			name: "required param added",
			edit: func(s string) string {
				return strings.Replace(s, "        - name: limit\n", "        - name: venue\n          in: query\n          required: true\n          schema:\n            type: string\n        - name: limit\n", 1)
			},
			want: want{report.KindRequiredParamAdded, "venue", ""},
		},
		{
			name: "param type changed",
			edit: func(s string) string {
				return strings.Replace(s, "          schema:\n            type: integer\n", "          schema:\n            type: string\n", 1)
			},
			want: want{report.KindParamTypeChanged, "limit", ""},
		},
		{
			name: "param enum narrowed",
			edit: func(s string) string {
				return strings.Replace(s, `enum: ["buy", "sell"]`, `enum: ["buy"]`, 1)
			},
			want: want{report.KindEnumNarrowed, "side", "sell"},
		},
		{
			name: "required request field added",
			edit: func(s string) string {
				return strings.Replace(s, `required: ["symbol"]`, `required: ["symbol", "account"]`, 1)
			},
			want: want{report.KindRequiredFieldAdded, "account", ""},
		},
		{
			name: "required response field removed",
			edit: func(s string) string {
				return strings.Replace(s, "                  total:\n                    type: integer\n", "", 1)
			},
			want: want{report.KindRequiredResponseFieldRemoved, "total", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := CheckOpenAPI("market", []byte(baseAPI), []byte(tt.edit(baseAPI)))
			if err != nil {
				t.Fatalf("CheckOpenAPI() error = %v", err)
			}
			assertIssues(t, issues, []want{tt.want})
			if issues[0].Subject != "market" {
				t.Errorf("Subject = %q", issues[0].Subject)
			}
		})
	}
}

func TestCheckOpenAPI_ExistingOptionalMadeRequired(t *testing.T) {
	cur := strings.Replace(baseAPI, `required: ["symbol"]`, `required: ["symbol", "note"]`, 1)
	issues, err := CheckOpenAPI("market", []byte(baseAPI), []byte(cur))
	if err != nil {
		t.Fatalf("CheckOpenAPI() error = %v", err)
	}
	assertIssues(t, issues, []want{{report.KindRequiredFieldAdded, "note", ""}})
}

func TestCheckOpenAPI_InvalidDocument(t *testing.T) {
	if _, err := CheckOpenAPI("market", []byte(baseAPI), []byte("openapi: [")); err == nil {
		t.Error("expected error for malformed current document")
	}
	_, err := CheckOpenAPI("market", []byte("openapi: ["), []byte(baseAPI))
	if err == nil || !strings.Contains(err.Error(), "previous revision") {
		t.Errorf("error = %v, want previous revision failure", err)
	}
}
