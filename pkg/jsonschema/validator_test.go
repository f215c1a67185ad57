package jsonschema

import (
	"strings"
	"testing"
)

const runSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"iterations": { "type": "integer", "minimum": 1 },
		"benches": {
			"type": "array",
			"items": { "type": ["string", "integer"] }
		},
		"format": { "enum": ["text", "json", "yaml"] }
	},
	"required": ["iterations"]
}`

func TestValidateJSON(t *testing.T) {
	schema, err := Compile("run.json", runSchema)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		name       string
		json       string
		wantErrs   int
		wantSubstr string
	}{
		{
			name:     "Valid document",
			json:     `{"iterations": 1000, "benches": ["cas", 3], "format": "json"}`,
			wantErrs: 0,
		},
		{
			name:       "Missing required property",
			json:       `{"benches": ["cas"]}`,
			wantErrs:   1,
			wantSubstr: "iterations",
		},
		{
			name:       "Wrong type",
			json:       `{"iterations": "many"}`,
			wantErrs:   1,
			wantSubstr: "/iterations",
		},
		{
			name:       "Fractional integer",
			json:       `{"iterations": 1.5}`,
			wantErrs:   1,
			wantSubstr: "/iterations",
		},
		{
			name:       "Unknown key",
			json:       `{"iterations": 1, "threads": 4}`,
			wantErrs:   1,
			wantSubstr: "threads",
		},
		{
			name:     "Several violations",
			json:     `{"iterations": 0, "format": "xml"}`,
			wantErrs: 2,
		},
		{
			name:       "Malformed JSON",
			json:       `{"iterations": `,
			wantErrs:   1,
			wantSubstr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := schema.ValidateJSON([]byte(tt.json))
			if len(errs) != tt.wantErrs {
				t.Fatalf("got %d errors (%v), want %d", len(errs), errs, tt.wantErrs)
			}
			if tt.wantSubstr != "" && !strings.Contains(errs.Error(), tt.wantSubstr) {
				t.Errorf("error %q does not mention %q", errs.Error(), tt.wantSubstr)
			}
		})
	}
}

func TestValidate_GenericDocument(t *testing.T) {
	schema := MustCompile("run.json", runSchema)

	doc := map[string]interface{}{
		"iterations": 10,
		"benches":    []interface{}{"mem"},
	}
	if errs := schema.Validate(doc); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	if _, err := Compile("bad.json", `{"type": 12}`); err == nil {
		t.Error("expected error for invalid schema")
	}
	if _, err := Compile("bad.json", `{`); err == nil {
		t.Error("expected error for malformed schema")
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	MustCompile("bad.json", `{`)
}

func TestValidationErrors_Error(t *testing.T) {
	var empty ValidationErrors
	if empty.Error() != "" {
		t.Errorf("empty errors = %q", empty.Error())
	}

	errs := ValidationErrors{
		errString("first"),
		errString("second"),
	}
	if got := errs.Error(); got != "first; second" {
		t.Errorf("Error() = %q", got)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
