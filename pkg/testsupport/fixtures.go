package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entgen/pkg/choice"
	"github.com/goliatone/go-entgen/pkg/document"
)

// LoadTemplate reads a YAML/JSON fixture and parses it into a template.
// Testing helpers fail fast to keep contract tests concise.
func LoadTemplate(t *testing.T, path string) *choice.Template {
	t.Helper()

	tmpl, err := LoadTemplateFromPath(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return tmpl
}

// LoadTemplateFromPath parses a template without requiring testing.T,
// allowing callers to wire fixtures in setup functions.
func LoadTemplateFromPath(path string) (*choice.Template, error) {
	if path == "" {
		return nil, errors.New("testsupport: template path is required")
	}

	doc, err := document.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read template: %w", err)
	}
	tmpl, err := document.NewParser().Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse template: %w", err)
	}
	return tmpl, nil
}

// MustLoadRawEntity loads a JSON fixture into a raw entity.
func MustLoadRawEntity(t *testing.T, path string) choice.RawEntity {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load raw entity: %v", err)
	}
	var out choice.RawEntity
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal raw entity: %v", err)
	}
	return out
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
