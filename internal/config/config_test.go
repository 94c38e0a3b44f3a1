package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func Test_Load_YAMLAppliedAsEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragsearch.yaml")
	yaml := `
model:
  provider: azure
  max_tokens: 500
retrieval:
  indexes: "kb-docs,kb-faq"
  top_k: 5
  min_score: 0.6
cache:
  db_path: /tmp/faq.db
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	for _, k := range []string{"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "SEARCH_INDEXES", "RETRIEVAL_TOP_K", "RETRIEVAL_MIN_SCORE", "FAQ_CACHE_DB"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	loaded, err := Load(path, slog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != path {
		t.Fatalf("want loaded path %q, got %q", path, loaded)
	}

	want := map[string]string{
		"MODEL_PROVIDER":      "azure",
		"MODEL_MAX_TOKENS":    "500",
		"SEARCH_INDEXES":      "kb-docs,kb-faq",
		"RETRIEVAL_TOP_K":     "5",
		"RETRIEVAL_MIN_SCORE": "0.6",
		"FAQ_CACHE_DB":        "/tmp/faq.db",
	}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func Test_Load_EnvWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragsearch.yaml")
	if err := os.WriteFile(path, []byte("model:\n  provider: azure\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MODEL_PROVIDER", "ollama")

	if _, err := Load(path, slog.Default()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("MODEL_PROVIDER"); got != "ollama" {
		t.Errorf("env var must win over YAML: got %q", got)
	}
}

func Test_Load_NoFileIsNotAnError(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), slog.Default())
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if loaded != "" {
		t.Errorf("want empty loaded path, got %q", loaded)
	}
}

func Test_ParseIndexes(t *testing.T) {
	t.Parallel()

	specs, err := ParseIndexes("kb-docs, kb-faq:faq, kb-manual:manual:body")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []IndexSpec{
		{Collection: "kb-docs"},
		{Collection: "kb-faq", Label: "faq"},
		{Collection: "kb-manual", Label: "manual", ContentField: "body"},
	}
	if len(specs) != len(want) {
		t.Fatalf("want %d specs, got %d", len(want), len(specs))
	}
	for i, w := range want {
		if specs[i] != w {
			t.Errorf("spec[%d]: want %+v, got %+v", i, w, specs[i])
		}
	}

	if _, err := ParseIndexes(" , ,"); err == nil {
		t.Error("want error for a list with no collections")
	}
	if _, err := ParseIndexes(":label"); err == nil {
		t.Error("want error for entry with empty collection")
	}
}
