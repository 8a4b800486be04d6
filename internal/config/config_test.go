package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
anthropic:
  api_key: test-key
  model: claude-sonnet-4-20250514
server:
  host: 0.0.0.0
  port: 9000
  enable_cors: false
storage:
  db_path: /tmp/tasklet-test.db
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("api key = %q", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", cfg.Anthropic.Model)
	}
	if cfg.Server.Addr() != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Server.EnableCORS {
		t.Error("enable_cors should be false")
	}
	if cfg.Storage.DBPath != "/tmp/tasklet-test.db" {
		t.Errorf("db_path = %q", cfg.Storage.DBPath)
	}
}

func TestLoadFromPath_Defaults(t *testing.T) {
	path := writeConfig(t, `anthropic:
  api_key: k
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("default host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if !cfg.Server.EnableCORS {
		t.Error("CORS should default to enabled")
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("default read timeout = %v", cfg.Server.ReadTimeout)
	}
}

func TestLoadFromPath_ExpandsEnvReferences(t *testing.T) {
	original := os.Getenv("TASKLET_TEST_KEY")
	defer os.Setenv("TASKLET_TEST_KEY", original)
	os.Setenv("TASKLET_TEST_KEY", "expanded-secret")

	path := writeConfig(t, `
anthropic:
  api_key: ${TASKLET_TEST_KEY}
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "expanded-secret" {
		t.Errorf("api key = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
