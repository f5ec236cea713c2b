package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// chdir switches to a clean working directory so ./nbhub.yaml lookups are isolated.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Port)
	}
	if cfg.CodeStyle != "monokai" {
		t.Errorf("expected style monokai, got %s", cfg.CodeStyle)
	}
	if !cfg.Watch {
		t.Error("expected watch to be true")
	}
	if len(cfg.AllowedOrigins) != 4 {
		t.Errorf("expected 4 default origins, got %d", len(cfg.AllowedOrigins))
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdir(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.NotebooksDir != filepath.Join(dir, "notebooks") {
		t.Errorf("expected absolute default dir, got %s", cfg.NotebooksDir)
	}
	if cfg.GetConfigFilePath() != "" {
		t.Errorf("expected no config file, got %s", cfg.GetConfigFilePath())
	}
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := chdir(t)
	file := filepath.Join(dir, "custom.yaml")
	content := "notebooks_dir: /data/nb\nport: 9000\ncode_style: dracula\nwatch: false\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(file, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.NotebooksDir != "/data/nb" || cfg.Port != 9000 || cfg.CodeStyle != "dracula" || cfg.Watch {
		t.Errorf("config file values not applied: %+v", cfg)
	}

	t.Setenv("NBHUB_PORT", "9100")
	t.Setenv("NBHUB_ALLOWED_ORIGINS", "http://a.test,http://b.test/")
	cfg, err = Load(file, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("env should override file, got port %d", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("dir", "", "")
	if err := flags.Parse([]string{"--port", "9200"}); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(file, flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("flag should override env, got port %d", cfg.Port)
	}
	if cfg.NotebooksDir != "/data/nb" {
		t.Errorf("unset flag must not override file, got %s", cfg.NotebooksDir)
	}
}

func TestLoad_BarePortEnv(t *testing.T) {
	chdir(t)
	t.Setenv("PORT", "10000")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 10000 {
		t.Errorf("expected PORT to apply, got %d", cfg.Port)
	}
}

func TestLoad_LocalFileAndErrors(t *testing.T) {
	dir := chdir(t)
	if err := os.WriteFile(filepath.Join(dir, "nbhub.yaml"), []byte("git_ref: main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitRef != "main" || cfg.GetConfigFilePath() != "nbhub.yaml" {
		t.Errorf("expected ./nbhub.yaml to be read, got %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Error("expected error for explicit missing config file")
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("port: 70000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filepath.Join(dir, "bad.yaml"), nil); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestIsOriginAllowed(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsOriginAllowed("http://localhost:3000") {
		t.Error("expected default origin to be allowed")
	}
	if cfg.IsOriginAllowed("http://evil.test") {
		t.Error("expected unknown origin to be rejected")
	}
	cfg.AllowedOrigins = []string{"*"}
	if !cfg.IsOriginAllowed("http://evil.test") {
		t.Error("expected wildcard to allow every origin")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GitRef = "v1.0"
	cfg.configPath = "/ignored"

	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}

	var cfg2 Config
	if err := yaml.Unmarshal(data, &cfg2); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg2.GitRef != "v1.0" || cfg2.Port != cfg.Port || len(cfg2.AllowedOrigins) != len(cfg.AllowedOrigins) {
		t.Errorf("round trip mismatch: %+v", cfg2)
	}
}
