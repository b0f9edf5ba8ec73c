package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/sawmill/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Logs.Preset != "apache" {
		t.Errorf("expected preset 'apache', got %q", cfg.Logs.Preset)
	}
	if cfg.Logs.Filter != "access" {
		t.Errorf("expected filter 'access', got %q", cfg.Logs.Filter)
	}
	if cfg.Report.Color != "auto" {
		t.Errorf("expected color 'auto', got %q", cfg.Report.Color)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logging to stderr, got %q", cfg.Logging.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestApplyDefaults_DirWithoutPreset(t *testing.T) {
	cfg := Config{Logs: LogsConfig{Dir: "/srv/logs"}}
	cfg.ApplyDefaults()
	if cfg.Logs.Preset != "" {
		t.Errorf("explicit dir should not pick a preset, got %q", cfg.Logs.Preset)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad preset", func(c *Config) { c.Logs.Preset = "iis" }, "logs:"},
		{"negative limit", func(c *Config) { c.Report.Limit = -1 }, "report:"},
		{"bad color", func(c *Config) { c.Report.Color = "sometimes" }, "report:"},
		{"bad endpoint", func(c *Config) { c.Observability.Endpoint = "not a host" }, "observability:"},
		{"sample rate above one", func(c *Config) { c.Observability.SampleRate = 2 }, "observability:"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestLoadWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sawmill.yml")

	yamlContent := `
logs:
  preset: nginx
  filter: access.log
report:
  limit: 10
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := Default()
	if err := Load(&cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logs.Preset != "nginx" {
		t.Errorf("expected preset 'nginx', got %q", cfg.Logs.Preset)
	}
	if cfg.Logs.Filter != "access.log" {
		t.Errorf("expected filter 'access.log', got %q", cfg.Logs.Filter)
	}
	if cfg.Report.Limit != 10 {
		t.Errorf("expected limit 10, got %d", cfg.Report.Limit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level 'debug', got %q", cfg.Logging.Level)
	}
	// untouched keys keep their defaults
	if cfg.Report.Color != "auto" {
		t.Errorf("expected color default 'auto', got %q", cfg.Report.Color)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sawmill.yml")
	if err := os.WriteFile(configPath, []byte("logs:\n  dir: /from/file\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SAWMILL_LOGS_DIR", "/from/env")
	t.Setenv("SAWMILL_REPORT_LIMIT", "3")

	cfg := Default()
	if err := Load(&cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logs.Dir != "/from/env" {
		t.Errorf("expected env to win, got %q", cfg.Logs.Dir)
	}
	if cfg.Report.Limit != 3 {
		t.Errorf("expected limit 3 from env, got %d", cfg.Report.Limit)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SAWMILL_LOGS_FILTER=ssl_access\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("SAWMILL_LOGS_FILTER", "")
	os.Unsetenv("SAWMILL_LOGS_FILTER")

	cfg := Default()
	if err := Load(&cfg, WithConfigFile(""), WithEnvFile(envPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logs.Filter != "ssl_access" {
		t.Errorf("expected filter from .env, got %q", cfg.Logs.Filter)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	cfg := Default()
	err := Load(&cfg, WithConfigFile("/nonexistent/sawmill.yml"))
	if !errors.HasCode(err, errors.ErrCodeResourceAcquisition) {
		t.Fatalf("expected resource acquisition error, got %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sawmill.yml")
	if err := os.WriteFile(configPath, []byte("logs: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg := Default()
	err := Load(&cfg, WithConfigFile(configPath))
	if !errors.HasCode(err, errors.ErrCodeMisconfiguration) {
		t.Fatalf("expected misconfiguration error, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
	env   map[string]string
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }
func (m *mockFS) Getenv(key string) string  { return m.env[key] }

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]bool
		env   map[string]string
		want  string
	}{
		{
			"working directory first",
			map[string]bool{"./sawmill.yml": true, "/etc/sawmill/config.yml": true},
			nil,
			"./sawmill.yml",
		},
		{
			"xdg config home",
			map[string]bool{"/xdg/sawmill/config.yml": true},
			map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"},
			"/xdg/sawmill/config.yml",
		},
		{
			"home fallback",
			map[string]bool{"/home/u/.config/sawmill/config.yml": true},
			map[string]string{"HOME": "/home/u"},
			"/home/u/.config/sawmill/config.yml",
		},
		{
			"system wide",
			map[string]bool{"/etc/sawmill/config.yml": true},
			nil,
			"/etc/sawmill/config.yml",
		},
		{"nothing", nil, nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &Resolver{FileSystem: &mockFS{files: tc.files, env: tc.env}}
			files := resolver.ResolveFiles(LoaderConfig{})
			if files.ConfigFile != tc.want {
				t.Errorf("expected %q, got %q", tc.want, files.ConfigFile)
			}
		})
	}
}

func TestResolverExplicitWins(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./sawmill.yml": true, ".env": true}}}
	files := resolver.ResolveFiles(LoaderConfig{ConfigFile: "/explicit.yml", EnvFile: "/explicit.env"})
	if files.ConfigFile != "/explicit.yml" || files.EnvFile != "/explicit.env" {
		t.Errorf("explicit paths should win, got %+v", files)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/sawmill.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/sawmill.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}
