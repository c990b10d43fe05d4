package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Watch.DebounceMs != 800 {
		t.Errorf("DebounceMs = %d, want 800", cfg.Watch.DebounceMs)
	}
	if cfg.Watch.TraceLog != "docs/agent-trace.md" {
		t.Errorf("TraceLog = %q, want %q", cfg.Watch.TraceLog, "docs/agent-trace.md")
	}
	if cfg.Watch.StateFile != ".trace_state.json" {
		t.Errorf("StateFile = %q, want %q", cfg.Watch.StateFile, ".trace_state.json")
	}
	if cfg.Watch.WindowSize != 5 {
		t.Errorf("WindowSize = %d, want 5", cfg.Watch.WindowSize)
	}

	want := map[string]bool{".git": false, "node_modules": false, ".venv": false}
	for _, ex := range cfg.Watch.Excludes {
		if _, ok := want[ex]; ok {
			want[ex] = true
		}
	}
	for ex, found := range want {
		if !found {
			t.Errorf("Excludes should contain %q", ex)
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root, "", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.DebounceMs != 800 {
		t.Errorf("DebounceMs = %d, want default 800", cfg.Watch.DebounceMs)
	}
}

func TestLoad_ConfigFileMergesWithDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".agenttrace")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data := `{"watch": {"debounce_ms": 250, "conversation_log": "docs/conversation.jsonl"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root, "", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.DebounceMs != 250 {
		t.Errorf("DebounceMs = %d, want 250", cfg.Watch.DebounceMs)
	}
	if cfg.Watch.ConversationLog != "docs/conversation.jsonl" {
		t.Errorf("ConversationLog = %q", cfg.Watch.ConversationLog)
	}
	if cfg.Watch.TraceLog != "docs/agent-trace.md" {
		t.Errorf("TraceLog should keep default, got %q", cfg.Watch.TraceLog)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("AGENTTRACE_WATCH_DEBOUNCE_MS", "1200")

	cfg, err := Load(root, "", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.DebounceMs != 1200 {
		t.Errorf("DebounceMs = %d, want 1200 from env", cfg.Watch.DebounceMs)
	}
}

func TestLoad_FlagsWin(t *testing.T) {
	root := t.TempDir()
	t.Setenv("AGENTTRACE_WATCH_DEBOUNCE_MS", "1200")

	flags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flags.Int("debounce-ms", 800, "")
	flags.String("log", "docs/agent-trace.md", "")
	if err := flags.Parse([]string{"--debounce-ms", "50"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root, "", flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.DebounceMs != 50 {
		t.Errorf("DebounceMs = %d, want 50 from flag", cfg.Watch.DebounceMs)
	}
	if cfg.Watch.TraceLog != "docs/agent-trace.md" {
		t.Errorf("unchanged flag should not override, got %q", cfg.Watch.TraceLog)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir(), "/nonexistent/config.json", nil); err == nil {
		t.Error("expected error for explicit missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero debounce", func(c *Config) { c.Watch.DebounceMs = 0 }, "watch.debounce_ms"},
		{"negative window", func(c *Config) { c.Watch.WindowSize = -1 }, "watch.window_size"},
		{"empty trace log", func(c *Config) { c.Watch.TraceLog = " " }, "watch.trace_log"},
		{"empty state", func(c *Config) { c.Watch.StateFile = "" }, "watch.state_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestSave(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Watch.DebounceMs = 300

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(root, "", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Watch.DebounceMs != 300 {
		t.Errorf("DebounceMs = %d, want 300 after save", loaded.Watch.DebounceMs)
	}
}
