package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"agenttrace/internal/paths"
)

// EnvPrefix is the prefix for environment overrides, e.g. AGENTTRACE_WATCH_DEBOUNCE_MS.
const EnvPrefix = "AGENTTRACE"

// Config represents the complete agenttrace configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	Root    string `json:"root" mapstructure:"root"`

	Watch   WatchConfig   `json:"watch" mapstructure:"watch"`
	Render  RenderConfig  `json:"render" mapstructure:"render"`
	Index   IndexConfig   `json:"index" mapstructure:"index"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// WatchConfig contains watcher and pipeline configuration
type WatchConfig struct {
	TraceLog        string   `json:"trace_log" mapstructure:"trace_log"`
	ConversationLog string   `json:"conversation_log" mapstructure:"conversation_log"`
	StateFile       string   `json:"state_file" mapstructure:"state_file"`
	DebounceMs      int      `json:"debounce_ms" mapstructure:"debounce_ms"`
	WindowSize      int      `json:"window_size" mapstructure:"window_size"`
	Excludes        []string `json:"excludes" mapstructure:"excludes"`
	GitContext      bool     `json:"git_context" mapstructure:"git_context"`
}

// RenderConfig contains default output paths for the renderers
type RenderConfig struct {
	SVGOut  string `json:"svg_out" mapstructure:"svg_out"`
	HTMLOut string `json:"html_out" mapstructure:"html_out"`
	DataOut string `json:"data_out" mapstructure:"data_out"`
}

// IndexConfig contains the sqlite trace index configuration
type IndexConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains diagnostic logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"max_size" mapstructure:"max_size"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// DefaultExcludes are always excluded from watching in addition to the
// trace log and state file.
var DefaultExcludes = []string{
	".git",
	".venv",
	"venv",
	"node_modules",
	".pytest_cache",
	paths.DotDir,
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Root:    ".",
		Watch: WatchConfig{
			TraceLog:   "docs/agent-trace.md",
			StateFile:  ".trace_state.json",
			DebounceMs: 800,
			WindowSize: 5,
			Excludes:   append([]string(nil), DefaultExcludes...),
			GitContext: true,
		},
		Render: RenderConfig{
			SVGOut:  "docs/agent-trace.svg",
			HTMLOut: "docs/agent-trace.html",
			DataOut: "docs/agent-trace.json",
		},
		Index: IndexConfig{
			Path: filepath.Join(paths.DotDir, "trace.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
			Compress:   true,
		},
	}
}

// FlagBindings maps CLI flag names to config keys. Only flags present on the
// flag set passed to Load are bound.
var FlagBindings = map[string]string{
	"root":             "root",
	"log":              "watch.trace_log",
	"conversation-log": "watch.conversation_log",
	"state":            "watch.state_file",
	"debounce-ms":      "watch.debounce_ms",
	"window":           "watch.window_size",
	"log-level":        "logging.level",
	"log-file":         "logging.file",
}

// Load reads configuration with precedence: changed CLI flags >
// AGENTTRACE_* environment > config file > defaults.
// configFile may be empty, in which case <root>/.agenttrace/config.json is
// used when present. flags may be nil.
func Load(root, configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	if root != "" {
		v.SetDefault("root", root)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(paths.GetDotDir(root))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	if flags != nil {
		for name, key := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("root", d.Root)
	v.SetDefault("watch.trace_log", d.Watch.TraceLog)
	v.SetDefault("watch.conversation_log", d.Watch.ConversationLog)
	v.SetDefault("watch.state_file", d.Watch.StateFile)
	v.SetDefault("watch.debounce_ms", d.Watch.DebounceMs)
	v.SetDefault("watch.window_size", d.Watch.WindowSize)
	v.SetDefault("watch.excludes", d.Watch.Excludes)
	v.SetDefault("watch.git_context", d.Watch.GitContext)
	v.SetDefault("render.svg_out", d.Render.SVGOut)
	v.SetDefault("render.html_out", d.Render.HTMLOut)
	v.SetDefault("render.data_out", d.Render.DataOut)
	v.SetDefault("index.path", d.Index.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.compress", d.Logging.Compress)
}

// Save writes the configuration to <root>/.agenttrace/config.json
func (c *Config) Save(root string) error {
	configPath := filepath.Join(paths.GetDotDir(root), "config.json")
	if err := paths.EnsureParentDir(configPath); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Watch.DebounceMs <= 0 {
		return &ConfigError{Field: "watch.debounce_ms", Message: "must be positive"}
	}
	if c.Watch.WindowSize < 0 {
		return &ConfigError{Field: "watch.window_size", Message: "must not be negative"}
	}
	if strings.TrimSpace(c.Watch.TraceLog) == "" {
		return &ConfigError{Field: "watch.trace_log", Message: "must not be empty"}
	}
	if strings.TrimSpace(c.Watch.StateFile) == "" {
		return &ConfigError{Field: "watch.state_file", Message: "must not be empty"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
