package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"agenttrace/internal/config"
	"agenttrace/internal/errors"
	"agenttrace/internal/paths"
	"agenttrace/internal/slogutil"
	"agenttrace/internal/version"
)

var (
	rootFlag     string
	configFlag   string
	logLevelFlag string
	logFileFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "agenttrace",
	Short: "agenttrace - record how agent conversations change a repository",
	Long: `agenttrace watches a working tree while a coding agent edits it. Every settled
file change is diffed against the last recorded content, annotated with the
syntax nodes it touched, correlated with the latest conversation turn and
appended to a Markdown trace log. The log renders to an SVG graph and a
self-contained HTML viewer.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.SetVersionTemplate("agenttrace version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Repository root to watch")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: <root>/.agenttrace/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "Diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also write diagnostics to this file, rotated by size")
}

// loadConfig resolves configuration for cmd and returns it with the absolute root.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, err := config.Load(rootFlag, configFlag, cmd.Flags())
	if err != nil {
		return nil, "", errors.New(errors.ConfigInvalid, "Cannot load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", errors.New(errors.ConfigInvalid, "Invalid configuration", err)
	}

	base, err := filepath.Abs(rootFlag)
	if err != nil {
		return nil, "", errors.New(errors.PathUnresolved, "Cannot resolve root", err)
	}
	// A root read from the config file is relative to the directory holding .agenttrace.
	root := base
	if !cmd.Flags().Changed("root") && cfg.Root != "" {
		root = paths.Resolve(base, cfg.Root)
	}
	return cfg, root, nil
}

// newLogger builds the diagnostic logger. Diagnostics go to stderr and, when
// a log file is configured, to a rotating file as well.
func newLogger(cfg *config.Config, root string) (*slog.Logger, func(), error) {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if cfg.Logging.File == "" {
		return slogutil.NewLogger(os.Stderr, level), func() {}, nil
	}

	path := paths.Resolve(root, cfg.Logging.File)
	rf, err := slogutil.OpenRotatingFile(path, slogutil.ParseSize(cfg.Logging.MaxSize), cfg.Logging.MaxBackups)
	if err != nil {
		return nil, nil, errors.New(errors.OutputDirFailed, "Cannot open diagnostic log", err)
	}
	rf.Compress = cfg.Logging.Compress
	return slogutil.NewTeeLogger(level, os.Stderr, rf), func() { _ = rf.Close() }, nil
}

// traceLogPath returns the configured trace log path resolved against root.
func traceLogPath(cfg *config.Config, root string) string {
	return paths.Resolve(root, cfg.Watch.TraceLog)
}
