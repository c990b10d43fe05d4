package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"agenttrace/internal/config"
	"agenttrace/internal/errors"
	"agenttrace/internal/paths"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default agenttrace configuration",
	Long: `Creates <root>/.agenttrace/config.json with the default settings. Diagnostics
are routed to a rotating file under .agenttrace/logs.

Running init again is a no-op unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(rootFlag)
	if err != nil {
		return errors.New(errors.PathUnresolved, "Cannot resolve root", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return errors.New(errors.PathUnresolved, "Root is not a directory", err).
			WithDetails(map[string]string{"root": root})
	}

	configPath := filepath.Join(paths.GetDotDir(root), "config.json")
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintln(cmd.OutOrStdout(), "agenttrace already initialized.")
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration at: %s\n", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'agenttrace init --force' to overwrite it.")
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.Logging.File = paths.RelativeTo(root, paths.GetDiagnosticLogPath(root))
	if err := cfg.Save(root); err != nil {
		return errors.New(errors.OutputDirFailed, "Cannot write configuration", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to: %s\n", configPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "  1. Run 'agenttrace watch' while the agent works")
	fmt.Fprintln(cmd.OutOrStdout(), "  2. Run 'agenttrace ui' to browse the trace")
	return nil
}
