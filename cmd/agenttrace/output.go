package main

import (
	"os"

	"github.com/spf13/cobra"

	"agenttrace/internal/errors"
	"agenttrace/internal/paths"
)

// addLogFlag registers --log on a rendering command.
func addLogFlag(cmd *cobra.Command) {
	cmd.Flags().String("log", "", "Trace log to read (default: watch.trace_log)")
}

// outputPath returns --out when given, otherwise fallback, resolved against root.
func outputPath(cmd *cobra.Command, root, fallback string) string {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return paths.Resolve(root, out)
	}
	return paths.Resolve(root, fallback)
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if err := paths.EnsureParentDir(path); err != nil {
		return errors.New(errors.OutputDirFailed, "Cannot create output directory", err).
			WithDetails(map[string]string{"path": path})
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.WriteFailed, "Cannot write output", err).
			WithDetails(map[string]string{"path": path})
	}
	return nil
}
