package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agenttrace/internal/render"
	"agenttrace/internal/tracelog"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the UI payload as JSON or YAML",
	Long: `Export the conversation nodes, change rows and file aggregates that back the
HTML viewer. Without --out the payload is printed to stdout.

Examples:
  agenttrace export
  agenttrace export --format yaml --out trace.yaml`,
	RunE: runExport,
}

func init() {
	addLogFlag(exportCmd)
	exportCmd.Flags().String("out", "", "Output path (default: stdout)")
	exportCmd.Flags().String("format", "json", "Output format: json or yaml")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	entries, err := tracelog.Load(traceLogPath(cfg, root))
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	payload, err := render.EncodeUIData(render.BuildUIData(entries), format)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out == "" {
		_, err := cmd.OutOrStdout().Write(payload)
		return err
	}
	out := outputPath(cmd, root, "")
	if err := writeOutput(out, payload); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
	return nil
}
