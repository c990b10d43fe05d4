package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agenttrace/internal/render"
	"agenttrace/internal/tracelog"
)

var svgCmd = &cobra.Command{
	Use:   "svg",
	Short: "Render the trace log as an SVG graph",
	Long: `Render the trace log as a two-column SVG graph: conversation turns on the
left, file changes on the right, one edge per change.

Examples:
  agenttrace svg
  agenttrace svg --log docs/agent-trace.md --out docs/agent-trace.svg`,
	RunE: runSVG,
}

func init() {
	addLogFlag(svgCmd)
	svgCmd.Flags().String("out", "", "Output path (default: render.svg_out)")
	rootCmd.AddCommand(svgCmd)
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	entries, err := tracelog.Load(traceLogPath(cfg, root))
	if err != nil {
		return err
	}

	out := outputPath(cmd, root, cfg.Render.SVGOut)
	if err := writeOutput(out, render.RenderSVG(entries)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d entries)\n", out, len(entries))
	return nil
}
