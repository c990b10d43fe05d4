package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agenttrace/internal/paths"
	"agenttrace/internal/render"
	"agenttrace/internal/tracelog"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Render the trace log as a self-contained HTML viewer",
	Long: `Render the trace log as a single HTML document with the graph, file and role
filters, and a table of changes. The page needs no network access.

With --data the embedded payload is also written as JSON next to the page.

Examples:
  agenttrace ui
  agenttrace ui --out docs/agent-trace.html --data docs/agent-trace.json`,
	RunE: runUI,
}

func init() {
	addLogFlag(uiCmd)
	uiCmd.Flags().String("out", "", "Output path (default: render.html_out)")
	uiCmd.Flags().String("data", "", "Also write the UI payload as JSON to this path")
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	entries, err := tracelog.Load(traceLogPath(cfg, root))
	if err != nil {
		return err
	}
	data := render.BuildUIData(entries)

	page, err := render.RenderHTML(data)
	if err != nil {
		return err
	}
	out := outputPath(cmd, root, cfg.Render.HTMLOut)
	if err := writeOutput(out, page); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d changes, %d conversations)\n", out, len(data.Changes), len(data.Conversations))

	if dataPath, _ := cmd.Flags().GetString("data"); dataPath != "" {
		payload, err := render.EncodeUIData(data, render.FormatJSON)
		if err != nil {
			return err
		}
		dataPath = paths.Resolve(root, dataPath)
		if err := writeOutput(dataPath, payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", dataPath)
	}
	return nil
}
