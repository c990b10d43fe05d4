package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agenttrace/internal/errors"
	"agenttrace/internal/schema"
	"agenttrace/internal/tracelog"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every trace entry against the entry JSON schema",
	Long: `Validate each trace entry in the log against the embedded JSON schema.
Exits non-zero when any entry fails.

Examples:
  agenttrace verify
  agenttrace verify --log docs/agent-trace.md --format json`,
	RunE: runVerify,
}

func init() {
	addLogFlag(verifyCmd)
	verifyCmd.Flags().String("format", string(FormatHuman), "Output format: human or json")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	logPath := traceLogPath(cfg, root)
	entries, err := tracelog.Load(logPath)
	if err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return errors.New(errors.InternalError, "Cannot compile entry schema", err)
	}

	report := &VerifyReport{Log: logPath, Entries: len(entries), Violations: validator.Check(entries)}
	if report.Violations == nil {
		report.Violations = []schema.Violation{}
	}

	out, err := FormatReport(report, OutputFormat(format))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if n := len(report.Violations); n > 0 {
		return errors.New(errors.SchemaInvalid, fmt.Sprintf("%d of %d entries failed validation", n, len(entries)), nil)
	}
	return nil
}
