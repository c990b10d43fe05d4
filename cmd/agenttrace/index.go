package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"agenttrace/internal/errors"
	"agenttrace/internal/index"
	"agenttrace/internal/paths"
	"agenttrace/internal/tracelog"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Mirror the trace log into a SQLite index and report file churn",
	Long: `Sync trace entries into a SQLite database and print per-file churn and
watcher sessions. Entries already indexed are skipped, so repeated runs are
cheap. The sync is skipped entirely while the log is unchanged since the last
run unless --force is given.

Examples:
  agenttrace index
  agenttrace index --db /tmp/trace.db --limit 5
  agenttrace index --format json`,
	RunE: runIndex,
}

func init() {
	addLogFlag(indexCmd)
	indexCmd.Flags().String("db", "", "Index database path (default: index.path)")
	indexCmd.Flags().Int("limit", 20, "Number of files in the churn report (0 for all)")
	indexCmd.Flags().Bool("force", false, "Sync even when the log is unchanged")
	indexCmd.Flags().String("format", string(FormatHuman), "Output format: human or json")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, root)
	if err != nil {
		return err
	}
	defer closeLog()

	dbPath := cfg.Index.Path
	if flag, _ := cmd.Flags().GetString("db"); flag != "" {
		dbPath = flag
	}
	dbPath = paths.Resolve(root, dbPath)
	dir := filepath.Dir(dbPath)
	logPath := traceLogPath(cfg, root)
	limit, _ := cmd.Flags().GetInt("limit")
	force, _ := cmd.Flags().GetBool("force")
	format, _ := cmd.Flags().GetString("format")

	lock, err := index.AcquireLock(dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	db, err := index.Open(dbPath, logger)
	if err != nil {
		return errors.New(errors.OutputDirFailed, "Cannot open index", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	report := &IndexReport{DB: dbPath, Log: logPath}

	meta, err := index.LoadMeta(dir)
	if err != nil {
		logger.Warn("Ignoring index metadata", "error", err)
	}
	freshness := meta.CheckFreshness(logPath)
	if force || !freshness.Fresh {
		started := time.Now()
		entries, err := tracelog.Load(logPath)
		if err != nil {
			return err
		}
		added, err := db.Sync(ctx, entries)
		if err != nil {
			return errors.New(errors.WriteFailed, "Index sync failed", err)
		}
		if err := index.NewSyncMeta(logPath, len(entries), started).Save(dir); err != nil {
			logger.Warn("Cannot save index metadata", "error", err)
		}
		report.Synced = true
		report.Added = added
		report.Reason = freshness.Reason
		logger.Debug("Index synced", "added", added, "entries", len(entries), "duration", time.Since(started))
	}

	if report.Total, err = db.Count(ctx); err != nil {
		return errors.New(errors.ReadFailed, "Index query failed", err)
	}
	if report.Churn, err = db.Churn(ctx, limit); err != nil {
		return errors.New(errors.ReadFailed, "Index query failed", err)
	}
	if report.Sessions, err = db.Sessions(ctx); err != nil {
		return errors.New(errors.ReadFailed, "Index query failed", err)
	}
	if report.NodeTypes, err = db.NodeTypes(ctx, ""); err != nil {
		return errors.New(errors.ReadFailed, "Index query failed", err)
	}

	out, err := FormatReport(report, OutputFormat(format))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
