package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// MetadataVersion is the current version of the sync metadata format.
	MetadataVersion = 1

	metadataFile = "index-meta.json"
)

// SyncMeta records the trace log snapshot the index was last synced from.
type SyncMeta struct {
	Version    int       `json:"version"`
	SyncedAt   time.Time `json:"syncedAt"`
	LogPath    string    `json:"logPath"`
	LogSize    int64     `json:"logSize"`
	LogModTime time.Time `json:"logModTime"`
	Entries    int       `json:"entries"`
	Duration   string    `json:"duration"`
}

// FreshnessResult describes whether the index still mirrors the log.
type FreshnessResult struct {
	Fresh  bool
	Reason string
}

// LoadMeta loads sync metadata from dir. Returns nil without error when no
// metadata exists or its version is outdated.
func LoadMeta(dir string) (*SyncMeta, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index metadata: %w", err)
	}

	var meta SyncMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing index metadata: %w", err)
	}
	if meta.Version != MetadataVersion {
		return nil, nil
	}
	return &meta, nil
}

// Save writes sync metadata to dir.
func (m *SyncMeta) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	m.Version = MetadataVersion

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0644); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	return nil
}

// NewSyncMeta snapshots the log at logPath after a sync of entries.
func NewSyncMeta(logPath string, entries int, started time.Time) *SyncMeta {
	m := &SyncMeta{
		SyncedAt: time.Now().UTC(),
		LogPath:  logPath,
		Entries:  entries,
		Duration: time.Since(started).Round(time.Millisecond).String(),
	}
	if info, err := os.Stat(logPath); err == nil {
		m.LogSize = info.Size()
		m.LogModTime = info.ModTime().UTC()
	}
	return m
}

// CheckFreshness reports whether the log at logPath changed since the sync
// recorded in m. The log is append-only, so size and mtime suffice.
func (m *SyncMeta) CheckFreshness(logPath string) FreshnessResult {
	if m == nil {
		return FreshnessResult{Reason: "no index metadata found"}
	}
	if filepath.Clean(m.LogPath) != filepath.Clean(logPath) {
		return FreshnessResult{Reason: "index was built from " + m.LogPath}
	}

	info, err := os.Stat(logPath)
	if err != nil {
		if os.IsNotExist(err) && m.LogSize == 0 {
			return FreshnessResult{Fresh: true}
		}
		return FreshnessResult{Reason: "trace log not readable"}
	}

	if info.Size() != m.LogSize {
		if info.Size() < m.LogSize {
			return FreshnessResult{Reason: "trace log was truncated"}
		}
		return FreshnessResult{Reason: fmt.Sprintf("trace log grew %d bytes", info.Size()-m.LogSize)}
	}
	if !info.ModTime().UTC().Equal(m.LogModTime) {
		return FreshnessResult{
			Reason: fmt.Sprintf("trace log modified %s after sync", humanDuration(info.ModTime().Sub(m.SyncedAt))),
		}
	}
	return FreshnessResult{Fresh: true}
}

func humanDuration(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
