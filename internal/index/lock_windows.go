//go:build windows

package index

import (
	"os"
	"path/filepath"
	"strconv"

	"agenttrace/internal/errors"
)

const lockFile = "sync.lock"

// Lock marks a running sync. Windows has no flock, so the file is a PID
// marker only and concurrent syncs are not prevented.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock writes the sync marker in dir.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New(errors.OutputDirFailed, "Cannot create index directory", err)
	}

	path := filepath.Join(dir, lockFile)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.New(errors.WriteFailed, "Cannot open index lock", err)
	}
	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = file.Close()
		return nil, errors.New(errors.WriteFailed, "Cannot record lock owner", err)
	}
	return &Lock{path: path, file: file}, nil
}

// Release removes the sync marker.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Close()
	_ = os.Remove(l.path)
}
