//go:build !windows

package index

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"agenttrace/internal/errors"
)

const lockFile = "sync.lock"

// Lock is an exclusive advisory lock held while the index is rebuilt.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock takes the sync lock in dir without blocking. It fails when
// another process is syncing the same index.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New(errors.OutputDirFailed, "Cannot create index directory", err)
	}

	path := filepath.Join(dir, lockFile)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.New(errors.WriteFailed, "Cannot open index lock", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		holder := "another process"
		if content, readErr := os.ReadFile(path); readErr == nil && len(content) > 0 {
			holder = "PID " + strings.TrimSpace(string(content))
		}
		return nil, errors.New(errors.WriteFailed, "Index is being synced by "+holder, err)
	}

	if err := writePID(file); err != nil {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
		return nil, errors.New(errors.WriteFailed, "Cannot record lock owner", err)
	}

	return &Lock{path: path, file: file}, nil
}

func writePID(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err := f.WriteString(strconv.Itoa(os.Getpid()))
	return err
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	_ = l.file.Close()
	_ = os.Remove(l.path)
}
