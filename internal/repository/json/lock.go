package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var ErrLocked = errors.New("dataset is locked by another run")

type lockInfo struct {
	PID       int       `json:"pid"`
	CreatedAt time.Time `json:"created_at"`
}

// Lock takes an exclusive lock file next to path. A lock older than ttl is
// treated as left over from a crashed run and replaced.
func Lock(path string, ttl time.Duration) (release func(), err error) {
	lockPath := path + ".lock"
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	for try := 0; try < 2; try++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = json.NewEncoder(f).Encode(lockInfo{PID: os.Getpid(), CreatedAt: time.Now().UTC()})
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}

		st, statErr := os.Stat(lockPath)
		if statErr != nil || ttl <= 0 || time.Since(st.ModTime()) < ttl {
			return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
		}
		_ = os.Remove(lockPath)
	}
	return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
}
