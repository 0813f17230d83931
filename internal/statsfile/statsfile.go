// Package statsfile saves and loads end-of-run statistics snapshots.
package statsfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/b97tsk/wake"
	"github.com/b97tsk/wake/internal/heap"
)

// Snapshot is what a run leaves behind.
type Snapshot struct {
	RunID    string     `msgpack:"run_id"`
	Program  string     `msgpack:"program"`
	Executor wake.Stats `msgpack:"executor"`
	Heap     heap.Stats `msgpack:"heap"`
	Ticks    uint64     `msgpack:"ticks"`
}

// Write encodes s into the file at path, replacing it atomically.
func Write(path string, s *Snapshot) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}

// Read decodes the snapshot stored at path.
// It reports false, with no error, if the file does not exist.
func Read(path string) (*Snapshot, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var s Snapshot
	if err := msgpack.NewDecoder(f).Decode(&s); err != nil {
		return nil, false, fmt.Errorf("%s: decode stats: %w", path, err)
	}

	return &s, true, nil
}
