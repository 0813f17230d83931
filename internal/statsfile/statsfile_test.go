package statsfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b97tsk/wake"
	"github.com/b97tsk/wake/internal/heap"
	"github.com/b97tsk/wake/internal/statsfile"
)

func TestWriteRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "stats.msgpack")

	want := &statsfile.Snapshot{
		RunID:    "run-1",
		Program:  "counter",
		Executor: wake.Stats{Spawned: 20, Completed: 20, Polls: 20, Passes: 1},
		Heap:     heap.Stats{Size: 2048, Peak: 1280, Allocs: 20},
		Ticks:    7,
	}

	require.NoError(t, statsfile.Write(p, want))

	got, ok, err := statsfile.Read(p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestReadMissing(t *testing.T) {
	s, ok, err := statsfile.Read(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestReadCorrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "stats.msgpack")
	require.NoError(t, os.WriteFile(p, []byte{0xc1}, 0o644))

	_, _, err := statsfile.Read(p)
	assert.Error(t, err)
}
