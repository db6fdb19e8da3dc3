package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballcam-analyzer/internal/parser"
)

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMapKeepsInputOrder(t *testing.T) {
	paths := []string{"a", "b", "c", "d", "e", "f"}

	var (
		mu   sync.Mutex
		seen = map[int]string{}
	)
	results, err := Map(t.Context(), paths, 3, func(_ context.Context, p string) (string, error) {
		if p == "c" {
			return "", errors.New("bad file")
		}
		if p == "e" {
			panic("boom")
		}
		return p + p, nil
	}, func(i int, r Result[string]) {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = r.Path
	})
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, paths[i], seen[i])
	}
	assert.Equal(t, "aa", results[0].Value)
	assert.EqualError(t, results[2].Err, "bad file")
	assert.ErrorContains(t, results[4].Err, "worker panic")
	assert.Equal(t, []string{"aa", "bb", "dd", "ff"}, Succeeded(results))
}

func TestMapRespectsWorkerLimit(t *testing.T) {
	paths := make([]string, 40)
	for i := range paths {
		paths[i] = filepath.Join("f", string(rune('a'+i%26)))
	}

	var running, peak atomic.Int32
	_, err := Map(t.Context(), paths, 4, func(context.Context, string) (struct{}, error) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		running.Add(-1)
		return struct{}{}, nil
	}, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	results, err := Map(ctx, []string{"a", "b"}, 1, func(context.Context, string) (int, error) {
		return 1, nil
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestDiscoverAndExpand(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.replay", "x")
	touch(t, dir, "a.json", "x")
	touch(t, dir, "c.json.zst", "x")
	touch(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.replay"), 0o755))

	found, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.replay"),
		filepath.Join(dir, "c.json.zst"),
	}, found)

	single := touch(t, t.TempDir(), "one.replay", "x")
	all, err := ExpandInputs([]string{single, dir})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, single, all[0])

	_, err = ExpandInputs([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestAnalyzeReportsPerFileErrors(t *testing.T) {
	dir := t.TempDir()
	bad := touch(t, dir, "broken.json", "{not json")
	empty := touch(t, dir, "empty.json", "")

	results, err := Analyze(t.Context(), []string{bad, empty}, 2, parser.Options{}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Empty(t, Succeeded(results))
}
