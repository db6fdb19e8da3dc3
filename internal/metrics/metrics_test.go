package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveReplay(t *testing.T) {
	m := New()
	m.ObserveReplay(200*time.Millisecond, 6, 1, nil)
	m.ObserveReplay(100*time.Millisecond, 4, 0, nil)
	m.ObserveReplay(time.Second, 0, 0, errors.New("bad"))

	assert.InDelta(t, 2, testutil.ToFloat64(m.replaysProcessed), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.replaysFailed), 1e-9)
	assert.InDelta(t, 10, testutil.ToFloat64(m.playersScored), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.camerasSkipped), 1e-9)
	n, err := testutil.GatherAndCount(m.Registry())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveReplay(time.Second, 2, 0, nil)

	path := filepath.Join(t.TempDir(), "ballcam.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "ballcam_replays_processed_total 1")
	assert.Contains(t, text, "ballcam_players_scored_total 2")
	assert.Contains(t, text, "ballcam_replay_parse_seconds_count 1")

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
