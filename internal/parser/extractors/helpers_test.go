package extractors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/replay/replaytest"
)

const (
	objPRI      = "TAGame.Default__PRI_TA"
	objGameInfo = "GameInfo_Soccar.GameInfo.GameInfo_Soccar:GameReplicationInfoArchetype"
	objGame     = "TAGame.GameEvent_Soccar_TA"
)

func build(t *testing.T, b *replaytest.Builder) (*replay.Replay, *replay.Schema, *lifetime.List) {
	t.Helper()
	rep := b.Replay()
	schema, err := replay.ResolveSchema(rep)
	require.NoError(t, err)
	return rep, schema, lifetime.Build(rep.Frames)
}

func stateName(t *testing.T, rep *replay.Replay, name string) replay.Attribute {
	t.Helper()
	id, ok := rep.FindName(name)
	require.True(t, ok, name)
	return replay.IntAttr(id)
}
