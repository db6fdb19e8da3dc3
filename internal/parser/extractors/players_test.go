package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/replay/replaytest"
)

func TestPlayerResolverSingleCamera(t *testing.T) {
	p1 := replaytest.Steam("1")

	b := replaytest.New()
	b.At(0, -1).Create(7, objPRI)
	b.At(1, 0).
		Create(3, replay.ObjCameraActor).
		Update(3, replay.ObjCameraPRI, replay.ActorRefAttr(7)).
		Update(7, replay.ObjUniqueID, replay.UniqueIDAttr(p1))
	b.At(2, 50).Delete(3)
	_, schema, list := build(t, b)

	r := NewPlayerResolver(list, schema)
	r.Resolve()

	players := r.GetPlayers()
	require.Len(t, players, 1)
	require.Len(t, players[p1], 1)

	cam := players[p1][0]
	assert.Equal(t, replay.ActorID(3), list.Get(cam).Actor())
	assert.True(t, list.Get(cam).WasDeleted())

	owner, ok := r.GetOwner(cam)
	require.True(t, ok)
	assert.Equal(t, replay.ActorID(7), list.Get(owner).Actor())
	assert.Empty(t, r.GetSkipped())
}

func TestPlayerResolverReusedOwnerID(t *testing.T) {
	p1, p2 := replaytest.Steam("1"), replaytest.Steam("2")

	b := replaytest.New()
	b.At(0, 0).
		Create(7, objPRI).
		Update(7, replay.ObjUniqueID, replay.UniqueIDAttr(p1)).
		Create(3, replay.ObjCameraActor).
		Update(3, replay.ObjCameraPRI, replay.ActorRefAttr(7))
	b.At(10, 20).Delete(7).Delete(3)
	// Id 7 now belongs to a different player.
	b.At(11, 21).
		Create(7, objPRI).
		Update(7, replay.ObjUniqueID, replay.UniqueIDAttr(p2)).
		Create(4, replay.ObjCameraActor)
	b.At(12, 22).Update(4, replay.ObjCameraPRI, replay.ActorRefAttr(7))
	_, schema, list := build(t, b)

	r := NewPlayerResolver(list, schema)
	r.Resolve()

	players := r.GetPlayers()
	require.Len(t, players, 2)
	assert.Equal(t, replay.ActorID(3), list.Get(players[p1][0]).Actor())
	assert.Equal(t, replay.ActorID(4), list.Get(players[p2][0]).Actor())
	assert.Equal(t, []replay.PlayerID{p1, p2}, r.GetIdentities())
}

func TestPlayerResolverReconnect(t *testing.T) {
	p1 := replaytest.Steam("1")

	b := replaytest.New()
	b.At(0, 0).
		Create(7, objPRI).
		Update(7, replay.ObjUniqueID, replay.UniqueIDAttr(p1)).
		Create(3, replay.ObjCameraActor).
		Update(3, replay.ObjCameraPRI, replay.ActorRefAttr(7))
	b.At(5, 10).Delete(3)
	b.At(8, 30).
		Create(9, objPRI).
		Update(9, replay.ObjUniqueID, replay.UniqueIDAttr(p1)).
		Create(2, replay.ObjCameraActor).
		Update(2, replay.ObjCameraPRI, replay.ActorRefAttr(9))
	_, schema, list := build(t, b)

	r := NewPlayerResolver(list, schema)
	r.Resolve()

	cams := r.GetPlayers()[p1]
	require.Len(t, cams, 2)
	assert.Less(t, list.Get(cams[0]).Start(), list.Get(cams[1]).Start())
}

func TestPlayerResolverSkips(t *testing.T) {
	b := replaytest.New()
	b.At(0, 0).
		Create(1, replay.ObjCameraActor). // never references an owner
		Create(2, replay.ObjCameraActor).
		Update(2, replay.ObjCameraPRI, replay.ActorRefAttr(40)). // owner never seen
		Create(8, objPRI).
		Create(3, replay.ObjCameraActor).
		Update(3, replay.ObjCameraPRI, replay.ActorRefAttr(8)) // owner without unique id
	b.At(1, 1).
		Create(4, replay.ObjCameraActor).
		Update(4, replay.ObjCameraPRI, replay.ActorRefAttr(12)) // owner created later
	b.At(2, 2).Create(12, objPRI).Update(12, replay.ObjUniqueID, replay.UniqueIDAttr(replaytest.Steam("9")))
	_, schema, list := build(t, b)

	r := NewPlayerResolver(list, schema)
	r.Resolve()

	assert.Empty(t, r.GetPlayers())
	skipped := r.GetSkipped()
	require.Len(t, skipped, 4)
	actors := make([]replay.ActorID, len(skipped))
	for i, s := range skipped {
		actors[i] = list.Get(s.Lifetime).Actor()
		assert.NotEmpty(t, s.Reason)
	}
	assert.ElementsMatch(t, []replay.ActorID{1, 2, 3, 4}, actors)
}

func TestOwnerPing(t *testing.T) {
	p1 := replaytest.Steam("1")

	b := replaytest.New()
	b.At(0, 0).
		Create(7, objPRI).
		Update(7, replay.ObjUniqueID, replay.UniqueIDAttr(p1)).
		Create(3, replay.ObjCameraActor).
		Update(3, replay.ObjCameraPRI, replay.ActorRefAttr(7))
	b.At(1, 1).Update(7, replay.ObjPing, replay.ByteAttr(42))
	b.At(2, 2).Update(7, replay.ObjPing, replay.ByteAttr(60))
	_, schema, list := build(t, b)

	r := NewPlayerResolver(list, schema)
	r.Resolve()

	ping, ok := OwnerPing(list, r, r.GetPlayers()[p1], schema.Ping)
	require.True(t, ok)
	assert.Equal(t, 42, ping)

	_, ok = OwnerPing(list, r, r.GetPlayers()[p1], replay.NoObject)
	assert.False(t, ok)
}
