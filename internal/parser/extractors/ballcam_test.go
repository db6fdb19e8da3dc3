package extractors

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/replay/replaytest"
)

func TestBuildTimelineSingleLifetime(t *testing.T) {
	b := replaytest.New()
	b.At(0, 0).Create(3, replay.ObjCameraActor)
	b.At(5, 5).Update(3, replay.ObjBallcam, replay.BoolAttr(true))
	b.At(8, 8).Update(3, replay.ObjCameraPRI, replay.ActorRefAttr(1))
	b.At(12, 12).Delete(3)
	_, schema, list := build(t, b)

	got := BuildTimeline(list, list.CreatedAs(schema.CameraActor), schema.Ballcam, nil)
	want := []CameraEvent{
		{Time: 0, Frame: 0, Kind: CameraStart},
		{Time: 5, Frame: 5, Kind: CameraUpdate, On: true},
		{Time: 12, Frame: 12, Kind: CameraDisconnect},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTimelineCutoff(t *testing.T) {
	b := replaytest.New()
	b.At(0, 0).Create(3, replay.ObjCameraActor)
	b.At(2, 2).Update(3, replay.ObjBallcam, replay.BoolAttr(true))
	b.At(6, 6).Update(3, replay.ObjBallcam, replay.BoolAttr(false))
	b.At(9, 9).Update(3, replay.ObjBallcam, replay.BoolAttr(true))
	_, schema, list := build(t, b)

	cutoff := 6.0
	got := BuildTimeline(list, list.CreatedAs(schema.CameraActor), schema.Ballcam, &cutoff)
	want := []CameraEvent{
		{Time: 0, Frame: 0, Kind: CameraStart},
		{Time: 2, Frame: 2, Kind: CameraUpdate, On: true},
		{Time: 2, Frame: 2, Kind: CameraDisconnect},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTimelineMergesLifetimes(t *testing.T) {
	b := replaytest.New()
	b.At(0, 0).Create(3, replay.ObjCameraActor)
	b.At(2, 2).Update(3, replay.ObjBallcam, replay.BoolAttr(true))
	b.At(4, 4).Create(5, replay.ObjCameraActor)
	b.At(6, 6).Update(5, replay.ObjBallcam, replay.BoolAttr(false))
	b.At(7, 7).Update(3, replay.ObjBallcam, replay.BoolAttr(false))
	b.At(9, 9).Update(5, replay.ObjBallcam, replay.BoolAttr(true))
	_, schema, list := build(t, b)

	cams := list.CreatedAs(schema.CameraActor)
	require.Len(t, cams, 2)

	got := BuildTimeline(list, cams, schema.Ballcam, nil)
	frames := make([]int, len(got))
	for i, ev := range got {
		frames[i] = ev.Frame
	}
	assert.Equal(t, []int{0, 2, 6, 7, 9, 9}, frames)
	assert.Equal(t, CameraStart, got[0].Kind)
	assert.Equal(t, CameraDisconnect, got[len(got)-1].Kind)
}

func TestBuildTimelineAlwaysFramed(t *testing.T) {
	b := replaytest.New()
	b.At(4, 4).Create(3, replay.ObjCameraActor)
	_, schema, list := build(t, b)

	cutoff := 1.0
	got := BuildTimeline(list, list.CreatedAs(schema.CameraActor), schema.Ballcam, &cutoff)
	require.Len(t, got, 2)
	assert.Equal(t, CameraStart, got[0].Kind)
	assert.Equal(t, CameraDisconnect, got[1].Kind)
	assert.Equal(t, 4, got[1].Frame)

	assert.Nil(t, BuildTimeline(list, nil, schema.Ballcam, nil))
}
