package extractors

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/replay/replaytest"
)

func TestPhaseExtraction(t *testing.T) {
	b := replaytest.New()
	rep := b.Replay()
	countdown := stateName(t, rep, replay.NameCountdown)
	active := stateName(t, rep, replay.NameActive)
	goal := stateName(t, rep, replay.NamePostGoal)
	other := replay.IntAttr(b.Name("PodiumSpotlight"))

	b.At(0, 0).Create(2, objGame).Update(2, replay.ObjStateName, countdown)
	b.At(3, 3).Update(2, replay.ObjStateName, active)
	b.At(4, 4).Update(2, replay.ObjStateName, active)
	b.At(10, 10).Update(2, replay.ObjStateName, goal)
	b.At(11, 11).Update(2, replay.ObjStateName, other)
	b.At(12, 12).Update(2, replay.ObjStateName, active)
	_, schema, list := build(t, b)

	e := NewPhaseExtractor(schema)
	e.Extract(list, schema)

	want := []PhaseEvent{
		{Time: 0, Frame: 0, Phase: PhaseCountdown},
		{Time: 3, Frame: 3, Phase: PhaseActive},
		{Time: 4, Frame: 4, Phase: PhaseActive},
		{Time: 10, Frame: 10, Phase: PhaseGoal},
		{Time: 12, Frame: 12, Phase: PhaseActive},
	}
	if diff := cmp.Diff(want, e.GetEvents()); diff != "" {
		t.Errorf("phase timeline mismatch (-want +got):\n%s", diff)
	}
}

func TestPhaseExtractionPicksDominantActorType(t *testing.T) {
	b := replaytest.New()
	rep := b.Replay()
	countdown := stateName(t, rep, replay.NameCountdown)
	active := stateName(t, rep, replay.NameActive)

	b.At(0, 0).Create(2, objGame).Update(2, replay.ObjStateName, countdown)
	b.At(1, 1).Create(9, objPRI).Update(9, replay.ObjStateName, active)
	b.At(2, 2).Update(2, replay.ObjStateName, active)
	b.At(3, 3).Delete(2)
	// The game event actor is recreated under a new id; both lifetimes count.
	b.At(4, 4).Create(6, objGame).Update(6, replay.ObjStateName, countdown)
	_, schema, list := build(t, b)

	e := NewPhaseExtractor(schema)
	e.Extract(list, schema)

	got := e.GetEvents()
	want := []Phase{PhaseCountdown, PhaseActive, PhaseCountdown}
	if len(got) != len(want) {
		t.Fatalf("expected %d phase events, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Phase != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i].Phase)
		}
	}
	if got[1].Frame != 2 {
		t.Errorf("expected the stray update at frame 1 to be ignored, got frame %d", got[1].Frame)
	}
}

func TestPhaseExtractionWithoutPhaseNames(t *testing.T) {
	b := replaytest.New()
	b.Replay().Names = []string{"None"}
	b.At(0, 0).Create(2, objGame).Update(2, replay.ObjStateName, replay.IntAttr(0))
	_, schema, list := build(t, b)

	e := NewPhaseExtractor(schema)
	e.Extract(list, schema)
	if n := len(e.GetEvents()); n != 0 {
		t.Errorf("expected no phase events, got %d", n)
	}
}
