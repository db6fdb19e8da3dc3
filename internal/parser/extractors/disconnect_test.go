package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/replay/replaytest"
)

func reservation(pid replay.PlayerID, first, second bool) replay.Reservation {
	return replay.ReservationAttr(pid, first, second).Reservation
}

func TestDisconnectFromEngagedState(t *testing.T) {
	p1 := replaytest.Steam("1")
	e := NewDisconnectExtractor()

	e.HandleReservation(reservation(p1, true, false), 1)
	e.HandleReservation(reservation(p1, false, false), 42.5)

	got, ok := e.Cutoff(p1)
	require.True(t, ok)
	assert.Equal(t, 42.5, got)
}

func TestDisconnectRecordedOnce(t *testing.T) {
	p1 := replaytest.Steam("1")
	e := NewDisconnectExtractor()

	e.HandleReservation(reservation(p1, false, false), 0)
	e.HandleReservation(reservation(p1, true, false), 5)
	e.HandleReservation(reservation(p1, false, false), 10)
	e.HandleReservation(reservation(p1, true, true), 20)
	e.HandleReservation(reservation(p1, false, false), 30)

	cutoffs := e.GetCutoffs()
	require.Len(t, cutoffs, 1)
	assert.Equal(t, 10.0, cutoffs[p1])
}

func TestDisconnectIgnoresBaselineAndPartialDrops(t *testing.T) {
	p1, p2, p3 := replaytest.Steam("1"), replaytest.Steam("2"), replaytest.Steam("3")
	e := NewDisconnectExtractor()

	// First sighting at baseline is not a transition.
	e.HandleReservation(reservation(p1, false, false), 0)
	e.HandleReservation(reservation(p1, false, false), 1)

	// Dropping one flag only is not a disconnect.
	e.HandleReservation(reservation(p2, true, true), 0)
	e.HandleReservation(reservation(p2, false, true), 3)

	// Never seen before, straight to baseline.
	e.HandleReservation(reservation(p3, false, false), 4)

	assert.Empty(t, e.GetCutoffs())
}

func TestDisconnectExtractUsesGameInfoActor(t *testing.T) {
	p1, p2 := replaytest.Steam("1"), replaytest.Steam("2")

	b := replaytest.New()
	b.At(0, 0).
		Create(1, objGameInfo).
		Update(1, replay.ObjReservations, replay.ReservationAttr(p1, true, false)).
		Update(1, replay.ObjReservations, replay.ReservationAttr(p2, true, false))
	b.At(1, 7).Update(1, replay.ObjReservations, replay.ReservationAttr(p1, false, false))
	b.At(2, 8).
		Create(5, objPRI).
		// A stray update from another actor type is outvoted.
		Update(5, replay.ObjReservations, replay.ReservationAttr(p2, false, false))
	_, schema, list := build(t, b)

	e := NewDisconnectExtractor()
	e.Extract(list, schema)

	assert.Equal(t, map[replay.PlayerID]float64{p1: 7}, e.GetCutoffs())
}
