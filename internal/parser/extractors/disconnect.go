package extractors

import (
	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
)

// DisconnectExtractor finds players who left mid-match from the reservation
// list replicated by the game info actor.
//
// A reservation's status pair flips during ordinary joins and ready-ups too.
// Only a drop from a state with at least one flag set straight to (false,false)
// counts as a disconnect, and only the first one per player is kept.
type DisconnectExtractor struct {
	last    map[replay.PlayerID]replay.ReservationStatus
	cutoffs map[replay.PlayerID]float64
}

// NewDisconnectExtractor creates a new disconnect extractor.
func NewDisconnectExtractor() *DisconnectExtractor {
	return &DisconnectExtractor{
		last:    make(map[replay.PlayerID]replay.ReservationStatus),
		cutoffs: make(map[replay.PlayerID]float64),
	}
}

// HandleReservation processes one reservation update. Updates must be fed in
// frame order.
func (e *DisconnectExtractor) HandleReservation(res replay.Reservation, t float64) {
	pid := res.Player
	prev, seen := e.last[pid]
	e.last[pid] = res.Status

	if _, done := e.cutoffs[pid]; done {
		return
	}
	if seen && !prev.Baseline() && res.Status.Baseline() {
		e.cutoffs[pid] = t
	}
}

// Extract feeds every reservation update of the game info actor.
func (e *DisconnectExtractor) Extract(list *lifetime.List, schema *replay.Schema) {
	for _, ev := range singletonUpdates(list, schema.Reservations) {
		if ev.Update.Attribute.Kind != replay.AttrReservation {
			continue
		}
		e.HandleReservation(ev.Update.Attribute.Reservation, ev.Time)
	}
}

// GetCutoffs returns the disconnect time of every player who disconnected.
// Players absent from the map never disconnected.
func (e *DisconnectExtractor) GetCutoffs() map[replay.PlayerID]float64 {
	return e.cutoffs
}

// Cutoff returns the disconnect time of pid, if any.
func (e *DisconnectExtractor) Cutoff(pid replay.PlayerID) (float64, bool) {
	t, ok := e.cutoffs[pid]
	return t, ok
}
