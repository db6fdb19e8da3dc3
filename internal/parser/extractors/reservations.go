package extractors

import (
	"fmt"
	"sort"

	"ballcam-analyzer/internal/replay"
)

// Transition is a change of a player's reservation status. First sightings
// have HasPrev == false.
type Transition struct {
	HasPrev bool
	Prev    replay.ReservationStatus
	Next    replay.ReservationStatus
}

func (t Transition) String() string {
	if !t.HasPrev {
		return fmt.Sprintf("none -> %s", t.Next)
	}
	return fmt.Sprintf("%s -> %s", t.Prev, t.Next)
}

// TransitionCounts is a histogram of reservation transitions.
type TransitionCounts map[Transition]int64

// Add merges other into c.
func (c TransitionCounts) Add(other TransitionCounts) {
	for k, v := range other {
		c[k] += v
	}
}

// TransitionCount is one histogram row.
type TransitionCount struct {
	Transition Transition
	Count      int64
}

// Sorted returns the rows by descending count, then by label.
func (c TransitionCounts) Sorted() []TransitionCount {
	rows := make([]TransitionCount, 0, len(c))
	for k, v := range c {
		rows = append(rows, TransitionCount{Transition: k, Count: v})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Count != rows[b].Count {
			return rows[a].Count > rows[b].Count
		}
		return rows[a].Transition.String() < rows[b].Transition.String()
	})
	return rows
}

// ReservationStatsExtractor builds the transition histogram of one replay.
// It scans raw frames, not lifetimes, so every reservation update counts
// regardless of which actor replicated it.
type ReservationStatsExtractor struct {
	last   map[replay.PlayerID]replay.ReservationStatus
	counts TransitionCounts
}

// NewReservationStatsExtractor creates a new reservation stats extractor.
func NewReservationStatsExtractor() *ReservationStatsExtractor {
	return &ReservationStatsExtractor{
		last:   make(map[replay.PlayerID]replay.ReservationStatus),
		counts: make(TransitionCounts),
	}
}

// HandleReservation records the first sighting of a player and every later
// status change.
func (e *ReservationStatsExtractor) HandleReservation(res replay.Reservation) {
	prev, seen := e.last[res.Player]
	switch {
	case !seen:
		e.counts[Transition{Next: res.Status}]++
	case prev != res.Status:
		e.counts[Transition{HasPrev: true, Prev: prev, Next: res.Status}]++
	}
	e.last[res.Player] = res.Status
}

// Extract scans every frame of rep for updates of the reservations attribute.
func (e *ReservationStatsExtractor) Extract(rep *replay.Replay) error {
	obj, ok := rep.FindObject(replay.ObjReservations)
	if !ok {
		return fmt.Errorf("%w: object %q not in table", replay.ErrSchemaLookup, replay.ObjReservations)
	}
	for _, f := range rep.Frames {
		for _, ua := range f.UpdatedActors {
			if ua.ObjectID == obj && ua.Attribute.Kind == replay.AttrReservation {
				e.HandleReservation(ua.Attribute.Reservation)
			}
		}
	}
	return nil
}

// GetCounts returns the histogram.
func (e *ReservationStatsExtractor) GetCounts() TransitionCounts {
	return e.counts
}
