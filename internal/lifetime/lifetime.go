// Package lifetime rebuilds actor occupancy spans from a flat stream of
// per-frame actor deltas and indexes them for point-in-time lookups.
//
// Actor ids are reused once an actor is deleted, so an id alone never
// identifies an entity. Every query goes through a (id, frame) pair.
package lifetime

import (
	"sort"

	"ballcam-analyzer/internal/replay"
)

// Kind is the type of a lifetime event.
type Kind int

const (
	Created Kind = iota
	Updated
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is one actor delta with the frame index and match clock at which
// it was recorded. Exactly one of NewActor / Update is set for Created and
// Updated events; Deleted events carry only Actor.
type Event struct {
	Frame    int
	Time     float64
	Kind     Kind
	Actor    replay.ActorID
	NewActor *replay.NewActor
	Update   *replay.UpdatedAttribute
}

// IsUpdateOf reports whether e is an update of the given attribute object.
func (e Event) IsUpdateOf(obj replay.ObjectID) bool {
	return e.Kind == Updated && e.Update.ObjectID == obj
}

// Lifetime is the event history of one occupancy span of an actor id.
// It is never empty.
type Lifetime struct {
	Events []Event
}

// Actor returns the id that opened the lifetime.
func (l *Lifetime) Actor() replay.ActorID {
	return l.Events[0].Actor
}

// Start returns the frame of the first event.
func (l *Lifetime) Start() int {
	return l.Events[0].Frame
}

// CreatedAs returns the object type of the creation event. Lifetimes
// opened by an update or delete (the actor predates the recording) have
// no creation event.
func (l *Lifetime) CreatedAs() (replay.ObjectID, bool) {
	if l.Events[0].Kind != Created {
		return replay.NoObject, false
	}
	return l.Events[0].NewActor.ObjectID, true
}

// WasDeleted reports whether the lifetime ended with a deletion rather
// than at the end of the stream.
func (l *Lifetime) WasDeleted() bool {
	return l.Events[len(l.Events)-1].Kind == Deleted
}

// FirstUpdate returns the first update of the given attribute object.
func (l *Lifetime) FirstUpdate(obj replay.ObjectID) (Event, bool) {
	for _, ev := range l.Events {
		if ev.IsUpdateOf(obj) {
			return ev, true
		}
	}
	return Event{}, false
}

// Reconstruct splits the frame stream into lifetimes. Lifetimes are
// emitted in the order they close; those still open when the stream ends
// are flushed last, ordered by actor id.
func Reconstruct(frames []replay.Frame) []Lifetime {
	var (
		out  []Lifetime
		open = make(map[replay.ActorID]*Lifetime)
	)

	closeOpen := func(id replay.ActorID) {
		if lt, ok := open[id]; ok {
			out = append(out, *lt)
			delete(open, id)
		}
	}
	appendTo := func(id replay.ActorID, ev Event) {
		lt, ok := open[id]
		if !ok {
			lt = &Lifetime{}
			open[id] = lt
		}
		lt.Events = append(lt.Events, ev)
	}

	for fi := range frames {
		f := &frames[fi]

		for ni := range f.NewActors {
			na := &f.NewActors[ni]
			closeOpen(na.ActorID)
			appendTo(na.ActorID, Event{Frame: fi, Time: f.Time, Kind: Created, Actor: na.ActorID, NewActor: na})
		}

		for _, id := range f.DeletedActors {
			appendTo(id, Event{Frame: fi, Time: f.Time, Kind: Deleted, Actor: id})
			closeOpen(id)
		}

		for ui := range f.UpdatedActors {
			ua := &f.UpdatedActors[ui]
			appendTo(ua.ActorID, Event{Frame: fi, Time: f.Time, Kind: Updated, Actor: ua.ActorID, Update: ua})
		}
	}

	ids := make([]replay.ActorID, 0, len(open))
	for id := range open {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out = append(out, *open[id])
	}
	return out
}
