package extractors

import (
	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
)

// Phase is the state of play.
type Phase int

const (
	PhaseCountdown Phase = iota
	PhaseActive
	PhaseGoal
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhaseGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// PhaseEvent is a transition into a phase. Consecutive events may repeat the
// same phase; consumers treat the timeline as levels, not edges.
type PhaseEvent struct {
	Time  float64
	Frame int
	Phase Phase
}

// PhaseExtractor reads the replicated state name of the game event actor.
type PhaseExtractor struct {
	names  map[int32]Phase
	events []PhaseEvent
}

// NewPhaseExtractor creates a phase extractor for the name ids in schema.
// Phase names missing from the name table simply never match.
func NewPhaseExtractor(schema *replay.Schema) *PhaseExtractor {
	names := make(map[int32]Phase, 3)
	if schema.CountdownName != replay.NoName {
		names[schema.CountdownName] = PhaseCountdown
	}
	if schema.ActiveName != replay.NoName {
		names[schema.ActiveName] = PhaseActive
	}
	if schema.PostGoalName != replay.NoName {
		names[schema.PostGoalName] = PhaseGoal
	}
	return &PhaseExtractor{names: names}
}

// HandleStateName processes one state name update. Unrecognized names are ignored.
func (e *PhaseExtractor) HandleStateName(ev lifetime.Event) {
	if ev.Kind != lifetime.Updated || ev.Update.Attribute.Kind != replay.AttrInt {
		return
	}
	if phase, ok := e.names[ev.Update.Attribute.Int]; ok {
		e.events = append(e.events, PhaseEvent{Time: ev.Time, Frame: ev.Frame, Phase: phase})
	}
}

// Extract feeds every state name update of the game event actor.
func (e *PhaseExtractor) Extract(list *lifetime.List, schema *replay.Schema) {
	for _, ev := range singletonUpdates(list, schema.StateName) {
		e.HandleStateName(ev)
	}
}

// GetEvents returns the phase timeline in frame order.
func (e *PhaseExtractor) GetEvents() []PhaseEvent {
	return e.events
}
