package replay

import (
	"errors"
)

// Errors returned while loading a decoded replay. All of them are fatal for
// the file being processed.
var (
	ErrSchemaLookup  = errors.New("schema lookup failed")
	ErrMetadata      = errors.New("replay metadata missing")
	ErrNoNetworkData = errors.New("replay has no network frames")
)

// ActorID is the transient numeric id the replay assigns to a live actor.
// Ids are reused once the actor is deleted.
type ActorID int32

// ObjectID indexes into Replay.Objects.
type ObjectID int32

// Replay is the decoded form of a replay file as produced by the boxcars
// decoder (rrrocket). Only the fields the analyzer needs are kept.
type Replay struct {
	GameType   string
	Properties Properties
	Objects    []string
	Names      []string
	Frames     []Frame
}

// Frame is one network tick. Its index in Replay.Frames is the frame index.
type Frame struct {
	Time          float64            `json:"time"`
	Delta         float64            `json:"delta"`
	NewActors     []NewActor         `json:"new_actors"`
	DeletedActors []ActorID          `json:"deleted_actors"`
	UpdatedActors []UpdatedAttribute `json:"updated_actors"`
}

// NewActor is an actor creation event.
type NewActor struct {
	ActorID  ActorID  `json:"actor_id"`
	NameID   *int32   `json:"name_id"`
	ObjectID ObjectID `json:"object_id"`
}

// UpdatedAttribute is a replicated attribute change on a live actor.
type UpdatedAttribute struct {
	ActorID   ActorID   `json:"actor_id"`
	StreamID  int32     `json:"stream_id"`
	ObjectID  ObjectID  `json:"object_id"`
	Attribute Attribute `json:"attribute"`
}

// ObjectName returns the object table entry for id, or "N/A".
func (r *Replay) ObjectName(id ObjectID) string {
	if id < 0 || int(id) >= len(r.Objects) {
		return "N/A"
	}
	return r.Objects[id]
}

// Name returns the name table entry for id, or "N/A".
func (r *Replay) Name(id int32) string {
	if id < 0 || int(id) >= len(r.Names) {
		return "N/A"
	}
	return r.Names[id]
}
