// Package replaytest builds small in-memory replays for tests.
package replaytest

import (
	"ballcam-analyzer/internal/replay"
)

// StandardObjects is the object table every built replay starts with, so
// that replay.ResolveSchema succeeds.
var StandardObjects = []string{
	"TAGame.GameEvent_Soccar_TA",
	replay.ObjCameraActor,
	replay.ObjCameraPRI,
	replay.ObjUniqueID,
	replay.ObjBallcam,
	replay.ObjReservations,
	replay.ObjStateName,
	replay.ObjPing,
	"TAGame.Default__PRI_TA",
	"GameInfo_Soccar.GameInfo.GameInfo_Soccar:GameReplicationInfoArchetype",
}

// StandardNames is the name table every built replay starts with.
var StandardNames = []string{"None", replay.NameCountdown, replay.NameActive, replay.NamePostGoal}

// Builder accumulates frames. Methods panic on misuse; they are only
// meant for tests.
type Builder struct {
	rep *replay.Replay
	cur int
}

// New returns a builder with the standard tables and the header
// properties a real soccar replay carries.
func New() *Builder {
	rep := &replay.Replay{
		GameType:   "TAGame.Replay_Soccar_TA",
		Properties: replay.Properties{},
		Objects:    append([]string(nil), StandardObjects...),
		Names:      append([]string(nil), StandardNames...),
	}
	_ = rep.Properties.Set("Date", "2023-06-01 20-15-00")
	_ = rep.Properties.Set("TeamSize", 2)
	return &Builder{rep: rep, cur: -1}
}

// Obj returns the id of an object table entry, adding it when missing.
func (b *Builder) Obj(name string) replay.ObjectID {
	if id, ok := b.rep.FindObject(name); ok {
		return id
	}
	b.rep.Objects = append(b.rep.Objects, name)
	return replay.ObjectID(len(b.rep.Objects) - 1)
}

// Name returns the id of a name table entry, adding it when missing.
func (b *Builder) Name(name string) int32 {
	if id, ok := b.rep.FindName(name); ok {
		return id
	}
	b.rep.Names = append(b.rep.Names, name)
	return int32(len(b.rep.Names) - 1)
}

// At moves to frame index frame, creating any missing frames. New frames
// take the given time; gap frames repeat the previous frame's time.
func (b *Builder) At(frame int, t float64) *Builder {
	for len(b.rep.Frames) <= frame {
		prev := t
		if n := len(b.rep.Frames); n > 0 && n < frame {
			prev = b.rep.Frames[n-1].Time
		}
		b.rep.Frames = append(b.rep.Frames, replay.Frame{Time: prev})
	}
	b.rep.Frames[frame].Time = t
	b.cur = frame
	return b
}

func (b *Builder) frame() *replay.Frame {
	if b.cur < 0 {
		panic("replaytest: At must be called before adding events")
	}
	return &b.rep.Frames[b.cur]
}

// Create adds an actor creation of the named object type.
func (b *Builder) Create(id replay.ActorID, object string) *Builder {
	f := b.frame()
	f.NewActors = append(f.NewActors, replay.NewActor{ActorID: id, ObjectID: b.Obj(object)})
	return b
}

// Delete adds an actor deletion.
func (b *Builder) Delete(id replay.ActorID) *Builder {
	f := b.frame()
	f.DeletedActors = append(f.DeletedActors, id)
	return b
}

// Update adds an attribute update on the named attribute object.
func (b *Builder) Update(id replay.ActorID, object string, attr replay.Attribute) *Builder {
	f := b.frame()
	f.UpdatedActors = append(f.UpdatedActors, replay.UpdatedAttribute{
		ActorID:   id,
		ObjectID:  b.Obj(object),
		Attribute: attr,
	})
	return b
}

// Replay returns the built replay. The builder must not be used afterwards.
func (b *Builder) Replay() *replay.Replay {
	return b.rep
}

// Steam returns a steam identity for tests.
func Steam(id string) replay.PlayerID {
	return replay.PlayerID{Platform: "steam", ID: id}
}
