package replay

import "fmt"

// Well-known object and name table entries.
const (
	ObjCameraActor   = "TAGame.Default__CameraSettingsActor_TA"
	ObjCameraPRI     = "TAGame.CameraSettingsActor_TA:PRI"
	ObjUniqueID      = "Engine.PlayerReplicationInfo:UniqueId"
	ObjBallcam       = "TAGame.CameraSettingsActor_TA:bUsingSecondaryCamera"
	ObjReservations  = "ProjectX.GRI_X:Reservations"
	ObjStateName     = "TAGame.GameEvent_TA:ReplicatedStateName"
	ObjPing          = "Engine.PlayerReplicationInfo:Ping"
	NameCountdown    = "Countdown"
	NameActive       = "Active"
	NamePostGoal     = "PostGoalScored"
	NoName     int32 = -1
	NoObject         = ObjectID(-1)
)

// Schema holds the per-file ids of every well-known object and name the
// extractors look for. It is resolved once per replay.
type Schema struct {
	CameraActor  ObjectID
	CameraPRI    ObjectID
	UniqueID     ObjectID
	Ballcam      ObjectID
	Reservations ObjectID
	StateName    ObjectID

	// Optional entries. NoObject / NoName when the table lacks them.
	Ping          ObjectID
	CountdownName int32
	ActiveName    int32
	PostGoalName  int32
}

// FindObject returns the index of name in the object table.
func (r *Replay) FindObject(name string) (ObjectID, bool) {
	for i, o := range r.Objects {
		if o == name {
			return ObjectID(i), true
		}
	}
	return NoObject, false
}

// FindName returns the index of name in the name table.
func (r *Replay) FindName(name string) (int32, bool) {
	for i, n := range r.Names {
		if n == name {
			return int32(i), true
		}
	}
	return NoName, false
}

// ResolveSchema looks up all well-known ids. A missing required object is
// reported as ErrSchemaLookup naming the entry.
func ResolveSchema(r *Replay) (*Schema, error) {
	s := &Schema{}
	required := []struct {
		name string
		dst  *ObjectID
	}{
		{ObjCameraActor, &s.CameraActor},
		{ObjCameraPRI, &s.CameraPRI},
		{ObjUniqueID, &s.UniqueID},
		{ObjBallcam, &s.Ballcam},
		{ObjReservations, &s.Reservations},
		{ObjStateName, &s.StateName},
	}
	for _, req := range required {
		id, ok := r.FindObject(req.name)
		if !ok {
			return nil, fmt.Errorf("%w: object %q not in table", ErrSchemaLookup, req.name)
		}
		*req.dst = id
	}

	s.Ping, _ = r.FindObject(ObjPing)
	s.CountdownName, _ = r.FindName(NameCountdown)
	s.ActiveName, _ = r.FindName(NameActive)
	s.PostGoalName, _ = r.FindName(NamePostGoal)
	return s, nil
}
