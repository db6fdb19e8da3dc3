package extractors

import (
	"fmt"
	"sort"

	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
)

// Skipped records a camera lifetime that could not be attributed to a player.
type Skipped struct {
	Lifetime int
	Reason   string
}

// PlayerResolver maps camera lifetimes to the players that own them by
// following camera -> owner info actor -> unique id.
type PlayerResolver struct {
	list    *lifetime.List
	schema  *replay.Schema
	cameras map[replay.PlayerID][]int
	owners  map[int]int // camera lifetime -> owner lifetime
	skipped []Skipped
}

// NewPlayerResolver creates a resolver over the lifetimes of one replay.
func NewPlayerResolver(list *lifetime.List, schema *replay.Schema) *PlayerResolver {
	return &PlayerResolver{
		list:    list,
		schema:  schema,
		cameras: make(map[replay.PlayerID][]int),
		owners:  make(map[int]int),
	}
}

// Resolve walks every camera lifetime. Cameras whose owner or identity cannot
// be resolved are dropped and reported through GetSkipped.
func (r *PlayerResolver) Resolve() {
	for _, cam := range r.list.CreatedAs(r.schema.CameraActor) {
		owner, found, err := ownerOf(r.list, cam, r.schema.CameraPRI)
		if !found {
			r.skip(cam, "camera never referenced an owner")
			continue
		}
		if err != nil {
			r.skip(cam, fmt.Sprintf("owner lookup: %v", err))
			continue
		}

		ev, ok := r.list.Get(owner).FirstUpdate(r.schema.UniqueID)
		if !ok || ev.Update.Attribute.Kind != replay.AttrUniqueID {
			r.skip(cam, fmt.Sprintf("owner lifetime %d has no unique id", owner))
			continue
		}

		pid := ev.Update.Attribute.UniqueID
		r.cameras[pid] = append(r.cameras[pid], cam)
		r.owners[cam] = owner
	}

	// Creation order, so reconnects appear in the order they happened.
	for _, cams := range r.cameras {
		sort.SliceStable(cams, func(a, b int) bool {
			return r.list.Get(cams[a]).Start() < r.list.Get(cams[b]).Start()
		})
	}
}

func (r *PlayerResolver) skip(lt int, reason string) {
	r.skipped = append(r.skipped, Skipped{Lifetime: lt, Reason: reason})
}

// GetPlayers returns the camera lifetimes of every resolved player.
func (r *PlayerResolver) GetPlayers() map[replay.PlayerID][]int {
	return r.cameras
}

// GetIdentities returns the resolved players sorted by their string form.
func (r *PlayerResolver) GetIdentities() []replay.PlayerID {
	ids := make([]replay.PlayerID, 0, len(r.cameras))
	for pid := range r.cameras {
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	return ids
}

// GetOwner returns the owner lifetime a resolved camera lifetime points to.
func (r *PlayerResolver) GetOwner(camera int) (int, bool) {
	owner, ok := r.owners[camera]
	return owner, ok
}

// GetSkipped returns the cameras that were dropped during resolution.
func (r *PlayerResolver) GetSkipped() []Skipped {
	return r.skipped
}
