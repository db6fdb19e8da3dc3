package extractors

import (
	"sort"

	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
)

// DefaultDebounce is the minimum elapsed time between two camera events for
// a value change to count as a swap.
const DefaultDebounce = 1e-5

// Helper functions shared by the extractors

// singletonLifetimes finds the lifetimes of the game-wide actor that
// replicates attr. Candidates are lifetimes with at least one update of attr;
// their creation types are tallied by number of matching updates and the
// type with the most wins (lowest object id on ties). Every lifetime created
// with the winning type is returned, in list order.
func singletonLifetimes(list *lifetime.List, attr replay.ObjectID) []int {
	tally := make(map[replay.ObjectID]int)
	for i := range list.Lifetimes {
		lt := list.Get(i)
		obj, ok := lt.CreatedAs()
		if !ok {
			continue
		}
		for _, ev := range lt.Events {
			if ev.IsUpdateOf(attr) {
				tally[obj]++
			}
		}
	}
	if len(tally) == 0 {
		return nil
	}

	winner, best := replay.NoObject, -1
	for obj, n := range tally {
		if n > best || (n == best && obj < winner) {
			winner, best = obj, n
		}
	}
	return list.CreatedAs(winner)
}

// singletonUpdates returns every update of attr made by the singleton actor,
// merged across its lifetimes in frame order.
func singletonUpdates(list *lifetime.List, attr replay.ObjectID) []lifetime.Event {
	var out []lifetime.Event
	for _, i := range singletonLifetimes(list, attr) {
		for _, ev := range list.Get(i).Events {
			if ev.IsUpdateOf(attr) {
				out = append(out, ev)
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Frame < out[b].Frame })
	return out
}

// ownerOf follows the camera-to-owner reference of a camera lifetime and
// returns the owner lifetime active at the frame the reference was set.
func ownerOf(list *lifetime.List, camera int, ref replay.ObjectID) (int, bool, error) {
	for _, ev := range list.Get(camera).Events {
		if !ev.IsUpdateOf(ref) || ev.Update.Attribute.Kind != replay.AttrActiveActor {
			continue
		}
		owner, err := list.Lookup(ev.Update.Attribute.ActiveActor.Actor, ev.Frame)
		if err != nil {
			return -1, true, err
		}
		return owner, true, nil
	}
	return -1, false, nil
}
