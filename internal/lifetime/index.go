package lifetime

import (
	"errors"
	"fmt"
	"sort"

	"ballcam-analyzer/internal/replay"
)

// ErrNoAssociation is returned when no lifetime occupied an actor id at the
// requested frame.
var ErrNoAssociation = errors.New("no lifetime associated with actor")

// List is the full set of lifetimes of one replay plus an index from actor
// id to the lifetimes that occupied it, ordered by start frame.
type List struct {
	Lifetimes []Lifetime
	byActor   map[replay.ActorID][]int
}

// NewList indexes lts. The slice is retained, not copied.
func NewList(lts []Lifetime) *List {
	byActor := make(map[replay.ActorID][]int)
	for i := range lts {
		id := lts[i].Actor()
		byActor[id] = append(byActor[id], i)
	}
	for _, bucket := range byActor {
		sort.SliceStable(bucket, func(a, b int) bool {
			return lts[bucket[a]].Start() < lts[bucket[b]].Start()
		})
	}
	return &List{Lifetimes: lts, byActor: byActor}
}

// Build reconstructs and indexes the lifetimes of a frame stream.
func Build(frames []replay.Frame) *List {
	return NewList(Reconstruct(frames))
}

// Len returns the number of lifetimes.
func (l *List) Len() int {
	return len(l.Lifetimes)
}

// Get returns the lifetime at index i.
func (l *List) Get(i int) *Lifetime {
	return &l.Lifetimes[i]
}

// Lookup returns the index of the lifetime that occupied id at frame: the
// last one whose start frame is not after frame.
func (l *List) Lookup(id replay.ActorID, frame int) (int, error) {
	bucket := l.byActor[id]
	n := sort.Search(len(bucket), func(i int) bool {
		return l.Lifetimes[bucket[i]].Start() > frame
	})
	if n == 0 {
		return -1, fmt.Errorf("%w: actor %d at frame %d", ErrNoAssociation, id, frame)
	}
	return bucket[n-1], nil
}

// Select returns, in index order, the indices of every lifetime for which
// keep returns true.
func (l *List) Select(keep func(*Lifetime) bool) []int {
	var out []int
	for i := range l.Lifetimes {
		if keep(&l.Lifetimes[i]) {
			out = append(out, i)
		}
	}
	return out
}

// CreatedAs returns the indices of lifetimes whose creation event has the
// given object type.
func (l *List) CreatedAs(obj replay.ObjectID) []int {
	return l.Select(func(lt *Lifetime) bool {
		got, ok := lt.CreatedAs()
		return ok && got == obj
	})
}
