package extractors

import (
	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
)

// OwnerPing returns the first ping replicated on the info actor of any of the
// given cameras, trying them in order.
func OwnerPing(list *lifetime.List, resolver *PlayerResolver, cameras []int, ping replay.ObjectID) (int, bool) {
	if ping == replay.NoObject {
		return 0, false
	}
	for _, cam := range cameras {
		owner, ok := resolver.GetOwner(cam)
		if !ok {
			continue
		}
		ev, ok := list.Get(owner).FirstUpdate(ping)
		if ok && ev.Update.Attribute.Kind == replay.AttrByte {
			return int(ev.Update.Attribute.Byte), true
		}
	}
	return 0, false
}
