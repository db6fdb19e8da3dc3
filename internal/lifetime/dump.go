package lifetime

import (
	"fmt"
	"io"
	"strings"

	"ballcam-analyzer/internal/replay"
)

// Dump writes a human readable rendering of ev.
func Dump(w io.Writer, rep *replay.Replay, ev Event) error {
	var b strings.Builder
	fmt.Fprintf(&b, "FrameID:           %d\n", ev.Frame)
	fmt.Fprintf(&b, "time:              %g\n", ev.Time)
	switch ev.Kind {
	case Created:
		name := "N/A"
		if ev.NewActor.NameID != nil {
			name = rep.Name(*ev.NewActor.NameID)
		}
		fmt.Fprintf(&b, "New Actor ID:      %d\n", ev.Actor)
		fmt.Fprintf(&b, "Object:            %s\n", rep.ObjectName(ev.NewActor.ObjectID))
		fmt.Fprintf(&b, "Name:              %s\n", name)
	case Updated:
		fmt.Fprintf(&b, "Updated Actor ID:  %d\n", ev.Actor)
		fmt.Fprintf(&b, "Object:            %s\n", rep.ObjectName(ev.Update.ObjectID))
		fmt.Fprintf(&b, "Stream ID:         %d\n", ev.Update.StreamID)
		fmt.Fprintf(&b, "Attribute:         %s\n", ev.Update.Attribute)
	case Deleted:
		fmt.Fprintf(&b, "Deleted Actor ID:  %d\n", ev.Actor)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// DumpLifetimes writes every lifetime that creates or updates the named
// object, separated by rule lines. It returns the number written.
func DumpLifetimes(w io.Writer, rep *replay.Replay, list *List, objectName string) (int, error) {
	obj, ok := rep.FindObject(objectName)
	if !ok {
		return 0, fmt.Errorf("%w: object %q not in table", replay.ErrSchemaLookup, objectName)
	}

	matches := list.Select(func(lt *Lifetime) bool {
		for _, ev := range lt.Events {
			if (ev.Kind == Created && ev.NewActor.ObjectID == obj) || ev.IsUpdateOf(obj) {
				return true
			}
		}
		return false
	})

	for n, i := range matches {
		if _, err := fmt.Fprintf(w, "==== lifetime %d (%d/%d) ====\n", i, n+1, len(matches)); err != nil {
			return n, err
		}
		for _, ev := range list.Get(i).Events {
			if err := Dump(w, rep, ev); err != nil {
				return n, err
			}
		}
	}
	return len(matches), nil
}
