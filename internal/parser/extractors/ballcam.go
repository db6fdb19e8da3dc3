package extractors

import (
	"sort"

	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/replay"
)

// CameraKind distinguishes the events of a player's camera timeline.
type CameraKind int

const (
	// CameraStart is the synthetic ballcam-off baseline at the player's first event.
	CameraStart CameraKind = iota
	// CameraUpdate is a recorded ballcam toggle.
	CameraUpdate
	// CameraDisconnect is the synthetic end marker at the player's last usable event.
	CameraDisconnect
)

func (k CameraKind) String() string {
	switch k {
	case CameraStart:
		return "start"
	case CameraUpdate:
		return "update"
	case CameraDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// CameraEvent is one entry of a player's camera timeline. On is only
// meaningful for CameraUpdate.
type CameraEvent struct {
	Time  float64
	Frame int
	Kind  CameraKind
	On    bool
}

// BuildTimeline merges the ballcam toggles of all camera lifetimes a player
// owned into one frame-ordered timeline framed by a Start and a Disconnect
// marker. Events at or after cutoff are discarded, in every lifetime. The
// cameras must be ordered by creation frame. It returns nil when the
// cameras carry no events at all.
func BuildTimeline(list *lifetime.List, cameras []int, ballcam replay.ObjectID, cutoff *float64) []CameraEvent {
	var (
		out      []CameraEvent
		maxTime  float64
		maxFrame int
		seen     bool
	)

	for _, cam := range cameras {
		for _, ev := range list.Get(cam).Events {
			if len(out) == 0 {
				out = append(out, CameraEvent{Time: ev.Time, Frame: ev.Frame, Kind: CameraStart})
			}
			if cutoff != nil && ev.Time >= *cutoff {
				continue
			}

			if !seen || ev.Time > maxTime {
				maxTime = ev.Time
			}
			if !seen || ev.Frame > maxFrame {
				maxFrame = ev.Frame
			}
			seen = true

			if ev.IsUpdateOf(ballcam) && ev.Update.Attribute.Kind == replay.AttrBoolean {
				out = append(out, CameraEvent{Time: ev.Time, Frame: ev.Frame, Kind: CameraUpdate, On: ev.Update.Attribute.Bool})
			}
		}
	}
	if len(out) == 0 {
		return nil
	}

	if !seen {
		maxTime, maxFrame = out[0].Time, out[0].Frame
	}
	out = append(out, CameraEvent{Time: maxTime, Frame: maxFrame, Kind: CameraDisconnect})

	sort.SliceStable(out, func(a, b int) bool { return out[a].Frame < out[b].Frame })
	return out
}
