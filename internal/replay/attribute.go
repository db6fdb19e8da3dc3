package replay

import (
	"fmt"

	"github.com/goccy/go-json"
)

// AttributeKind identifies which payload an Attribute carries.
type AttributeKind int

const (
	AttrOther AttributeKind = iota
	AttrBoolean
	AttrInt
	AttrByte
	AttrActiveActor
	AttrUniqueID
	AttrReservation
)

func (k AttributeKind) String() string {
	switch k {
	case AttrBoolean:
		return "Boolean"
	case AttrInt:
		return "Int"
	case AttrByte:
		return "Byte"
	case AttrActiveActor:
		return "ActiveActor"
	case AttrUniqueID:
		return "UniqueId"
	case AttrReservation:
		return "Reservation"
	default:
		return "Other"
	}
}

// ActiveActor is a reference from one actor to another.
type ActiveActor struct {
	Active bool    `json:"active"`
	Actor  ActorID `json:"actor"`
}

// ReservationStatus is the two-flag status replicated for every reserved
// slot. The decoder does not name the flags; only their combination matters.
type ReservationStatus struct {
	First  bool
	Second bool
}

// Baseline reports whether both flags are false.
func (s ReservationStatus) Baseline() bool {
	return !s.First && !s.Second
}

func (s ReservationStatus) String() string {
	return fmt.Sprintf("(%t,%t)", s.First, s.Second)
}

// Reservation is one entry of the game-wide reservation list.
type Reservation struct {
	Number uint32
	Player PlayerID
	Name   string
	Status ReservationStatus
}

type reservationJSON struct {
	Number   uint32   `json:"number"`
	UniqueID PlayerID `json:"unique_id"`
	Name     *string  `json:"name"`
	Unknown1 bool     `json:"unknown1"`
	Unknown2 bool     `json:"unknown2"`
}

// Attribute is a tagged union over the attribute payloads the analyzer
// understands. Anything else is kept as raw JSON with Kind == AttrOther.
type Attribute struct {
	Kind        AttributeKind
	Tag         string
	Bool        bool
	Int         int32
	Byte        uint8
	ActiveActor ActiveActor
	UniqueID    PlayerID
	Reservation Reservation
	Raw         json.RawMessage
}

// BoolAttr builds a Boolean attribute.
func BoolAttr(v bool) Attribute { return Attribute{Kind: AttrBoolean, Tag: "Boolean", Bool: v} }

// IntAttr builds an Int attribute.
func IntAttr(v int32) Attribute { return Attribute{Kind: AttrInt, Tag: "Int", Int: v} }

// ByteAttr builds a Byte attribute.
func ByteAttr(v uint8) Attribute { return Attribute{Kind: AttrByte, Tag: "Byte", Byte: v} }

// ActorRefAttr builds an ActiveActor reference to id.
func ActorRefAttr(id ActorID) Attribute {
	return Attribute{Kind: AttrActiveActor, Tag: "ActiveActor", ActiveActor: ActiveActor{Active: true, Actor: id}}
}

// UniqueIDAttr builds a UniqueId attribute.
func UniqueIDAttr(p PlayerID) Attribute {
	return Attribute{Kind: AttrUniqueID, Tag: "UniqueId", UniqueID: p}
}

// ReservationAttr builds a Reservation attribute.
func ReservationAttr(p PlayerID, first, second bool) Attribute {
	return Attribute{
		Kind:        AttrReservation,
		Tag:         "Reservation",
		Reservation: Reservation{Player: p, Status: ReservationStatus{First: first, Second: second}},
	}
}

// UnmarshalJSON decodes the externally tagged boxcars attribute encoding,
// e.g. {"Boolean":true} or {"ActiveActor":{"active":true,"actor":7}}.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		// Unit variants are encoded as bare strings.
		var tag string
		if serr := json.Unmarshal(data, &tag); serr == nil {
			*a = Attribute{Kind: AttrOther, Tag: tag}
			return nil
		}
		return fmt.Errorf("failed to decode attribute: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("attribute: expected one variant, got %d", len(tagged))
	}

	var out Attribute
	for tag, body := range tagged {
		out.Tag = tag
		var err error
		switch tag {
		case "Boolean":
			out.Kind = AttrBoolean
			err = json.Unmarshal(body, &out.Bool)
		case "Int":
			out.Kind = AttrInt
			err = json.Unmarshal(body, &out.Int)
		case "Byte":
			out.Kind = AttrByte
			err = json.Unmarshal(body, &out.Byte)
		case "ActiveActor":
			out.Kind = AttrActiveActor
			err = json.Unmarshal(body, &out.ActiveActor)
		case "UniqueId":
			out.Kind = AttrUniqueID
			err = json.Unmarshal(body, &out.UniqueID)
		case "Reservation":
			var r reservationJSON
			if err = json.Unmarshal(body, &r); err == nil {
				out.Kind = AttrReservation
				out.Reservation = Reservation{
					Number: r.Number,
					Player: r.UniqueID,
					Status: ReservationStatus{First: r.Unknown1, Second: r.Unknown2},
				}
				if r.Name != nil {
					out.Reservation.Name = *r.Name
				}
			}
		default:
			out.Kind = AttrOther
			out.Raw = append(json.RawMessage(nil), body...)
		}
		if err != nil {
			return fmt.Errorf("attribute %s: %w", tag, err)
		}
	}
	*a = out
	return nil
}

// String renders the payload for debug dumps.
func (a Attribute) String() string {
	switch a.Kind {
	case AttrBoolean:
		return fmt.Sprintf("Boolean(%t)", a.Bool)
	case AttrInt:
		return fmt.Sprintf("Int(%d)", a.Int)
	case AttrByte:
		return fmt.Sprintf("Byte(%d)", a.Byte)
	case AttrActiveActor:
		return fmt.Sprintf("ActiveActor(active=%t, actor=%d)", a.ActiveActor.Active, a.ActiveActor.Actor)
	case AttrUniqueID:
		return fmt.Sprintf("UniqueId(%s)", a.UniqueID)
	case AttrReservation:
		return fmt.Sprintf("Reservation(%s, %s)", a.Reservation.Player, a.Reservation.Status)
	default:
		if len(a.Raw) > 0 {
			return fmt.Sprintf("%s(%s)", a.Tag, string(a.Raw))
		}
		return a.Tag
	}
}
