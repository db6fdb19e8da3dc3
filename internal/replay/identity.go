package replay

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// PlayerID is the network-stable identity of a player: the online platform
// plus the platform-specific id and the split-screen local index. It is
// comparable and used as a map key across the whole pipeline.
type PlayerID struct {
	Platform string
	ID       string
	Local    uint8
}

// String formats the identity as "platform-id-local", e.g. "steam-76561198000000000-0".
func (p PlayerID) String() string {
	return fmt.Sprintf("%s-%s-%d", p.Platform, p.ID, p.Local)
}

// IsZero reports whether p is the zero identity.
func (p PlayerID) IsZero() bool {
	return p == PlayerID{}
}

// ParsePlayerID is the inverse of PlayerID.String. The platform-specific part
// may itself contain dashes (PlayStation names), so the string is split on the
// first and last dash only.
func ParsePlayerID(s string) (PlayerID, error) {
	first := strings.Index(s, "-")
	last := strings.LastIndex(s, "-")
	if first <= 0 || last <= first+1 || last == len(s)-1 {
		return PlayerID{}, fmt.Errorf("invalid player id %q: want platform-id-local", s)
	}
	local, err := strconv.ParseUint(s[last+1:], 10, 8)
	if err != nil {
		return PlayerID{}, fmt.Errorf("invalid player id %q: bad local index: %w", s, err)
	}
	return PlayerID{
		Platform: s[:first],
		ID:       s[first+1 : last],
		Local:    uint8(local),
	}, nil
}

// littleEndianHex renders v as the hex of its little-endian byte layout,
// which is how Xbox and PsyNet ids are displayed.
func littleEndianHex(v uint64) string {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return hex.EncodeToString(buf[:])
}

type uniqueIDJSON struct {
	SystemID uint8                      `json:"system_id"`
	RemoteID map[string]json.RawMessage `json:"remote_id"`
	LocalID  uint8                      `json:"local_id"`
}

type onlineIDJSON struct {
	OnlineID json.RawMessage `json:"online_id"`
	Name     string          `json:"name"`
}

// decodeUint64 reads a 64-bit id written either as a JSON number or as a
// decimal string, the form rrrocket uses to keep ids exact in JSON.
func decodeUint64(raw json.RawMessage) (uint64, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		text = s
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid 64-bit id %s: %w", raw, err)
	}
	return n, nil
}

// UnmarshalJSON decodes a boxcars UniqueId object.
func (p *PlayerID) UnmarshalJSON(data []byte) error {
	var raw uniqueIDJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode unique id: %w", err)
	}
	if len(raw.RemoteID) != 1 {
		return fmt.Errorf("unique id: expected one remote id variant, got %d", len(raw.RemoteID))
	}

	var id PlayerID
	id.Local = raw.LocalID
	for variant, body := range raw.RemoteID {
		switch variant {
		case "Steam", "QQ", "SplitScreen":
			n, err := decodeUint64(body)
			if err != nil {
				return fmt.Errorf("unique id %s: %w", variant, err)
			}
			id.Platform = strings.ToLower(variant)
			id.ID = strconv.FormatUint(n, 10)
		case "Xbox":
			n, err := decodeUint64(body)
			if err != nil {
				return fmt.Errorf("unique id Xbox: %w", err)
			}
			id.Platform = "xbox"
			id.ID = littleEndianHex(n)
		case "Epic":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return fmt.Errorf("unique id Epic: %w", err)
			}
			id.Platform = "epic"
			id.ID = s
		case "PsyNet", "Switch", "PlayStation":
			var o onlineIDJSON
			if err := json.Unmarshal(body, &o); err != nil {
				return fmt.Errorf("unique id %s: %w", variant, err)
			}
			switch variant {
			case "PsyNet", "Switch":
				n, err := decodeUint64(o.OnlineID)
				if err != nil {
					return fmt.Errorf("unique id %s: %w", variant, err)
				}
				if variant == "PsyNet" {
					id.Platform = "psynet"
					id.ID = littleEndianHex(n)
				} else {
					id.Platform = "switch"
					id.ID = strconv.FormatUint(n, 10)
				}
			default:
				id.Platform = "ps4"
				id.ID = o.Name
			}
		default:
			return fmt.Errorf("unique id: unknown remote id variant %q", variant)
		}
	}
	*p = id
	return nil
}
