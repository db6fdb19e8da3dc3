package replay

import (
	"fmt"
	"strings"
	"time"
)

// Metadata describes a match as a whole.
type Metadata struct {
	Date       time.Time
	PlayerName string // empty when the header does not record it
	Playlist   string
}

// DateLayout is the layout of the date component of the header "Date" property.
const DateLayout = "2006-01-02"

// ReadMetadata extracts the match date, recording player and playlist label
// from the header properties.
func ReadMetadata(r *Replay) (Metadata, error) {
	var md Metadata
	if name, ok := r.Properties.Str("PlayerName"); ok {
		md.PlayerName = name
	}

	raw, ok := r.Properties.Str("Date")
	if !ok {
		return md, fmt.Errorf("%w: Date property", ErrMetadata)
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return md, fmt.Errorf("%w: empty Date property", ErrMetadata)
	}
	date, err := time.Parse(DateLayout, fields[0])
	if err != nil {
		return md, fmt.Errorf("%w: Date %q: %v", ErrMetadata, raw, err)
	}
	md.Date = date

	teamSize, ok := r.Properties.Int("TeamSize")
	if !ok {
		return md, fmt.Errorf("%w: TeamSize property", ErrMetadata)
	}
	md.Playlist = fmt.Sprintf("%s-%d", r.GameType, teamSize)
	return md, nil
}
