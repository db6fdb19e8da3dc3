package replay

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Properties holds the replay header properties. Values are kept as raw
// JSON because the decoder emits them untagged (string, number, bool,
// array, ...) and the analyzer only reads a handful of them.
type Properties map[string]json.RawMessage

// Str returns the property as a string. Numbers and booleans are
// rendered in their JSON form; arrays and objects are rejected.
func (p Properties) Str(key string) (string, bool) {
	raw, ok := p[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b), true
	}
	return "", false
}

// Int returns the property as an integer.
func (p Properties) Int(key string) (int64, bool) {
	raw, ok := p[key]
	if !ok {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// Set stores v under key. Used by tests and by callers building replays in
// memory.
func (p Properties) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode property %s: %w", key, err)
	}
	p[key] = raw
	return nil
}
