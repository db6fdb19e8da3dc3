package ipc

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// ParseLevel converts a level name. Unknown names map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Output handles NDJSON (newline-delimited JSON) output.
// All methods are thread-safe.
type Output struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

// NewOutput creates an NDJSON output handler writing to w. A nil writer
// means stdout.
func NewOutput(w io.Writer, level Level) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{w: w, level: level}
}

// Discard returns an output that drops everything.
func Discard() *Output {
	return NewOutput(io.Discard, LevelError+1)
}

// SetLevel changes the minimum level of log messages.
func (o *Output) SetLevel(level Level) {
	o.mu.Lock()
	o.level = level
	o.mu.Unlock()
}

// Progress sends a progress update message.
func (o *Output) Progress(stage string, done, total int, file string) {
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	o.writeJSON(map[string]interface{}{
		"type":  "progress",
		"stage": stage,
		"done":  done,
		"total": total,
		"file":  file,
		"pct":   pct,
	})
}

// Log sends a log message if level passes the filter.
func (o *Output) Log(level Level, msg string) {
	o.mu.Lock()
	skip := level < o.level
	o.mu.Unlock()
	if skip {
		return
	}
	o.writeJSON(map[string]interface{}{
		"type":  "log",
		"level": level.String(),
		"msg":   msg,
	})
}

// Debugf logs at debug level.
func (o *Output) Debugf(format string, args ...interface{}) {
	o.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs at info level.
func (o *Output) Infof(format string, args ...interface{}) {
	o.Log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs at warn level.
func (o *Output) Warnf(format string, args ...interface{}) {
	o.Log(LevelWarn, fmt.Sprintf(format, args...))
}

// Result sends the outcome of one replay.
func (o *Output) Result(file string, players int, took time.Duration, err error) {
	obj := map[string]interface{}{
		"type":    "result",
		"file":    file,
		"players": players,
		"took":    humanize.FtoaWithDigits(took.Seconds(), 3) + "s",
	}
	if err != nil {
		obj["error"] = err.Error()
	}
	o.writeJSON(obj)
}

// Error sends an error message.
func (o *Output) Error(msg string) {
	o.writeJSON(map[string]interface{}{
		"type": "error",
		"msg":  msg,
	})
}

// writeJSON writes a JSON object followed by a newline.
func (o *Output) writeJSON(obj map[string]interface{}) {
	data, err := json.Marshal(obj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, "%s\n", data)
}
