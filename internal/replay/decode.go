package replay

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Supported input extensions.
const (
	ExtReplay  = ".replay"
	ExtJSON    = ".json"
	ExtJSONZst = ".json.zst"
)

type replayJSON struct {
	GameType      string     `json:"game_type"`
	Properties    Properties `json:"properties"`
	Objects       []string   `json:"objects"`
	Names         []string   `json:"names"`
	NetworkFrames *struct {
		Frames []Frame `json:"frames"`
	} `json:"network_frames"`
}

// Decode reads the rrrocket/boxcars JSON representation of a replay.
func Decode(r io.Reader) (*Replay, error) {
	var raw replayJSON
	if err := json.NewDecoder(bufio.NewReaderSize(r, 1<<20)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode replay json: %w", err)
	}
	if raw.NetworkFrames == nil {
		return nil, ErrNoNetworkData
	}
	props := raw.Properties
	if props == nil {
		props = Properties{}
	}
	return &Replay{
		GameType:   raw.GameType,
		Properties: props,
		Objects:    raw.Objects,
		Names:      raw.Names,
		Frames:     raw.NetworkFrames.Frames,
	}, nil
}

// IsSupported reports whether path has an extension Load understands.
func IsSupported(path string) bool {
	return strings.HasSuffix(path, ExtReplay) ||
		strings.HasSuffix(path, ExtJSON) ||
		strings.HasSuffix(path, ExtJSONZst)
}

// Load opens and decodes a replay from disk. Plain and zstd-compressed JSON
// are read directly; raw .replay files are handed to the rrrocket binary at
// rrrocketPath and its stdout is decoded.
func Load(ctx context.Context, path, rrrocketPath string) (*Replay, error) {
	switch {
	case strings.HasSuffix(path, ExtJSONZst):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open replay: %w", err)
		}
		defer f.Close()

		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		return Decode(zr)

	case strings.HasSuffix(path, ExtJSON):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open replay: %w", err)
		}
		defer f.Close()
		return Decode(f)

	case strings.HasSuffix(path, ExtReplay):
		return decodeWithRrrocket(ctx, path, rrrocketPath)
	}
	return nil, fmt.Errorf("unsupported replay file %s", path)
}

func decodeWithRrrocket(ctx context.Context, path, rrrocketPath string) (*Replay, error) {
	if rrrocketPath == "" {
		rrrocketPath = "rrrocket"
	}
	cmd := exec.CommandContext(ctx, rrrocketPath, "-n", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach to rrrocket stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", rrrocketPath, err)
	}

	rep, decodeErr := Decode(stdout)
	// Drain so the child never blocks on a full pipe after a decode error.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if waitErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("rrrocket failed on %s: %w: %s", path, waitErr, msg)
		}
		return nil, fmt.Errorf("rrrocket failed on %s: %w", path, waitErr)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return rep, nil
}
