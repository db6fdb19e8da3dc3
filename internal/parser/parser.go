package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ballcam-analyzer/internal/lifetime"
	"ballcam-analyzer/internal/parser/extractors"
	"ballcam-analyzer/internal/replay"
)

// Parser loads one replay file and scores every player's ballcam usage.
type Parser struct {
	path     string
	rrrocket string
	debounce float64
}

// Options configures a Parser.
type Options struct {
	// RrrocketPath is the decoder binary used for raw .replay files.
	RrrocketPath string
	// Debounce is the swap debounce threshold. Nil means extractors.DefaultDebounce;
	// zero counts every toggle.
	Debounce *float64
}

// MatchData contains everything extracted from one replay.
type MatchData struct {
	Path    string
	Meta    replay.Metadata
	Results map[replay.PlayerID]extractors.PlayerResult

	// Diagnostics.
	Frames      int
	Lifetimes   int
	Phases      int
	Disconnects map[replay.PlayerID]float64
	Skipped     []extractors.Skipped
}

// Players returns the scored players sorted by their string form.
func (m *MatchData) Players() []replay.PlayerID {
	ids := make([]replay.PlayerID, 0, len(m.Results))
	for pid := range m.Results {
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	return ids
}

// ParseCallback is called during parsing to report progress.
type ParseCallback func(stage string, pct float64)

// NewParser creates a new parser for the given replay file.
func NewParser(path string, opts Options) (*Parser, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access replay file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("replay file is empty")
	}
	if !replay.IsSupported(path) {
		return nil, fmt.Errorf("file %s is not a .replay, .json or .json.zst file", filepath.Base(path))
	}

	debounce := extractors.DefaultDebounce
	if opts.Debounce != nil {
		if *opts.Debounce < 0 {
			return nil, fmt.Errorf("debounce threshold must not be negative, got %g", *opts.Debounce)
		}
		debounce = *opts.Debounce
	}
	return &Parser{path: path, rrrocket: opts.RrrocketPath, debounce: debounce}, nil
}

// Path returns the replay file path.
func (p *Parser) Path() string {
	return p.path
}

// Parse decodes the replay and runs the extraction pipeline.
// The callback is invoked between stages.
func (p *Parser) Parse(ctx context.Context, callback ParseCallback) (*MatchData, error) {
	if callback != nil {
		callback("decoding", 0)
	}
	rep, err := replay.Load(ctx, p.path, p.rrrocket)
	if err != nil {
		return nil, fmt.Errorf("failed to load replay: %w", err)
	}

	if callback != nil {
		callback("extracting", 0.5)
	}
	data, err := Analyze(rep, p.debounce)
	if err != nil {
		return nil, err
	}
	data.Path = p.path

	if callback != nil {
		callback("done", 1)
	}
	return data, nil
}

// Analyze runs the extraction pipeline over an already decoded replay.
// A panic anywhere in the pipeline is returned as an error for this replay.
func Analyze(rep *replay.Replay, debounce float64) (data *MatchData, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("analyzer panic (replay may be corrupted or incompatible): %v", r)
		}
	}()
	return analyze(rep, debounce)
}

func analyze(rep *replay.Replay, debounce float64) (*MatchData, error) {
	meta, err := replay.ReadMetadata(rep)
	if err != nil {
		return nil, err
	}
	schema, err := replay.ResolveSchema(rep)
	if err != nil {
		return nil, err
	}

	list := lifetime.Build(rep.Frames)

	resolver := extractors.NewPlayerResolver(list, schema)
	resolver.Resolve()

	disconnectExtractor := extractors.NewDisconnectExtractor()
	disconnectExtractor.Extract(list, schema)

	phaseExtractor := extractors.NewPhaseExtractor(schema)
	phaseExtractor.Extract(list, schema)
	phases := phaseExtractor.GetEvents()

	acc := extractors.NewAccumulator(debounce)

	data := &MatchData{
		Meta:        meta,
		Results:     make(map[replay.PlayerID]extractors.PlayerResult),
		Frames:      len(rep.Frames),
		Lifetimes:   list.Len(),
		Phases:      len(phases),
		Disconnects: disconnectExtractor.GetCutoffs(),
		Skipped:     resolver.GetSkipped(),
	}

	for pid, cameras := range resolver.GetPlayers() {
		var cutoff *float64
		if t, ok := disconnectExtractor.Cutoff(pid); ok {
			cutoff = &t
		}

		timeline := extractors.BuildTimeline(list, cameras, schema.Ballcam, cutoff)
		if len(timeline) == 0 {
			continue
		}

		res := acc.Process(timeline, phases)
		if ping, ok := extractors.OwnerPing(list, resolver, cameras, schema.Ping); ok {
			res.Ping = &ping
		}
		data.Results[pid] = res
	}

	return data, nil
}
