// Package batch runs per-file work over many replays on a bounded pool of
// workers. Results are collected in input order and only handed back once
// every file is done, so aggregation never sees a partial set.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"ballcam-analyzer/internal/parser"
	"ballcam-analyzer/internal/replay"
)

// Result is the outcome of processing one file.
type Result[T any] struct {
	Path     string
	Value    T
	Err      error
	Duration time.Duration
}

// DoneFunc is called from worker goroutines as each file finishes. It must
// be safe for concurrent use.
type DoneFunc[T any] func(index int, res Result[T])

// Map runs fn over paths with at most workers goroutines. A failing file
// never stops the others. Once ctx is cancelled no new files are started
// and the unstarted ones report ctx.Err(); Map then also returns ctx.Err().
func Map[T any](ctx context.Context, paths []string, workers int, fn func(context.Context, string) (T, error), done DoneFunc[T]) ([]Result[T], error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result[T], len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		if err := gctx.Err(); err != nil {
			for j := i; j < len(paths); j++ {
				results[j] = Result[T]{Path: paths[j], Err: err}
			}
			break
		}
		g.Go(func() error {
			start := time.Now()
			v, err := runOne(gctx, path, fn)
			results[i] = Result[T]{Path: path, Value: v, Err: err, Duration: time.Since(start)}
			if done != nil {
				done(i, results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

func runOne[T any](ctx context.Context, path string, fn func(context.Context, string) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic on %s: %v", filepath.Base(path), r)
		}
	}()
	return fn(ctx, path)
}

// FileResult is the outcome of analyzing one replay.
type FileResult = Result[*parser.MatchData]

// Analyze parses and scores every replay.
func Analyze(ctx context.Context, paths []string, workers int, opts parser.Options, done DoneFunc[*parser.MatchData]) ([]FileResult, error) {
	return Map(ctx, paths, workers, func(ctx context.Context, path string) (*parser.MatchData, error) {
		p, err := parser.NewParser(path, opts)
		if err != nil {
			return nil, err
		}
		return p.Parse(ctx, nil)
	}, done)
}

// Discover lists the replay files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !replay.IsSupported(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// ExpandInputs turns a mix of files and directories into a list of replay
// files. Directories are expanded with Discover; files are kept as given.
func ExpandInputs(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", in, err)
		}
		if !info.IsDir() {
			out = append(out, in)
			continue
		}
		found, err := Discover(in)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// Succeeded returns the values of the results that have no error.
func Succeeded[T any](results []Result[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}
