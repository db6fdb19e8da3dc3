package extractors

import (
	"fmt"
	"math"
)

// Policy selects which stretches of a match count toward a bucket.
type Policy int

const (
	// PolicyAll counts the whole match.
	PolicyAll Policy = iota
	// PolicyFreezeExcluded skips the post-goal freeze.
	PolicyFreezeExcluded
	// PolicyActiveOnly counts live play only.
	PolicyActiveOnly
)

// Policies lists every policy in display order.
var Policies = []Policy{PolicyAll, PolicyFreezeExcluded, PolicyActiveOnly}

func (p Policy) String() string {
	switch p {
	case PolicyAll:
		return "all"
	case PolicyFreezeExcluded:
		return "freeze-excluded"
	case PolicyActiveOnly:
		return "active-only"
	default:
		return "unknown"
	}
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies {
		if p.String() == s {
			return p, nil
		}
	}
	return PolicyAll, fmt.Errorf("unknown policy %q (want all, freeze-excluded or active-only)", s)
}

// Bucket is the accumulated time and swap count under one policy.
type Bucket struct {
	Elapsed float64
	Ballcam float64
	Swaps   int
}

// Percent returns the share of elapsed time spent on ballcam, or NaN when no
// time was counted.
func (b Bucket) Percent() float64 {
	if b.Elapsed <= 0 {
		return math.NaN()
	}
	return 100 * b.Ballcam / b.Elapsed
}

func (b *Bucket) add(elapsed float64, wasOn, swapped bool) {
	b.Elapsed += elapsed
	if wasOn {
		b.Ballcam += elapsed
	}
	if swapped {
		b.Swaps++
	}
}

// PlayerResult holds one player's totals for a match.
type PlayerResult struct {
	All            Bucket
	FreezeExcluded Bucket
	ActiveOnly     Bucket

	// Ping is the first ping the player's info actor replicated, if any.
	Ping *int
}

// Bucket returns the bucket for p.
func (r PlayerResult) Bucket(p Policy) Bucket {
	switch p {
	case PolicyFreezeExcluded:
		return r.FreezeExcluded
	case PolicyActiveOnly:
		return r.ActiveOnly
	default:
		return r.All
	}
}

// Accumulator merges a camera timeline with the phase timeline and fills
// the three buckets in a single pass.
type Accumulator struct {
	Debounce float64
}

// NewAccumulator creates an accumulator. A swap is only counted when more
// than debounce time passed since the previous event.
func NewAccumulator(debounce float64) *Accumulator {
	return &Accumulator{Debounce: debounce}
}

// Process runs the merge. On equal frames the camera event goes first. The
// merge ends with the last camera event; later phase events are ignored.
func (a *Accumulator) Process(camera []CameraEvent, phases []PhaseEvent) PlayerResult {
	var res PlayerResult
	if len(camera) == 0 {
		return res
	}

	var (
		on    bool
		phase = PhaseCountdown
		last  = camera[0].Time
		ci    int
		pi    int
	)
	if len(phases) > 0 {
		last = math.Min(last, phases[0].Time)
	}

	for ci < len(camera) {
		if pi == len(phases) || camera[ci].Frame <= phases[pi].Frame {
			ev := camera[ci]
			next := on
			switch ev.Kind {
			case CameraStart:
				next = false
			case CameraUpdate:
				next = ev.On
			}
			a.update(&res, last, on, next, ev.Time, phase)
			on = next
			last = ev.Time
			ci++
			continue
		}

		ev := phases[pi]
		a.update(&res, last, on, on, ev.Time, phase)
		phase = ev.Phase
		last = ev.Time
		pi++
	}
	return res
}

func (a *Accumulator) update(res *PlayerResult, last float64, wasOn, next bool, now float64, phase Phase) {
	elapsed := now - last
	swapped := wasOn != next && elapsed > a.Debounce

	res.All.add(elapsed, wasOn, swapped)
	if phase != PhaseGoal {
		res.FreezeExcluded.add(elapsed, wasOn, swapped)
	}
	if phase == PhaseActive {
		res.ActiveOnly.add(elapsed, wasOn, swapped)
	}
}
