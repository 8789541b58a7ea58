// Package score picks the best clue for the player's team, by ranking
// candidate clues against the pictures still in play.
package score

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/embedding"
	"golang.org/x/sync/errgroup"
)

// ErrNoCandidates is returned when every candidate clue is forbidden.
var ErrNoCandidates = errors.New("score: no candidate clues left to score")

// Scorer ranks clues. It holds no state between calls, and is safe for
// concurrent use as long as its Strategy is.
type Scorer struct {
	params  *codenames.ScoreParams
	strat   Strategy
	workers int
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithWorkers sets how many candidates are scored concurrently. It defaults
// to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New returns a Scorer that uses the given parameters and distance strategy.
func New(params *codenames.ScoreParams, strat Strategy, opts ...Option) (*Scorer, error) {
	if params == nil {
		return nil, &codenames.ConfigError{Key: "score", Reason: "missing"}
	}
	if strat == nil {
		return nil, errors.New("score: no distance strategy given")
	}
	s := &Scorer{
		params:  params,
		strat:   strat,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Result is a scored clue, along with the contribution each remaining picture
// made to its score.
type Result struct {
	Clue  string
	Total float64
	// Pictures are the pictures still in play, in board order.
	Pictures []codenames.Picture
	// Scores[i] is the contribution of Pictures[i]. They sum to Total.
	Scores []float64
}

// Affinity turns a distance into a similarity in (0, 1].
func Affinity(dist float64) float64 {
	return math.Exp(-dist)
}

// Best scores every candidate that isn't forbidden and returns the best one.
// Exact ties go to whichever candidate comes first in candidates. If any
// distance lookup fails, no result is returned at all.
func (s *Scorer) Best(ctx context.Context, b *codenames.Board, candidates []string, forbidden map[string]bool) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	remaining := b.Remaining()

	var clues []string
	for _, c := range candidates {
		if !forbidden[c] {
			clues = append(clues, c)
		}
	}
	if len(clues) == 0 {
		return nil, ErrNoCandidates
	}

	// Each worker only writes to its own slot, so no locking is needed.
	results := make([]*Result, len(clues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, clue := range clues {
		if gctx.Err() != nil {
			break
		}
		i, clue := i, clue
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.score(remaining, clue)
			if err != nil {
				return fmt.Errorf("failed to score clue %q: %w", clue, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best := results[0]
	for _, res := range results[1:] {
		if res.Total > best.Total {
			best = res
		}
	}
	return best, nil
}

// Score returns the breakdown for a single clue.
func (s *Scorer) Score(b *codenames.Board, clue string) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return s.score(b.Remaining(), clue)
}

func (s *Scorer) score(remaining []codenames.Picture, clue string) (*Result, error) {
	aff := make([]float64, len(remaining))
	for i, p := range remaining {
		d, err := s.strat.Distance(clue, p.Ref)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return nil, &codenames.DataAccessError{A: clue, B: p.Ref, Err: fmt.Errorf("bad distance %v", d)}
		}
		aff[i] = Affinity(d)
	}

	// Walk the pictures from most to least similar, so the closest picture of
	// each team gets the least decay.
	order := make([]int, len(remaining))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return aff[order[i]] > aff[order[j]]
	})

	counters := make(map[codenames.Team]int)
	for _, t := range codenames.Teams {
		counters[t] = s.params.CounterStart()
	}

	scores := make([]float64, len(remaining))
	for _, i := range order {
		team := remaining[i].Team
		w := s.params.Weight(team)
		if team != codenames.Assassin || s.params.DecayAssassin() {
			w *= math.Pow(s.params.Decay(team), float64(counters[team]))
			counters[team]++
		}
		if team != codenames.Own {
			w = -w
		}
		scores[i] = w * aff[i]
	}

	var total float64
	for _, sc := range scores {
		total += sc
	}

	return &Result{
		Clue:     clue,
		Total:    total,
		Pictures: remaining,
		Scores:   scores,
	}, nil
}

// Prune returns the clues worth scoring for a board: the neighbors of each of
// the player's remaining pictures, in board order, without duplicates.
func Prune(b *codenames.Board, neighbors *embedding.Index) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range b.Remaining() {
		if p.Team != codenames.Own {
			continue
		}
		ns, ok := neighbors.Lookup(p.Ref)
		if !ok {
			continue
		}
		for _, n := range ns {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
