// Package sequencer simulates the computer opponent's turn: a random sequence
// of picks that favors the opponent's own pictures, with the odds of a good
// pick decaying as the turn goes on.
package sequencer

import (
	"math"
	"math/rand"

	"github.com/bcspragu/PictureNames/codenames"
)

// Sequencer generates opponent turns. It holds no state between calls.
type Sequencer struct {
	params *codenames.SequencerParams
}

// New returns a Sequencer that draws with the given parameters.
func New(params *codenames.SequencerParams) (*Sequencer, error) {
	if params == nil {
		return nil, &codenames.ConfigError{Key: "sequencer", Reason: "missing"}
	}
	return &Sequencer{params: params}, nil
}

// Sequence returns the IDs of the pictures the opponent picks on one turn, in
// order. All randomness comes from r, so a fixed seed gives a fixed sequence.
// The assassin is never picked.
func (s *Sequencer) Sequence(b *codenames.Board, r *rand.Rand) ([]codenames.PictureID, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	pools := make(map[codenames.Category][]codenames.PictureID)
	for _, p := range b.Remaining() {
		switch p.Team {
		case codenames.Opponent:
			pools[codenames.PickOpponent] = append(pools[codenames.PickOpponent], p.ID)
		case codenames.Own:
			pools[codenames.PickOwn] = append(pools[codenames.PickOwn], p.ID)
		case codenames.Neutral:
			pools[codenames.PickNeutral] = append(pools[codenames.PickNeutral], p.ID)
		}
	}

	seq := []codenames.PictureID{}
	for {
		weights := s.weights(pools, len(seq))
		cat, ok := draw(weights, r)
		if !ok || cat == codenames.Stop {
			return seq, nil
		}

		pool := pools[cat]
		idx := r.Intn(len(pool))
		seq = append(seq, pool[idx])
		pools[cat] = remove(pool, idx)

		// Picking anything but their own color ends the opponent's turn.
		if cat != codenames.PickOpponent {
			return seq, nil
		}
	}
}

// weights returns the weight of each category, in codenames.Categories order.
// Empty pools get no weight, and stopping isn't allowed before the first pick.
func (s *Sequencer) weights(pools map[codenames.Category][]codenames.PictureID, picks int) []float64 {
	out := make([]float64, len(codenames.Categories))
	for i, c := range codenames.Categories {
		switch c {
		case codenames.Stop:
			if picks > 0 {
				out[i] = s.params.Weight(c)
			}
		case codenames.PickOpponent:
			if len(pools[c]) > 0 {
				out[i] = s.params.Weight(c) * math.Pow(s.params.Decay(), float64(picks))
			}
		default:
			if len(pools[c]) > 0 {
				out[i] = s.params.Weight(c)
			}
		}
	}
	return out
}

// draw picks a category with probability proportional to its weight. It
// returns false if every weight is zero.
func draw(weights []float64, r *rand.Rand) (codenames.Category, bool) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0, false
	}

	x := r.Float64() * total
	var cum float64
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if x < cum {
			return codenames.Categories[i], true
		}
	}
	// Rounding can leave x just past the final boundary.
	return codenames.Categories[last], true
}

func remove(pool []codenames.PictureID, idx int) []codenames.PictureID {
	out := make([]codenames.PictureID, 0, len(pool)-1)
	out = append(out, pool[:idx]...)
	return append(out, pool[idx+1:]...)
}
