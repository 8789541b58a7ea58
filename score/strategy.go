package score

import (
	"fmt"

	"github.com/bcspragu/PictureNames/embedding"
	"github.com/bcspragu/PictureNames/emd"
)

// Strategy returns the distance between a clue and a picture's embedding
// reference.
type Strategy interface {
	Distance(clue, ref string) (float64, error)
}

const (
	// StrategyDirect looks distances up in the store directly.
	StrategyDirect = "direct"
	// StrategySet treats clues and pictures as sets of items, and compares them
	// with the earth mover's distance.
	StrategySet = "set"
)

// NewStrategy returns the strategy with the given name. members is only used
// by the set strategy.
func NewStrategy(kind string, store embedding.Store, members *embedding.Index) (Strategy, error) {
	switch kind {
	case StrategyDirect, "":
		return &Direct{Store: store}, nil
	case StrategySet:
		return &SetDistance{Store: store, Members: members}, nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q, want %q or %q", kind, StrategyDirect, StrategySet)
	}
}

// Direct uses the distance between the clue and the picture straight from the
// store.
type Direct struct {
	Store embedding.Store
}

func (d *Direct) Distance(clue, ref string) (float64, error) {
	return d.Store.Distance(clue, ref)
}

// SetDistance expands the clue and the picture into their member items, and
// returns the earth mover's distance between the two sets. An item without a
// member list is a set of just itself.
type SetDistance struct {
	Store   embedding.Store
	Members *embedding.Index
}

func (s *SetDistance) Distance(clue, ref string) (float64, error) {
	return emd.Distance(s.members(clue), s.members(ref), s.Store.Distance)
}

func (s *SetDistance) members(id string) []string {
	if m, ok := s.Members.Lookup(id); ok && len(m) > 0 {
		return m
	}
	return []string{id}
}
