package boardgen

import (
	"fmt"
	"math/rand"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/google/uuid"
)

// Counts is how many pictures of each team go on a new board.
var Counts = map[codenames.Team]int{
	codenames.Own:      9,
	codenames.Opponent: 8,
	codenames.Neutral:  7,
	codenames.Assassin: 1,
}

var baseTeams = func() []codenames.Team {
	var teams []codenames.Team
	for _, t := range codenames.Teams {
		for i := 0; i < Counts[t]; i++ {
			teams = append(teams, t)
		}
	}
	return teams
}()

// New deals a board from the given pool of refs. All randomness comes from r,
// including the board ID.
func New(pool []string, r *rand.Rand) (*codenames.Board, error) {
	distinct := make(map[string]struct{})
	var refs []string
	for _, ref := range pool {
		if _, ok := distinct[ref]; ok {
			continue
		}
		distinct[ref] = struct{}{}
		refs = append(refs, ref)
	}
	if len(refs) < codenames.Size {
		return nil, fmt.Errorf("need at least %d distinct pictures, have %d", codenames.Size, len(refs))
	}

	// Pick pictures at random from the pool.
	var selected []string
	for _, idx := range r.Perm(len(refs))[:codenames.Size] {
		selected = append(selected, refs[idx])
	}

	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to generate board ID: %w", err)
	}

	var pics []codenames.Picture
	for i, idx := range r.Perm(len(baseTeams)) {
		pics = append(pics, codenames.Picture{
			ID:   codenames.PictureID(i + 1),
			Team: baseTeams[idx],
			Ref:  selected[i],
		})
	}

	return &codenames.Board{ID: id.String(), Pictures: pics}, nil
}
