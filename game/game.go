// Package game applies the rules of a single Picture Codenames session: the
// player's team is Own, the computer plays Opponent.
package game

import (
	"errors"
	"fmt"

	"github.com/bcspragu/PictureNames/codenames"
)

var (
	ErrGameOver        = errors.New("game: the game is already over")
	ErrUnknownPicture  = errors.New("game: no picture with that ID")
	ErrAlreadyRevealed = errors.New("game: picture has already been revealed")
)

// Game tracks the state of one board as pictures get revealed.
type Game struct {
	board *codenames.Board
}

// Outcome is the state of the game after a move.
type Outcome struct {
	Over bool `json:"over"`
	// Winner is only set when Over is true.
	Winner codenames.Team `json:"winner,omitempty"`
}

// New validates the board and starts a game with it. The board is copied, so
// later changes to it don't affect the game.
func New(b *codenames.Board) (*Game, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := validateBoard(b); err != nil {
		return nil, err
	}
	return &Game{board: b.Clone()}, nil
}

// validateBoard validates that the board has the correct number of pictures of
// each type.
func validateBoard(b *codenames.Board) error {
	if len(b.Pictures) != codenames.Size {
		return &codenames.InvalidBoardError{
			Reason: fmt.Sprintf("board must contain %d pictures, found %d", codenames.Size, len(b.Pictures)),
		}
	}

	got := make(map[codenames.Team]int)
	for _, p := range b.Pictures {
		got[p.Team]++
	}

	for _, t := range codenames.Teams {
		if gc, wc := got[t], want[t]; gc != wc {
			return &codenames.InvalidBoardError{
				Reason: fmt.Sprintf("got %d pictures of type %q, want %d", gc, t, wc),
			}
		}
	}

	return nil
}

var want = map[codenames.Team]int{
	codenames.Own:      9,
	codenames.Opponent: 8,
	codenames.Neutral:  7,
	codenames.Assassin: 1,
}

// Board returns a copy of the current board.
func (g *Game) Board() *codenames.Board {
	return g.board.Clone()
}

// Reveal marks the picture as guessed and returns it.
func (g *Game) Reveal(id codenames.PictureID) (codenames.Picture, error) {
	if o := g.Outcome(); o.Over {
		return codenames.Picture{}, ErrGameOver
	}
	for i, p := range g.board.Pictures {
		if p.ID != id {
			continue
		}
		if p.Active {
			return codenames.Picture{}, fmt.Errorf("reveal(%d): %w", id, ErrAlreadyRevealed)
		}
		g.board.Pictures[i].Active = true
		return g.board.Pictures[i], nil
	}
	return codenames.Picture{}, fmt.Errorf("reveal(%d): %w", id, ErrUnknownPicture)
}

// ApplySequence reveals the opponent's picks in order, stopping early if the
// game ends. It returns the pictures that were actually revealed.
func (g *Game) ApplySequence(ids []codenames.PictureID) ([]codenames.Picture, error) {
	var out []codenames.Picture
	for _, id := range ids {
		if o := g.Outcome(); o.Over {
			break
		}
		p, err := g.Reveal(id)
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// EndsTurn reports whether revealing the picture passes the turn to the
// computer. Only a correct guess lets the player keep going.
func EndsTurn(p codenames.Picture) bool {
	return p.Team != codenames.Own
}

// Outcome reports whether the game is over, and who won. The player wins by
// clearing their own pictures, and loses by revealing the assassin or when the
// computer clears its pictures.
func (g *Game) Outcome() Outcome {
	left := make(map[codenames.Team]int)
	var assassinRevealed bool
	for _, p := range g.board.Pictures {
		if !p.Active {
			left[p.Team]++
			continue
		}
		if p.Team == codenames.Assassin {
			assassinRevealed = true
		}
	}

	switch {
	case assassinRevealed:
		return Outcome{Over: true, Winner: codenames.Opponent}
	case left[codenames.Own] == 0:
		return Outcome{Over: true, Winner: codenames.Own}
	case left[codenames.Opponent] == 0:
		return Outcome{Over: true, Winner: codenames.Opponent}
	}
	return Outcome{}
}
