package codenames

import (
	"fmt"
	"strings"
)

const (
	// Rows is the number of rows of pictures on a board.
	Rows = 5
	// Columns is the number of columns of pictures on a board.
	Columns = 5
	// Size is the total number of pictures on a board.
	Size = Rows * Columns
)

// PictureID identifies a picture on a board. IDs are assigned by the board
// generator and start at 1.
type PictureID int

// Board contains all of the pictures in a game of Picture Codenames.
type Board struct {
	// ID is an opaque identifier for this board, assigned when it's generated.
	ID string `json:"id"`
	// Pictures is the list of pictures on the board. The zeroth picture
	// corresponds to the top-left, the fourth to the top-right, and the
	// twenty-fourth to the bottom-right.
	Pictures []Picture `json:"pictures"`
}

// Picture is a single picture on the board, and its corresponding affiliation.
type Picture struct {
	ID   PictureID `json:"id"`
	Team Team      `json:"team"`
	// Active is true once the picture has been guessed.
	Active bool `json:"active"`
	// Ref is the key for this picture in an embedding store.
	Ref string `json:"ref"`
}

// Team is the affiliation of a picture.
type Team int

const (
	// UnknownTeam is an error case.
	UnknownTeam Team = iota
	// Own means the picture belongs to the player's team.
	Own
	// Opponent means the picture belongs to the computer's team.
	Opponent
	// Neutral means the picture doesn't belong to anyone.
	Neutral
	// Assassin means the picture is the assassin, revealing it loses the game.
	Assassin
)

// Teams lists the valid teams, in a fixed order.
var Teams = []Team{Own, Opponent, Neutral, Assassin}

func (t Team) String() string {
	switch t {
	case Own:
		return "own"
	case Opponent:
		return "opponent"
	case Neutral:
		return "neutral"
	case Assassin:
		return "assassin"
	}
	return "unknown"
}

// ParseTeam converts the text form of a team back into a Team.
func ParseTeam(s string) (Team, error) {
	for _, t := range Teams {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return UnknownTeam, fmt.Errorf("unknown team %q", s)
}

func (t Team) MarshalText() ([]byte, error) {
	if t == UnknownTeam {
		return nil, fmt.Errorf("can't marshal team %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(dat []byte) error {
	team, err := ParseTeam(string(dat))
	if err != nil {
		return err
	}
	*t = team
	return nil
}

// Clue is the clue picked for the player, along with how it was scored.
type Clue struct {
	Ref   string  `json:"ref"`
	Score float64 `json:"score"`
}

// Remaining returns the pictures that haven't been guessed yet, in board
// order. This is the only view of the board the decision algorithms use.
func (b *Board) Remaining() []Picture {
	var out []Picture
	for _, p := range b.Pictures {
		if !p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Picture looks up a picture by its ID.
func (b *Board) Picture(id PictureID) (Picture, bool) {
	for _, p := range b.Pictures {
		if p.ID == id {
			return p, true
		}
	}
	return Picture{}, false
}

// Validate checks that the board is well-formed: every picture has a unique
// ID and a known team, and at most one assassin is still in play.
func (b *Board) Validate() error {
	if b == nil {
		return &InvalidBoardError{Reason: "no board given"}
	}
	seen := make(map[PictureID]bool)
	var assassins int
	for _, p := range b.Pictures {
		if seen[p.ID] {
			return &InvalidBoardError{Reason: fmt.Sprintf("duplicate picture ID %d", p.ID)}
		}
		seen[p.ID] = true

		switch p.Team {
		case Own, Opponent, Neutral:
		case Assassin:
			if !p.Active {
				assassins++
			}
		default:
			return &InvalidBoardError{Reason: fmt.Sprintf("picture %d has no team", p.ID)}
		}
	}
	if assassins > 1 {
		return &InvalidBoardError{Reason: fmt.Sprintf("found %d assassins in play, want at most 1", assassins)}
	}
	return nil
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	pics := make([]Picture, len(b.Pictures))
	copy(pics, b.Pictures)
	return &Board{ID: b.ID, Pictures: pics}
}

// Forbidden returns the set of clues that can't be given: everything already
// used as a clue, plus every picture on the board.
func Forbidden(b *Board, used []string) map[string]bool {
	out := make(map[string]bool, len(used)+len(b.Pictures))
	for _, u := range used {
		out[u] = true
	}
	for _, p := range b.Pictures {
		out[p.Ref] = true
	}
	return out
}
