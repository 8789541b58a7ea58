// Package io renders boards and clue scores on the terminal, and reads the
// player's guesses from it.
package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/score"
	"github.com/olekukonko/tablewriter"
)

func teamColors(p codenames.Picture) tablewriter.Colors {
	var c tablewriter.Colors
	switch p.Team {
	case codenames.Own:
		c = append(c, tablewriter.FgBlueColor)
	case codenames.Opponent:
		c = append(c, tablewriter.FgHiRedColor)
	case codenames.Assassin:
		c = append(c, tablewriter.BgHiRedColor)
	}
	if p.Active {
		c = append(c, tablewriter.UnderlineSingle)
	}
	return c
}

func label(p codenames.Picture) string {
	l := fmt.Sprintf("%d: %s", p.ID, p.Ref)
	if p.Active {
		l += " (x)"
	}
	return l
}

// PrintBoard writes the board as a grid, colored by team. Revealed pictures
// are underlined and marked with an x.
func PrintBoard(w io.Writer, b *codenames.Board) {
	table := tablewriter.NewWriter(w)

	for i := 0; i < len(b.Pictures); i += codenames.Columns {
		end := i + codenames.Columns
		if end > len(b.Pictures) {
			end = len(b.Pictures)
		}
		var row []string
		var colors []tablewriter.Colors
		for _, p := range b.Pictures[i:end] {
			row = append(row, label(p))
			colors = append(colors, teamColors(p))
		}
		table.Rich(row, colors)
	}

	table.Render()
}

// PrintScores writes how much each remaining picture contributed to the
// clue's score.
func PrintScores(w io.Writer, res *score.Result) {
	fmt.Fprintf(w, "Clue: %s (score %.4f)\n", res.Clue, res.Total)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Picture", "Team", "Contribution"})
	table.SetFooter([]string{"", "", "Total", strconv.FormatFloat(res.Total, 'f', 4, 64)})
	for i, p := range res.Pictures {
		table.Append([]string{
			strconv.Itoa(int(p.ID)),
			p.Ref,
			p.Team.String(),
			strconv.FormatFloat(res.Scores[i], 'f', 4, 64),
		})
	}
	table.Render()
}

// Player asks the user on the terminal which picture to reveal.
type Player struct {
	// In is a reader where the user's guesses are read from.
	In io.Reader
	// Out is where the prompts should be written out to.
	Out io.Writer

	sc *bufio.Scanner
}

// Guess prompts for the ID of a picture to reveal. An empty line passes, and
// returns false.
func (p *Player) Guess(b *codenames.Board, clue string) (codenames.PictureID, bool, error) {
	if p.sc == nil {
		p.sc = bufio.NewScanner(p.In)
	}
	for {
		fmt.Fprintf(p.Out, "Enter a picture ID for clue '%s', or nothing to pass: ", clue)
		if !p.sc.Scan() {
			if err := p.sc.Err(); err != nil {
				return 0, false, fmt.Errorf("scanner error: %w", err)
			}
			return 0, false, io.EOF
		}
		txt := strings.TrimSpace(p.sc.Text())
		if txt == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(txt)
		if err != nil {
			fmt.Fprintf(p.Out, "%q isn't a picture ID\n", txt)
			continue
		}
		pic, ok := b.Picture(codenames.PictureID(n))
		if !ok {
			fmt.Fprintf(p.Out, "No picture with ID %d\n", n)
			continue
		}
		if pic.Active {
			fmt.Fprintf(p.Out, "Picture %d has already been revealed\n", n)
			continue
		}
		return pic.ID, true, nil
	}
}
