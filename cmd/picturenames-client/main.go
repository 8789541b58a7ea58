package main

import (
	"fmt"
	"log"
	"os"

	"github.com/bcspragu/PictureNames/client"
	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/game"
	cio "github.com/bcspragu/PictureNames/io"
	"github.com/namsral/flag"
)

func main() {
	var (
		serverScheme = flag.String("server_scheme", "http", "The scheme of the server to connect to to play the game.")
		serverAddr   = flag.String("server_addr", "localhost:8080", "The address of the server to connect to to play the game.")
	)
	flag.Parse()

	c, err := client.New(*serverScheme, *serverAddr)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	b, err := c.NewBoard()
	if err != nil {
		log.Fatalf("failed to create board: %v", err)
	}
	fmt.Printf("Playing on board %q\n", b.ID)

	p := &cio.Player{In: os.Stdin, Out: os.Stdout}
	o, err := play(c, b, p)
	if err != nil {
		log.Fatal(err)
	}
	if o.Winner == codenames.Own {
		fmt.Println("You won!")
	} else {
		fmt.Println("The computer won.")
	}
}

func play(c *client.Client, b *codenames.Board, p *cio.Player) (game.Outcome, error) {
	for {
		cio.PrintBoard(os.Stdout, b)
		clue, err := c.Clue(b, nil)
		if err != nil {
			return game.Outcome{}, err
		}
		fmt.Printf("Clue: %s (score %.4f)\n", clue.Clue.Ref, clue.Clue.Score)

		for {
			id, ok, err := p.Guess(b, clue.Clue.Ref)
			if err != nil {
				return game.Outcome{}, err
			}
			if !ok {
				break
			}
			resp, err := c.Reveal(b, id)
			if err != nil {
				return game.Outcome{}, err
			}
			b = resp.Board
			fmt.Printf("Picture %d was %s\n", resp.Picture.ID, resp.Picture.Team)
			if resp.Outcome.Over {
				return resp.Outcome, nil
			}
			if resp.EndsTurn {
				break
			}
		}

		ids, err := c.ComputerTurn(b)
		if err != nil {
			return game.Outcome{}, err
		}
		for _, id := range ids {
			resp, err := c.Reveal(b, id)
			if err != nil {
				return game.Outcome{}, err
			}
			b = resp.Board
			fmt.Printf("The computer picked %d, which was %s\n", resp.Picture.ID, resp.Picture.Team)
			if resp.Outcome.Over {
				return resp.Outcome, nil
			}
		}
	}
}
