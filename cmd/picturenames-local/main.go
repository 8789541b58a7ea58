package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/bcspragu/PictureNames/boardgen"
	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/config"
	"github.com/bcspragu/PictureNames/dict"
	"github.com/bcspragu/PictureNames/embedding"
	"github.com/bcspragu/PictureNames/game"
	cio "github.com/bcspragu/PictureNames/io"
	"github.com/bcspragu/PictureNames/score"
	"github.com/bcspragu/PictureNames/sequencer"
	"github.com/bcspragu/PictureNames/sqldb"
	"github.com/bcspragu/PictureNames/w2v"
	"github.com/namsral/flag"
)

func main() {
	var (
		modelFile  = flag.String("model_file", "", "A binary-formatted word2vec pre-trained model file. Takes precedence over --data_file")
		dataFile   = flag.String("data_file", "picturenames.db", "Path to the SQLite data file, as written by build-distances")
		boardFile  = flag.String("board_file", "", "JSON board to play on. A new board is dealt from --pool_file if empty")
		poolFile   = flag.String("pool_file", "pictures.txt", "File listing the pictures boards are dealt from, one per line")
		vocabFile  = flag.String("vocab_file", "", "File listing the allowed clues, one per line. Uses the data file's vocabulary if empty")
		paramsFile = flag.String("params_file", "", "Path to a YAML file of scoring parameters, the defaults are used if empty")
		seed       = flag.Int64("seed", 0, "Seed for dealing and computer turns, defaults to the current time")
		play       = flag.Bool("play", false, "Play a whole game on the terminal, instead of printing one clue and one computer turn")
	)
	flag.Parse()

	cfg := config.Default()
	if *paramsFile != "" {
		var err error
		if cfg, err = config.Load(*paramsFile); err != nil {
			log.Fatalf("failed to load params: %v", err)
		}
	}
	sp, qp, err := cfg.Params()
	if err != nil {
		log.Fatalf("bad params: %v", err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(*seed))

	ld, err := load(*modelFile, *dataFile, *vocabFile)
	if err != nil {
		log.Fatal(err)
	}

	strat, err := score.NewStrategy(cfg.Strategy, ld.store, ld.members)
	if err != nil {
		log.Fatalf("failed to create scoring strategy: %v", err)
	}
	scorer, err := score.New(sp, strat)
	if err != nil {
		log.Fatalf("failed to create scorer: %v", err)
	}
	seq, err := sequencer.New(qp)
	if err != nil {
		log.Fatalf("failed to create sequencer: %v", err)
	}

	b, err := loadBoard(*boardFile, *poolFile, r)
	if err != nil {
		log.Fatalf("failed to load board: %v", err)
	}

	a := &assistant{
		scorer: scorer,
		seq:    seq,
		vocab:  ld.vocab,
		r:      r,
		out:    os.Stdout,
	}

	if !*play {
		if err := a.once(b); err != nil {
			log.Fatal(err)
		}
		return
	}

	g, err := game.New(b)
	if err != nil {
		log.Fatalf("can't play on this board: %v", err)
	}
	o, err := a.play(g, &cio.Player{In: os.Stdin, Out: os.Stdout})
	if err != nil {
		log.Fatal(err)
	}
	if o.Winner == codenames.Own {
		fmt.Println("You won!")
	} else {
		fmt.Println("The computer won.")
	}
}

type loaded struct {
	store   embedding.Store
	members *embedding.Index
	vocab   []string
}

func load(modelFile, dataFile, vocabFile string) (*loaded, error) {
	var ld loaded
	if vocabFile != "" {
		d, err := dict.New(vocabFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load vocabulary: %w", err)
		}
		ld.vocab = d.Words()
	}

	if modelFile != "" {
		if len(ld.vocab) == 0 {
			return nil, errors.New("--vocab_file is required with --model_file")
		}
		s, err := w2v.New(modelFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize word2vec model: %w", err)
		}
		ld.store = s
		return &ld, nil
	}

	ctx := context.Background()
	db, err := sqldb.New(dataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer db.Close()

	tbl, err := db.LoadTable(ctx)
	if err != nil {
		return nil, err
	}
	ld.store = tbl
	if ld.members, err = db.LoadIndex(ctx, sqldb.Members); err != nil {
		return nil, err
	}
	if len(ld.vocab) == 0 {
		if ld.vocab, err = db.LoadVocabulary(ctx); err != nil {
			return nil, err
		}
	}
	return &ld, nil
}

func loadBoard(boardFile, poolFile string, r *rand.Rand) (*codenames.Board, error) {
	if boardFile == "" {
		pool, err := dict.New(poolFile)
		if err != nil {
			return nil, err
		}
		return boardgen.New(pool.Words(), r)
	}

	f, err := os.Open(boardFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var b codenames.Board
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse board file %q: %w", boardFile, err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

type assistant struct {
	scorer *score.Scorer
	seq    *sequencer.Sequencer
	vocab  []string
	used   []string
	r      *rand.Rand
	out    io.Writer
}

// clue picks and prints the best clue for the board.
func (a *assistant) clue(b *codenames.Board) (*score.Result, error) {
	res, err := a.scorer.Best(context.Background(), b, a.vocab, codenames.Forbidden(b, a.used))
	if err != nil {
		return nil, fmt.Errorf("failed to pick a clue: %w", err)
	}
	a.used = append(a.used, res.Clue)
	cio.PrintScores(a.out, res)
	return res, nil
}

// once prints the best clue for the board and a single simulated computer
// turn.
func (a *assistant) once(b *codenames.Board) error {
	cio.PrintBoard(a.out, b)
	if _, err := a.clue(b); err != nil {
		return err
	}
	ids, err := a.seq.Sequence(b, a.r)
	if err != nil {
		return fmt.Errorf("failed to simulate the computer's turn: %w", err)
	}
	fmt.Fprintf(a.out, "The computer would pick %v\n", ids)
	return nil
}

// play runs the game to the end, alternating between the player and the
// computer.
func (a *assistant) play(g *game.Game, p *cio.Player) (game.Outcome, error) {
	for {
		b := g.Board()
		cio.PrintBoard(a.out, b)
		res, err := a.clue(b)
		if err != nil {
			return game.Outcome{}, err
		}

		for {
			id, ok, err := p.Guess(g.Board(), res.Clue)
			if err != nil {
				return game.Outcome{}, err
			}
			if !ok {
				break
			}
			pic, err := g.Reveal(id)
			if err != nil {
				return game.Outcome{}, err
			}
			fmt.Fprintf(a.out, "Picture %d was %s\n", pic.ID, pic.Team)
			if o := g.Outcome(); o.Over {
				return o, nil
			}
			if game.EndsTurn(pic) {
				break
			}
		}

		ids, err := a.seq.Sequence(g.Board(), a.r)
		if err != nil {
			return game.Outcome{}, fmt.Errorf("failed to simulate the computer's turn: %w", err)
		}
		picks, err := g.ApplySequence(ids)
		if err != nil {
			return game.Outcome{}, err
		}
		for _, pic := range picks {
			fmt.Fprintf(a.out, "The computer picked %d, which was %s\n", pic.ID, pic.Team)
		}
		if o := g.Outcome(); o.Over {
			return o, nil
		}
	}
}
