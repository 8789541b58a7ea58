package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/config"
	"github.com/bcspragu/PictureNames/cryptorand"
	"github.com/bcspragu/PictureNames/dict"
	"github.com/bcspragu/PictureNames/score"
	"github.com/bcspragu/PictureNames/sequencer"
	"github.com/bcspragu/PictureNames/sqldb"
	"github.com/bcspragu/PictureNames/web"
	"github.com/namsral/flag"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "HTTP service address")
		dataFile     = flag.String("data_file", "picturenames.db", "Path to the SQLite data file, as written by build-distances")
		paramsFile   = flag.String("params_file", "", "Path to a YAML file of scoring parameters, the defaults are used if empty")
		poolFile     = flag.String("pool_file", "pictures.txt", "File listing the pictures boards are dealt from, one per line")
		vocabFile    = flag.String("vocab_file", "", "File listing the allowed clues, one per line. Uses the data file's vocabulary if empty")
		hashKeyFile  = flag.String("hash_key_file", "hashKey", "File holding the cookie hash key, generated if it doesn't exist")
		blockKeyFile = flag.String("block_key_file", "blockKey", "File holding the cookie block key, generated if it doesn't exist")
		workers      = flag.Int("workers", 0, "Number of clues to score concurrently, defaults to the number of CPUs")
		seed         = flag.Int64("seed", 0, "Seed for boards and computer turns, zero means unpredictable")
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

	ctx := context.Background()
	db, err := sqldb.New(*dataFile)
	if err != nil {
		log.Fatalf("failed to open data file: %v", err)
	}
	version, err := db.Version(ctx)
	if err != nil {
		log.Fatalf("failed to load data version: %v", err)
	}
	log.Printf("Loading data file %q, version %q", *dataFile, version)

	tbl, err := db.LoadTable(ctx)
	if err != nil {
		log.Fatalf("failed to load distances: %v", err)
	}
	members, err := db.LoadIndex(ctx, sqldb.Members)
	if err != nil {
		log.Fatalf("failed to load members: %v", err)
	}
	neighbors, err := db.LoadIndex(ctx, sqldb.Neighbors)
	if err != nil {
		log.Fatalf("failed to load neighbors: %v", err)
	}
	if neighbors.Len() == 0 {
		neighbors = nil
	}

	var vocab []string
	if *vocabFile != "" {
		d, err := dict.New(*vocabFile)
		if err != nil {
			log.Fatalf("failed to load vocabulary: %v", err)
		}
		vocab = d.Words()
	} else if vocab, err = db.LoadVocabulary(ctx); err != nil {
		log.Fatalf("failed to load vocabulary: %v", err)
	}
	// Everything we need is in memory now.
	if err := db.Close(); err != nil {
		log.Printf("failed to close data file: %v", err)
	}

	pool, err := dict.New(*poolFile)
	if err != nil {
		log.Fatalf("failed to load picture pool: %v", err)
	}
	if n := len(pool.Words()); n < codenames.Size {
		log.Fatalf("--pool_file %q has %d pictures, need at least %d", *poolFile, n, codenames.Size)
	}

	strat, err := score.NewStrategy(cfg.Strategy, tbl, members)
	if err != nil {
		log.Fatalf("failed to create scoring strategy: %v", err)
	}
	seq, err := sequencer.New(qp)
	if err != nil {
		log.Fatalf("failed to create sequencer: %v", err)
	}

	sc, err := web.LoadKeys(*hashKeyFile, *blockKeyFile)
	if err != nil {
		log.Fatalf("failed to load cookie keys: %v", err)
	}

	r := cryptorand.New()
	if *seed != 0 {
		r = rand.New(rand.NewSource(*seed))
	}

	srv, err := web.New(&web.Config{
		Pool:        pool.Words(),
		Vocabulary:  vocab,
		Neighbors:   neighbors,
		Strategy:    strat,
		ScoreParams: sp,
		Sequencer:   seq,
		Workers:     *workers,
		Cookies:     sc,
		Rand:        r,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		os.Exit(1)
	}()

	log.Printf("Server is running on %q with %d clues", *addr, len(vocab))
	if err := http.ListenAndServe(*addr, srv); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}
