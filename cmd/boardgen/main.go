package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/bcspragu/PictureNames/boardgen"
	"github.com/bcspragu/PictureNames/dict"
	"github.com/namsral/flag"
)

func main() {
	var (
		poolFile = flag.String("pool_file", "pictures.txt", "File listing the pictures boards are dealt from, one per line")
		seed     = flag.Int64("seed", 0, "Seed for dealing the board, defaults to the current time")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(*seed))

	pool, err := dict.New(*poolFile)
	if err != nil {
		log.Fatalf("failed to load picture pool: %v", err)
	}

	bd, err := boardgen.New(pool.Words(), r)
	if err != nil {
		log.Fatalf("failed to deal board: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bd); err != nil {
		log.Fatalf("failed to write board: %v", err)
	}
}
