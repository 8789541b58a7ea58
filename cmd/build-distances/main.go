package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/bcspragu/PictureNames/dict"
	"github.com/bcspragu/PictureNames/embedding"
	"github.com/bcspragu/PictureNames/sqldb"
	"github.com/bcspragu/PictureNames/w2v"
	"github.com/namsral/flag"
)

func main() {
	var (
		modelFile   = flag.String("model_file", "", "A binary-formatted word2vec pre-trained model file.")
		vocabFile   = flag.String("vocab_file", "vocab.txt", "File listing the allowed clues, one per line")
		poolFile    = flag.String("pool_file", "pictures.txt", "File listing the picture refs, one per line")
		membersFile = flag.String("members_file", "", "Optional JSON file mapping each clue or picture to the items it's made of, for set scoring")
		dataFile    = flag.String("data_file", "picturenames.db", "Path to the SQLite data file to write")
		version     = flag.String("version", "", "Version string to record in the data file, defaults to the model file name")
		topN        = flag.Int("top_n", 50, "The number of closest clues to store for each picture.")
	)
	flag.Parse()

	if *modelFile == "" {
		log.Fatal("--model_file must be provided")
	}
	if *version == "" {
		*version = *modelFile
	}

	vocab, err := dict.New(*vocabFile)
	if err != nil {
		log.Fatalf("failed to load vocabulary: %v", err)
	}
	pool, err := dict.New(*poolFile)
	if err != nil {
		log.Fatalf("failed to load picture pool: %v", err)
	}
	members, err := loadMembers(*membersFile)
	if err != nil {
		log.Fatalf("failed to load members: %v", err)
	}

	model, err := w2v.New(*modelFile)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	clues, pics := expand(vocab.Words(), members), expand(pool.Words(), members)
	vecs, missing, err := model.Vectors(union(clues, pics))
	if err != nil {
		log.Fatalf("failed to load vectors: %v", err)
	}
	if len(missing) > 0 {
		log.Printf("%d items aren't in the model and will be skipped: %v", len(missing), missing)
	}
	skip := make(map[string]bool)
	for _, m := range missing {
		skip[m] = true
	}
	clues, pics = without(clues, skip), without(pics, skip)

	entries, err := pairwise(vecs, clues, pics)
	if err != nil {
		log.Fatalf("failed to compute distances: %v", err)
	}
	log.Printf("Computed %d distances", len(entries))

	neighbors, err := embedding.Neighbors(vecs, without(pool.Words(), skip), without(vocab.Words(), skip), *topN)
	if err != nil {
		log.Fatalf("failed to compute neighbors: %v", err)
	}

	ctx := context.Background()
	db, err := sqldb.New(*dataFile)
	if err != nil {
		log.Fatalf("failed to open data file: %v", err)
	}
	defer db.Close()

	if err := db.WriteDistances(ctx, entries); err != nil {
		log.Fatalf("failed to write distances: %v", err)
	}
	if err := db.WriteLists(ctx, sqldb.Neighbors, neighbors); err != nil {
		log.Fatalf("failed to write neighbors: %v", err)
	}
	if len(members) > 0 {
		if err := db.WriteLists(ctx, sqldb.Members, members); err != nil {
			log.Fatalf("failed to write members: %v", err)
		}
	}
	if err := db.WriteVocabulary(ctx, without(vocab.Words(), skip)); err != nil {
		log.Fatalf("failed to write vocabulary: %v", err)
	}
	if err := db.SetVersion(ctx, *version); err != nil {
		log.Fatalf("failed to write version: %v", err)
	}
	log.Printf("Wrote %q", *dataFile)
}

func loadMembers(fn string) (map[string][]string, error) {
	if fn == "" {
		return nil, nil
	}
	dat, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	var members map[string][]string
	if err := json.Unmarshal(dat, &members); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", fn, err)
	}
	return members, nil
}

// expand returns the ids along with all of their members, without duplicates.
func expand(ids []string, members map[string][]string) []string {
	var all []string
	for _, id := range ids {
		all = append(all, id)
		all = append(all, members[id]...)
	}
	return union(all)
}

func union(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range lists {
		for _, id := range l {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func without(ids []string, skip map[string]bool) []string {
	var out []string
	for _, id := range ids {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}

// pairwise returns the distance between every clue-side item and every
// picture-side item. Pairs are only stored once.
func pairwise(store embedding.Store, clues, pics []string) ([]embedding.Entry, error) {
	type pair struct{ a, b string }
	seen := make(map[pair]bool)
	var out []embedding.Entry
	for _, c := range clues {
		for _, p := range pics {
			if c == p {
				continue
			}
			k := pair{c, p}
			if p < c {
				k = pair{p, c}
			}
			if seen[k] {
				continue
			}
			seen[k] = true

			d, err := store.Distance(c, p)
			if err != nil {
				return nil, err
			}
			out = append(out, embedding.Entry{A: c, B: p, Distance: d})
		}
	}
	return out, nil
}
