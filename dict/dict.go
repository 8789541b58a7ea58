// Package dict loads the clue vocabulary: a newline-separated list of ids that
// can be given as clues.
package dict

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Dictionary struct {
	words []string
	index map[string]struct{}
}

// New loads the dictionary from the given file. A missing file gives an empty
// dictionary.
func New(file string) (*Dictionary, error) {
	log.Println("Opening dictionary...")
	f, err := os.Open(file)
	if os.IsNotExist(err) {
		// If the dictionary file doesn't exist, we just let everything pass.
		log.Println("Dictionary doesn't exist, will allow all words.")
		return &Dictionary{index: make(map[string]struct{})}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary file %q: %w", file, err)
	}
	defer f.Close()

	d, err := FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary file %q: %w", file, err)
	}
	log.Printf("Read dictionary with %d words", len(d.words))
	return d, nil
}

// FromReader reads one word per line. Blank lines and repeats are skipped.
func FromReader(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{index: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" {
			continue
		}
		if _, ok := d.index[w]; ok {
			continue
		}
		d.index[w] = struct{}{}
		d.words = append(d.words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// Words returns the words in the order they appeared in the file.
func (d *Dictionary) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// Valid returns if the given word can be used as a clue. If the dictionary
// was not initialized (i.e. it has no words in it), consider all words valid.
func (d *Dictionary) Valid(word string) bool {
	if len(d.index) == 0 {
		return true
	}
	_, valid := d.index[strings.ToLower(word)]
	return valid
}
