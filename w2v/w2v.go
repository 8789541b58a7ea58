// Package w2v serves distances and embeddings out of a word2vec model, for
// boards whose pictures are labeled with words.
package w2v

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"code.sajari.com/word2vec"
	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/embedding"
)

// Store implements embedding.Store on top of a word2vec model.
type Store struct {
	model *word2vec.Model
}

// New loads a binary-formatted word2vec model from the given file.
func New(file string) (*Store, error) {
	log.Println("Opening w2v model...")
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file %q: %w", file, err)
	}
	defer f.Close()

	s, err := FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %q: %w", file, err)
	}
	return s, nil
}

// FromReader loads a binary-formatted word2vec model.
func FromReader(r io.Reader) (*Store, error) {
	log.Println("Reading w2v model...")
	model, err := word2vec.FromReader(r)
	if err != nil {
		return nil, err
	}
	log.Printf("Read w2v model with %d words of dimension %d", model.Size(), model.Dim())
	return &Store{model: model}, nil
}

// Distance implements embedding.Store, returning the cosine distance between
// the two words.
func (s *Store) Distance(a, b string) (float64, error) {
	va, err := s.vector(a)
	if err != nil {
		return 0, &codenames.DataAccessError{A: a, B: b, Err: err}
	}
	vb, err := s.vector(b)
	if err != nil {
		return 0, &codenames.DataAccessError{A: a, B: b, Err: err}
	}
	d, err := embedding.CosineDistance(va, vb)
	if err != nil {
		return 0, &codenames.DataAccessError{A: a, B: b, Err: err}
	}
	return d, nil
}

// Embedding returns the vector for a word.
func (s *Store) Embedding(word string) ([]float64, error) {
	v, err := s.vector(word)
	if err != nil {
		return nil, &codenames.DataAccessError{A: word, Err: err}
	}
	return v, nil
}

// Vectors copies the vectors for the given words into an embedding.Vectors.
// Words missing from the model are skipped and returned.
func (s *Store) Vectors(words []string) (*embedding.Vectors, []string, error) {
	vecs := make(map[string][]float64)
	var missing []string
	for _, w := range words {
		v, err := s.vector(w)
		if err != nil {
			missing = append(missing, w)
			continue
		}
		vecs[w] = v
	}
	out, err := embedding.NewVectors(vecs)
	if err != nil {
		return nil, nil, err
	}
	return out, missing, nil
}

// vector returns the vector for the first spelling of the word that's in the
// model.
func (s *Store) vector(word string) ([]float64, error) {
	forms := spellings(word)
	found := s.model.Map(forms)
	for _, f := range forms {
		v, ok := found[f]
		if !ok {
			continue
		}
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%q isn't in the model: %w", word, codenames.ErrNotFound)
}

// spellings returns the forms of a word to try against the model, most
// specific first. Multi-word names like "ice_cream" are tried as-is, joined
// and space-separated.
func spellings(word string) []string {
	w := strings.ToLower(strings.TrimSpace(word))
	if !strings.ContainsAny(w, "_ ") {
		return []string{w}
	}
	parts := strings.FieldsFunc(w, func(r rune) bool { return r == '_' || r == ' ' })
	forms := []string{
		w,
		strings.Join(parts, ""),
		strings.Join(parts, " "),
		strings.Join(parts, "_"),
	}

	var out []string
	seen := make(map[string]bool)
	for _, f := range forms {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
