// Package embedding provides read-only lookups of distances between the items
// that pictures and clues refer to. Every type in here is immutable once
// constructed, so it's safe to share across goroutines without locking.
package embedding

import (
	"fmt"
	"math"

	"github.com/bcspragu/PictureNames/codenames"
)

// Store returns the distance between two items. Distances are non-negative,
// symmetric, and zero between an item and itself. Missing items are reported
// as a *codenames.DataAccessError.
type Store interface {
	Distance(a, b string) (float64, error)
}

// Entry is a single precomputed distance.
type Entry struct {
	A, B     string
	Distance float64
}

type pair struct {
	a, b string
}

func key(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

// Table is a precomputed pairwise distance table.
type Table struct {
	dists map[pair]float64
	items map[string]struct{}
}

// NewTable builds a table from the given entries. (a, b) and (b, a) are the
// same entry, giving both with different distances is an error.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		dists: make(map[pair]float64, len(entries)),
		items: make(map[string]struct{}),
	}
	for _, e := range entries {
		if math.IsNaN(e.Distance) || math.IsInf(e.Distance, 0) || e.Distance < 0 {
			return nil, fmt.Errorf("bad distance %v between %q and %q", e.Distance, e.A, e.B)
		}
		if e.A == e.B {
			if e.Distance != 0 {
				return nil, fmt.Errorf("distance from %q to itself is %v, want 0", e.A, e.Distance)
			}
			t.items[e.A] = struct{}{}
			continue
		}
		k := key(e.A, e.B)
		if d, ok := t.dists[k]; ok && d != e.Distance {
			return nil, fmt.Errorf("conflicting distances %v and %v between %q and %q", d, e.Distance, e.A, e.B)
		}
		t.dists[k] = e.Distance
		t.items[e.A] = struct{}{}
		t.items[e.B] = struct{}{}
	}
	return t, nil
}

// Distance implements Store.
func (t *Table) Distance(a, b string) (float64, error) {
	if a == b {
		if _, ok := t.items[a]; !ok {
			return 0, codenames.MissingItem(a)
		}
		return 0, nil
	}
	d, ok := t.dists[key(a, b)]
	if !ok {
		return 0, codenames.MissingPair(a, b)
	}
	return d, nil
}

// Len returns the number of distinct pairs in the table.
func (t *Table) Len() int {
	return len(t.dists)
}

// Vectors holds one embedding vector per item, and computes cosine distances
// between them.
type Vectors struct {
	dim  int
	vecs map[string][]float64
}

// NewVectors copies the given vectors. All of them need the same, non-zero
// dimension.
func NewVectors(vecs map[string][]float64) (*Vectors, error) {
	v := &Vectors{vecs: make(map[string][]float64, len(vecs))}
	for id, vec := range vecs {
		if len(vec) == 0 {
			return nil, fmt.Errorf("empty vector for %q", id)
		}
		if v.dim == 0 {
			v.dim = len(vec)
		}
		if len(vec) != v.dim {
			return nil, fmt.Errorf("vector for %q has dimension %d, want %d", id, len(vec), v.dim)
		}
		cp := make([]float64, len(vec))
		copy(cp, vec)
		v.vecs[id] = cp
	}
	return v, nil
}

// Dim returns the dimension of the vectors.
func (v *Vectors) Dim() int {
	return v.dim
}

// Embedding returns a copy of the vector for the given item.
func (v *Vectors) Embedding(id string) ([]float64, error) {
	vec, ok := v.vecs[id]
	if !ok {
		return nil, codenames.MissingItem(id)
	}
	out := make([]float64, len(vec))
	copy(out, vec)
	return out, nil
}

// Distance implements Store, returning the cosine distance between the two
// vectors.
func (v *Vectors) Distance(a, b string) (float64, error) {
	va, ok := v.vecs[a]
	if !ok {
		return 0, &codenames.DataAccessError{A: a, B: b, Err: codenames.ErrNotFound}
	}
	vb, ok := v.vecs[b]
	if !ok {
		return 0, &codenames.DataAccessError{A: a, B: b, Err: codenames.ErrNotFound}
	}
	if a == b {
		return 0, nil
	}
	d, err := CosineDistance(va, vb)
	if err != nil {
		return 0, &codenames.DataAccessError{A: a, B: b, Err: err}
	}
	return d, nil
}

// CosineDistance returns 1 - cos(a, b), clamped to [0, 2].
func CosineDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch, %d != %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("zero vector")
	}
	d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	return math.Max(0, math.Min(2, d)), nil
}

// Index maps an item to an ordered list of related items. It's used both for
// the members of a set-valued item and for the nearest neighbors of a picture.
type Index struct {
	lists map[string][]string
}

// NewIndex copies the given lists.
func NewIndex(lists map[string][]string) *Index {
	idx := &Index{lists: make(map[string][]string, len(lists))}
	for id, l := range lists {
		cp := make([]string, len(l))
		copy(cp, l)
		idx.lists[id] = cp
	}
	return idx
}

// Lookup returns the list for the given item, and false if there isn't one.
// The returned slice must not be modified.
func (idx *Index) Lookup(id string) ([]string, bool) {
	if idx == nil {
		return nil, false
	}
	l, ok := idx.lists[id]
	return l, ok
}

// Len returns the number of items with a list.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.lists)
}
