// Package emd computes the earth mover's distance between two sets of items:
// the mean cost of the cheapest one-to-one matching between them.
package emd

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/bcspragu/PictureNames/codenames"
)

// CostFunc returns the cost of matching a to b. Costs must be non-negative.
type CostFunc func(a, b string) (float64, error)

// Pair is one matched cell of the cost matrix.
type Pair struct {
	// U and V are indices into the two input sets.
	U, V int
	Cost float64
}

// Assignment is a minimum-cost matching between two sets.
type Assignment struct {
	// Pairs are ordered by their index into the first set.
	Pairs []Pair
	Total float64
	Mean  float64
}

// Distance returns the mean cost of the minimum-cost matching between u and v.
func Distance(u, v []string, cost CostFunc) (float64, error) {
	a, err := Match(u, v, cost)
	if err != nil {
		return 0, err
	}
	return a.Mean, nil
}

// Match finds the minimum-cost matching between u and v. The sets don't have
// to be the same size, min(len(u), len(v)) pairs are matched.
func Match(u, v []string, cost CostFunc) (*Assignment, error) {
	if len(u) == 0 || len(v) == 0 {
		return nil, errors.New("emd: both sets must be non-empty")
	}

	m := make([][]float64, len(u))
	for i, a := range u {
		m[i] = make([]float64, len(v))
		for j, b := range v {
			c, err := cost(a, b)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
				return nil, &codenames.DataAccessError{A: a, B: b, Err: fmt.Errorf("bad cost %v", c)}
			}
			m[i][j] = c
		}
	}

	if len(u) == 1 && len(v) == 1 {
		return &Assignment{
			Pairs: []Pair{{U: 0, V: 0, Cost: m[0][0]}},
			Total: m[0][0],
			Mean:  m[0][0],
		}, nil
	}

	// The solver wants no more rows than columns.
	transposed := len(u) > len(v)
	if transposed {
		m = transpose(m)
	}

	rowToCol := solve(m)

	pairs := make([]Pair, 0, len(rowToCol))
	for r, c := range rowToCol {
		p := Pair{U: r, V: c, Cost: m[r][c]}
		if transposed {
			p.U, p.V = c, r
		}
		pairs = append(pairs, p)
	}
	if transposed {
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].U < pairs[j].U
		})
	}

	var total float64
	for _, p := range pairs {
		total += p.Cost
	}
	return &Assignment{
		Pairs: pairs,
		Total: total,
		Mean:  total / float64(len(pairs)),
	}, nil
}

// solve runs the Hungarian algorithm (successive shortest augmenting paths
// with row and column potentials) on an n x m matrix with n <= m, and returns
// the column assigned to each row. Ties go to the lowest column index, so the
// result is deterministic.
func solve(a [][]float64) []int {
	n, m := len(a), len(a[0])
	inf := math.Inf(1)

	// Everything below is 1-indexed, column 0 is a virtual start column.
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)   // p[j] is the row matched to column j.
	way := make([]int, m+1) // way[j] is the previous column on the path to j.
	minv := make([]float64, m+1)
	used := make([]bool, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], inf, 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := a[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		// Flip the augmenting path.
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	rowToCol := make([]int, n)
	for j := 1; j <= m; j++ {
		if p[j] != 0 {
			rowToCol[p[j]-1] = j - 1
		}
	}
	return rowToCol
}

func transpose(m [][]float64) [][]float64 {
	out := make([][]float64, len(m[0]))
	for j := range out {
		out[j] = make([]float64, len(m))
		for i := range m {
			out[j][i] = m[i][j]
		}
	}
	return out
}
