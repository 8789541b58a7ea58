package embedding

import (
	"sort"
	"strings"
)

// Neighbors returns, for each id, the n closest clues from vocab, closest
// first. Clues that contain an id or are contained in it are skipped, since
// they'd give the picture away. Ties keep vocabulary order.
func Neighbors(store Store, ids, vocab []string, n int) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		type match struct {
			clue string
			dist float64
		}
		var matches []match
		for _, clue := range vocab {
			if substringMatch(id, clue) {
				continue
			}
			d, err := store.Distance(id, clue)
			if err != nil {
				return nil, err
			}
			matches = append(matches, match{clue: clue, dist: d})
		}
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].dist < matches[j].dist
		})

		if len(matches) > n {
			matches = matches[:n]
		}
		var clues []string
		for _, m := range matches {
			clues = append(clues, m.clue)
		}
		out[id] = clues
	}
	return out, nil
}

func substringMatch(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}
