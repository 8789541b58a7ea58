package main

import (
	"testing"

	"github.com/bcspragu/PictureNames/embedding"
	"github.com/google/go-cmp/cmp"
)

func TestExpand(t *testing.T) {
	members := map[string][]string{
		"beach":  {"sand", "sun"},
		"desert": {"sand", "cactus"},
	}
	got := expand([]string{"beach", "desert", "moon"}, members)
	want := []string{"beach", "sand", "sun", "desert", "cactus", "moon"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected items (-want +got)\n%s", diff)
	}
}

func TestPairwise(t *testing.T) {
	vecs, err := embedding.NewVectors(map[string][]float64{
		"a": {1, 0},
		"b": {0, 1},
		"c": {-1, 0},
	})
	if err != nil {
		t.Fatalf("NewVectors: %v", err)
	}

	// (a, b) and (b, a) are the same pair, and (a, a) is skipped.
	got, err := pairwise(vecs, []string{"a", "b"}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("pairwise: %v", err)
	}
	want := []embedding.Entry{
		{A: "a", B: "b", Distance: 1},
		{A: "a", B: "c", Distance: 2},
		{A: "b", B: "c", Distance: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected distances (-want +got)\n%s", diff)
	}

	if _, err := embedding.NewTable(got); err != nil {
		t.Errorf("distances don't make a valid table: %v", err)
	}
}
