package embedding

import (
	"errors"
	"testing"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/google/go-cmp/cmp"
)

func TestNeighbors(t *testing.T) {
	tbl, err := NewTable([]Entry{
		{A: "dog", B: "bark", Distance: 0.2},
		{A: "dog", B: "leash", Distance: 0.4},
		{A: "dog", B: "moon", Distance: 0.9},
		{A: "dog", B: "cat", Distance: 0.4},
		{A: "sun", B: "bark", Distance: 0.8},
		{A: "sun", B: "leash", Distance: 0.7},
		{A: "sun", B: "moon", Distance: 0.1},
		{A: "sun", B: "cat", Distance: 0.6},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	vocab := []string{"bark", "leash", "moon", "cat", "hotdog"}

	got, err := Neighbors(tbl, []string{"dog", "sun"}, vocab[:4], 3)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	want := map[string][]string{
		// leash and cat tie, and keep vocabulary order.
		"dog": {"bark", "leash", "cat"},
		"sun": {"moon", "cat", "leash"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected neighbors (-want +got)\n%s", diff)
	}

	// "hotdog" is never looked up, since it contains the id.
	if got, err = Neighbors(tbl, []string{"dog"}, vocab, 10); err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	if diff := cmp.Diff([]string{"bark", "leash", "cat", "moon"}, got["dog"]); diff != "" {
		t.Errorf("unexpected neighbors (-want +got)\n%s", diff)
	}

	var dae *codenames.DataAccessError
	if _, err := Neighbors(tbl, []string{"tree"}, vocab[:1], 1); !errors.As(err, &dae) {
		t.Errorf("Neighbors with a missing distance returned %v, want a *DataAccessError", err)
	}
}
