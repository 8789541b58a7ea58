package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bcspragu/PictureNames/codenames"
	"github.com/bcspragu/PictureNames/embedding"
	"github.com/google/go-cmp/cmp"
)

func newDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return db
}

func TestDistances(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	defer db.Close()

	entries := []embedding.Entry{
		{A: "dog", B: "cat", Distance: 0.3},
		{A: "cat", B: "fish", Distance: 0.8},
		{A: "dog", B: "fish", Distance: 0.9},
		{A: "dog", B: "dog", Distance: 0},
	}
	if err := db.WriteDistances(ctx, entries); err != nil {
		t.Fatalf("WriteDistances: %v", err)
	}
	// Overwrite one, given in the other order.
	if err := db.WriteDistances(ctx, []embedding.Entry{{A: "fish", B: "dog", Distance: 0.7}}); err != nil {
		t.Fatalf("WriteDistances: %v", err)
	}

	tbl, err := db.LoadTable(ctx)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if got := tbl.Len(); got != 3 {
		t.Errorf("table has %d pairs, want 3", got)
	}

	tests := []struct {
		a, b string
		want float64
	}{
		{"cat", "dog", 0.3},
		{"dog", "cat", 0.3},
		{"fish", "cat", 0.8},
		{"dog", "fish", 0.7},
		{"dog", "dog", 0},
	}
	for _, test := range tests {
		got, err := tbl.Distance(test.a, test.b)
		if err != nil {
			t.Errorf("Distance(%q, %q): %v", test.a, test.b, err)
			continue
		}
		if got != test.want {
			t.Errorf("Distance(%q, %q) = %v, want %v", test.a, test.b, got, test.want)
		}
	}

	var dae *codenames.DataAccessError
	if _, err := tbl.Distance("cat", "bird"); !errors.As(err, &dae) {
		t.Errorf("Distance to a missing item returned %v, want a *DataAccessError", err)
	}
}

func TestLists(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	defer db.Close()

	members := map[string][]string{
		"pic1": {"dog", "leash", "park"},
		"pic2": {"boat"},
	}
	if err := db.WriteLists(ctx, Members, members); err != nil {
		t.Fatalf("WriteLists: %v", err)
	}
	neighbors := map[string][]string{
		"pic1": {"walk", "bark"},
	}
	if err := db.WriteLists(ctx, Neighbors, neighbors); err != nil {
		t.Fatalf("WriteLists: %v", err)
	}

	idx, err := db.LoadIndex(ctx, Members)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if got := idx.Len(); got != 2 {
		t.Errorf("members index has %d items, want 2", got)
	}
	got, ok := idx.Lookup("pic1")
	if !ok {
		t.Fatal("pic1 has no members")
	}
	if diff := cmp.Diff(members["pic1"], got); diff != "" {
		t.Errorf("unexpected members for pic1 (-want +got)\n%s", diff)
	}

	// Rewriting a kind replaces it, and leaves the others alone.
	if err := db.WriteLists(ctx, Members, map[string][]string{"pic3": {"sun"}}); err != nil {
		t.Fatalf("WriteLists: %v", err)
	}
	if idx, err = db.LoadIndex(ctx, Members); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if _, ok := idx.Lookup("pic1"); ok {
		t.Error("pic1 members survived a rewrite")
	}
	if idx, err = db.LoadIndex(ctx, Neighbors); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	got, _ = idx.Lookup("pic1")
	if diff := cmp.Diff(neighbors["pic1"], got); diff != "" {
		t.Errorf("unexpected neighbors for pic1 (-want +got)\n%s", diff)
	}
}

func TestVocabularyAndVersion(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	defer db.Close()

	v, err := db.Version(ctx)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "" {
		t.Errorf("Version on a new file = %q, want empty", v)
	}
	if err := db.SetVersion(ctx, "glove-300d"); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	if v, err = db.Version(ctx); err != nil || v != "glove-300d" {
		t.Errorf("Version = %q, %v, want %q", v, err, "glove-300d")
	}

	words := []string{"zebra", "apple", "moon"}
	if err := db.WriteVocabulary(ctx, words); err != nil {
		t.Fatalf("WriteVocabulary: %v", err)
	}
	got, err := db.LoadVocabulary(ctx)
	if err != nil {
		t.Fatalf("LoadVocabulary: %v", err)
	}
	if diff := cmp.Diff(words, got); diff != "" {
		t.Errorf("unexpected vocabulary (-want +got)\n%s", diff)
	}
}

func TestBadDistances(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	defer db.Close()

	if err := db.WriteDistances(ctx, []embedding.Entry{{A: "a", B: "b", Distance: -1}}); err != nil {
		t.Fatalf("WriteDistances: %v", err)
	}
	if _, err := db.LoadTable(ctx); err == nil {
		t.Error("LoadTable with a negative distance succeeded, want an error")
	}
}

func TestClosed(t *testing.T) {
	db := newDB(t)
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := db.LoadVocabulary(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("LoadVocabulary after Close returned %v, want ErrClosed", err)
	}
}
