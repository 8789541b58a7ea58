package dict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromReader(t *testing.T) {
	d, err := FromReader(strings.NewReader("Zebra\napple\n\n  moon \nAPPLE\n"))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}

	want := []string{"zebra", "apple", "moon"}
	if diff := cmp.Diff(want, d.Words()); diff != "" {
		t.Errorf("unexpected words (-want +got)\n%s", diff)
	}

	tests := []struct {
		in   string
		want bool
	}{
		{"zebra", true},
		{"Moon", true},
		{"sun", false},
	}
	for _, test := range tests {
		if got := d.Valid(test.in); got != test.want {
			t.Errorf("Valid(%q) = %t, want %t", test.in, got, test.want)
		}
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	d, err := New(filepath.Join(dir, "missing.txt"))
	if err != nil {
		t.Fatalf("New with a missing file: %v", err)
	}
	if len(d.Words()) != 0 || !d.Valid("anything") {
		t.Error("a missing dictionary should be empty and allow every word")
	}

	fn := filepath.Join(dir, "vocab.txt")
	if err := os.WriteFile(fn, []byte("cat\ndog\n"), 0644); err != nil {
		t.Fatalf("failed to write dictionary: %v", err)
	}
	if d, err = New(fn); err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff([]string{"cat", "dog"}, d.Words()); diff != "" {
		t.Errorf("unexpected words (-want +got)\n%s", diff)
	}
}
