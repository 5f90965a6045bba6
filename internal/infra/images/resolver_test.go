package images

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveFallbackChain(t *testing.T) {
	base := filepath.Join(t.TempDir(), "images")
	tf := filepath.Join(base, "True or False")
	mcq := filepath.Join(base, "mcq")

	touch(t, filepath.Join(tf, "1.png"))
	touch(t, filepath.Join(tf, "Q2.jpg"))
	touch(t, filepath.Join(tf, "3_graph.png"))
	touch(t, filepath.Join(tf, "question-4.jpeg"))
	touch(t, filepath.Join(mcq, "q25.png"))

	r := NewResolver(base, nil)

	cases := []struct {
		number int
		want   string
	}{
		{1, filepath.Join(tf, "1.png")},
		{2, filepath.Join(tf, "Q2.jpg")},
		{3, filepath.Join(tf, "3_graph.png")},
		{4, filepath.Join(tf, "question-4.jpeg")},
		{25, filepath.Join(mcq, "q25.png")},
	}
	for _, tc := range cases {
		got, ok := r.Resolve(tc.number)
		if !ok || got != tc.want {
			t.Errorf("Resolve(%d) = (%q, %v), want %q", tc.number, got, ok, tc.want)
		}
	}
}

func TestResolveExactBeatsScan(t *testing.T) {
	base := filepath.Join(t.TempDir(), "images")
	tf := filepath.Join(base, "True or False")
	touch(t, filepath.Join(tf, "7.png"))
	touch(t, filepath.Join(tf, "7_alternate.png"))

	got, ok := NewResolver(base, nil).Resolve(7)
	if !ok || got != filepath.Join(tf, "7.png") {
		t.Fatalf("Resolve(7) = (%q, %v)", got, ok)
	}
}

func TestResolveRejectsLongerNumbers(t *testing.T) {
	base := filepath.Join(t.TempDir(), "images")
	tf := filepath.Join(base, "True or False")
	touch(t, filepath.Join(tf, "12.png"))
	touch(t, filepath.Join(tf, "q120.png"))

	if _, ok := NewResolver(base, nil).Resolve(1); ok {
		t.Fatal("1 must not match 12.png")
	}
	wide := NewResolver(base, []CategoryRange{{Lo: 1, Hi: 45, Folder: "True or False"}})
	if got, ok := wide.Resolve(12); !ok || got != filepath.Join(tf, "12.png") {
		t.Fatalf("Resolve(12) = (%q, %v)", got, ok)
	}
}

func TestResolveAlternateCasedBaseDir(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Images", "mcq", "30.png"))

	// configured as lowercase, present on disk capitalized
	got, ok := NewResolver(filepath.Join(root, "images"), nil).Resolve(30)
	if !ok || got != filepath.Join(root, "Images", "mcq", "30.png") {
		t.Fatalf("Resolve(30) = (%q, %v)", got, ok)
	}
}

func TestResolveOutOfRange(t *testing.T) {
	base := filepath.Join(t.TempDir(), "images")
	touch(t, filepath.Join(base, "mcq", "46.png"))

	r := NewResolver(base, nil)
	if _, ok := r.Resolve(46); ok {
		t.Fatal("number outside all ranges must not resolve")
	}
	if _, ok := r.Resolve(0); ok {
		t.Fatal("question 0 must not resolve")
	}
}

func TestResolveMissingFile(t *testing.T) {
	if _, ok := NewResolver(filepath.Join(t.TempDir(), "images"), nil).Resolve(5); ok {
		t.Fatal("empty tree must resolve nothing")
	}
}
