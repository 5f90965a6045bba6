package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"math-quiz-bot/internal/domain"
)

func writeKey(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKey(t *testing.T) {
	path := writeKey(t, "number,type,answer\n"+
		"1,tf,True\n"+
		"2,True/False,f\n"+
		"20,mcq,B\n"+
		"21,Multiple Choice,1\n")

	key, err := NewKeyLoader(path, 20).LoadKey(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if key.Len() != 4 {
		t.Fatalf("loaded %d entries, want 4", key.Len())
	}
	if key[1].Answer != "t" || key[2].Answer != "f" {
		t.Fatalf("tf normalization: %+v %+v", key[1], key[2])
	}
	if key[20].Answer != "b" || key[21].Answer != "b" {
		t.Fatalf("mcq normalization: %+v %+v", key[20], key[21])
	}
	if key[20].Type != domain.MultipleChoice {
		t.Fatalf("type label ignored: %+v", key[20])
	}
}

func TestLoadKeySkipsMalformedRows(t *testing.T) {
	path := writeKey(t, "number,type,answer\n"+
		"1,tf,t\n"+
		"oops,tf,t\n"+ // non-numeric question number
		"-3,tf,t\n"+ // non-positive question number
		"5,tf\n"+ // short row
		"6,tf,t\n")

	key, err := NewKeyLoader(path, 20).LoadKey(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if key.Len() != 2 {
		t.Fatalf("loaded %d entries, want 2", key.Len())
	}
	if _, ok := key[5]; ok {
		t.Fatal("short row made it into the key")
	}
}

func TestLoadKeyDefaultsBadAnswers(t *testing.T) {
	path := writeKey(t, "1,tf,??\n25,mcq,z\n")
	key, err := NewKeyLoader(path, 20).LoadKey(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// the first data-looking row doubles as the header slot but still parses
	if key[1].Answer != domain.DefaultTrueFalseAnswer {
		t.Fatalf("tf default: %+v", key[1])
	}
	if key[25].Answer != domain.DefaultMultipleChoiceAnswer {
		t.Fatalf("mcq default: %+v", key[25])
	}
}

func TestLoadKeyMissingFile(t *testing.T) {
	_, err := NewKeyLoader(filepath.Join(t.TempDir(), "absent.csv"), 20).LoadKey(context.Background())
	if err == nil {
		t.Fatal("missing file must fail the load")
	}
}
