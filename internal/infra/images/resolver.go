// Package images locates question illustrations on disk. Asset naming in
// the bank is inconsistent, so resolution is an explicit ordered fallback
// chain rather than an ad-hoc scan: exact name, Q-prefixed name, delimited
// prefix/token match, then the alternate-cased base directory.
package images

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

var extensions = []string{".png", ".jpg", ".jpeg", ".PNG", ".JPG"}

// CategoryRange maps an inclusive question-number range to a folder.
type CategoryRange struct {
	Lo, Hi int
	Folder string
}

// DefaultRanges reflects the bank layout: 1-19 true/false, 20-45 MCQ.
func DefaultRanges() []CategoryRange {
	return []CategoryRange{
		{Lo: 1, Hi: 19, Folder: "True or False"},
		{Lo: 20, Hi: 45, Folder: "mcq"},
	}
}

type Resolver struct {
	baseDir string
	ranges  []CategoryRange
}

func NewResolver(baseDir string, ranges []CategoryRange) *Resolver {
	if len(ranges) == 0 {
		ranges = DefaultRanges()
	}
	return &Resolver{baseDir: baseDir, ranges: ranges}
}

// Resolve maps a question number to an image path. A number outside all
// configured ranges, or with no matching file, resolves to not-found;
// callers treat that as a skip condition, never an error.
func (r *Resolver) Resolve(number int) (string, bool) {
	folder := ""
	for _, cr := range r.ranges {
		if number >= cr.Lo && number <= cr.Hi {
			folder = cr.Folder
			break
		}
	}
	if folder == "" {
		return "", false
	}

	for _, base := range r.baseCandidates() {
		dir := filepath.Join(base, folder)
		if path, ok := findIn(dir, number); ok {
			return path, true
		}
	}
	return "", false
}

// baseCandidates returns the configured base directory plus its
// alternate-cased sibling ("images" vs "Images"), primary first.
func (r *Resolver) baseCandidates() []string {
	candidates := []string{r.baseDir}
	dir, name := filepath.Split(r.baseDir)
	if name == "" {
		return candidates
	}
	runes := []rune(name)
	if unicode.IsUpper(runes[0]) {
		runes[0] = unicode.ToLower(runes[0])
	} else {
		runes[0] = unicode.ToUpper(runes[0])
	}
	if alt := filepath.Join(dir, string(runes)); alt != r.baseDir {
		candidates = append(candidates, alt)
	}
	return candidates
}

func findIn(dir string, number int) (string, bool) {
	num := strconv.Itoa(number)

	// 1. exact "<number>.<ext>", 2. "Q<number>.<ext>"
	for _, stem := range []string{num, "Q" + num} {
		for _, ext := range extensions {
			path := filepath.Join(dir, stem+ext)
			if fileExists(path) {
				return path, true
			}
		}
	}

	// 3. directory scan: name starts with the number followed by a
	// non-digit, or contains it as a delimited token. Entries are sorted
	// so the pick is deterministic for a fixed listing.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if matchesNumber(name, num) {
			return filepath.Join(dir, name), true
		}
	}
	return "", false
}

// matchesNumber accepts "12_graph.png", "q12.png", "question-12.jpg" for
// 12 but rejects "112.png" and "q120.png".
func matchesNumber(name, num string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	lower := strings.ToLower(stem)
	if strings.HasPrefix(lower, num) {
		rest := lower[len(num):]
		if rest == "" || !isDigit(rest[0]) {
			return true
		}
	}
	for _, token := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if token == num || strings.TrimLeft(token, "q") == num {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
