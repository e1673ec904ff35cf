package textutil_test

import (
	"math/rand"
	"strings"
	"testing"

	"upright/internal/textutil"
)

func TestCensorMasksWholeWords(t *testing.T) {
	got := textutil.Censor("what the Fuck was that")
	if got != "what the **** was that" {
		t.Fatalf("got %q", got)
	}
	// Substrings inside larger words stay untouched.
	if got := textutil.Censor("dickens novel"); got != "dickens novel" {
		t.Fatalf("got %q", got)
	}
}

func TestCensorEmpty(t *testing.T) {
	if got := textutil.Censor(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanTitleStripsTagsAndNoise(t *testing.T) {
	got := textutil.CleanTitle("[4K] Near miss on highway (original audio) dashcam", "dashcam")
	if got != "Near miss on highway" {
		t.Fatalf("got %q", got)
	}
}

func TestCleanTitleSentenceCases(t *testing.T) {
	if got := textutil.CleanTitle("CRAZY OVERTAKE"); got != "Crazy overtake" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatTitleAppendsTags(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := textutil.FormatTitle("wild moment", []string{"#a", "#b", "#c", "#d"}, 3, rng)
	if !strings.HasPrefix(got, "Wild moment ") {
		t.Fatalf("got %q", got)
	}
	if n := strings.Count(got, "#"); n != 3 {
		t.Fatalf("tag count = %d in %q", n, got)
	}
}

func TestFormatTitleDeterministicForSeed(t *testing.T) {
	tags := []string{"#a", "#b", "#c", "#d"}
	first := textutil.FormatTitle("clip", tags, 2, rand.New(rand.NewSource(7)))
	second := textutil.FormatTitle("clip", tags, 2, rand.New(rand.NewSource(7)))
	if first != second {
		t.Fatalf("%q != %q", first, second)
	}
}

func TestFormatTitleWithoutTags(t *testing.T) {
	if got := textutil.FormatTitle("clip", nil, 3, nil); got != "Clip" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateTitle(t *testing.T) {
	if got := textutil.TruncateTitle("abcdef", 4); got != "abcd" {
		t.Fatalf("got %q", got)
	}
	if got := textutil.TruncateTitle("short", 100); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := textutil.TruncateTitle("abc def", 4); got != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestUpper(t *testing.T) {
	if got := textutil.Upper("near miss"); got != "NEAR MISS" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := textutil.SanitizeFileName(`a/b:c*d?e"f<g>h|i`); got != "a-b-c-defghi" {
		t.Fatalf("got %q", got)
	}
	if got := textutil.SanitizeFileName("  spaced  "); got != "spaced" {
		t.Fatalf("got %q", got)
	}
}
