package textutil

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upperCaser = cases.Upper(language.English)
	lowerCaser = cases.Lower(language.English)
)

// profaneWords are masked before any text reaches an output title or overlay.
var profaneWords = []string{
	"fuck", "shit", "bitch", "asshole", "dick", "bastard", "damn",
}

var profanePattern = regexp.MustCompile(`(?i)\b(` + strings.Join(profaneWords, "|") + `)\b`)

var (
	bracketPattern = regexp.MustCompile(`\[.*?\]`)
	parenPattern   = regexp.MustCompile(`\(.*?\)`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Censor masks profane words with asterisks of matching length.
func Censor(text string) string {
	if text == "" {
		return ""
	}
	return profanePattern.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat("*", utf8.RuneCountInString(match))
	})
}

// Upper uppercases text for overlay rendering.
func Upper(text string) string {
	return upperCaser.String(text)
}

// CleanTitle strips bracketed tags, parenthesized asides, and the provided
// noise words from a raw title, then sentence-cases the result.
func CleanTitle(title string, noiseWords ...string) string {
	cleaned := lowerCaser.String(title)
	cleaned = bracketPattern.ReplaceAllString(cleaned, "")
	cleaned = parenPattern.ReplaceAllString(cleaned, "")
	for _, word := range noiseWords {
		word = strings.TrimSpace(lowerCaser.String(word))
		if word == "" {
			continue
		}
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err != nil {
			continue
		}
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(spacePattern.ReplaceAllString(cleaned, " "))
	return capitalize(cleaned)
}

// FormatTitle combines a cleaned title with up to maxTags pseudo-randomly
// chosen hashtags. The rand source is injected so callers can pin ordering.
func FormatTitle(title string, hashtags []string, maxTags int, rng *rand.Rand) string {
	cleaned := CleanTitle(title)
	tags := sampleTags(hashtags, maxTags, rng)
	if len(tags) == 0 {
		return cleaned
	}
	if cleaned == "" {
		return strings.Join(tags, " ")
	}
	return cleaned + " " + strings.Join(tags, " ")
}

// TruncateTitle caps a title at max runes, trimming trailing whitespace.
func TruncateTitle(title string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return strings.TrimRight(string(runes[:max]), " ")
}

func sampleTags(hashtags []string, maxTags int, rng *rand.Rand) []string {
	pool := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		if strings.TrimSpace(tag) != "" {
			pool = append(pool, strings.TrimSpace(tag))
		}
	}
	if maxTags <= 0 || len(pool) == 0 {
		return nil
	}
	if maxTags > len(pool) {
		maxTags = len(pool)
	}
	if rng != nil {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}
	return pool[:maxTags]
}

func capitalize(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
