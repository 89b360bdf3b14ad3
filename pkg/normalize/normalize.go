// Package normalize canonicalizes free-text game titles for comparison.
//
// Storefront titles and catalog titles rarely agree byte-for-byte: they
// differ in trademark glyphs, punctuation, casing, and marketing suffixes
// ("Complete Edition", "Remastered"). Normalization reduces both sides to
// an ordered lowercase token sequence plus the subset of tokens that carry
// identity (the "meaningful" tokens) so the matcher can compare apples to
// apples.
package normalize

import (
	"strings"
	"unicode"
)

// stopList holds generic words and bare numbers that carry no title
// identity. Tokens on this list are excluded from the meaningful set but
// kept in the full token sequence.
var stopList = map[string]struct{}{
	// articles, conjunctions, prepositions
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"from": {}, "by": {}, "vs": {}, "versus": {},

	// bare numbers and short roman numerals (sequels, volumes)
	"1": {}, "2": {}, "3": {}, "4": {}, "5": {},
	"6": {}, "7": {}, "8": {}, "9": {},
	"i": {}, "ii": {}, "iii": {},

	// edition and marketing terms
	"edition": {}, "complete": {}, "definitive": {}, "deluxe": {},
	"ultimate": {}, "premium": {}, "special": {}, "standard": {},
	"limited": {}, "collectors": {}, "anniversary": {}, "enhanced": {},
	"extended": {}, "expanded": {}, "remastered": {}, "remaster": {},
	"remake": {}, "redux": {}, "goty": {}, "game": {}, "year": {},
	"hd": {}, "4k": {}, "vr": {}, "digital": {}, "gold": {},
	"platinum": {}, "bundle": {}, "pack": {},
	"collection": {}, "trilogy": {}, "anthology": {}, "volume": {},
	"vol": {}, "part": {}, "chapter": {}, "episode": {}, "season": {},
	"cut": {}, "directors": {}, "director": {}, "legacy": {},
	"classic": {}, "dlc": {},
}

// legalGlyphs are trademark/registration/copyright marks stripped before
// tokenizing. They appear inconsistently across stores for the same title.
const legalGlyphs = "™®©℗℠" // ™ ® © ℗ ℠

// Title is the canonical form of a listing or catalog title.
type Title struct {
	Raw        string   // original input, untouched
	Text       string   // canonical text: lowercase tokens joined by single spaces
	Tokens     []string // ordered lowercase word tokens
	Meaningful []string // Tokens minus the stop-list, order preserved
}

// Unmatchable reports whether the title reduced to zero meaningful tokens
// (e.g. "2"). Such titles short-circuit to no catalog match.
func (t Title) Unmatchable() bool {
	return len(t.Meaningful) == 0
}

// MeaningfulText returns the meaningful tokens joined by single spaces.
// This is the comparison form used for approximate similarity, where
// generic edition noise would otherwise dominate the edit distance.
func (t Title) MeaningfulText() string {
	return strings.Join(t.Meaningful, " ")
}

// MeaningfulSet returns the meaningful tokens as a set.
func (t Title) MeaningfulSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Meaningful))
	for _, tok := range t.Meaningful {
		set[tok] = struct{}{}
	}
	return set
}

// TokenSet returns all tokens as a set.
func (t Title) TokenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Tokens))
	for _, tok := range t.Tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Normalize canonicalizes a title. It is a pure function: deterministic,
// no side effects, and idempotent — Normalize(Normalize(x).Text) yields
// the same canonical form as Normalize(x).
func Normalize(title string) Title {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(legalGlyphs, r) {
			return -1 // drop legal glyphs entirely
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' ' // punctuation becomes a token boundary
	}, title)

	tokens := strings.Fields(cleaned)

	meaningful := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !IsStopWord(tok) {
			meaningful = append(meaningful, tok)
		}
	}

	return Title{
		Raw:        title,
		Text:       strings.Join(tokens, " "),
		Tokens:     tokens,
		Meaningful: meaningful,
	}
}

// IsStopWord reports whether a lowercase token is on the generic stop-list.
func IsStopWord(token string) bool {
	_, ok := stopList[token]
	return ok
}

// StopWordRatio returns the fraction of the title's tokens that are on the
// stop-list. A title with no tokens has ratio 0.
func (t Title) StopWordRatio() float64 {
	if len(t.Tokens) == 0 {
		return 0
	}
	return float64(len(t.Tokens)-len(t.Meaningful)) / float64(len(t.Tokens))
}
