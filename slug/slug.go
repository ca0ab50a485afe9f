// CLAUDE:SUMMARY URL-safe slug generation from titles and deterministic collision resolution against an existing set.
// CLAUDE:EXPORTS Generate, Make, ResolveUnique, Set, NewSet, Placeholder
// Package slug turns titles into lowercase, hyphen-delimited ASCII tokens
// and resolves collisions with numeric suffixes.
//
// Usage:
//
//	base := slug.Generate("Café au lait — notes")  // "cafe-au-lait-notes"
//	final := slug.ResolveUnique(base, slug.NewSet("cafe-au-lait-notes"))
//	// final == "cafe-au-lait-notes-2"
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder is returned by Generate when a title has no usable characters.
const Placeholder = "untitled"

// MaxLen caps generated slugs. Longer results are cut at the last hyphen
// that fits.
const MaxLen = 80

// Letters that NFD does not decompose into an ASCII base plus marks.
var foldReplacer = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"đ", "d",
	"ð", "d",
	"ł", "l",
	"þ", "th",
	"ı", "i",
)

// Generate returns the slug for title, or Placeholder when the title yields
// no alphanumeric characters. It never fails.
func Generate(title string) string {
	if s := Make(title); s != "" {
		return s
	}
	return Placeholder
}

// Make slugifies s without the placeholder fallback. The result may be empty.
func Make(s string) string {
	s = foldReplacer.Replace(strings.ToLower(s))
	s = stripMarks(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return truncate(b.String())
}

// stripMarks removes combining marks after canonical decomposition so that
// "é" becomes "e".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func truncate(s string) string {
	if len(s) <= MaxLen {
		return s
	}
	cut := s[:MaxLen]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.Trim(cut, "-")
}

// Set is a collection of slugs already in use.
type Set map[string]struct{}

// NewSet builds a Set from the given slugs.
func NewSet(slugs ...string) Set {
	s := make(Set, len(slugs))
	for _, v := range slugs {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set. A nil Set is empty.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Add inserts v.
func (s Set) Add(v string) { s[v] = struct{}{} }

// ResolveUnique returns base if it is not in existing, otherwise the first
// of base-2, base-3, ... that is free. At most len(existing)+1 candidates are
// tried, so the loop always terminates. The existing set is not modified.
func ResolveUnique(base string, existing Set) string {
	if base == "" {
		base = Placeholder
	}
	if !existing.Has(base) {
		return base
	}
	for n := 2; n <= len(existing)+2; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !existing.Has(candidate) {
			return candidate
		}
	}
	// Unreachable: len(existing)+1 distinct candidates cannot all be taken.
	return base + "-" + strconv.Itoa(len(existing)+2)
}
