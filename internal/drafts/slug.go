package drafts

import (
	"strconv"
	"strings"
	"unicode"
)

// MaxSlugRunes bounds every slug, suffixed ones included.
const MaxSlugRunes = 60

// suffixed slugs keep at most this many runes of the base
const suffixBaseRunes = 57

// Slugify derives a URL-safe slug from a title.
func Slugify(title string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '_' || r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}
	slug := []rune(b.String())
	if len(slug) > MaxSlugRunes {
		slug = slug[:MaxSlugRunes]
	}
	return strings.TrimRight(string(slug), "-")
}

// UniqueSlug returns base if it is free, otherwise the first free "<stem>-N"
// with N from 2. The stem is base cut to 57 runes, or shorter when the suffix
// would push the slug past MaxSlugRunes, with trailing dashes removed.
func UniqueSlug(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		suffix := "-" + strconv.Itoa(n)
		candidate := suffixStem(base, min(suffixBaseRunes, MaxSlugRunes-len(suffix))) + suffix
		if !taken(candidate) {
			return candidate
		}
	}
}

func suffixStem(base string, limit int) string {
	stem := []rune(base)
	if len(stem) > limit {
		stem = stem[:limit]
	}
	return strings.TrimRight(string(stem), "-")
}
