// Package dedup tracks source URLs and slugs already seen by earlier runs.
package dedup

import (
	"net/url"
	"strings"
)

// Set is a run-scoped membership set. The zero value is not usable; call New.
type Set struct {
	members map[string]struct{}
}

// New builds a set seeded with the given values. Empty strings are ignored.
func New(values ...string) *Set {
	s := &Set{members: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.Register(v)
	}
	return s
}

// Register adds a value to the set.
func (s *Set) Register(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	s.members[value] = struct{}{}
}

// Contains reports whether the exact value is a member.
func (s *Set) Contains(value string) bool {
	_, ok := s.members[strings.TrimSpace(value)]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.members)
}

// IsDuplicate reports whether a link was already seen, checking both the link
// as fetched and its canonical form, since older records may hold either.
func (s *Set) IsDuplicate(link string) bool {
	if s.Contains(link) {
		return true
	}
	canonical := Canonical(link)
	return canonical != link && s.Contains(canonical)
}

// Canonical unwraps redirector links (a google.* host carrying the target in
// the url query parameter). Other links are returned unchanged.
func Canonical(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return link
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" || !strings.Contains(host, "google") {
		return link
	}
	if target := parsed.Query().Get("url"); target != "" {
		return target
	}
	return link
}

// SourceLabel derives the short source name from a link's hostname.
func SourceLabel(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.Replace(parsed.Hostname(), "www.", "", 1)
}
