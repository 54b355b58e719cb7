package links

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>()]+`)

// Extract returns every URL-shaped substring of a message body.
func Extract(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// Normalize strips the fragment component and lower-cases the serialized
// form. Input that does not parse as an absolute URL passes through
// unchanged; a URL is never dropped for being unparseable.
func Normalize(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return raw
	}

	normalized := parsed.Scheme + "://" + parsed.Host + parsed.Path
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	return strings.ToLower(normalized)
}

// Set holds the deduplicated candidate URLs of one run. Membership means
// "already scheduled": repeats collapse no matter how many messages or
// embeds referenced them. Insertion order is preserved for processing.
type Set struct {
	excluded []string
	seen     map[string]struct{}
	order    []string
}

// NewSet builds an empty set that rejects URLs whose host contains any of
// the excluded substrings.
func NewSet(excludedHosts []string) *Set {
	return &Set{
		excluded: excludedHosts,
		seen:     map[string]struct{}{},
	}
}

// Add normalizes raw and inserts it unless it is excluded or already present.
func (s *Set) Add(raw string) {
	normalized := Normalize(raw)
	if s.isExcluded(normalized) {
		return
	}
	if _, ok := s.seen[normalized]; ok {
		return
	}
	s.seen[normalized] = struct{}{}
	s.order = append(s.order, normalized)
}

// URLs returns the members in insertion order.
func (s *Set) URLs() []string {
	return s.order
}

// Len reports the number of unique candidate URLs.
func (s *Set) Len() int {
	return len(s.order)
}

func (s *Set) isExcluded(normalized string) bool {
	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, excluded := range s.excluded {
		if excluded != "" && strings.Contains(host, excluded) {
			return true
		}
	}
	return false
}
