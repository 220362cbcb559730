package domain

import "github.com/microcosm-cc/bluemonday"

// Sanitizer neutralizes markup in the text fields of a bookmark.
//
// It uses the bluemonday UGC policy: script and style elements are dropped
// with their content, event handler attributes are removed, and text is
// HTML-escaped. The output is deterministic and sanitizing it again yields
// the same string. A Sanitizer is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// String sanitizes a single value.
func (s *Sanitizer) String(v string) string {
	return s.policy.Sanitize(v)
}

// Bookmark returns a sanitized copy of b. ID and Rating are left as is.
func (s *Sanitizer) Bookmark(b Bookmark) Bookmark {
	return Bookmark{
		ID:          b.ID,
		Title:       s.String(b.Title),
		URL:         s.String(b.URL),
		Description: s.String(b.Description),
		Rating:      b.Rating,
	}
}
