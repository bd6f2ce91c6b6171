// Package service holds the business rules that sit between the HTTP
// handlers and repository.Storage:
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates, checks ownership, records activity, notifies
//	Repository      → stores records, nothing more
//
// Storage deliberately trusts its callers: it never checks that a job's
// owner exists, that a status is one of the known values, or who is
// asking. Those checks live here, so every caller (HTTP today, a CLI or a
// job runner tomorrow) gets the same rules.
//
// Services take repository interfaces, not a concrete backend, so tests
// run against memory.Store or a hand-written fake.
package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Field limits. Longer input is rejected, not truncated.
const (
	MaxTitleLength       = 200
	MaxShortTextLength   = 200
	MaxLongTextLength    = 20000
	MaxCoverLetterLength = 10000
	MaxTags              = 20
)

// Sanitizer cleans user-supplied text before it is stored.
//
// Rich fields (job description, requirements, benefits) keep basic
// formatting via bluemonday's UGC policy; everything an applicant types is
// stripped to plain text.
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		rich:  bluemonday.UGCPolicy(),
		plain: bluemonday.StrictPolicy(),
	}
}

// Rich keeps safe markup.
func (s *Sanitizer) Rich(in string) string {
	return strings.TrimSpace(s.rich.Sanitize(in))
}

// Plain removes all markup. The result is text, not HTML, so entities the
// policy escapes ("&" as "&amp;") are turned back into characters.
func (s *Sanitizer) Plain(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(in)))
}

func (s *Sanitizer) richPtr(in *string) *string {
	if in == nil {
		return nil
	}
	out := s.Rich(*in)
	return &out
}

func (s *Sanitizer) plainPtr(in *string) *string {
	if in == nil {
		return nil
	}
	out := s.Plain(*in)
	return &out
}

func trimPtr(in *string) *string {
	if in == nil {
		return nil
	}
	out := strings.TrimSpace(*in)
	return &out
}

// cleanTags trims, drops empties and de-duplicates while keeping order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
