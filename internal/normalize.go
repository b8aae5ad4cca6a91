package internal

import (
	"regexp"
	"strings"
)

var (
	invisibleRe  = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`)
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	htmlEntityRe = regexp.MustCompile(`&[^;]+;`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText removes zero-width characters, collapses runs of
// whitespace to a single space and trims the ends. Idempotent.
func CleanText(s string) string {
	s = invisibleRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripHTML replaces tags and entities with spaces, then applies
// CleanText. Used for email bodies, which are usually HTML.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = htmlEntityRe.ReplaceAllString(s, " ")
	return CleanText(s)
}

// CleanEmail returns a copy of the email with subject, sender and
// snippet normalized. The body is left raw; it is stripped of HTML
// where it is actually consumed.
func CleanEmail(e EmailRecord) EmailRecord {
	return EmailRecord{
		Body:    e.Body,
		Snippet: CleanText(e.Snippet),
		From:    CleanText(e.From),
		Subject: CleanText(e.Subject),
		Date:    e.Date,
	}
}
