package internal

import (
	"fmt"
	"net/mail"
	"time"
)

// emailDateLayouts are tried in order when the RFC 5322 parser does
// not accept the date. Mail exports are inconsistent about this field.
var emailDateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"January 2, 2006",
}

// ParseEmailDate parses the date header of an email export.
func ParseEmailDate(s string) (time.Time, error) {
	if t, err := mail.ParseDate(s); err == nil {
		return t, nil
	}
	for _, layout := range emailDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
