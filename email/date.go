package email

import (
	"fmt"
	"time"
)

// dateLayout is the RFC 1123 form the dialect carries, with a
// non-padded day of month: "Thu, 3 Dec 2020 00:00:00 +0100".
const dateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// ParseDateTime parses an RFC 1123 date-time. The numeric offset is
// preserved in the returned time's location; no normalization to UTC
// or the local zone happens.
//
// Only the canonical rendering is accepted. time.Parse is lenient
// about zero-padded days and never checks the weekday name against
// the date, so the parsed time is rendered back and compared.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("email: bad date %q: %w", s, ErrSyntax)
	}
	if FormatDateTime(t) != s {
		return time.Time{}, fmt.Errorf("email: non-canonical date %q: %w", s, ErrSyntax)
	}
	return t, nil
}

// FormatDateTime renders t in RFC 1123 form with t's own offset.
func FormatDateTime(t time.Time) string {
	return t.Format(dateLayout)
}
