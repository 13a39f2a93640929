// Package email implements the constrained message dialect of a small
// personal mail user agent: addresses, the five structured headers
// (From, To, Subject, Date, Content-Type), and the Message/Part
// aggregate those headers frame.
//
// The dialect is a deliberately small slice of RFC 5322 + MIME: three
// media kinds, two charsets, base64 or identity transfer, a fixed
// multipart boundary, and an RFC 2047 word for the Subject only.
// Rendering is byte-exact and parsing reconstructs the same value, so
// a rendered message can be stored and re-read without loss.
//
// All values are immutable after construction and safe to share
// between goroutines. Constructors validate eagerly and report one of
// ErrSyntax, ErrInvalid or ErrNilInput; no partially valid value ever
// escapes.
package email

import "fmt"

// MultipartPreamble is the body of the multipart envelope part. It is
// MIME framing, not user data: readers that do not understand
// multipart would display it in place of the real body.
const MultipartPreamble = "This is a message with multiple parts in MIME format."

// Part is one body of a message: a Content-Type header and the
// decoded body text.
type Part struct {
	ctype ContentType
	body  string
}

// NewPart builds a part. Every part needs a Content-Type, and only a
// utf-8 part may carry a body that is not 7-bit clean: anything else
// travels verbatim on a 7-bit channel.
func NewPart(ctype ContentType, body string) (Part, error) {
	if ctype.IsZero() {
		return Part{}, fmt.Errorf("email: part needs a Content-Type header: %w", ErrInvalid)
	}
	if ctype.charset != CharsetUTF8 && !IsASCII(body) {
		return Part{}, fmt.Errorf("email: %s body with charset %q is not 7-bit clean: %w", ctype.kind, ctype.charset, ErrInvalid)
	}
	return Part{ctype: ctype, body: body}, nil
}

// ContentType returns the part's Content-Type header.
func (p Part) ContentType() ContentType { return p.ctype }

// Body returns the decoded body text.
func (p Part) Body() string { return p.body }

// Equal reports whether both parts have the same Content-Type and
// body.
func (p Part) Equal(o Part) bool { return p.ctype == o.ctype && p.body == o.body }

// Message is a complete message: the four essential headers, each
// present exactly once, and an ordered non-empty part list.
//
// A single-part message carries one text/plain part. A multipart
// message carries exactly three parts: the multipart/alternative
// envelope, a text/plain part, then a text/html part.
type Message struct {
	from    From
	to      Recipients
	subject Subject
	date    Date
	parts   []Part
}

// NewMessage assembles a message from its headers and parts,
// validating the whole structure.
func NewMessage(from From, to Recipients, subject Subject, date Date, parts []Part) (*Message, error) {
	switch {
	case from.addr.IsZero():
		return nil, fmt.Errorf("email: message misses essential header From: %w", ErrInvalid)
	case len(to.addrs) == 0:
		return nil, fmt.Errorf("email: message misses essential header To: %w", ErrInvalid)
	case subject.text == "":
		return nil, fmt.Errorf("email: message misses essential header Subject: %w", ErrInvalid)
	case date.t.IsZero():
		return nil, fmt.Errorf("email: message misses essential header Date: %w", ErrInvalid)
	}

	for i, p := range parts {
		if p.ctype.IsZero() {
			return nil, fmt.Errorf("email: part %d misses its Content-Type header: %w", i, ErrInvalid)
		}
	}
	switch len(parts) {
	case 0:
		return nil, fmt.Errorf("email: message needs at least one part: %w", ErrInvalid)
	case 1:
		if parts[0].ctype.kind != TextPlain {
			return nil, fmt.Errorf("email: sole part must be text/plain, have %s: %w", parts[0].ctype.kind, ErrInvalid)
		}
	case 3:
		if k := parts[0].ctype.kind; k != MultipartAlternative {
			return nil, fmt.Errorf("email: first part must be the multipart envelope, have %s: %w", k, ErrInvalid)
		}
		if k := parts[1].ctype.kind; k != TextPlain {
			return nil, fmt.Errorf("email: second part must be text/plain, have %s: %w", k, ErrInvalid)
		}
		if k := parts[2].ctype.kind; k != TextHTML {
			return nil, fmt.Errorf("email: third part must be text/html, have %s: %w", k, ErrInvalid)
		}
	default:
		return nil, fmt.Errorf("email: message has %d parts, want 1 or 3: %w", len(parts), ErrInvalid)
	}

	cp := make([]Part, len(parts))
	copy(cp, parts)
	return &Message{from: from, to: to, subject: subject, date: date, parts: cp}, nil
}

// Compose builds a message from raw bodies, choosing the part
// structure and charsets.
//
// The text body is required. With no HTML body the message is a
// single text/plain part, us-ascii when the body is 7-bit clean and
// utf-8 otherwise. With an HTML body it becomes a three-part
// multipart/alternative message; the HTML part is always utf-8 and
// travels base64-encoded.
func Compose(from From, to Recipients, subject Subject, date Date, textBody, htmlBody string) (*Message, error) {
	if textBody == "" {
		return nil, fmt.Errorf("email: compose needs a text body: %w", ErrInvalid)
	}

	textCharset := CharsetUSASCII
	if !IsASCII(textBody) {
		textCharset = CharsetUTF8
	}
	textType, err := NewContentType(TextPlain, textCharset)
	if err != nil {
		return nil, err
	}

	if htmlBody == "" {
		return NewMessage(from, to, subject, date, []Part{{ctype: textType, body: textBody}})
	}

	envType, err := NewContentType(MultipartAlternative, CharsetNone)
	if err != nil {
		return nil, err
	}
	htmlType, err := NewContentType(TextHTML, CharsetUTF8)
	if err != nil {
		return nil, err
	}
	parts := []Part{
		{ctype: envType, body: MultipartPreamble},
		{ctype: textType, body: textBody},
		{ctype: htmlType, body: htmlBody},
	}
	return NewMessage(from, to, subject, date, parts)
}

// From returns the From header.
func (m *Message) From() From { return m.from }

// To returns the To header.
func (m *Message) To() Recipients { return m.to }

// Subject returns the Subject header.
func (m *Message) Subject() Subject { return m.subject }

// Date returns the Date header.
func (m *Message) Date() Date { return m.date }

// Parts returns a copy of the ordered part list.
func (m *Message) Parts() []Part {
	cp := make([]Part, len(m.parts))
	copy(cp, m.parts)
	return cp
}

// Headers returns the essential headers in wire order.
func (m *Message) Headers() []Header {
	return []Header{m.from, m.to, m.subject, m.date}
}

// Equal reports structural equality: same essential headers, same
// parts in the same order.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !m.from.Equal(o.from) || !m.to.Equal(o.to) || !m.subject.Equal(o.subject) || !m.date.Equal(o.date) {
		return false
	}
	if len(m.parts) != len(o.parts) {
		return false
	}
	for i := range m.parts {
		if !m.parts[i].Equal(o.parts[i]) {
			return false
		}
	}
	return true
}
