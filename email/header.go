package email

import (
	"fmt"
	"strings"
	"time"
)

// Header is one structured header of a message or part.
//
// The implementation set is closed: From, Recipients, Subject, Date
// and ContentType, one per recognized wire name. Callers recover the
// concrete header with a type switch; there is no open subclassing.
type Header interface {
	// Type is the wire name: "From", "To", "Subject", "Date" or
	// "Content-Type".
	Type() string

	// Value is the header's decoded display string.
	Value() string

	// String is the canonical wire rendering including the header
	// name, one line for every header except the multipart
	// Content-Type forms, which render two.
	String() string

	header() // marks the closed set
}

// From names the sender of a message.
type From struct {
	addr Address
}

// NewFrom builds a From header for the given sender.
func NewFrom(a Address) (From, error) {
	if a.IsZero() {
		return From{}, fmt.Errorf("email: From header needs an address: %w", ErrNilInput)
	}
	return From{addr: a}, nil
}

// ParseFrom parses the wire value of a From header: one address.
func ParseFrom(s string) (From, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return From{}, err
	}
	return From{addr: a}, nil
}

// Address returns the sender.
func (f From) Address() Address { return f.addr }

func (f From) Type() string  { return "From" }
func (f From) Value() string { return f.addr.String() }

func (f From) String() string { return "From: " + f.addr.String() }

// Compare orders From headers by their sender address.
func (f From) Compare(o From) int { return f.addr.Compare(o.addr) }

// Equal reports whether both headers name the same sender.
func (f From) Equal(o From) bool { return f.addr.Equal(o.addr) }

func (From) header() {}

// Recipients names the recipients of a message. Its wire name is To.
type Recipients struct {
	addrs []Address
}

// NewRecipients builds a To header from a non-empty ordered address
// list. The slice is copied.
func NewRecipients(addrs []Address) (Recipients, error) {
	if len(addrs) == 0 {
		return Recipients{}, fmt.Errorf("email: To header needs at least one address: %w", ErrInvalid)
	}
	for _, a := range addrs {
		if a.IsZero() {
			return Recipients{}, fmt.Errorf("email: To header has a zero address: %w", ErrNilInput)
		}
	}
	cp := make([]Address, len(addrs))
	copy(cp, addrs)
	return Recipients{addrs: cp}, nil
}

// ParseRecipients parses the wire value of a To header: one or more
// comma-separated addresses.
func ParseRecipients(s string) (Recipients, error) {
	addrs, err := ParseAddressList(s)
	if err != nil {
		return Recipients{}, err
	}
	return Recipients{addrs: addrs}, nil
}

// Addresses returns a copy of the recipient list, in order.
func (r Recipients) Addresses() []Address {
	cp := make([]Address, len(r.addrs))
	copy(cp, r.addrs)
	return cp
}

func (r Recipients) Type() string { return "To" }

// Value lists the recipients one per line, for display.
func (r Recipients) Value() string {
	strs := make([]string, len(r.addrs))
	for i, a := range r.addrs {
		strs[i] = a.String()
	}
	return strings.Join(strs, "\n")
}

func (r Recipients) String() string { return "To: " + FormatAddressList(r.addrs) }

// Compare orders recipient lists lexicographically by Address order;
// the first differing element decides, and a list that is a prefix of
// the other sorts first.
func (r Recipients) Compare(o Recipients) int { return compareAddressLists(r.addrs, o.addrs) }

// Equal reports whether both lists hold the same addresses in the
// same order.
func (r Recipients) Equal(o Recipients) bool {
	if len(r.addrs) != len(o.addrs) {
		return false
	}
	for i := range r.addrs {
		if !r.addrs[i].Equal(o.addrs[i]) {
			return false
		}
	}
	return true
}

func (Recipients) header() {}

// Subject carries the subject of a message, stored decoded.
type Subject struct {
	text string
}

// NewSubject builds a Subject header. Text arriving as an RFC 2047
// encoded word is decoded; anything else is taken literally. The
// decoded subject must be non-empty and free of control characters:
// a 7-bit clean subject renders verbatim as a single header line.
func NewSubject(text string) (Subject, error) {
	decoded, err := DecodeWord(text)
	if err != nil {
		return Subject{}, err
	}
	if decoded == "" {
		return Subject{}, fmt.Errorf("email: empty subject: %w", ErrInvalid)
	}
	for i := 0; i < len(decoded); i++ {
		if c := decoded[i]; c < 0x20 || c == 0x7f {
			return Subject{}, fmt.Errorf("email: subject %q carries control characters: %w", decoded, ErrInvalid)
		}
	}
	return Subject{text: decoded}, nil
}

// Text returns the decoded subject.
func (s Subject) Text() string { return s.text }

func (s Subject) Type() string  { return "Subject" }
func (s Subject) Value() string { return s.text }

// String renders the subject, as an RFC 2047 word when it is not
// 7-bit clean.
func (s Subject) String() string {
	if !IsASCII(s.text) {
		return "Subject: " + EncodeWord(s.text)
	}
	return "Subject: " + s.text
}

// Compare orders subjects by their decoded text.
func (s Subject) Compare(o Subject) int { return strings.Compare(s.text, o.text) }

func (s Subject) Equal(o Subject) bool { return s.text == o.text }

func (Subject) header() {}

// Date carries the date of a message with its original UTC offset.
type Date struct {
	t time.Time
}

// NewDate builds a Date header from a non-zero time.
func NewDate(t time.Time) (Date, error) {
	if t.IsZero() {
		return Date{}, fmt.Errorf("email: Date header needs a time: %w", ErrNilInput)
	}
	return Date{t: t}, nil
}

// ParseDate parses the wire value of a Date header, RFC 1123 form.
func ParseDate(s string) (Date, error) {
	t, err := ParseDateTime(s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// Time returns the date with its parsed offset.
func (d Date) Time() time.Time { return d.t }

func (d Date) Type() string { return "Date" }

// Value is the date in RFC 3339 form, for display.
func (d Date) Value() string { return d.t.Format(time.RFC3339) }

func (d Date) String() string { return "Date: " + FormatDateTime(d.t) }

// Compare orders dates chronologically.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// Equal reports whether both headers name the same instant at the
// same UTC offset.
func (d Date) Equal(o Date) bool {
	_, do := d.t.Zone()
	_, oo := o.t.Zone()
	return d.t.Equal(o.t) && do == oo
}

func (Date) header() {}

// ContentKind is one of the three media types the dialect carries.
type ContentKind string

const (
	MultipartAlternative ContentKind = "multipart/alternative"
	TextPlain            ContentKind = "text/plain"
	TextHTML             ContentKind = "text/html"
)

// Charset is a body character set. CharsetNone is reserved for the
// multipart envelope, which has no body charset of its own.
type Charset string

const (
	CharsetNone    Charset = ""
	CharsetUSASCII Charset = "us-ascii"
	CharsetUTF8    Charset = "utf-8"
)

// Boundary is the fixed multipart boundary token. The dialect never
// generates unique boundaries; bodies are assumed to never contain
// the boundary line itself.
const Boundary = "frontier"

// ContentType pairs a media kind with a charset.
type ContentType struct {
	kind    ContentKind
	charset Charset
}

// NewContentType builds a validated Content-Type header. The charset
// must be empty exactly when the kind is multipart/alternative, and
// text/html is pinned to utf-8: HTML always travels base64, and the
// charset alone decides the transfer encoding.
func NewContentType(kind ContentKind, charset Charset) (ContentType, error) {
	switch kind {
	case MultipartAlternative, TextPlain, TextHTML:
	default:
		return ContentType{}, fmt.Errorf("email: unsupported content type %q: %w", kind, ErrInvalid)
	}
	switch kind {
	case MultipartAlternative:
		if charset != CharsetNone {
			return ContentType{}, fmt.Errorf("email: multipart/alternative cannot carry charset %q: %w", charset, ErrInvalid)
		}
	case TextHTML:
		if charset != CharsetUTF8 {
			return ContentType{}, fmt.Errorf("email: unsupported charset %q for %s: %w", charset, kind, ErrInvalid)
		}
	default:
		if charset != CharsetUSASCII && charset != CharsetUTF8 {
			return ContentType{}, fmt.Errorf("email: unsupported charset %q for %s: %w", charset, kind, ErrInvalid)
		}
	}
	return ContentType{kind: kind, charset: charset}, nil
}

// Kind returns the media kind.
func (c ContentType) Kind() ContentKind { return c.kind }

// Charset returns the body charset, "" for the multipart envelope.
func (c ContentType) Charset() Charset { return c.charset }

// IsZero reports whether c is the zero ContentType, which is not a
// valid header.
func (c ContentType) IsZero() bool { return c.kind == "" }

func (c ContentType) Type() string { return "Content-Type" }

func (c ContentType) Value() string {
	if c.kind == MultipartAlternative {
		return string(c.kind)
	}
	return string(c.kind) + " " + string(c.charset)
}

// String renders the full header block for the part: the multipart
// envelope renders its MIME-Version line and fixed boundary, text
// kinds render their charset and, for anything beyond us-ascii, the
// base64 transfer encoding line.
func (c ContentType) String() string {
	if c.kind == MultipartAlternative {
		return "MIME-Version: 1.0\nContent-Type: " + string(c.kind) + "; boundary=" + Boundary
	}
	s := "Content-Type: " + string(c.kind) + `; charset="` + string(c.charset) + `"`
	if c.charset != CharsetUSASCII {
		s += "\nContent-Transfer-Encoding: base64"
	}
	return s
}

func (c ContentType) Equal(o ContentType) bool { return c == o }

func (ContentType) header() {}
