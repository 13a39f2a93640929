// Package msgcleaver parses wire text back into a message.
//
// Cleaving is the inverse of msgbuilder's rendering: the leading
// header block is split into (name, value) pairs and routed to the
// header constructors, then the remainder is cleaved into one
// fragment per part, delimited by the fixed boundary when the message
// is multipart. Unrecognized header names are ignored.
package msgcleaver

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/DaniBond5/mua/email"
)

// Cleave reads all of src and parses it as one message.
func Cleave(src io.Reader) (*email.Message, error) {
	if src == nil {
		return nil, fmt.Errorf("msgcleaver: nil reader: %w", email.ErrNilInput)
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("msgcleaver: %v", err)
	}
	return Parse(string(b))
}

// Parse parses the wire text of one message.
func Parse(text string) (*email.Message, error) {
	head, rest, found := strings.Cut(text, "\n\n")
	if !found {
		return nil, fmt.Errorf("msgcleaver: no blank line after header block: %w", email.ErrSyntax)
	}
	headers, err := parseHeaderBlock(head)
	if err != nil {
		return nil, err
	}

	var (
		from    email.From
		to      email.Recipients
		subject email.Subject
		date    email.Date
		ctype   email.ContentType
	)
	for _, h := range headers {
		switch h.name {
		case "from":
			if from, err = email.ParseFrom(h.value); err != nil {
				return nil, err
			}
		case "to":
			if to, err = email.ParseRecipients(h.value); err != nil {
				return nil, err
			}
		case "subject":
			if subject, err = email.NewSubject(h.value); err != nil {
				return nil, err
			}
		case "date":
			if date, err = email.ParseDate(h.value); err != nil {
				return nil, err
			}
		case "content-type":
			if ctype, err = parseContentType(h.value); err != nil {
				return nil, err
			}
		}
	}

	// Usually the essential block carries no Content-Type and the
	// remainder opens with the first part's own mini header block.
	if ctype.IsZero() {
		fragHead, fragRest, found := strings.Cut(rest, "\n\n")
		if !found {
			return nil, fmt.Errorf("msgcleaver: no blank line after part header block: %w", email.ErrSyntax)
		}
		if ctype, err = parseFragmentBlock(fragHead); err != nil {
			return nil, err
		}
		rest = fragRest
	}

	var parts []email.Part
	if ctype.Kind() != email.MultipartAlternative {
		body, err := decodeBody(rest, ctype)
		if err != nil {
			return nil, err
		}
		p, err := email.NewPart(ctype, body)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	} else {
		parts, err = cleaveMultipart(ctype, rest)
		if err != nil {
			return nil, err
		}
	}

	return email.NewMessage(from, to, subject, date, parts)
}

// cleaveMultipart splits the body region of a multipart message into
// the envelope fragment (its body is the MIME preamble) and the
// boundary-delimited part fragments.
func cleaveMultipart(envelope email.ContentType, region string) ([]email.Part, error) {
	const (
		delim      = "\n--" + email.Boundary + "\n"
		terminator = "\n--" + email.Boundary + "--"
	)

	region = strings.TrimSuffix(region, "\n")
	inner, ok := strings.CutSuffix(region, terminator)
	if !ok {
		return nil, fmt.Errorf("msgcleaver: multipart message misses closing %s boundary: %w",
			"--"+email.Boundary+"--", email.ErrSyntax)
	}

	chunks := strings.Split(inner, delim)
	env, err := email.NewPart(envelope, chunks[0])
	if err != nil {
		return nil, err
	}
	parts := []email.Part{env}
	for _, chunk := range chunks[1:] {
		head, body, found := strings.Cut(chunk, "\n\n")
		if !found {
			return nil, fmt.Errorf("msgcleaver: no blank line after part header block: %w", email.ErrSyntax)
		}
		ctype, err := parseFragmentBlock(head)
		if err != nil {
			return nil, err
		}
		if ctype.Kind() == email.MultipartAlternative {
			return nil, fmt.Errorf("msgcleaver: nested multipart part: %w", email.ErrSyntax)
		}
		decoded, err := decodeBody(body, ctype)
		if err != nil {
			return nil, err
		}
		p, err := email.NewPart(ctype, decoded)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

type rawHeader struct {
	name  string // lower-cased
	value string
}

// parseHeaderBlock splits a block into (lower-cased name, value)
// pairs, one per line.
func parseHeaderBlock(block string) ([]rawHeader, error) {
	var headers []rawHeader
	for _, line := range strings.Split(block, "\n") {
		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("msgcleaver: header line %q has no colon: %w", line, email.ErrSyntax)
		}
		headers = append(headers, rawHeader{
			name:  strings.ToLower(strings.TrimSpace(name)),
			value: strings.TrimLeft(value, " "),
		})
	}
	return headers, nil
}

// parseFragmentBlock parses a part's mini header block, which must
// name a Content-Type; MIME-Version and Content-Transfer-Encoding
// lines are framing and carry no information beyond the charset.
func parseFragmentBlock(block string) (email.ContentType, error) {
	headers, err := parseHeaderBlock(block)
	if err != nil {
		return email.ContentType{}, err
	}
	ctype := email.ContentType{}
	for _, h := range headers {
		if h.name == "content-type" {
			if ctype, err = parseContentType(h.value); err != nil {
				return email.ContentType{}, err
			}
		}
	}
	if ctype.IsZero() {
		return email.ContentType{}, fmt.Errorf("msgcleaver: part misses its Content-Type header: %w", email.ErrSyntax)
	}
	return ctype, nil
}

// parseContentType parses a Content-Type value: the kind, then
// ;-separated parameters. Text kinds need a charset parameter; the
// multipart kind needs the fixed boundary.
func parseContentType(value string) (email.ContentType, error) {
	segments := strings.Split(value, ";")
	kind := email.ContentKind(strings.TrimSpace(segments[0]))

	params := make(map[string]string)
	for _, seg := range segments[1:] {
		k, v, found := strings.Cut(strings.TrimSpace(seg), "=")
		if !found {
			return email.ContentType{}, fmt.Errorf("msgcleaver: bad Content-Type parameter %q: %w", seg, email.ErrSyntax)
		}
		params[strings.ToLower(k)] = strings.Trim(v, `"`)
	}

	if kind == email.MultipartAlternative {
		if b := params["boundary"]; b != email.Boundary {
			return email.ContentType{}, fmt.Errorf("msgcleaver: multipart boundary %q, want %q: %w", b, email.Boundary, email.ErrSyntax)
		}
		return email.NewContentType(kind, email.CharsetNone)
	}

	charset, ok := params["charset"]
	if !ok {
		return email.ContentType{}, fmt.Errorf("msgcleaver: Content-Type %q misses charset: %w", value, email.ErrSyntax)
	}
	return email.NewContentType(kind, email.Charset(charset))
}

// decodeBody reverses the transfer encoding: utf-8 charsets travel
// base64, everything else is verbatim.
func decodeBody(body string, ctype email.ContentType) (string, error) {
	if ctype.Charset() != email.CharsetUTF8 {
		return body, nil
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return "", fmt.Errorf("msgcleaver: bad base64 body: %w", email.ErrSyntax)
	}
	return string(b), nil
}
