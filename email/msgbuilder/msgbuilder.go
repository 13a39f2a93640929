// Package msgbuilder renders a message to its wire text.
//
// The rendering is byte-exact: essential header lines in
// From/To/Subject/Date order, a blank line, then the sole part, or
// all parts joined by the fixed boundary and closed by its
// terminator. msgcleaver parses this form back.
package msgbuilder

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/DaniBond5/mua/email"
)

// Build writes the wire rendering of msg to w.
func Build(w io.Writer, msg *email.Message) error {
	if w == nil {
		return fmt.Errorf("msgbuilder: nil writer: %w", email.ErrNilInput)
	}
	text, err := Render(msg)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("msgbuilder: %v", err)
	}
	return nil
}

// Render returns the wire text of msg.
func Render(msg *email.Message) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("msgbuilder: nil message: %w", email.ErrNilInput)
	}

	var b strings.Builder
	b.WriteString(msg.From().String())
	b.WriteByte('\n')
	b.WriteString(msg.To().String())
	b.WriteByte('\n')
	b.WriteString(msg.Subject().String())
	b.WriteByte('\n')
	b.WriteString(msg.Date().String())
	b.WriteString("\n\n")

	parts := msg.Parts()
	if len(parts) == 1 {
		writePart(&b, parts[0])
		return b.String(), nil
	}
	for i, p := range parts {
		writePart(&b, p)
		if i == len(parts)-1 {
			b.WriteString("\n--" + email.Boundary + "--")
		} else {
			b.WriteString("\n--" + email.Boundary + "\n")
		}
	}
	return b.String(), nil
}

func writePart(b *strings.Builder, p email.Part) {
	b.WriteString(p.ContentType().String())
	b.WriteString("\n\n")
	b.WriteString(EncodeBody(p))
}

// EncodeBody returns the transfer form of p's body: base64 for utf-8
// parts, the body verbatim otherwise. The charset alone decides the
// transfer encoding so that the cleaver can reverse it.
func EncodeBody(p email.Part) string {
	if p.ContentType().Charset() == email.CharsetUTF8 {
		return base64.StdEncoding.EncodeToString([]byte(p.Body()))
	}
	return p.Body()
}
