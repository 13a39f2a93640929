package msgcleaver

import (
	"errors"
	"strings"
	"testing"

	"github.com/DaniBond5/mua/email"
	"github.com/DaniBond5/mua/email/msgbuilder"
)

const wireSingle = `From: Daniele Buondonno <danibond@gmail.com>
To: marcorossi@mail.it
Subject: Hello
Date: Thu, 3 Dec 2020 00:00:00 +0100

Content-Type: text/plain; charset="us-ascii"

Hi!`

const wireMultipart = `From: Daniele Buondonno <danibond@gmail.com>
To: marcorossi@mail.it, Anna <annabianchi@mail.it>
Subject: =?utf-8?B?Q2Fmw6k=?=
Date: Thu, 3 Dec 2020 00:00:00 +0100

MIME-Version: 1.0
Content-Type: multipart/alternative; boundary=frontier

This is a message with multiple parts in MIME format.
--frontier
Content-Type: text/plain; charset="us-ascii"

Hi!
--frontier
Content-Type: text/html; charset="utf-8"
Content-Transfer-Encoding: base64

PHA+SGkhPC9wPg==
--frontier--`

func TestParseSingle(t *testing.T) {
	msg, err := Parse(wireSingle)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg.From().Address().Name(), "Daniele Buondonno"; got != want {
		t.Errorf("From name = %q, want %q", got, want)
	}
	if got, want := msg.Subject().Text(), "Hello"; got != want {
		t.Errorf("Subject = %q, want %q", got, want)
	}
	parts := msg.Parts()
	if len(parts) != 1 {
		t.Fatalf("%d parts, want 1", len(parts))
	}
	if got, want := parts[0].Body(), "Hi!"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestParseMultipart(t *testing.T) {
	msg, err := Parse(wireMultipart)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg.Subject().Text(), "Café"; got != want {
		t.Errorf("Subject = %q, want %q (decoded)", got, want)
	}
	if got := len(msg.To().Addresses()); got != 2 {
		t.Errorf("%d recipients, want 2", got)
	}
	parts := msg.Parts()
	if len(parts) != 3 {
		t.Fatalf("%d parts, want 3", len(parts))
	}
	if got := parts[0].Body(); got != email.MultipartPreamble {
		t.Errorf("envelope body = %q, want the MIME preamble", got)
	}
	if got, want := parts[1].Body(), "Hi!"; got != want {
		t.Errorf("text body = %q, want %q", got, want)
	}
	if got, want := parts[2].Body(), "<p>Hi!</p>"; got != want {
		t.Errorf("html body = %q, want %q (decoded)", got, want)
	}
}

// A message whose essential block carries the Content-Type directly,
// with no separate part header block, parses the same way.
func TestParseJoinedHeaderBlock(t *testing.T) {
	const wire = `From: danibond@gmail.com
To: marcorossi@mail.it
Subject: Hello
Date: Thu, 3 Dec 2020 00:00:00 +0100
Content-Type: text/plain; charset="us-ascii"

Hi!`
	msg, err := Parse(wire)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg.Parts()[0].Body(), "Hi!"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, wire := range []string{wireSingle, wireMultipart} {
		msg, err := Parse(wire)
		if err != nil {
			t.Fatal(err)
		}
		rendered, err := msgbuilder.Render(msg)
		if err != nil {
			t.Fatal(err)
		}
		if rendered != wire {
			t.Errorf("parse/render round trip:\n%s\nwant:\n%s", rendered, wire)
		}
		again, err := Parse(rendered)
		if err != nil {
			t.Fatal(err)
		}
		if !again.Equal(msg) {
			t.Error("render/parse round trip changed the message")
		}
	}
}

func TestCleaveReader(t *testing.T) {
	msg, err := Cleave(strings.NewReader(wireSingle))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg.Subject().Text(), "Hello"; got != want {
		t.Errorf("Subject = %q, want %q", got, want)
	}
	if _, err := Cleave(nil); !errors.Is(err, email.ErrNilInput) {
		t.Errorf("Cleave(nil) err = %v, want ErrNilInput", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want error
	}{
		{"no blank line", "From: a@b.c", email.ErrSyntax},
		{"header without colon", "From a@b.c\n\nbody", email.ErrSyntax},
		{"bad date", strings.Replace(wireSingle, "Thu, 3 Dec 2020 00:00:00 +0100", "yesterday", 1), email.ErrSyntax},
		{"bad subject word", strings.Replace(wireSingle, "Subject: Hello", "Subject: =?utf-8?B?!!!?=", 1), email.ErrSyntax},
		{"wrong boundary", strings.Replace(wireMultipart, "boundary=frontier", "boundary=fence", 1), email.ErrSyntax},
		{"missing terminator", strings.TrimSuffix(wireMultipart, "\n--frontier--"), email.ErrSyntax},
		{"missing charset", strings.Replace(wireSingle, ` charset="us-ascii"`, "", 1), email.ErrSyntax},
		{"unknown kind", strings.Replace(wireSingle, "text/plain", "image/png", 1), email.ErrInvalid},
		{"bad base64 body", strings.Replace(wireMultipart, "PHA+SGkhPC9wPg==", "!!!", 1), email.ErrSyntax},
		{"missing From", strings.Replace(wireSingle, "From: Daniele Buondonno <danibond@gmail.com>\n", "", 1), email.ErrInvalid},
		{"missing Date", strings.Replace(wireSingle, "Date: Thu, 3 Dec 2020 00:00:00 +0100\n", "", 1), email.ErrInvalid},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.wire); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

// Unrecognized header names are ignored, not errors.
func TestParseIgnoresUnknownHeaders(t *testing.T) {
	wire := strings.Replace(wireSingle, "Subject: Hello\n", "Subject: Hello\nX-Mailer: mua\n", 1)
	msg, err := Parse(wire)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg.Subject().Text(), "Hello"; got != want {
		t.Errorf("Subject = %q, want %q", got, want)
	}
}

func TestParseRejectsNestedMultipart(t *testing.T) {
	wire := strings.Replace(wireMultipart,
		`Content-Type: text/html; charset="utf-8"
Content-Transfer-Encoding: base64`,
		"Content-Type: multipart/alternative; boundary=frontier", 1)
	if _, err := Parse(wire); !errors.Is(err, email.ErrSyntax) {
		t.Errorf("nested multipart err = %v, want ErrSyntax", err)
	}
}
