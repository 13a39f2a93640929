package email

import (
	"fmt"
	"strings"
)

// Address is an email address: an optional display name plus the
// local@domain address spec.
//
// Addresses are immutable once built. Equality and ordering consider
// only the (local, domain) pair; the display name is presentation.
type Address struct {
	name   string // display name, may be empty
	local  string // part before the @
	domain string // part after the @
}

// NewAddress builds an Address from its three parts.
//
// The display name may be empty but must be ASCII and free of wire
// metacharacters, since it is rendered verbatim on the wire. Local
// and domain must be non-empty and match the address token grammar.
func NewAddress(name, local, domain string) (Address, error) {
	if !IsASCII(name) {
		return Address{}, fmt.Errorf("email: display name %q is not ascii: %w", name, ErrInvalid)
	}
	if !validDisplayName(name) {
		return Address{}, fmt.Errorf("email: display name %q carries wire metacharacters: %w", name, ErrInvalid)
	}
	if !ValidAddressPart(local) {
		return Address{}, fmt.Errorf("email: bad address local part %q: %w", local, ErrInvalid)
	}
	if !ValidAddressPart(domain) {
		return Address{}, fmt.Errorf("email: bad address domain %q: %w", domain, ErrInvalid)
	}
	return Address{name: name, local: local, domain: domain}, nil
}

// Name returns the display name, "" if the address has none.
func (a Address) Name() string { return a.name }

// Local returns the part of the address before the @.
func (a Address) Local() string { return a.local }

// Domain returns the part of the address after the @.
func (a Address) Domain() string { return a.domain }

// IsZero reports whether a is the zero Address.
// The zero Address is not a valid address.
func (a Address) IsZero() bool { return a.local == "" && a.domain == "" }

// Equal reports whether two addresses have the same local and domain.
func (a Address) Equal(b Address) bool {
	return a.local == b.local && a.domain == b.domain
}

// Compare orders addresses by local part, then domain.
func (a Address) Compare(b Address) int {
	if c := strings.Compare(a.local, b.local); c != 0 {
		return c
	}
	return strings.Compare(a.domain, b.domain)
}

// String renders the address in wire form.
//
// A display name of three or more words is double-quoted. Precisely:
// the name is quoted when it contains at least two internal
// single-space word separations, where a separation is a space that
// is not the final character and is not followed by another space.
func (a Address) String() string {
	spec := a.local + "@" + a.domain
	if a.name == "" {
		return spec
	}
	name := a.name
	if countWordSeps(name) >= 2 {
		name = `"` + name + `"`
	}
	return name + " <" + spec + ">"
}

// validDisplayName rejects characters that would change the wire
// framing when the name is rendered verbatim: control characters
// (header lines are single lines), angle brackets and double quotes.
func validDisplayName(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c < 0x20, c == 0x7f:
			return false
		case c == '<', c == '>', c == '"':
			return false
		}
	}
	return true
}

func countWordSeps(s string) (n int) {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == ' ' && s[i+1] != ' ' {
			n++
		}
	}
	return n
}

// ValidAddressPart reports whether s is a non-empty run of address
// token characters: ASCII letters, digits, or . ! $ % & ' * + / = ?
// ^ _ ` { | } ~ -
func ValidAddressPart(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '.', '!', '$', '%', '&', '\'', '*', '+', '/', '=', '?', '^', '_', '`', '{', '|', '}', '~', '-':
		return true
	}
	return false
}

// ParseAddress parses exactly one address in wire form.
func ParseAddress(s string) (Address, error) {
	addrs, err := ParseAddressList(s)
	if err != nil {
		return Address{}, err
	}
	if len(addrs) != 1 {
		return Address{}, fmt.Errorf("email: %d addresses in %q, want one: %w", len(addrs), s, ErrSyntax)
	}
	return addrs[0], nil
}

// ParseAddressList parses a comma-separated list of addresses.
//
// Each address is either a bare local@domain, or an optional display
// name followed by <local@domain>. A display name containing a comma
// must be double-quoted; parsing strips the quotes.
func ParseAddressList(s string) ([]Address, error) {
	if !IsASCII(s) {
		return nil, fmt.Errorf("email: address list %q is not ascii: %w", s, ErrSyntax)
	}
	var addrs []Address
	for _, piece := range splitAddresses(s) {
		a, err := parseOneAddress(strings.TrimSpace(piece))
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

// splitAddresses splits on commas that sit outside double quotes.
func splitAddresses(s string) []string {
	var pieces []string
	start, inQuotes := 0, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				pieces = append(pieces, s[start:i])
				start = i + 1
			}
		}
	}
	return append(pieces, s[start:])
}

func parseOneAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("email: empty address: %w", ErrSyntax)
	}

	name := ""
	spec := s
	if lt := strings.IndexByte(s, '<'); lt >= 0 {
		if !strings.HasSuffix(s, ">") {
			return Address{}, fmt.Errorf("email: address %q: unclosed angle bracket: %w", s, ErrSyntax)
		}
		name = strings.TrimSpace(s[:lt])
		spec = s[lt+1 : len(s)-1]
		if len(name) >= 2 && name[0] == '"' {
			if name[len(name)-1] != '"' {
				return Address{}, fmt.Errorf("email: address %q: unclosed quote: %w", s, ErrSyntax)
			}
			name = name[1 : len(name)-1]
		} else if strings.Contains(name, `"`) {
			return Address{}, fmt.Errorf("email: address %q: stray quote in display name: %w", s, ErrSyntax)
		}
	}

	local, domain, ok := strings.Cut(spec, "@")
	if !ok {
		return Address{}, fmt.Errorf("email: address %q has no @: %w", s, ErrSyntax)
	}
	if !ValidAddressPart(local) {
		return Address{}, fmt.Errorf("email: bad address local part %q: %w", local, ErrSyntax)
	}
	if !ValidAddressPart(domain) {
		return Address{}, fmt.Errorf("email: bad address domain %q: %w", domain, ErrSyntax)
	}
	return Address{name: name, local: local, domain: domain}, nil
}

// FormatAddressList renders addresses in wire form, comma-separated.
func FormatAddressList(addrs []Address) string {
	strs := make([]string, len(addrs))
	for i, a := range addrs {
		strs[i] = a.String()
	}
	return strings.Join(strs, ", ")
}

// compareAddressLists orders address lists lexicographically:
// element-wise by Address order, first difference wins, and a list
// that is a prefix of another sorts first.
func compareAddressLists(a, b []Address) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
