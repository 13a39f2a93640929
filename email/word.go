package email

import (
	"encoding/base64"
	"fmt"
)

// RFC 2047 "B" encoded word, the only form the dialect carries.
// Used for the Subject header and nothing else.
const (
	wordPrefix = "=?utf-8?B?"
	wordSuffix = "?="
)

// EncodeWord wraps text in an RFC 2047 utf-8 B-encoded word.
func EncodeWord(text string) string {
	return wordPrefix + base64.StdEncoding.EncodeToString([]byte(text)) + wordSuffix
}

// DecodeWord unwraps an RFC 2047 utf-8 B-encoded word.
//
// Text that does not carry exactly the =?utf-8?B? prefix and ?=
// suffix is not a word and is returned literally. A word whose
// payload is not valid base64 is a syntax error.
func DecodeWord(text string) (string, error) {
	if len(text) < len(wordPrefix)+len(wordSuffix) || text[:len(wordPrefix)] != wordPrefix || text[len(text)-len(wordSuffix):] != wordSuffix {
		return text, nil
	}
	payload := text[len(wordPrefix) : len(text)-len(wordSuffix)]
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("email: bad encoded word %q: %w", text, ErrSyntax)
	}
	return string(b), nil
}
