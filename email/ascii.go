package email

// IsASCII reports whether every byte of s is 7-bit clean.
//
// The wire format is a 7-bit channel: any field that fails this check
// has to travel base64-encoded (bodies) or as an RFC 2047 word
// (the Subject).
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}
