package png

// SignatureSize is the length of the PNG magic prefix.
const SignatureSize = 8

var signature = [SignatureSize]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// HasSignature reports whether b starts with the PNG magic bytes.
func HasSignature(b []byte) bool {
	if len(b) < SignatureSize {
		return false
	}
	for i, s := range signature {
		if b[i] != s {
			return false
		}
	}
	return true
}
