package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
)

var (
	OWS  = []byte{SP, HTAB}
	CRLF = []byte{CR, LF}
)

func IsOWS(c byte) bool { return c == SP || c == HTAB }

func IsAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func IsDigit(c byte) bool { return '0' <= c && c <= '9' }

// ToLowerASCII lowercases ASCII letters of b in place.
func ToLowerASCII(b []byte) {
	const capitalDiff = 'a' - 'A'
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + capitalDiff
		}
	}
}
