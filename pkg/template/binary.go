package template

import (
	"bytes"
	"unicode/utf8"
)

// IsBinary reports whether data should be treated as binary content.
// A buffer is binary if it contains a NUL byte or is not valid UTF-8;
// binary content is served raw and never templated.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}
