package digest

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Removed is recorded in place of a digest for deleted files.
const Removed = "removed"

// ErrInvalidUTF8 is returned for patch text that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// Of returns the SHA-256 digest of content as lowercase hex.
func Of(content string) (string, error) {
	if !utf8.ValidString(content) {
		return "", ErrInvalidUTF8
	}
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h), nil
}
