package extractor

import (
	"encoding/hex"
	"regexp"
	"strings"

	"lukechampine.com/blake3"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FunctionKey identifies a function across versions of a file: methods are
// qualified by their receiver's base type name.
func FunctionKey(name, receiver string) string {
	receiver = strings.TrimSpace(receiver)
	receiver = strings.TrimLeft(receiver, "*")
	if i := strings.IndexByte(receiver, '['); i >= 0 {
		receiver = receiver[:i]
	}
	if receiver == "" {
		return name
	}
	return receiver + "." + name
}

// BodyHash is the BLAKE3 hash of a body with runs of whitespace collapsed,
// so reformatting alone does not count as a change.
func BodyHash(content string) string {
	sum := blake3.Sum256([]byte(canonicalize(content)))
	return hex.EncodeToString(sum[:])
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
