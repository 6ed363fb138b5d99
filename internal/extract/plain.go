package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lu4p/cat"
)

// extractPlain returns content as a string, replacing invalid UTF-8 with U+FFFD.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\ufffd"), nil
	}
	return string(content), nil
}

func extractRTF(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", errorf("RTF", "%v", err)
	}
	return strings.TrimSpace(text), nil
}

func errorf(format, msg string, args ...any) error {
	return fmt.Errorf("extract %s: %s", format, fmt.Sprintf(msg, args...))
}
