package rowbase

import (
	"encoding/base64"
	"strings"
)

// UnescapeString is the inverse of the textual codec's string escaping
// rules (spec §4.5.1): literal \r \n become real line breaks, and a
// configured stringMarker's doubled occurrences collapse to one. Exported
// so the codec/text package can share this single implementation rather
// than duplicating the escaping rules.
func UnescapeString(text string, stringMarker byte) string {
	return unescapeString(text, stringMarker)
}

func unescapeString(text string, stringMarker byte) string {
	s := text
	if stringMarker != 0 {
		marker := string(stringMarker)
		if strings.HasPrefix(s, marker) && strings.HasSuffix(s, marker) && len(s) >= 2 {
			s = s[1 : len(s)-1]
		}
		if s == " " {
			s = ""
		} else if strings.HasSuffix(s, " ") && (strings.HasPrefix(s, marker) || strings.HasSuffix(s[:len(s)-1], marker)) {
			s = s[:len(s)-1]
		}
		s = strings.ReplaceAll(s, marker+marker, marker)
	}
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\n`, "\n")
	return s
}

// EscapeString implements the forward direction: line breaks become
// literal \r \n, marker bytes are doubled, and degenerate values (empty,
// marker-adjacent) are padded per spec §4.5.1. Exported for codec/text.
func EscapeString(value string, stringMarker byte) string {
	return escapeString(value, stringMarker)
}

func escapeString(value string, stringMarker byte) string {
	s := strings.ReplaceAll(value, "\r", `\r`)
	s = strings.ReplaceAll(s, "\n", `\n`)

	if stringMarker == 0 {
		return s
	}
	marker := string(stringMarker)
	s = strings.ReplaceAll(s, marker, marker+marker)
	if s == "" {
		s = " "
	} else if strings.HasPrefix(s, marker) || strings.HasSuffix(s, marker) {
		s = s + " "
	}
	return marker + s + marker
}

func parseBase64(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
