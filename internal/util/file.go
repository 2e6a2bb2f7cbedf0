package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFilenameRunes = 200

var reUnsafeFilename = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename drops characters that are invalid in file names on common
// filesystems and truncates the result to 200 runes. Bengali titles are kept
// as they are.
func SanitizeFilename(name string) string {
	name = reUnsafeFilename.ReplaceAllString(name, "")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")

	if utf8.RuneCountInString(name) > maxFilenameRunes {
		name = string([]rune(name)[:maxFilenameRunes])
	}

	name = strings.Trim(name, " .")
	if name == "" {
		return "book"
	}

	return name
}
