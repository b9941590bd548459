package utils

import (
	"regexp"
	"strings"
)

// Characters invalid in filenames on most filesystems
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename converts a book title to a safe filename. Each invalid
// character is replaced by a dash independently and the result is trimmed,
// so repeated syncs of the same title always produce the same name.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "-")
	filename = strings.TrimSpace(filename)

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}
