package content

import "strings"

// SplitLines splits text on \n and \r\n without a trailing empty element.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n':
			lines = append(lines, text[start:i])
			start = i + 2
			i++
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// NormaliseLineEndings converts \r\n to \n.
func NormaliseLineEndings(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
