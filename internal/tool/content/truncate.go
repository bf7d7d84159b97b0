package content

import (
	"fmt"
	"unicode/utf8"
)

// TruncateMiddle keeps the head and tail of text when it exceeds maxChars,
// replacing the middle with a notice naming how much was dropped. Cuts never
// split a UTF-8 sequence.
func TruncateMiddle(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	half := maxChars / 2
	head := runeFloor(text, half)
	tail := len(text) - half
	for tail < len(text) && !utf8.RuneStart(text[tail]) {
		tail++
	}
	removed := utf8.RuneCountInString(text[head:tail])
	return text[:head] +
		fmt.Sprintf("\n\n[output truncated: %d characters removed from the middle; narrow the request to see them]\n\n", removed) +
		text[tail:]
}

// TruncateLine shortens a single line to maxChars, marking the cut.
func TruncateLine(line string, maxChars int) string {
	if maxChars <= 0 || len(line) <= maxChars {
		return line
	}
	return line[:runeFloor(line, maxChars)] + "...[truncated]"
}

// runeFloor moves i back to the start of the rune containing it.
func runeFloor(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
