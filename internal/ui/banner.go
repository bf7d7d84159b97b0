package ui

import (
	"fmt"
	"strings"

	"github.com/mazznoer/colorgrad"
)

const bannerArt = `
__     ___             _                    _
\ \   / (_) ___ ___   / \   __ _  ___ _ __ | |_
 \ \ / /| |/ __/ __| / _ \ / _' |/ _ \ '_ \| __|
  \ V / | | (__\__ \/ ___ \ (_| |  __/ | | | |_
   \_/  |_|\___|___/_/   \_\__, |\___|_| |_|\__|
                           |___/
      .  .  .  Coding your day away  .  .  .
`

// Banner returns the ASCII banner. With color set, each column is tinted
// along a left-to-right gradient using 24-bit escape sequences.
func Banner(color bool) string {
	if !color {
		return bannerArt
	}

	grad, err := colorgrad.NewGradient().
		HtmlColors("#00c6ffff", "#7b2ff7ff").
		Build()
	if err != nil {
		return bannerArt
	}

	lines := strings.Split(bannerArt, "\n")
	maxLen := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > maxLen {
			maxLen = n
		}
	}

	colors := grad.Colors(uint(maxLen))
	var b strings.Builder
	for _, line := range lines {
		for i, ch := range []rune(line) {
			r, g, bl, _ := colors[i].RGBA255()
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm%c", r, g, bl, ch)
		}
		b.WriteString("\x1b[0m\n")
	}
	return b.String()
}
