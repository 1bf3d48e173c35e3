package generatecmder

import (
	"strings"
	"unicode/utf8"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// tailRunes is how many of the most recently revealed runes are emphasized
// while the reveal is running.
const tailRunes = 12

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("215")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
)

// renderPreview word-wraps the revealed text to width. While active, the
// last tailRunes runes are highlighted. Stripping the styling always yields
// the plain wrapped text.
func renderPreview(revealed string, active bool, width int) string {
	if active {
		head, tail := splitTail(revealed, tailRunes)
		revealed = head + emphasize(tail)
	}
	if width <= 0 {
		return revealed
	}
	return ansi.Wordwrap(revealed, width, "")
}

// splitTail splits s before its last n runes.
func splitTail(s string, n int) (head, tail string) {
	i := len(s)
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[:i], s[i:]
}

// emphasize styles each line of s separately so newlines survive untouched.
func emphasize(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = tailStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
