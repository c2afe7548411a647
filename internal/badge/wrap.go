package badge

import "strings"

// Measurer reports the rendered width of a string in pixels.
type Measurer interface {
	Measure(s string) float64
}

// Line is one wrapped row of words.
type Line []string

// String joins the words with single spaces.
func (l Line) String() string {
	return strings.Join(l, " ")
}

// Wrap splits text on whitespace and packs the words greedily into lines no
// wider than maxWidth. A word that is wider than maxWidth on its own gets a
// line of its own and overflows; words are never split.
//
// Wrap("") returns nil.
func Wrap(text string, m Measurer, maxWidth float64) []Line {
	var lines []Line
	var cur Line
	for _, word := range strings.Fields(text) {
		cur = append(cur, word)
		if m.Measure(cur.String()) <= maxWidth {
			continue
		}
		if len(cur) > 1 {
			lines = append(lines, cur[:len(cur)-1:len(cur)-1])
			cur = Line{word}
			continue
		}
		lines = append(lines, cur)
		cur = nil
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// Truncate keeps the first n lines and silently drops the rest.
func Truncate(lines []Line, n int) []Line {
	if n < 0 {
		n = 0
	}
	if len(lines) <= n {
		return lines
	}
	return lines[:n]
}
