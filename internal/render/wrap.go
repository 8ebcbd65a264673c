package render

import "strings"

// Measurer measures the advance width of a string.
type Measurer interface {
	MeasureText(text string) float64
}

// TextCanvas can measure and draw text.
type TextCanvas interface {
	Measurer
	FillText(text string, x, y float64)
}

// WrapLines greedily breaks text into lines no wider than maxWidth. Words are never split,
// so a single long word may exceed maxWidth. Empty text yields one empty line.
func WrapLines(m Measurer, text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := ""
	for _, w := range words {
		test := w
		if line != "" {
			test = line + " " + w
		}
		if line != "" && m.MeasureText(test) > maxWidth {
			lines = append(lines, line)
			line = w
			continue
		}
		line = test
	}
	return append(lines, line)
}

// Wrap draws text wrapped to maxWidth with line i at y+i*lineHeight and returns the y
// just past the last line.
func Wrap(c TextCanvas, text string, x, y, maxWidth, lineHeight float64) float64 {
	lines := WrapLines(c, text, maxWidth)
	for i, ln := range lines {
		c.FillText(ln, x, y+float64(i)*lineHeight)
	}
	return y + float64(len(lines))*lineHeight
}
