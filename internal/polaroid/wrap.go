package polaroid

import "strings"

// Wrap breaks text into lines of at most width runes. Wrapping is greedy on
// whitespace; a single run longer than the width (typical for Chinese and
// Thai captions, which carry no spaces) is split at rune boundaries so CJK
// text still wraps instead of running off the canvas.
func Wrap(text string, width int) []string {
	if width <= 0 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		for _, chunk := range splitLongWord(word, width) {
			candidate := chunk
			if current != "" {
				candidate = current + " " + chunk
			}
			if len([]rune(candidate)) <= width {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = chunk
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func splitLongWord(word string, width int) []string {
	runes := []rune(word)
	if len(runes) <= width {
		return []string{word}
	}
	var chunks []string
	for len(runes) > width {
		chunks = append(chunks, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
