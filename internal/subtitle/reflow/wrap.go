package reflow

// protectedBreaks are wide punctuation marks a line break must not precede.
var protectedBreaks = map[rune]bool{
	'。': true,
	'，': true,
	'？': true,
}

// Wrap splits text into windows of width runes. When a window would end
// right before protected punctuation, the window takes it as well.
func Wrap(text string, width int) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if width < 1 {
		return []string{text}
	}

	var out []string
	i, j := 0, min(width, n)
	for i < n {
		if j != n && protectedBreaks[runes[j]] {
			j++
		}
		out = append(out, string(runes[i:j]))
		i = j
		j = min(j+width, n)
	}
	return out
}
