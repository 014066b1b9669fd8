package exam

import "regexp"

// A blank is a run of three or more underscores; one run is one blank.
var blankMarker = regexp.MustCompile(`_{3,}`)

// CountBlanks returns the number of blank markers in text.
func CountBlanks(text string) int {
	return len(blankMarker.FindAllStringIndex(text, -1))
}

// BlankSpans returns the [start, end) byte offsets of each blank marker.
func BlankSpans(text string) [][]int {
	return blankMarker.FindAllStringIndex(text, -1)
}

// SyncBlanks sets a fill_in_blanks passage and resizes its answers to the
// blank count. Answers of blanks that survive keep their position; new
// blanks get empty answers and vanished trailing blanks are dropped.
func SyncBlanks(g Group, text string) Group {
	g = cloneGroup(g)
	g.Content = text
	g.Answers = resize(g.Answers, CountBlanks(text))
	return g
}

// SyncGaps is SyncBlanks for drag_drop: the correct items are resized to the
// blank count and distractors are left alone.
func SyncGaps(g Group, text string) Group {
	g = cloneGroup(g)
	g.Content = text
	n := CountBlanks(text)
	correct, distractors := partition(g.Questions)
	if len(correct) > n {
		correct = correct[:n]
	}
	for len(correct) < n {
		correct = append(correct, Question{IsCorrect: true})
	}
	g.Questions = append(correct, distractors...)
	return g
}

func resize(answers []string, n int) []string {
	out := make([]string, n)
	copy(out, answers)
	return out
}

// removeBlank cuts the k-th blank marker (0-based) out of text. Text is
// returned unchanged when there is no such marker.
func removeBlank(text string, k int) string {
	spans := BlankSpans(text)
	if k < 0 || k >= len(spans) {
		return text
	}
	s := spans[k]
	return text[:s[0]] + text[s[1]:]
}

// padBlanks appends markers to text until it holds at least n.
func padBlanks(text string, n int) string {
	for i := CountBlanks(text); i < n; i++ {
		text = appendBlank(text)
	}
	return text
}

// appendBlank adds one marker at the end of text.
func appendBlank(text string) string {
	if text == "" {
		return "___"
	}
	return text + " ___"
}
