package exam_test

import (
	"testing"

	"github.com/ieltsprep/ieltsadmin/internal/exam"
)

func ptr[T any](v T) *T { return &v }

func tfng(texts ...string) exam.Group {
	g := exam.Group{Type: exam.TrueFalseNotGiven, Instruction: "TRUE, FALSE or NOT GIVEN"}
	for _, s := range texts {
		g.Questions = append(g.Questions, exam.Question{Text: s, CorrectAnswer: "TRUE", IsCorrect: true})
	}
	return g
}

func choice(n int) exam.Group {
	g := exam.Group{Type: exam.MultipleChoice, QuestionText: "Choose one"}
	for i := 0; i < n; i++ {
		g.Questions = append(g.Questions, exam.Question{
			Text:          "question",
			CorrectAnswer: "two",
			IsCorrect:     true,
			Options: []exam.Option{
				{Letter: "A", Text: "one"},
				{Letter: "B", Text: "two", IsCorrect: true},
				{Letter: "C", Text: "three"},
				{Letter: "D", Text: "four"},
			},
		})
	}
	return g
}

func blanks(content string, answers ...string) exam.Group {
	return exam.Group{Type: exam.FillInBlanks, Content: content, Answers: answers}
}

// gaps builds a drag_drop group; words prefixed with "-" are distractors.
func gaps(content string, words ...string) exam.Group {
	g := exam.Group{Type: exam.DragDrop, Content: content}
	for _, w := range words {
		q := exam.Question{Text: w, CorrectAnswer: w, IsCorrect: true}
		if w != "" && w[0] == '-' {
			q = exam.Question{Text: w[1:], CorrectAnswer: w[1:]}
		}
		g.Questions = append(g.Questions, q)
	}
	return g
}

func table(cols []string, answers ...string) exam.Group {
	g := exam.Group{Type: exam.Table, Columns: cols}
	for _, a := range answers {
		q := exam.Question{Text: "row", CorrectAnswer: a, IsCorrect: true}
		for _, c := range cols {
			q.Options = append(q.Options, exam.Option{Letter: c, Text: c, IsCorrect: c == a})
		}
		g.Questions = append(g.Questions, q)
	}
	return g
}

func part(groups ...exam.Group) exam.Part {
	return exam.Part{Title: "part", Content: "passage", Groups: groups}
}

// numbers walks the tree in display order and returns every item number,
// with 0 standing in for an unnumbered distractor.
func numbers(parts []exam.Part) []int {
	var out []int
	for _, p := range parts {
		for _, g := range p.Groups {
			if g.Type == exam.FillInBlanks {
				for i := range g.Answers {
					out = append(out, g.StartNumber+i)
				}
				continue
			}
			for _, q := range g.Questions {
				if q.Number == nil {
					out = append(out, 0)
				} else {
					out = append(out, *q.Number)
				}
			}
		}
	}
	return out
}

func assertGapless(t *testing.T, parts []exam.Part) {
	t.Helper()
	want := 1
	for _, n := range numbers(parts) {
		if n == 0 {
			continue
		}
		if n != want {
			t.Fatalf("numbers %v: got %d, want %d", numbers(parts), n, want)
		}
		want++
	}
	if got := exam.Count(parts); got != want-1 {
		t.Fatalf("Count = %d, want %d", got, want-1)
	}
}
