package exam_test

import (
	"reflect"
	"testing"

	"github.com/ieltsprep/ieltsadmin/internal/exam"
)

func mixedParts() []exam.Part {
	return []exam.Part{
		part(choice(3), gaps("A ___ and a ___.", "cat", "-fox", "dog", "-owl")),
		part(blanks("The ___ Wall of ___.", "Great", "China"), tfng("a", "b")),
		part(table([]string{"A", "B", "C"}, "A", "C")),
	}
}

func TestRenumberIsIdempotent(t *testing.T) {
	once := exam.Renumber(mixedParts())
	twice := exam.Renumber(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second renumber changed the tree:\n%+v\n%+v", once, twice)
	}
}

func TestRenumberIsGapless(t *testing.T) {
	assertGapless(t, exam.Renumber(mixedParts()))
}

func TestRenumberDoesNotMutateInput(t *testing.T) {
	in := mixedParts()
	before := mixedParts()
	_ = exam.Renumber(in)
	if !reflect.DeepEqual(in, before) {
		t.Fatal("input was modified")
	}
}

func TestRenumberFillInBlanksStartNumber(t *testing.T) {
	g := exam.SyncBlanks(exam.Group{Type: exam.FillInBlanks}, "The ___ Wall of ___.")
	parts := exam.Renumber([]exam.Part{part(g)})

	got := parts[0].Groups[0]
	if got.StartNumber != 1 {
		t.Fatalf("StartNumber = %d, want 1", got.StartNumber)
	}
	if len(got.Answers) != 2 {
		t.Fatalf("answers = %v, want 2 entries", got.Answers)
	}
	if n := exam.Count(parts); n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}
	if got.Content != "The ___ Wall of ___." {
		t.Fatalf("content rewritten: %q", got.Content)
	}
}

func TestRenumberDragDropAfterMultipleChoice(t *testing.T) {
	parts := exam.Renumber([]exam.Part{part(choice(3), gaps("___ ___", "x", "y", "-d1", "-d2"))})

	if got, want := numbers(parts), []int{1, 2, 3, 4, 5, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("numbers = %v, want %v", got, want)
	}
	dd := parts[0].Groups[1]
	if dd.StartNumber != 4 {
		t.Fatalf("drag_drop StartNumber = %d, want 4", dd.StartNumber)
	}
	next := exam.Count(parts) + 1
	if next != 6 {
		t.Fatalf("next number = %d, want 6", next)
	}
}

func TestRenumberKeepsRelativeOrder(t *testing.T) {
	parts := exam.Renumber([]exam.Part{part(gaps("___ ___ ___", "one", "-x", "two", "-y", "three"))})
	var correct, distractors []string
	for _, q := range parts[0].Groups[0].Questions {
		if q.IsCorrect {
			correct = append(correct, q.Text)
		} else {
			distractors = append(distractors, q.Text)
		}
	}
	if !reflect.DeepEqual(correct, []string{"one", "two", "three"}) {
		t.Fatalf("correct order = %v", correct)
	}
	if !reflect.DeepEqual(distractors, []string{"x", "y"}) {
		t.Fatalf("distractor order = %v", distractors)
	}
}

func TestRenumberRepairsPartNumbers(t *testing.T) {
	in := []exam.Part{part(tfng("a")), part(tfng("b")), part(tfng("c"))}
	in[0].Number, in[1].Number, in[2].Number = 7, 7, 2
	out := exam.Renumber(in)
	for i, p := range out {
		if p.Number != i+1 {
			t.Fatalf("part %d numbered %d", i, p.Number)
		}
	}
}

func TestRenumberUnknownTypeNumbersEveryItem(t *testing.T) {
	g := tfng("a", "b")
	g.Type = "matching_headings"
	parts := exam.Renumber([]exam.Part{part(choice(1), g)})
	if got := numbers(parts); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("numbers = %v", got)
	}
}

func TestQuestionRange(t *testing.T) {
	cases := []struct {
		name string
		g    exam.Group
		want int
	}{
		{"multiple_choice", choice(2), 2},
		{"fill_in_blanks", blanks("___ ___ ___", "a", "b", "c"), 3},
		{"drag_drop ignores distractors", gaps("___", "a", "-b", "-c"), 1},
		{"table", table([]string{"A", "B"}, "A", "B", "A"), 3},
		{"empty", exam.Group{Type: exam.TrueFalseNotGiven}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exam.QuestionRange(tc.g); got != tc.want {
				t.Fatalf("QuestionRange = %d, want %d", got, tc.want)
			}
		})
	}
}
