package exam_test

import (
	"reflect"
	"testing"

	"github.com/ieltsprep/ieltsadmin/internal/exam"
)

func TestCountBlanks(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"no blanks here", 0},
		{"two__underscores", 0},
		{"___", 1},
		{"The ___ Wall of ___.", 2},
		{"long______run", 1},
		{"___\n___ ___", 3},
	}
	for _, tc := range cases {
		if got := exam.CountBlanks(tc.text); got != tc.want {
			t.Errorf("CountBlanks(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestSyncBlanksResizesByPosition(t *testing.T) {
	g := blanks("a ___ b ___", "x", "y")

	grown := exam.SyncBlanks(g, "a ___ b ___ c ___")
	if want := []string{"x", "y", ""}; !reflect.DeepEqual(grown.Answers, want) {
		t.Fatalf("grown answers = %q, want %q", grown.Answers, want)
	}

	shrunk := exam.SyncBlanks(g, "a ___")
	if want := []string{"x"}; !reflect.DeepEqual(shrunk.Answers, want) {
		t.Fatalf("shrunk answers = %q, want %q", shrunk.Answers, want)
	}
	if shrunk.Content != "a ___" {
		t.Fatalf("content = %q", shrunk.Content)
	}

	if !reflect.DeepEqual(g.Answers, []string{"x", "y"}) {
		t.Fatalf("input answers changed: %q", g.Answers)
	}
}

func TestSyncBlanksKeepsAnswerCountEqualToMarkers(t *testing.T) {
	g := exam.Group{Type: exam.FillInBlanks}
	for _, text := range []string{"___", "", "___ ___ ___ ___", "x ___ y", "nothing"} {
		g = exam.SyncBlanks(g, text)
		if len(g.Answers) != exam.CountBlanks(text) {
			t.Fatalf("%q: %d answers for %d blanks", text, len(g.Answers), exam.CountBlanks(text))
		}
	}
}

func TestSyncGapsLeavesDistractorsAlone(t *testing.T) {
	g := gaps("___ ___", "a", "-x", "b", "-y")
	for _, text := range []string{"___", "___ ___ ___", ""} {
		got := exam.SyncGaps(g, text)
		var correct int
		var distractors []string
		for _, q := range got.Questions {
			if q.IsCorrect {
				correct++
			} else {
				distractors = append(distractors, q.Text)
			}
		}
		if correct != exam.CountBlanks(text) {
			t.Fatalf("%q: %d correct items", text, correct)
		}
		if !reflect.DeepEqual(distractors, []string{"x", "y"}) {
			t.Fatalf("%q: distractors = %v", text, distractors)
		}
	}
}

func TestBlankSpans(t *testing.T) {
	got := exam.BlankSpans("ab ___ c ____")
	want := [][]int{{3, 6}, {9, 13}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("spans = %v, want %v", got, want)
	}
}
