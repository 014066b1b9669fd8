package exam

// kind holds the per-type rules for a question group: how many global
// numbers it consumes, how those numbers are assigned, what an empty group
// looks like, and how the group maps to persisted rows.
type kind interface {
	count(g Group) int
	number(g Group, start int) Group
	empty() Group
	flatten(g Group) groupRows
	assemble(g Group, text string, items []ItemRow, opts []OptionRow) Group
}

var kinds = map[GroupType]kind{
	MultipleChoice:    choiceKind{},
	TrueFalseNotGiven: listKind{},
	FillInBlanks:      blanksKind{},
	DragDrop:          gapsKind{},
	Table:             tableKind{},
}

// kindOf falls back to plain list numbering for tags it does not know.
func kindOf(t GroupType) kind {
	if k, ok := kinds[t]; ok {
		return k
	}
	return listKind{}
}

// KnownType reports whether t is one of the five supported group types.
func KnownType(t GroupType) bool {
	_, ok := kinds[t]
	return ok
}

var defaultLetters = []string{"A", "B", "C", "D"}

// ---- true_false_not_given and unknown types: one number per question ----

type listKind struct{}

func (listKind) count(g Group) int { return len(g.Questions) }

func (listKind) number(g Group, start int) Group {
	g.StartNumber = start
	for i := range g.Questions {
		g.Questions[i].Number = intPtr(start + i)
	}
	return g
}

func (listKind) empty() Group {
	return Group{Questions: []Question{{IsCorrect: true}}}
}

// ---- multiple_choice: list numbering, four lettered options per question ----

type choiceKind struct{ listKind }

func (choiceKind) empty() Group {
	return Group{Questions: []Question{newChoiceQuestion()}}
}

func newChoiceQuestion() Question {
	opts := make([]Option, len(defaultLetters))
	for i, l := range defaultLetters {
		opts[i] = Option{Letter: l}
	}
	return Question{IsCorrect: true, Options: opts}
}

// ---- table: one number per row, rows share the group's column letters ----

type tableKind struct{ listKind }

func (tableKind) empty() Group {
	cols := append([]string(nil), defaultLetters...)
	return Group{Columns: cols, Questions: []Question{newTableRow(cols)}}
}

func newTableRow(cols []string) Question {
	opts := make([]Option, len(cols))
	for i, l := range cols {
		opts[i] = Option{Letter: l, Text: l}
	}
	return Question{IsCorrect: true, Options: opts}
}

// ---- fill_in_blanks: one number per answer ----

type blanksKind struct{}

func (blanksKind) count(g Group) int { return len(g.Answers) }

func (blanksKind) number(g Group, start int) Group {
	// Blank markers are bare underscore runs and carry no number, so the
	// passage text needs no rewrite here.
	g.StartNumber = start
	return g
}

func (blanksKind) empty() Group { return Group{} }

// ---- drag_drop: correct gaps are numbered, distractors never are ----

type gapsKind struct{}

func (gapsKind) count(g Group) int {
	n := 0
	for _, q := range g.Questions {
		if q.IsCorrect {
			n++
		}
	}
	return n
}

func (gapsKind) number(g Group, start int) Group {
	g.StartNumber = start
	correct, distractors := partition(g.Questions)
	out := make([]Question, 0, len(g.Questions))
	for i, q := range correct {
		q.Number = intPtr(start + i)
		out = append(out, q)
	}
	for _, q := range distractors {
		q.Number = nil
		out = append(out, q)
	}
	if g.Questions == nil {
		out = nil
	}
	g.Questions = out
	return g
}

func (gapsKind) empty() Group { return Group{} }

// partition splits drag_drop items into correct gaps and distractors,
// keeping relative order within each side.
func partition(qs []Question) (correct, distractors []Question) {
	for _, q := range qs {
		if q.IsCorrect {
			correct = append(correct, q)
		} else {
			distractors = append(distractors, q)
		}
	}
	return correct, distractors
}
