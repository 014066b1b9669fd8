package exam

import (
	"fmt"
	"slices"
)

// Edit operations used by the test editor. Each returns a new, renumbered
// tree and leaves its input untouched. Indexes are 0-based.

// AddPart appends a part holding one multiple_choice group with a single
// empty question.
func AddPart(parts []Part) []Part {
	out := cloneParts(parts)
	g := kindOf(MultipleChoice).empty()
	g.Type = MultipleChoice
	out = append(out, Part{Groups: []Group{g}})
	return Renumber(out)
}

// DeletePart removes part i; later parts move up one part number.
func DeletePart(parts []Part, i int) ([]Part, error) {
	if i < 0 || i >= len(parts) {
		return nil, fmt.Errorf("part %d: %w", i, ErrOutOfRange)
	}
	out := cloneParts(parts)
	return Renumber(slices.Delete(out, i, i+1)), nil
}

// AddGroup appends an empty group of type t to part p.
func AddGroup(parts []Part, p int, t GroupType) ([]Part, error) {
	if !KnownType(t) {
		return nil, fmt.Errorf("%q: %w", t, ErrUnknownType)
	}
	if p < 0 || p >= len(parts) {
		return nil, fmt.Errorf("part %d: %w", p, ErrOutOfRange)
	}
	out := cloneParts(parts)
	g := kindOf(t).empty()
	g.Type = t
	out[p].Groups = append(out[p].Groups, g)
	return Renumber(out), nil
}

// DeleteGroup removes group g of part p.
func DeleteGroup(parts []Part, p, g int) ([]Part, error) {
	if err := checkGroup(parts, p, g); err != nil {
		return nil, err
	}
	out := cloneParts(parts)
	out[p].Groups = slices.Delete(out[p].Groups, g, g+1)
	return Renumber(out), nil
}

// ChangeGroupType resets a group to the empty shape of type t. The old
// payload is discarded; id and instruction are kept.
func ChangeGroupType(parts []Part, p, g int, t GroupType) ([]Part, error) {
	if !KnownType(t) {
		return nil, fmt.Errorf("%q: %w", t, ErrUnknownType)
	}
	return withGroup(parts, p, g, func(grp *Group) error {
		if grp.Type == t {
			return nil
		}
		next := kindOf(t).empty()
		next.ID = grp.ID
		next.Type = t
		next.Instruction = grp.Instruction
		*grp = next
		return nil
	})
}

// AddQuestion appends one empty scoreable item shaped for the group's type.
// fill_in_blanks and drag_drop groups also get blank markers appended to
// their passage until marker and item counts are equal; existing answers
// are never dropped, even when the passage has fewer markers than answers.
func AddQuestion(parts []Part, p, g int) ([]Part, error) {
	return withGroup(parts, p, g, func(grp *Group) error {
		switch grp.Type {
		case FillInBlanks:
			n := max(len(grp.Answers), CountBlanks(grp.Content)) + 1
			grp.Answers = resize(grp.Answers, n)
			grp.Content = padBlanks(grp.Content, n)
		case DragDrop:
			correct, distractors := partition(grp.Questions)
			n := max(len(correct), CountBlanks(grp.Content)) + 1
			for len(correct) < n {
				correct = append(correct, Question{IsCorrect: true})
			}
			grp.Questions = append(correct, distractors...)
			grp.Content = padBlanks(grp.Content, n)
		case MultipleChoice:
			grp.Questions = append(grp.Questions, newChoiceQuestion())
		case Table:
			grp.Questions = append(grp.Questions, newTableRow(grp.Columns))
		default:
			grp.Questions = append(grp.Questions, Question{IsCorrect: true})
		}
		return nil
	})
}

// AddDistractor appends an unnumbered wrong option to a drag_drop group.
func AddDistractor(parts []Part, p, g int) ([]Part, error) {
	return withGroup(parts, p, g, func(grp *Group) error {
		if grp.Type != DragDrop {
			return fmt.Errorf("distractors need a %s group, got %s: %w", DragDrop, grp.Type, ErrWrongType)
		}
		grp.Questions = append(grp.Questions, Question{})
		return nil
	})
}

// DeleteQuestion removes item q of group g. For fill_in_blanks q indexes the
// answers; for the other types it indexes the question list. Deleting a
// fill_in_blanks answer or a correct drag_drop gap also removes its blank
// marker from the passage.
func DeleteQuestion(parts []Part, p, g, q int) ([]Part, error) {
	return withGroup(parts, p, g, func(grp *Group) error {
		if grp.Type == FillInBlanks {
			if q < 0 || q >= len(grp.Answers) {
				return fmt.Errorf("answer %d: %w", q, ErrOutOfRange)
			}
			grp.Answers = slices.Delete(grp.Answers, q, q+1)
			grp.Content = removeBlank(grp.Content, q)
			return nil
		}
		if q < 0 || q >= len(grp.Questions) {
			return fmt.Errorf("question %d: %w", q, ErrOutOfRange)
		}
		if grp.Type == DragDrop && grp.Questions[q].IsCorrect {
			rank := 0
			for _, other := range grp.Questions[:q] {
				if other.IsCorrect {
					rank++
				}
			}
			grp.Content = removeBlank(grp.Content, rank)
		}
		grp.Questions = slices.Delete(grp.Questions, q, q+1)
		return nil
	})
}

// SetContent replaces the passage of a group. For fill_in_blanks and
// drag_drop the blank markers are counted and the answers resized to match.
// Table groups store only their columns and reject a passage.
func SetContent(parts []Part, p, g int, text string) ([]Part, error) {
	return withGroup(parts, p, g, func(grp *Group) error {
		switch grp.Type {
		case FillInBlanks:
			*grp = SyncBlanks(*grp, text)
		case DragDrop:
			*grp = SyncGaps(*grp, text)
		case Table:
			return fmt.Errorf("a %s group has no passage: %w", Table, ErrWrongType)
		default:
			grp.QuestionText = text
		}
		return nil
	})
}

// SetAnswer sets the correct answer of item i. For drag_drop the answer is
// also the word shown in the option pool; for multiple_choice and table it
// is the chosen letter.
func SetAnswer(parts []Part, p, g, i int, answer string) ([]Part, error) {
	return withGroup(parts, p, g, func(grp *Group) error {
		if grp.Type == FillInBlanks {
			if i < 0 || i >= len(grp.Answers) {
				return fmt.Errorf("answer %d: %w", i, ErrOutOfRange)
			}
			grp.Answers[i] = answer
			return nil
		}
		if i < 0 || i >= len(grp.Questions) {
			return fmt.Errorf("question %d: %w", i, ErrOutOfRange)
		}
		q := &grp.Questions[i]
		q.CorrectAnswer = answer
		switch grp.Type {
		case DragDrop:
			q.Text = answer
		case MultipleChoice, Table:
			// answer is a letter; a multiple_choice question keeps the
			// chosen option's text as its correct answer.
			for j := range q.Options {
				o := &q.Options[j]
				o.IsCorrect = o.Letter == answer
				if o.IsCorrect && grp.Type == MultipleChoice {
					q.CorrectAnswer = o.Text
				}
			}
		}
		return nil
	})
}

// AddColumn appends the letter after the last column of a table group to
// the column set and to every row's options.
func AddColumn(parts []Part, p, g int) ([]Part, error) {
	return withGroup(parts, p, g, func(grp *Group) error {
		if grp.Type != Table {
			return fmt.Errorf("columns need a %s group, got %s: %w", Table, grp.Type, ErrWrongType)
		}
		next := "A"
		if n := len(grp.Columns); n > 0 {
			last := grp.Columns[n-1]
			if len(last) != 1 || last[0] >= 'Z' {
				return fmt.Errorf("column after %q: %w", last, ErrOutOfRange)
			}
			next = string(last[0] + 1)
		}
		grp.Columns = append(grp.Columns, next)
		for i := range grp.Questions {
			q := &grp.Questions[i]
			q.Options = append(q.Options, Option{Letter: next, Text: next, IsCorrect: q.CorrectAnswer == next})
		}
		return nil
	})
}

// DeleteColumn removes a column letter from a table group. At least one
// column must remain; rows answering the removed letter lose their answer.
func DeleteColumn(parts []Part, p, g int, letter string) ([]Part, error) {
	return withGroup(parts, p, g, func(grp *Group) error {
		if grp.Type != Table {
			return fmt.Errorf("columns need a %s group, got %s: %w", Table, grp.Type, ErrWrongType)
		}
		idx := slices.Index(grp.Columns, letter)
		if idx < 0 {
			return fmt.Errorf("column %q: %w", letter, ErrOutOfRange)
		}
		if len(grp.Columns) == 1 {
			return fmt.Errorf("table needs at least one column: %w", ErrOutOfRange)
		}
		grp.Columns = slices.Delete(grp.Columns, idx, idx+1)
		for i := range grp.Questions {
			q := &grp.Questions[i]
			q.Options = slices.DeleteFunc(q.Options, func(o Option) bool { return o.Letter == letter })
			if q.CorrectAnswer == letter {
				q.CorrectAnswer = ""
			}
		}
		return nil
	})
}

func checkGroup(parts []Part, p, g int) error {
	if p < 0 || p >= len(parts) {
		return fmt.Errorf("part %d: %w", p, ErrOutOfRange)
	}
	if g < 0 || g >= len(parts[p].Groups) {
		return fmt.Errorf("part %d group %d: %w", p, g, ErrOutOfRange)
	}
	return nil
}

func withGroup(parts []Part, p, g int, fn func(*Group) error) ([]Part, error) {
	if err := checkGroup(parts, p, g); err != nil {
		return nil, err
	}
	out := cloneParts(parts)
	if err := fn(&out[p].Groups[g]); err != nil {
		return nil, err
	}
	return Renumber(out), nil
}
