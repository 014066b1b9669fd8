package exam

import (
	"cmp"
	"database/sql"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Row shapes of the persisted tables: test, part, question (one row per
// group), questions (one row per scoreable item or distractor) and options.

type PartRow struct {
	ID           string
	TestID       string
	PartNumber   int
	Title        sql.NullString
	Content      sql.NullString
	ImageURL     sql.NullString
	ListeningURL sql.NullString
}

type GroupRow struct {
	ID            string
	TestID        string
	PartID        string
	Position      int
	Type          string
	QuestionRange int
	Instruction   sql.NullString
	QuestionText  sql.NullString
}

type ItemRow struct {
	ID            string
	TestID        string
	GroupID       string
	PartID        string
	Position      int
	Number        sql.NullInt64
	QuestionText  sql.NullString
	CorrectAnswer string
	Explanation   sql.NullString
	IsCorrect     bool
}

type OptionRow struct {
	ID        string
	TestID    string
	GroupID   string
	PartID    string
	Number    sql.NullInt64
	Text      string
	Letter    string
	IsCorrect bool
}

// Rows is a whole test in flat form.
type Rows struct {
	Test    TestSummary
	Parts   []PartRow
	Groups  []GroupRow
	Items   []ItemRow
	Options []OptionRow
}

// groupRows is what a kind contributes for one group; ids and positions are
// stamped by Flatten.
type groupRows struct {
	text  sql.NullString
	items []ItemRow
	opts  []OptionRow
}

var newID = uuid.NewString

// Flatten renumbers t and turns it into rows. Every row gets a fresh id;
// the test keeps its id when it has one.
func Flatten(t Test) Rows {
	if t.ID == "" {
		t.ID = newID()
	}
	parts := Renumber(t.Parts)
	rows := Rows{Test: TestSummary{
		ID:               t.ID,
		TestMeta:         t.TestMeta,
		QuestionQuantity: Count(parts),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}}
	for _, p := range parts {
		pr := PartRow{
			ID:           newID(),
			TestID:       t.ID,
			PartNumber:   p.Number,
			Title:        nullString(p.Title),
			Content:      nullString(p.Content),
			ImageURL:     nullPtr(p.ImageURL),
			ListeningURL: nullPtr(p.ListeningURL),
		}
		rows.Parts = append(rows.Parts, pr)
		for j, g := range p.Groups {
			k := kindOf(g.Type)
			gr := k.flatten(g)
			grp := GroupRow{
				ID:            newID(),
				TestID:        t.ID,
				PartID:        pr.ID,
				Position:      j,
				Type:          string(g.Type),
				QuestionRange: k.count(g),
				Instruction:   nullString(g.Instruction),
				QuestionText:  gr.text,
			}
			rows.Groups = append(rows.Groups, grp)
			for n, it := range gr.items {
				it.ID, it.TestID, it.GroupID, it.PartID, it.Position = newID(), t.ID, grp.ID, pr.ID, n
				rows.Items = append(rows.Items, it)
			}
			for _, o := range gr.opts {
				o.ID, o.TestID, o.GroupID, o.PartID = newID(), t.ID, grp.ID, pr.ID
				rows.Options = append(rows.Options, o)
			}
		}
	}
	return rows
}

// Assemble rebuilds the tree from rows. Missing option rows are filled with
// empty placeholders so partially written data still loads.
func Assemble(rows Rows) Test {
	t := Test{
		ID:        rows.Test.ID,
		TestMeta:  rows.Test.TestMeta,
		CreatedAt: rows.Test.CreatedAt,
		UpdatedAt: rows.Test.UpdatedAt,
	}

	groupsByPart := map[string][]GroupRow{}
	for _, g := range rows.Groups {
		groupsByPart[g.PartID] = append(groupsByPart[g.PartID], g)
	}
	itemsByGroup := map[string][]ItemRow{}
	for _, it := range rows.Items {
		itemsByGroup[it.GroupID] = append(itemsByGroup[it.GroupID], it)
	}
	optsByGroup := map[string][]OptionRow{}
	for _, o := range rows.Options {
		optsByGroup[o.GroupID] = append(optsByGroup[o.GroupID], o)
	}

	partRows := slices.Clone(rows.Parts)
	slices.SortStableFunc(partRows, func(a, b PartRow) int { return cmp.Compare(a.PartNumber, b.PartNumber) })

	parts := make([]Part, 0, len(partRows))
	for _, pr := range partRows {
		p := Part{
			ID:           pr.ID,
			Number:       pr.PartNumber,
			Title:        pr.Title.String,
			Content:      pr.Content.String,
			ImageURL:     ptrOf(pr.ImageURL),
			ListeningURL: ptrOf(pr.ListeningURL),
		}
		grs := groupsByPart[pr.ID]
		slices.SortStableFunc(grs, func(a, b GroupRow) int { return cmp.Compare(a.Position, b.Position) })
		p.Groups = make([]Group, 0, len(grs))
		for _, gr := range grs {
			items := itemsByGroup[gr.ID]
			slices.SortStableFunc(items, func(a, b ItemRow) int { return cmp.Compare(a.Position, b.Position) })
			g := Group{ID: gr.ID, Type: GroupType(gr.Type), Instruction: gr.Instruction.String}
			p.Groups = append(p.Groups, kindOf(g.Type).assemble(g, gr.QuestionText.String, items, optsByGroup[gr.ID]))
		}
		parts = append(parts, p)
	}

	t.Parts = Renumber(parts)
	t.QuestionQuantity = Count(t.Parts)
	return t
}

// ---- per-kind row mapping ----

func (listKind) flatten(g Group) groupRows {
	out := groupRows{text: nullString(g.QuestionText)}
	for _, q := range g.Questions {
		out.items = append(out.items, questionRow(q))
	}
	return out
}

func (listKind) assemble(g Group, text string, items []ItemRow, _ []OptionRow) Group {
	g.QuestionText = text
	g.Questions = questionsFrom(items)
	return g
}

func (choiceKind) flatten(g Group) groupRows {
	out := groupRows{text: nullString(g.QuestionText)}
	for _, q := range g.Questions {
		row := questionRow(q)
		letter, text, ok := correctOption(q)
		if ok {
			row.CorrectAnswer = text
		}
		out.items = append(out.items, row)
		for _, o := range q.Options {
			if o.Letter == "" {
				continue
			}
			out.opts = append(out.opts, OptionRow{
				Number:    row.Number,
				Text:      o.Text,
				Letter:    o.Letter,
				IsCorrect: ok && o.Letter == letter,
			})
		}
	}
	return out
}

func (choiceKind) assemble(g Group, text string, items []ItemRow, opts []OptionRow) Group {
	g.QuestionText = text
	g.Questions = questionsFrom(items)
	idx := indexOptions(opts)
	for i := range g.Questions {
		g.Questions[i].Options = rebuildOptions(idx, items[i].Number, defaultLetters)
	}
	return g
}

// correctOption picks the single correct option of a multiple_choice
// question: the first option flagged correct, else the option whose letter
// or text equals the question's correct answer.
func correctOption(q Question) (letter, text string, ok bool) {
	for _, o := range q.Options {
		if o.IsCorrect && o.Letter != "" {
			return o.Letter, o.Text, true
		}
	}
	if q.CorrectAnswer == "" {
		return "", "", false
	}
	for _, o := range q.Options {
		if o.Letter == q.CorrectAnswer {
			return o.Letter, o.Text, true
		}
	}
	for _, o := range q.Options {
		if o.Text == q.CorrectAnswer {
			return o.Letter, o.Text, true
		}
	}
	return "", "", false
}

func (tableKind) flatten(g Group) groupRows {
	out := groupRows{text: nullString(strings.Join(g.Columns, "\n"))}
	for _, q := range g.Questions {
		row := questionRow(q)
		out.items = append(out.items, row)
		for _, c := range g.Columns {
			out.opts = append(out.opts, OptionRow{
				Number:    row.Number,
				Text:      c,
				Letter:    c,
				IsCorrect: c == q.CorrectAnswer,
			})
		}
	}
	return out
}

func (tableKind) assemble(g Group, text string, items []ItemRow, opts []OptionRow) Group {
	g.Columns = parseColumns(text)
	g.Questions = questionsFrom(items)
	idx := indexOptions(opts)
	for i := range g.Questions {
		g.Questions[i].Options = rebuildOptions(idx, items[i].Number, g.Columns)
	}
	return g
}

// parseColumns reads the single-letter lines of a table group's text,
// falling back to A-D.
func parseColumns(text string) []string {
	var cols []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 1 && line[0] >= 'A' && line[0] <= 'Z' {
			cols = append(cols, line)
		}
	}
	if len(cols) == 0 {
		return append([]string(nil), defaultLetters...)
	}
	return cols
}

func (blanksKind) flatten(g Group) groupRows {
	out := groupRows{text: nullString(g.Content)}
	for i, a := range g.Answers {
		out.items = append(out.items, ItemRow{
			Number:        sql.NullInt64{Int64: int64(g.StartNumber + i), Valid: true},
			QuestionText:  nullString(a),
			CorrectAnswer: a,
			IsCorrect:     true,
		})
	}
	return out
}

func (blanksKind) assemble(g Group, text string, items []ItemRow, _ []OptionRow) Group {
	g.Content = text
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, byNumber)
	g.Answers = make([]string, len(sorted))
	for i, it := range sorted {
		g.Answers[i] = it.CorrectAnswer
	}
	return g
}

func (gapsKind) flatten(g Group) groupRows {
	out := groupRows{text: nullString(g.Content)}
	for _, q := range g.Questions {
		out.items = append(out.items, ItemRow{
			Number:        nullInt(q.Number),
			QuestionText:  nullString(q.CorrectAnswer),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   nullPtr(q.Explanation),
			IsCorrect:     q.IsCorrect,
		})
	}
	return out
}

func (gapsKind) assemble(g Group, text string, items []ItemRow, _ []OptionRow) Group {
	g.Content = text
	qs := questionsFrom(items)
	for i := range qs {
		qs[i].Text = qs[i].CorrectAnswer
	}
	correct, distractors := partition(qs)
	slices.SortStableFunc(correct, func(a, b Question) int { return cmp.Compare(numberOr(a.Number), numberOr(b.Number)) })
	g.Questions = append(correct, distractors...)
	return g
}

// ---- helpers ----

func questionRow(q Question) ItemRow {
	return ItemRow{
		Number:        nullInt(q.Number),
		QuestionText:  nullString(q.Text),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   nullPtr(q.Explanation),
		IsCorrect:     true,
	}
}

func questionsFrom(items []ItemRow) []Question {
	qs := make([]Question, len(items))
	for i, it := range items {
		qs[i] = Question{
			ID:            it.ID,
			Number:        intFrom(it.Number),
			Text:          it.QuestionText.String,
			CorrectAnswer: it.CorrectAnswer,
			Explanation:   ptrOf(it.Explanation),
			IsCorrect:     it.IsCorrect,
		}
	}
	return qs
}

type optionKey struct {
	number int64
	letter string
}

func indexOptions(opts []OptionRow) map[optionKey]OptionRow {
	idx := make(map[optionKey]OptionRow, len(opts))
	for _, o := range opts {
		if !o.Number.Valid {
			continue
		}
		k := optionKey{o.Number.Int64, o.Letter}
		if _, dup := idx[k]; !dup {
			idx[k] = o
		}
	}
	return idx
}

// rebuildOptions returns one option per letter for the item numbered n,
// synthesizing an empty one where no row exists.
func rebuildOptions(idx map[optionKey]OptionRow, n sql.NullInt64, letters []string) []Option {
	out := make([]Option, len(letters))
	for i, l := range letters {
		o, ok := idx[optionKey{n.Int64, l}]
		if !ok || !n.Valid {
			out[i] = Option{Letter: l}
			continue
		}
		out[i] = Option{ID: o.ID, Letter: l, Text: o.Text, IsCorrect: o.IsCorrect}
	}
	return out
}

func byNumber(a, b ItemRow) int {
	switch {
	case a.Number.Valid && b.Number.Valid:
		return cmp.Compare(a.Number.Int64, b.Number.Int64)
	case a.Number.Valid:
		return -1
	case b.Number.Valid:
		return 1
	}
	return 0
}

func numberOr(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intFrom(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return intPtr(int(n.Int64))
}

func ptrOf(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
