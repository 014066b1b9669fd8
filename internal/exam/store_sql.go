package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore works on both sqlite and postgres; every query uses $N
// placeholders, which both drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const testColumns = `id,title,duration,difficulty,type,is_premium,is_active,question_quantity,created_at,updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanSummary(row scanner) (TestSummary, error) {
	var t TestSummary
	err := row.Scan(&t.ID, &t.Title, &t.Duration, &t.Difficulty, &t.Type,
		&t.IsPremium, &t.IsActive, &t.QuestionQuantity, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) (TestPage, error) {
	opts = clampPage(opts)

	var where []string
	var args []any
	if q := strings.TrimSpace(opts.Q); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		where = append(where, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(type) LIKE $%d)", len(args), len(args)))
	}
	if opts.Type != "" {
		args = append(args, opts.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	page := TestPage{Items: []TestSummary{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM test`+cond, args...).Scan(&page.Total); err != nil {
		return TestPage{}, err
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM test%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
			testColumns, cond, len(args)-1, len(args)),
		args...)
	if err != nil {
		return TestPage{}, err
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanSummary(rows)
		if err != nil {
			return TestPage{}, err
		}
		page.Items = append(page.Items, t)
	}
	return page, rows.Err()
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	sum, err := scanSummary(s.db.QueryRowContext(ctx, `SELECT `+testColumns+` FROM test WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Test{}, err
	}
	rows := Rows{Test: sum}
	if rows.Parts, err = s.loadParts(ctx, id); err != nil {
		return Test{}, fmt.Errorf("load parts: %w", err)
	}
	if rows.Groups, err = s.loadGroups(ctx, id); err != nil {
		return Test{}, fmt.Errorf("load groups: %w", err)
	}
	if rows.Items, err = s.loadItems(ctx, id); err != nil {
		return Test{}, fmt.Errorf("load questions: %w", err)
	}
	if rows.Options, err = s.loadOptions(ctx, id); err != nil {
		return Test{}, fmt.Errorf("load options: %w", err)
	}
	return Assemble(rows), nil
}

func (s *SQLStore) SaveTest(ctx context.Context, id string, t Test) (saved Test, err error) {
	if err := Validate(t); err != nil {
		return Test{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Test{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var created int64
	if id == "" {
		id = newID()
	} else {
		err = tx.QueryRowContext(ctx, `SELECT created_at FROM test WHERE id=$1`, id).Scan(&created)
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return Test{}, err
		}
	}

	rows := Flatten(stamp(id, t, created, time.Now().Unix()))
	if err = writeTestRow(ctx, tx, rows.Test, created == 0); err != nil {
		return Test{}, fmt.Errorf("write test: %w", err)
	}
	if err = deleteTree(ctx, tx, id); err != nil {
		return Test{}, fmt.Errorf("clear structure: %w", err)
	}
	if err = insertTree(ctx, tx, rows); err != nil {
		return Test{}, fmt.Errorf("write structure: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return Test{}, err
	}
	return Assemble(rows), nil
}

func (s *SQLStore) UpdateTest(ctx context.Context, id string, p TestPatch) (TestSummary, error) {
	if err := ValidatePatch(p); err != nil {
		return TestSummary{}, err
	}
	cur, err := scanSummary(s.db.QueryRowContext(ctx, `SELECT `+testColumns+` FROM test WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return TestSummary{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return TestSummary{}, err
	}
	next := applyPatch(cur, p)
	next.UpdatedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`UPDATE test SET title=$2, duration=$3, difficulty=$4, type=$5, is_premium=$6, is_active=$7, updated_at=$8 WHERE id=$1`,
		id, next.Title, next.Duration, next.Difficulty, next.Type, next.IsPremium, next.IsActive, next.UpdatedAt)
	if err != nil {
		return TestSummary{}, err
	}
	return next, nil
}

func (s *SQLStore) DeleteTest(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = deleteTree(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM test WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("test %s: %w", id, ErrNotFound)
		return err
	}
	return tx.Commit()
}

// ---- writes ----

func writeTestRow(ctx context.Context, tx *sql.Tx, t TestSummary, insert bool) error {
	if insert {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO test (`+testColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			t.ID, t.Title, t.Duration, t.Difficulty, t.Type, t.IsPremium, t.IsActive,
			t.QuestionQuantity, t.CreatedAt, t.UpdatedAt)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE test SET title=$2, duration=$3, difficulty=$4, type=$5, is_premium=$6, is_active=$7,
		 question_quantity=$8, updated_at=$9 WHERE id=$1`,
		t.ID, t.Title, t.Duration, t.Difficulty, t.Type, t.IsPremium, t.IsActive,
		t.QuestionQuantity, t.UpdatedAt)
	return err
}

// deleteTree removes every child row of a test, leaves first, so it works
// with or without foreign key enforcement.
func deleteTree(ctx context.Context, tx *sql.Tx, testID string) error {
	for _, table := range []string{"options", "questions", "question", "part"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE test_id=$1`, testID); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

func insertTree(ctx context.Context, tx *sql.Tx, rows Rows) error {
	for _, p := range rows.Parts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO part (id,test_id,part_number,title,content,image_url,listening_url)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.ID, p.TestID, p.PartNumber, p.Title, p.Content, p.ImageURL, p.ListeningURL); err != nil {
			return err
		}
	}
	for _, g := range rows.Groups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO question (id,test_id,part_id,position,type,question_range,instruction,question_text)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			g.ID, g.TestID, g.PartID, g.Position, g.Type, g.QuestionRange, g.Instruction, g.QuestionText); err != nil {
			return err
		}
	}
	for _, it := range rows.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id,test_id,question_id,part_id,position,question_number,question_text,correct_answer,explanation,is_correct)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			it.ID, it.TestID, it.GroupID, it.PartID, it.Position, it.Number, it.QuestionText,
			it.CorrectAnswer, it.Explanation, it.IsCorrect); err != nil {
			return err
		}
	}
	for _, o := range rows.Options {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO options (id,test_id,question_id,part_id,question_number,option_text,option_letter,is_correct)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			o.ID, o.TestID, o.GroupID, o.PartID, o.Number, o.Text, o.Letter, o.IsCorrect); err != nil {
			return err
		}
	}
	return nil
}

// ---- reads ----

func (s *SQLStore) loadParts(ctx context.Context, testID string) ([]PartRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_id,part_number,title,content,image_url,listening_url
		 FROM part WHERE test_id=$1 ORDER BY part_number`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PartRow
	for rows.Next() {
		var p PartRow
		if err := rows.Scan(&p.ID, &p.TestID, &p.PartNumber, &p.Title, &p.Content, &p.ImageURL, &p.ListeningURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadGroups(ctx context.Context, testID string) ([]GroupRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_id,part_id,position,type,question_range,instruction,question_text
		 FROM question WHERE test_id=$1 ORDER BY position`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GroupRow
	for rows.Next() {
		var g GroupRow
		if err := rows.Scan(&g.ID, &g.TestID, &g.PartID, &g.Position, &g.Type, &g.QuestionRange, &g.Instruction, &g.QuestionText); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadItems(ctx context.Context, testID string) ([]ItemRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_id,question_id,part_id,position,question_number,question_text,correct_answer,explanation,is_correct
		 FROM questions WHERE test_id=$1 ORDER BY position`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.ID, &it.TestID, &it.GroupID, &it.PartID, &it.Position, &it.Number,
			&it.QuestionText, &it.CorrectAnswer, &it.Explanation, &it.IsCorrect); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLStore) loadOptions(ctx context.Context, testID string) ([]OptionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_id,question_id,part_id,question_number,option_text,option_letter,is_correct
		 FROM options WHERE test_id=$1 ORDER BY question_number, option_letter`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OptionRow
	for rows.Next() {
		var o OptionRow
		if err := rows.Scan(&o.ID, &o.TestID, &o.GroupID, &o.PartID, &o.Number, &o.Text, &o.Letter, &o.IsCorrect); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
