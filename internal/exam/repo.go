package exam

import "context"

type ListOpts struct {
	Q      string // matched against title and type, case-insensitive
	Type   string // reading|listening, optional
	Limit  int
	Offset int
}

type TestPage struct {
	Items []TestSummary `json:"items"`
	Total int           `json:"total"`
}

type Store interface {
	ListTests(ctx context.Context, opts ListOpts) (TestPage, error)
	GetTest(ctx context.Context, id string) (Test, error)

	// SaveTest validates t and replaces the whole stored structure of test
	// id, or creates a new test when id is empty. The last writer wins.
	SaveTest(ctx context.Context, id string, t Test) (Test, error)
	UpdateTest(ctx context.Context, id string, p TestPatch) (TestSummary, error)
	DeleteTest(ctx context.Context, id string) error
}

func clampPage(opts ListOpts) ListOpts {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}

// stamp sets the identity and timestamps t will be stored under. created is
// the creation time of the existing row, zero for a new test.
func stamp(id string, t Test, created, now int64) Test {
	t.ID = id
	t.CreatedAt = created
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return t
}

func applyPatch(s TestSummary, p TestPatch) TestSummary {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.Difficulty != nil {
		s.Difficulty = *p.Difficulty
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
	if p.IsPremium != nil {
		s.IsPremium = *p.IsPremium
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	return s
}
