package dashboard

import (
	"context"
	"database/sql"
	"fmt"
)

type RecentUser struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	SubscriptionStatus string `json:"subscription_status"`
	JoinedAt           int64  `json:"joined_at"`
}

type RecentTest struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	CreatedAt  int64  `json:"created_at"`
}

type Stats struct {
	TotalUsers   int `json:"total_users"`
	PremiumUsers int `json:"premium_users"`
	TotalTests   int `json:"total_tests"`
	ActiveTests  int `json:"active_tests"`

	RecentUsers []RecentUser `json:"recent_users"`
	RecentTests []RecentTest `json:"recent_tests"`

	UsersByStatus     map[string]int `json:"users_by_status"`
	TestsByType       map[string]int `json:"tests_by_type"`
	TestsByDifficulty map[string]int `json:"tests_by_difficulty"`
}

const recentLimit = 5

type Service struct{ db *sql.DB }

func NewService(db *sql.DB) *Service { return &Service{db: db} }

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&st.TotalUsers, `SELECT COUNT(1) FROM users`, nil},
		{&st.PremiumUsers, `SELECT COUNT(1) FROM users WHERE subscription_status=$1`, []any{"premium"}},
		{&st.TotalTests, `SELECT COUNT(1) FROM test`, nil},
		{&st.ActiveTests, `SELECT COUNT(1) FROM test WHERE is_active=$1`, []any{true}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("count: %w", err)
		}
	}

	var err error
	if st.RecentUsers, err = s.recentUsers(ctx); err != nil {
		return Stats{}, err
	}
	if st.RecentTests, err = s.recentTests(ctx); err != nil {
		return Stats{}, err
	}
	if st.UsersByStatus, err = s.breakdown(ctx, "users", "subscription_status"); err != nil {
		return Stats{}, err
	}
	if st.TestsByType, err = s.breakdown(ctx, "test", "type"); err != nil {
		return Stats{}, err
	}
	if st.TestsByDifficulty, err = s.breakdown(ctx, "test", "difficulty"); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *Service) recentUsers(ctx context.Context) ([]RecentUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,email,full_name,subscription_status,joined_at FROM users ORDER BY joined_at DESC, id LIMIT $1`, recentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RecentUser{}
	for rows.Next() {
		var u RecentUser
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.SubscriptionStatus, &u.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Service) recentTests(ctx context.Context) ([]RecentTest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,type,difficulty,created_at FROM test ORDER BY created_at DESC, id LIMIT $1`, recentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RecentTest{}
	for rows.Next() {
		var t RecentTest
		if err := rows.Scan(&t.ID, &t.Title, &t.Type, &t.Difficulty, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// breakdown counts rows of table grouped by col. Both names are constants
// from this file.
func (s *Service) breakdown(ctx context.Context, table, col string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(1) FROM %s GROUP BY %s`, col, table, col))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}
