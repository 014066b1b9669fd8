package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ieltsprep/ieltsadmin/internal/validation"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLastAdmin          = errors.New("cannot remove the last admin")
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	FullName           string  `json:"full_name"`
	Role               string  `json:"role"`
	SubscriptionStatus string  `json:"subscription_status"`
	PremiumStartDate   *int64  `json:"premium_start_date"`
	PremiumUntil       *int64  `json:"premium_until"`
	AvatarURL          *string `json:"avatar_url"`
	JoinedAt           int64   `json:"joined_at"`
}

// Update is a partial change to a user; nil fields are left alone.
// ClearPremium drops both premium dates.
type Update struct {
	FullName           *string `json:"full_name" validate:"omitempty,min=1,max=120"`
	Role               *string `json:"role" validate:"omitempty,oneof=admin user"`
	SubscriptionStatus *string `json:"subscription_status" validate:"omitempty,oneof=free premium pending"`
	PremiumStartDate   *int64  `json:"premium_start_date" validate:"omitempty,min=0"`
	PremiumUntil       *int64  `json:"premium_until" validate:"omitempty,min=0"`
	ClearPremium       bool    `json:"clear_premium"`
}

type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=120"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

type ListOpts struct {
	Q      string // full name or email, case-insensitive
	Status string // subscription status filter
	Limit  int
	Offset int
}

type Page struct {
	Items []User `json:"items"`
	Total int    `json:"total"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const userColumns = `id,email,full_name,role,subscription_status,premium_start_date,premium_until,avatar_url,joined_at`

type scanner interface{ Scan(dest ...any) error }

func scanUser(row scanner) (User, error) {
	var u User
	var start, until sql.NullInt64
	var avatar sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.SubscriptionStatus, &start, &until, &avatar, &u.JoinedAt); err != nil {
		return User{}, err
	}
	if start.Valid {
		u.PremiumStartDate = &start.Int64
	}
	if until.Valid {
		u.PremiumUntil = &until.Int64
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	return u, nil
}

func (s *Store) List(ctx context.Context, opts ListOpts) (Page, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	var where []string
	var args []any
	if q := strings.TrimSpace(opts.Q); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		where = append(where, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		where = append(where, fmt.Sprintf("subscription_status = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	page := Page{Items: []User{}}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`+cond, args...).Scan(&page.Total); err != nil {
		return Page{}, err
	}
	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users%s ORDER BY joined_at DESC, id LIMIT $%d OFFSET $%d`,
			userColumns, cond, len(args)-1, len(args)),
		args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return Page{}, err
		}
		page.Items = append(page.Items, u)
	}
	return page, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return u, err
}

// Create inserts a user with a bcrypt-hashed password.
func (s *Store) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := validation.Struct(nu); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.insert(ctx, nu.Email, nu.FullName, string(hash), nu.Role)
}

func (s *Store) insert(ctx context.Context, email, name, hash, role string) (User, error) {
	if role == "" {
		role = RoleUser
	}
	u := User{
		ID:                 uuid.NewString(),
		Email:              strings.ToLower(strings.TrimSpace(email)),
		FullName:           name,
		Role:               role,
		SubscriptionStatus: "free",
		JoinedAt:           time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,email,full_name,password_hash,role,subscription_status,joined_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Email, u.FullName, hash, u.Role, u.SubscriptionStatus, u.JoinedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Update applies a validated partial change. A premium subscription needs
// both dates with start <= until.
func (s *Store) Update(ctx context.Context, id string, up Update) (User, error) {
	problems := validation.Problems(up)
	cur, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	next := apply(cur, up)
	problems = append(problems, premiumProblems(next)...)
	if err := validation.New(problems); err != nil {
		return User{}, err
	}
	if cur.Role == RoleAdmin && next.Role != RoleAdmin {
		if err := s.guardLastAdmin(ctx); err != nil {
			return User{}, err
		}
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET full_name=$2, role=$3, subscription_status=$4, premium_start_date=$5, premium_until=$6 WHERE id=$1`,
		id, next.FullName, next.Role, next.SubscriptionStatus, next.PremiumStartDate, next.PremiumUntil)
	if err != nil {
		return User{}, err
	}
	return next, nil
}

func apply(u User, up Update) User {
	if up.FullName != nil {
		u.FullName = *up.FullName
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
	if up.SubscriptionStatus != nil {
		u.SubscriptionStatus = *up.SubscriptionStatus
	}
	if up.ClearPremium {
		u.PremiumStartDate, u.PremiumUntil = nil, nil
	}
	if up.PremiumStartDate != nil {
		u.PremiumStartDate = up.PremiumStartDate
	}
	if up.PremiumUntil != nil {
		u.PremiumUntil = up.PremiumUntil
	}
	return u
}

func premiumProblems(u User) []string {
	if u.SubscriptionStatus != "premium" {
		return nil
	}
	if u.PremiumStartDate == nil || u.PremiumUntil == nil {
		return []string{"premium subscription needs premium_start_date and premium_until"}
	}
	if *u.PremiumStartDate > *u.PremiumUntil {
		return []string{"premium_start_date must not be after premium_until"}
	}
	return nil
}

func (s *Store) SetAvatar(ctx context.Context, id, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET avatar_url=$2 WHERE id=$1`, id, url)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == RoleAdmin {
		if err := s.guardLastAdmin(ctx); err != nil {
			return err
		}
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

func (s *Store) guardLastAdmin(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE role=$1`, RoleAdmin).Scan(&n); err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// Role returns the stored role of a user.
func (s *Store) Role(ctx context.Context, id string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return role, err
}

// Authenticate checks an email/password pair against the stored bcrypt hash.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	var hash string
	u, err := scanUserWithHash(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`,password_hash FROM users WHERE email=$1`,
		strings.ToLower(strings.TrimSpace(email))), &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

type hashScanner struct {
	row  scanner
	hash *string
}

func (h hashScanner) Scan(dest ...any) error { return h.row.Scan(append(dest, h.hash)...) }

func scanUserWithHash(row scanner, hash *string) (User, error) {
	return scanUser(hashScanner{row: row, hash: hash})
}

// EnsureAdmin creates an admin account when none exists. passHash is a
// bcrypt hash; when empty the password "admin" is used.
func (s *Store) EnsureAdmin(ctx context.Context, email, passHash string) (created bool, err error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE role=$1`, RoleAdmin).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if passHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			return false, err
		}
		passHash = string(h)
	}
	if _, err := s.insert(ctx, email, "Administrator", passHash, RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
