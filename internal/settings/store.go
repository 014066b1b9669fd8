package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ieltsprep/ieltsadmin/internal/validation"
)

// Settings is the single global row of system_settings.
type Settings struct {
	SiteName            string  `json:"site_name" validate:"required,max=100"`
	SupportLink         string  `json:"support_link" validate:"omitempty,url"`
	PremiumMonthlyPrice float64 `json:"premium_monthly_price" validate:"gte=0"`
	PremiumYearlyPrice  float64 `json:"premium_yearly_price" validate:"gte=0"`
	MaintenanceMode     bool    `json:"maintenance_mode"`
	AllowRegistration   bool    `json:"allow_registration"`
	UpdatedAt           int64   `json:"updated_at"`
}

// Defaults is what Get returns before anything was saved.
func Defaults() Settings {
	return Settings{SiteName: "IELTS Prep", AllowRegistration: true}
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Get(ctx context.Context) (Settings, error) {
	var st Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT site_name,support_link,premium_monthly_price,premium_yearly_price,maintenance_mode,allow_registration,updated_at
		 FROM system_settings WHERE id=1`).
		Scan(&st.SiteName, &st.SupportLink, &st.PremiumMonthlyPrice, &st.PremiumYearlyPrice,
			&st.MaintenanceMode, &st.AllowRegistration, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return st, nil
}

func (s *Store) Put(ctx context.Context, st Settings) (Settings, error) {
	if err := validation.Struct(st); err != nil {
		return Settings{}, err
	}
	st.UpdatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO system_settings (id,site_name,support_link,premium_monthly_price,premium_yearly_price,maintenance_mode,allow_registration,updated_at)
		 VALUES (1,$1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET site_name=EXCLUDED.site_name, support_link=EXCLUDED.support_link,
		   premium_monthly_price=EXCLUDED.premium_monthly_price, premium_yearly_price=EXCLUDED.premium_yearly_price,
		   maintenance_mode=EXCLUDED.maintenance_mode, allow_registration=EXCLUDED.allow_registration,
		   updated_at=EXCLUDED.updated_at`,
		st.SiteName, st.SupportLink, st.PremiumMonthlyPrice, st.PremiumYearlyPrice,
		st.MaintenanceMode, st.AllowRegistration, st.UpdatedAt)
	if err != nil {
		return Settings{}, err
	}
	return st, nil
}
