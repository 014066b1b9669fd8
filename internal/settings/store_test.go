package settings_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ieltsprep/ieltsadmin/internal/db"
	"github.com/ieltsprep/ieltsadmin/internal/settings"
	"github.com/ieltsprep/ieltsadmin/internal/validation"
)

func TestSettingsDefaultsThenUpsert(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer dbh.Close()
	s := settings.NewStore(dbh)

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != settings.Defaults() {
		t.Fatalf("defaults = %+v", got)
	}

	want := settings.Settings{SiteName: "IELTS Online", SupportLink: "https://help.example.com", PremiumMonthlyPrice: 9.99, PremiumYearlyPrice: 89}
	for i := 0; i < 2; i++ {
		if _, err := s.Put(ctx, want); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	got, err = s.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got.UpdatedAt = 0
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	var verr *validation.Error
	if _, err := s.Put(ctx, settings.Settings{SiteName: "", SupportLink: "not a url", PremiumMonthlyPrice: -1}); !errors.As(err, &verr) || len(verr.Problems) != 3 {
		t.Fatalf("invalid settings: %v", err)
	}
}
