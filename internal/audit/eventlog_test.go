package audit_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/ieltsprep/ieltsadmin/internal/audit"
	"github.com/ieltsprep/ieltsadmin/internal/db"
)

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer dbh.Close()
	l := audit.NewLog(dbh)

	for i, actor := range []string{"u1", "u2"} {
		if err := l.Append(ctx, actor, audit.TestSaved, "test-1", map[string]int{"rev": i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Append(ctx, "u1", audit.TestDeleted, "test-2", nil); err != nil {
		t.Fatal(err)
	}

	got, err := l.List(ctx, "test-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Actor != "u2" || got[0].Type != audit.TestSaved {
		t.Fatalf("events = %+v", got)
	}
	var data map[string]int
	if err := json.Unmarshal(got[0].Data, &data); err != nil || data["rev"] != 1 {
		t.Fatalf("data = %s (%v)", got[0].Data, err)
	}
	if got[0].Seq <= got[1].Seq {
		t.Fatalf("not newest first: %d, %d", got[0].Seq, got[1].Seq)
	}
}
