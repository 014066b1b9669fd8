package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types written by the admin API.
const (
	TestSaved       = "TestSaved"
	TestUpdated     = "TestUpdated"
	TestDeleted     = "TestDeleted"
	UserUpdated     = "UserUpdated"
	UserDeleted     = "UserDeleted"
	SettingsUpdated = "SettingsUpdated"
)

type Event struct {
	Seq       int64           `json:"seq"`
	Actor     string          `json:"actor"`
	Type      string          `json:"type"`
	Ref       string          `json:"ref"` // natural key: test or user id
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// Log is an append-only event log. Saves are last-writer-wins; the log is
// how an overwritten edit can be traced afterwards.
type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Append(ctx context.Context, actor, typ, ref string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO event_log (actor, typ, ref, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		actor, typ, ref, string(buf), time.Now().Unix())
	return err
}

// List returns the events for ref, newest first.
func (l *Log) List(ctx context.Context, ref string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, actor, typ, ref, data, created_at FROM event_log
		 WHERE ref=$1 ORDER BY seq DESC LIMIT $2`, ref, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		var data string
		if err := rows.Scan(&e.Seq, &e.Actor, &e.Type, &e.Ref, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		out = append(out, e)
	}
	return out, rows.Err()
}
