package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:ieltsadmin.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/ieltsadmin?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer; keeps per-connection pragmas and :memory: databases stable
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS test (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  duration INTEGER NOT NULL,
  difficulty TEXT NOT NULL,
  type TEXT NOT NULL,
  is_premium INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  question_quantity INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS part (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  part_number INTEGER NOT NULL,
  title TEXT,
  content TEXT,
  image_url TEXT,
  listening_url TEXT
);

CREATE TABLE IF NOT EXISTS question (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  part_id TEXT NOT NULL REFERENCES part(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  type TEXT NOT NULL,
  question_range INTEGER NOT NULL DEFAULT 0,
  instruction TEXT,
  question_text TEXT
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
  part_id TEXT NOT NULL REFERENCES part(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_number INTEGER,
  question_text TEXT,
  correct_answer TEXT NOT NULL DEFAULT '',
  explanation TEXT,
  is_correct INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS options (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
  part_id TEXT NOT NULL REFERENCES part(id) ON DELETE CASCADE,
  question_number INTEGER,
  option_text TEXT NOT NULL,
  option_letter TEXT NOT NULL,
  is_correct INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'user',
  subscription_status TEXT NOT NULL DEFAULT 'free',
  premium_start_date INTEGER,
  premium_until INTEGER,
  avatar_url TEXT,
  joined_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS system_settings (
  id INTEGER PRIMARY KEY,
  site_name TEXT NOT NULL,
  support_link TEXT NOT NULL DEFAULT '',
  premium_monthly_price REAL NOT NULL DEFAULT 0,
  premium_yearly_price REAL NOT NULL DEFAULT 0,
  maintenance_mode INTEGER NOT NULL DEFAULT 0,
  allow_registration INTEGER NOT NULL DEFAULT 1,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  actor TEXT NOT NULL DEFAULT '',
  typ TEXT NOT NULL,
  ref TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_part_test ON part(test_id);
CREATE INDEX IF NOT EXISTS idx_question_test ON question(test_id);
CREATE INDEX IF NOT EXISTS idx_questions_test ON questions(test_id);
CREATE INDEX IF NOT EXISTS idx_options_test ON options(test_id);
CREATE INDEX IF NOT EXISTS idx_event_log_ref ON event_log(ref);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS test (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  duration INTEGER NOT NULL,
  difficulty TEXT NOT NULL,
  type TEXT NOT NULL,
  is_premium BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  question_quantity INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS part (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  part_number INTEGER NOT NULL,
  title TEXT,
  content TEXT,
  image_url TEXT,
  listening_url TEXT
);

CREATE TABLE IF NOT EXISTS question (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  part_id TEXT NOT NULL REFERENCES part(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  type TEXT NOT NULL,
  question_range INTEGER NOT NULL DEFAULT 0,
  instruction TEXT,
  question_text TEXT
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
  part_id TEXT NOT NULL REFERENCES part(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_number INTEGER,
  question_text TEXT,
  correct_answer TEXT NOT NULL DEFAULT '',
  explanation TEXT,
  is_correct BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS options (
  id TEXT PRIMARY KEY,
  test_id TEXT NOT NULL REFERENCES test(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
  part_id TEXT NOT NULL REFERENCES part(id) ON DELETE CASCADE,
  question_number INTEGER,
  option_text TEXT NOT NULL,
  option_letter TEXT NOT NULL,
  is_correct BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'user',
  subscription_status TEXT NOT NULL DEFAULT 'free',
  premium_start_date BIGINT,
  premium_until BIGINT,
  avatar_url TEXT,
  joined_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS system_settings (
  id INTEGER PRIMARY KEY,
  site_name TEXT NOT NULL,
  support_link TEXT NOT NULL DEFAULT '',
  premium_monthly_price DOUBLE PRECISION NOT NULL DEFAULT 0,
  premium_yearly_price DOUBLE PRECISION NOT NULL DEFAULT 0,
  maintenance_mode BOOLEAN NOT NULL DEFAULT FALSE,
  allow_registration BOOLEAN NOT NULL DEFAULT TRUE,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  actor TEXT NOT NULL DEFAULT '',
  typ TEXT NOT NULL,
  ref TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_part_test ON part(test_id);
CREATE INDEX IF NOT EXISTS idx_question_test ON question(test_id);
CREATE INDEX IF NOT EXISTS idx_questions_test ON questions(test_id);
CREATE INDEX IF NOT EXISTS idx_options_test ON options(test_id);
CREATE INDEX IF NOT EXISTS idx_event_log_ref ON event_log(ref);
`
