package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	sqlite "modernc.org/sqlite"

	"github.com/gifia/fraud-intel/internal/model"
)

// sqliteConstraintUnique is the SQLITE_CONSTRAINT_UNIQUE extended result code.
const sqliteConstraintUnique = 2067

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a SQLite database at the given path and configures
// WAL mode.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS fraud_cases (
	id                  TEXT PRIMARY KEY,
	time                TEXT NOT NULL DEFAULT '未知',
	region              TEXT NOT NULL DEFAULT '未知',
	characters          TEXT NOT NULL DEFAULT '未知',
	event               TEXT NOT NULL DEFAULT '未知',
	process             TEXT NOT NULL DEFAULT '待补充',
	result              TEXT NOT NULL DEFAULT '未知',
	source_url          TEXT NOT NULL UNIQUE,
	line_of_business    TEXT NOT NULL DEFAULT '',
	fraud_type          TEXT NOT NULL DEFAULT '',
	modus_operandi      TEXT NOT NULL DEFAULT '',
	red_flags           TEXT NOT NULL DEFAULT '',
	investigative_tips  TEXT NOT NULL DEFAULT '',
	underwriting_advice TEXT NOT NULL DEFAULT '',
	is_seed_case        INTEGER NOT NULL DEFAULT 0,
	last_shown_at       DATETIME,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_fraud_cases_created_at ON fraud_cases(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_fraud_cases_is_seed ON fraud_cases(is_seed_case);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveCase(ctx context.Context, rec *model.CaseRecord) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fraud_cases
		(id, time, region, characters, event, process, result, source_url,
		 line_of_business, fraud_type, modus_operandi, red_flags,
		 investigative_tips, underwriting_advice, is_seed_case, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Time, rec.Region, rec.Characters, rec.Event, rec.Process,
		rec.Result, rec.SourceURL, rec.LineOfBusiness, rec.FraudType,
		rec.ModusOperandi, rec.RedFlags, rec.InvestigativeTips,
		rec.UnderwritingAdvice, rec.IsSeedCase, createdAt,
	)
	if err != nil {
		var sqlErr *sqlite.Error
		if errors.As(err, &sqlErr) && sqlErr.Code() == sqliteConstraintUnique {
			return "", ErrDuplicateURL
		}
		return "", eris.Wrap(err, "sqlite: insert case")
	}
	return id, nil
}

const sqliteSelectCols = `SELECT id, time, region, characters, event, process, result,
	source_url, line_of_business, fraud_type, modus_operandi, red_flags,
	investigative_tips, underwriting_advice, is_seed_case, last_shown_at, created_at`

func (s *SQLiteStore) GetCaseByURL(ctx context.Context, url string) (*model.CaseRecord, error) {
	row := s.db.QueryRowContext(ctx,
		sqliteSelectCols+` FROM fraud_cases WHERE source_url = ?`, url)
	rec, err := scanSQLiteCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get case by url %s", url)
	}
	return rec, nil
}

func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]model.CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteSelectCols+` FROM fraud_cases ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list recent")
	}
	defer rows.Close()

	var out []model.CaseRecord
	for rows.Next() {
		rec, err := scanSQLiteCase(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan case")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate cases")
}

func (s *SQLiteStore) ListSourceURLs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_url FROM fraud_cases ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list source urls")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan url")
		}
		urls = append(urls, u)
	}
	return urls, eris.Wrap(rows.Err(), "sqlite: iterate urls")
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCase(row scanner) (*model.CaseRecord, error) {
	var rec model.CaseRecord
	err := row.Scan(&rec.ID, &rec.Time, &rec.Region, &rec.Characters,
		&rec.Event, &rec.Process, &rec.Result, &rec.SourceURL,
		&rec.LineOfBusiness, &rec.FraudType, &rec.ModusOperandi,
		&rec.RedFlags, &rec.InvestigativeTips, &rec.UnderwritingAdvice,
		&rec.IsSeedCase, &rec.LastShownAt, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
