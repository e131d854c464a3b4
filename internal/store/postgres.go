package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gifia/fraud-intel/internal/model"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// Pool is the subset of pgxpool.Pool the store uses. Satisfied by both
// *pgxpool.Pool and a pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// preparedStatements lists queries to prepare on each new connection for the
// hot paths of the pipeline: insert, dedup lookup and recent-window scans.
var preparedStatements = map[string]string{
	"insert_case": `INSERT INTO fraud_cases
		(id, time, region, characters, event, process, result, source_url,
		 line_of_business, fraud_type, modus_operandi, red_flags,
		 investigative_tips, underwriting_advice, is_seed_case, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
	"get_case_by_url": selectCaseCols + ` FROM fraud_cases WHERE source_url = $1`,
	"list_recent":     selectCaseCols + ` FROM fraud_cases ORDER BY created_at DESC LIMIT $1`,
	"list_urls":       `SELECT source_url FROM fraud_cases ORDER BY created_at DESC LIMIT $1`,
}

const selectCaseCols = `SELECT id, time, region, characters, event, process, result,
	source_url, line_of_business, fraud_type, modus_operandi, red_flags,
	investigative_tips, underwriting_advice, is_seed_case, last_shown_at, created_at`

// NewPostgresStore creates a PostgresStore with a connection pool.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
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
	is_seed_case        BOOLEAN NOT NULL DEFAULT FALSE,
	last_shown_at       TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fraud_cases_created_at ON fraud_cases(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_fraud_cases_is_seed ON fraud_cases(is_seed_case);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveCase(ctx context.Context, rec *model.CaseRecord) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO fraud_cases
		(id, time, region, characters, event, process, result, source_url,
		 line_of_business, fraud_type, modus_operandi, red_flags,
		 investigative_tips, underwriting_advice, is_seed_case, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		id, rec.Time, rec.Region, rec.Characters, rec.Event, rec.Process,
		rec.Result, rec.SourceURL, rec.LineOfBusiness, rec.FraudType,
		rec.ModusOperandi, rec.RedFlags, rec.InvestigativeTips,
		rec.UnderwritingAdvice, rec.IsSeedCase, createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", ErrDuplicateURL
		}
		return "", eris.Wrap(err, "postgres: insert case")
	}
	return id, nil
}

func (s *PostgresStore) GetCaseByURL(ctx context.Context, url string) (*model.CaseRecord, error) {
	row := s.pool.QueryRow(ctx,
		selectCaseCols+` FROM fraud_cases WHERE source_url = $1`, url)
	rec, err := scanPgCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get case by url %s", url)
	}
	return rec, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]model.CaseRecord, error) {
	rows, err := s.pool.Query(ctx,
		selectCaseCols+` FROM fraud_cases ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list recent")
	}
	defer rows.Close()

	var out []model.CaseRecord
	for rows.Next() {
		rec, err := scanPgCase(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan case")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate cases")
}

func (s *PostgresStore) ListSourceURLs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_url FROM fraud_cases ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list source urls")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "postgres: scan url")
		}
		urls = append(urls, u)
	}
	return urls, eris.Wrap(rows.Err(), "postgres: iterate urls")
}

func scanPgCase(row pgx.Row) (*model.CaseRecord, error) {
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
