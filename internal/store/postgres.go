package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tablewise/bistro-cli/internal/db"
	"github.com/tablewise/bistro-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"save_record": `INSERT INTO survey_records (id, business_type, fingerprint, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET business_type = $2, fingerprint = $3, payload = $4`,
	"get_record":      `SELECT payload FROM survey_records WHERE id = $1`,
	"save_assessment": `INSERT INTO assessments (id, record_id, fingerprint, payload, generated_at) VALUES ($1, $2, $3, $4, $5)`,
	"get_assessment":  `SELECT payload FROM assessments WHERE record_id = $1 ORDER BY generated_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
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
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS survey_records (
	id            TEXT PRIMARY KEY,
	business_type TEXT NOT NULL,
	fingerprint   TEXT NOT NULL,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assessments (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	record_id    TEXT NOT NULL REFERENCES survey_records(id),
	fingerprint  TEXT NOT NULL,
	payload      JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_survey_records_business_type ON survey_records(business_type);
CREATE INDEX IF NOT EXISTS idx_survey_records_fingerprint ON survey_records(fingerprint);
CREATE INDEX IF NOT EXISTS idx_assessments_record_id ON assessments(record_id);
CREATE INDEX IF NOT EXISTS idx_assessments_fingerprint ON assessments(fingerprint);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRecord(ctx context.Context, record model.SurveyRecord) (*model.SurveyRecord, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal record")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO survey_records (id, business_type, fingerprint, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET business_type = $2, fingerprint = $3, payload = $4`,
		record.ID, string(record.BusinessType), record.Fingerprint(), payload, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: save record %s", record.ID)
	}
	return &record, nil
}

// SaveRecords bulk-upserts a survey import through a temp table so a
// re-sync never duplicates rows.
func (s *PostgresStore) SaveRecords(ctx context.Context, records []model.SurveyRecord) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal record")
		}
		rows = append(rows, []any{
			record.ID, string(record.BusinessType), record.Fingerprint(), payload, now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "survey_records",
		Columns:      []string{"id", "business_type", "fingerprint", "payload", "created_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"business_type", "fingerprint", "payload"},
	}, rows)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.SurveyRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM survey_records WHERE id = $1`, id,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get record %s", id)
	}

	var record model.SurveyRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal record")
	}
	return &record, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.SurveyRecord, error) {
	query := `SELECT payload FROM survey_records WHERE true`
	args := []any{}
	argIdx := 1

	if filter.BusinessType != "" {
		query += fmt.Sprintf(` AND business_type = $%d`, argIdx)
		args = append(args, string(filter.BusinessType))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.SurveyRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		var record model.SurveyRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
		records = append(records, record)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func (s *PostgresStore) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal assessment")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessments (id, record_id, fingerprint, payload, generated_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), a.RecordID, a.Fingerprint, payload, a.GeneratedAt,
	)
	return eris.Wrapf(err, "postgres: save assessment for record %s", a.RecordID)
}

func (s *PostgresStore) GetAssessment(ctx context.Context, recordID string) (*model.Assessment, error) {
	return s.getAssessment(ctx,
		`SELECT payload FROM assessments WHERE record_id = $1 ORDER BY generated_at DESC LIMIT 1`,
		recordID)
}

func (s *PostgresStore) GetAssessmentByFingerprint(ctx context.Context, fingerprint string) (*model.Assessment, error) {
	return s.getAssessment(ctx,
		`SELECT payload FROM assessments WHERE fingerprint = $1 ORDER BY generated_at DESC LIMIT 1`,
		fingerprint)
}

func (s *PostgresStore) getAssessment(ctx context.Context, query, arg string) (*model.Assessment, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, query, arg).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "postgres: get assessment")
	}

	var a model.Assessment
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal assessment")
	}
	return &a, nil
}
