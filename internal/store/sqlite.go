package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tablewise/bistro-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
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
CREATE TABLE IF NOT EXISTS survey_records (
	id            TEXT PRIMARY KEY,
	business_type TEXT NOT NULL,
	fingerprint   TEXT NOT NULL,
	payload       TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assessments (
	id           TEXT PRIMARY KEY,
	record_id    TEXT NOT NULL REFERENCES survey_records(id),
	fingerprint  TEXT NOT NULL,
	payload      TEXT NOT NULL,
	generated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_survey_records_business_type ON survey_records(business_type);
CREATE INDEX IF NOT EXISTS idx_survey_records_fingerprint ON survey_records(fingerprint);
CREATE INDEX IF NOT EXISTS idx_assessments_record_id ON assessments(record_id);
CREATE INDEX IF NOT EXISTS idx_assessments_fingerprint ON assessments(fingerprint);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, record model.SurveyRecord) (*model.SurveyRecord, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO survey_records (id, business_type, fingerprint, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET business_type = excluded.business_type,
		   fingerprint = excluded.fingerprint, payload = excluded.payload`,
		record.ID, string(record.BusinessType), record.Fingerprint(), string(payload), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: save record %s", record.ID)
	}
	return &record, nil
}

func (s *SQLiteStore) SaveRecords(ctx context.Context, records []model.SurveyRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	saved := 0
	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return saved, eris.Wrap(err, "sqlite: marshal record")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO survey_records (id, business_type, fingerprint, payload, created_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET business_type = excluded.business_type,
			   fingerprint = excluded.fingerprint, payload = excluded.payload`,
			record.ID, string(record.BusinessType), record.Fingerprint(), string(payload), now,
		); err != nil {
			return saved, eris.Wrapf(err, "sqlite: save record %s", record.ID)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return saved, eris.Wrap(err, "sqlite: commit tx")
	}
	return saved, nil
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*model.SurveyRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM survey_records WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get record %s", id)
	}

	var record model.SurveyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal record")
	}
	return &record, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.SurveyRecord, error) {
	query := `SELECT payload FROM survey_records WHERE 1=1`
	var args []any

	if filter.BusinessType != "" {
		query += ` AND business_type = ?`
		args = append(args, string(filter.BusinessType))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.SurveyRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		var record model.SurveyRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
		records = append(records, record)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

func (s *SQLiteStore) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal assessment")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, record_id, fingerprint, payload, generated_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), a.RecordID, a.Fingerprint, string(payload), a.GeneratedAt,
	)
	return eris.Wrapf(err, "sqlite: save assessment for record %s", a.RecordID)
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, recordID string) (*model.Assessment, error) {
	return s.getAssessment(ctx,
		`SELECT payload FROM assessments WHERE record_id = ? ORDER BY generated_at DESC LIMIT 1`,
		recordID)
}

func (s *SQLiteStore) GetAssessmentByFingerprint(ctx context.Context, fingerprint string) (*model.Assessment, error) {
	return s.getAssessment(ctx,
		`SELECT payload FROM assessments WHERE fingerprint = ? ORDER BY generated_at DESC LIMIT 1`,
		fingerprint)
}

func (s *SQLiteStore) getAssessment(ctx context.Context, query, arg string) (*model.Assessment, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get assessment")
	}

	var a model.Assessment
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal assessment")
	}
	return &a, nil
}
