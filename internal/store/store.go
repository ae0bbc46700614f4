// Package store persists survey records and their assessments behind a
// driver-agnostic interface with sqlite and postgres implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tablewise/bistro-cli/internal/model"
)

// RecordFilter specifies criteria for listing survey records.
type RecordFilter struct {
	BusinessType model.BusinessType `json:"business_type,omitempty"`
	Limit        int                `json:"limit,omitempty"`
	Offset       int                `json:"offset,omitempty"`
}

// ErrNotFound is returned when a record or assessment does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the assessment pipeline.
type Store interface {
	// Survey records
	SaveRecord(ctx context.Context, record model.SurveyRecord) (*model.SurveyRecord, error)
	SaveRecords(ctx context.Context, records []model.SurveyRecord) (int, error)
	GetRecord(ctx context.Context, id string) (*model.SurveyRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.SurveyRecord, error)

	// Assessments
	SaveAssessment(ctx context.Context, a *model.Assessment) error
	GetAssessment(ctx context.Context, recordID string) (*model.Assessment, error)
	GetAssessmentByFingerprint(ctx context.Context, fingerprint string) (*model.Assessment, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
