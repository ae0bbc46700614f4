package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/tablewise/bistro-cli/internal/model"
)

// Engine runs the full assessment pipeline with an injected config and
// result cache. It is safe for concurrent use: every stage is pure and
// the cache synchronizes itself.
type Engine struct {
	cfg   Config
	cache *Cache
}

// New validates the config and returns an Engine. A nil cache gets a
// fresh one.
func New(cfg Config, cache *Cache) (*Engine, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Engine{cfg: cfg, cache: cache}, nil
}

// Config returns the engine's tuning.
func (e *Engine) Config() Config { return e.cfg }

// Assess derives the KPI set, composite score, and suggestions for one
// survey record, memoized by the record's content fingerprint. It never
// fails: degraded input produces a degraded (or insufficient-data)
// result, not an error.
func (e *Engine) Assess(record model.SurveyRecord) *model.Assessment {
	fp := record.Fingerprint()
	if cached, ok := e.cache.Get(fp); ok {
		zap.L().Debug("engine: cache hit", zap.String("fingerprint", fp))
		return stamped(cached, record.ID)
	}

	sanitized := Sanitize(record)
	bench := e.cfg.ResolveBenchmark(sanitized.BusinessType)
	kpi := Derive(sanitized, bench, e.cfg)
	composite := Score(sanitized, kpi, e.cfg)
	suggestions := Suggest(sanitized, kpi, composite.Normalized)

	a := &model.Assessment{
		RecordID:    record.ID,
		Fingerprint: fp,
		KPI:         kpi,
		Composite:   composite,
		Suggestions: suggestions,
		GeneratedAt: time.Now().UTC(),
	}

	zap.L().Info("engine: record assessed",
		zap.String("record_id", record.ID),
		zap.Int("score", composite.Score),
		zap.String("level", string(composite.Level)),
		zap.Int("suggestions", len(suggestions)),
	)

	return stamped(e.cache.Put(fp, a), record.ID)
}

// stamped returns the cached assessment as-is when it already carries
// the caller's record ID. Otherwise it returns a shallow copy with the
// ID swapped in: the fingerprint deliberately ignores identity, so a
// content-identical record must not inherit another record's ID.
func stamped(a *model.Assessment, recordID string) *model.Assessment {
	if a.RecordID == recordID {
		return a
	}
	dup := *a
	dup.RecordID = recordID
	return &dup
}
