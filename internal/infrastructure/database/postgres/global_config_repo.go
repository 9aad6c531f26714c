package postgres

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/VitalGuard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

// ThresholdKeyPrefix marks global_config rows that carry threshold
// overrides.
const ThresholdKeyPrefix = "thresholds."

// Querier is the subset of pgxpool.Pool and pgx.Tx the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// OverrideValidator rejects an override set that would not produce a valid
// threshold snapshot.
type OverrideValidator func(overrides map[string]float64) error

// GlobalConfigRepository exposes the thresholds.* rows of global_config as
// threshold overrides keyed without the prefix.
type GlobalConfigRepository struct {
	db       Querier
	validate OverrideValidator
	log      logging.Logger
}

func NewGlobalConfigRepository(db Querier, log logging.Logger) *GlobalConfigRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &GlobalConfigRepository{db: db, log: log}
}

// WithValidator makes Upsert and Delete check the resulting override set
// before writing.
func (r *GlobalConfigRepository) WithValidator(v OverrideValidator) *GlobalConfigRepository {
	r.validate = v
	return r
}

func (r *GlobalConfigRepository) Name() string { return "postgres" }

const selectOverrides = `
	SELECT key, value
	FROM global_config
	WHERE key LIKE $1
	ORDER BY key
`

// Overrides reads every threshold row. A value that is not a finite number
// is an error naming the row.
func (r *GlobalConfigRepository) Overrides(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.Query(ctx, selectOverrides, ThresholdKeyPrefix+"%")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query global_config")
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var key, text string
		if err := rows.Scan(&key, &text); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan global_config row")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Newf(errors.ErrCodeOverrideValue, "global_config %s: %q is not a number", key, text)
		}
		out[strings.TrimPrefix(key, ThresholdKeyPrefix)] = v
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate global_config")
	}
	return out, nil
}

const upsertOverride = `
	INSERT INTO global_config (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value, updated_at = NOW()
`

// Upsert writes one override.
func (r *GlobalConfigRepository) Upsert(ctx context.Context, key string, value float64) error {
	if err := r.check(ctx, func(m map[string]float64) { m[key] = value }); err != nil {
		return err
	}
	text := strconv.FormatFloat(value, 'g', -1, 64)
	if _, err := r.db.Exec(ctx, upsertOverride, ThresholdKeyPrefix+key, text); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert global_config")
	}
	r.log.Info("threshold override updated",
		logging.String("key", key),
		logging.Float64("value", value),
		logging.String("store", r.Name()),
	)
	return nil
}

const deleteOverride = `DELETE FROM global_config WHERE key = $1`

// Delete removes one override and reports whether a row existed.
func (r *GlobalConfigRepository) Delete(ctx context.Context, key string) (bool, error) {
	if err := r.check(ctx, func(m map[string]float64) { delete(m, key) }); err != nil {
		return false, err
	}
	tag, err := r.db.Exec(ctx, deleteOverride, ThresholdKeyPrefix+key)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete global_config")
	}
	removed := tag.RowsAffected() > 0
	if removed {
		r.log.Info("threshold override removed", logging.String("key", key), logging.String("store", r.Name()))
	}
	return removed, nil
}

func (r *GlobalConfigRepository) check(ctx context.Context, edit func(map[string]float64)) error {
	if r.validate == nil {
		return nil
	}
	current, err := r.Overrides(ctx)
	if err != nil {
		return err
	}
	edit(current)
	return r.validate(current)
}
