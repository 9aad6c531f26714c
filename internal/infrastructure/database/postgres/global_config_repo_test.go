package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/VitalGuard/internal/testutil"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

// fakeRows replays fixed (key, value) pairs as pgx.Rows.
type fakeRows struct {
	data    [][2]string
	pos     int
	scanErr error
	iterErr error
	closed  bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.iterErr }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.pos-1]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	row := r.data[r.pos-1]
	return []any{row[0], row[1]}, nil
}

type execCall struct {
	sql  string
	args []any
}

// fakeQuerier serves one canned result set and records Exec calls.
type fakeQuerier struct {
	rows     *fakeRows
	queryErr error
	execTag  string
	execErr  error
	queries  []string
	execs    []execCall
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.queries = append(q.queries, fmt.Sprint(args...))
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	if q.rows == nil {
		return &fakeRows{}, nil
	}
	q.rows.pos = 0
	return q.rows, nil
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execs = append(q.execs, execCall{sql: sql, args: args})
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	return pgconn.NewCommandTag(q.execTag), nil
}

func TestGlobalConfigRepository_Overrides(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][2]string{
		{"thresholds.alerts.crisis_systolic", "175"},
		{"thresholds.alerts.spo2_severe", " 86.5 "},
	}}}
	repo := NewGlobalConfigRepository(q, nil)

	got, err := repo.Overrides(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"alerts.crisis_systolic": 175,
		"alerts.spo2_severe":     86.5,
	}, got)
	assert.Equal(t, []string{"thresholds.%"}, q.queries)
	assert.True(t, q.rows.closed)
	assert.Equal(t, "postgres", repo.Name())
}

func TestGlobalConfigRepository_Overrides_Errors(t *testing.T) {
	cases := []struct {
		name string
		q    *fakeQuerier
		code errors.ErrorCode
	}{
		{"query fails", &fakeQuerier{queryErr: stderrors.New("conn reset")}, errors.ErrCodeDatabaseError},
		{"scan fails", &fakeQuerier{rows: &fakeRows{data: [][2]string{{"thresholds.a", "1"}}, scanErr: stderrors.New("bad type")}}, errors.ErrCodeDatabaseError},
		{"iteration fails", &fakeQuerier{rows: &fakeRows{iterErr: stderrors.New("conn lost")}}, errors.ErrCodeDatabaseError},
		{"non-numeric value", &fakeQuerier{rows: &fakeRows{data: [][2]string{{"thresholds.alerts.spo2_severe", "low"}}}}, errors.ErrCodeOverrideValue},
		{"infinite value", &fakeQuerier{rows: &fakeRows{data: [][2]string{{"thresholds.alerts.spo2_severe", "+Inf"}}}}, errors.ErrCodeOverrideValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGlobalConfigRepository(tc.q, nil).Overrides(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.GetCode(err))
		})
	}
}

func TestGlobalConfigRepository_Upsert(t *testing.T) {
	q := &fakeQuerier{execTag: "INSERT 0 1"}
	log := testutil.NewMockLogger()
	repo := NewGlobalConfigRepository(q, log)

	require.NoError(t, repo.Upsert(context.Background(), "alerts.spo2_severe", 86))
	require.Len(t, q.execs, 1)
	assert.Contains(t, q.execs[0].sql, "ON CONFLICT (key) DO UPDATE")
	assert.Equal(t, []any{"thresholds.alerts.spo2_severe", "86"}, q.execs[0].args)
	assert.True(t, log.HasMessage("info", "threshold override updated"))
}

func TestGlobalConfigRepository_Upsert_Validated(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][2]string{{"thresholds.alerts.crisis_systolic", "175"}}}}
	var seen map[string]float64
	reject := errors.New(errors.ErrCodeWeightsSum, "weights must sum to 100")
	repo := NewGlobalConfigRepository(q, nil).WithValidator(func(o map[string]float64) error {
		seen = o
		return reject
	})

	err := repo.Upsert(context.Background(), "stability.weights.glucose", 90)
	assert.Equal(t, errors.ErrCodeWeightsSum, errors.GetCode(err))
	assert.Equal(t, map[string]float64{
		"alerts.crisis_systolic":    175,
		"stability.weights.glucose": 90,
	}, seen)
	assert.Empty(t, q.execs)
}

func TestGlobalConfigRepository_Upsert_ExecFails(t *testing.T) {
	q := &fakeQuerier{execErr: stderrors.New("read-only transaction")}
	err := NewGlobalConfigRepository(q, nil).Upsert(context.Background(), "alerts.spo2_severe", 86)
	assert.Equal(t, errors.ErrCodeDatabaseError, errors.GetCode(err))
}

func TestGlobalConfigRepository_Delete(t *testing.T) {
	q := &fakeQuerier{execTag: "DELETE 1"}
	repo := NewGlobalConfigRepository(q, nil)

	removed, err := repo.Delete(context.Background(), "alerts.spo2_severe")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []any{"thresholds.alerts.spo2_severe"}, q.execs[0].args)

	q.execTag = "DELETE 0"
	removed, err = repo.Delete(context.Background(), "alerts.spo2_severe")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGlobalConfigRepository_Delete_Validated(t *testing.T) {
	q := &fakeQuerier{
		rows:    &fakeRows{data: [][2]string{{"thresholds.alerts.spo2_severe", "86"}}},
		execTag: "DELETE 1",
	}
	var seen map[string]float64
	repo := NewGlobalConfigRepository(q, nil).WithValidator(func(o map[string]float64) error {
		seen = o
		return nil
	})

	removed, err := repo.Delete(context.Background(), "alerts.spo2_severe")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, seen)
}
