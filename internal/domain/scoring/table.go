// Package scoring holds the declarative threshold data shared by both
// assessment paths: ordered range tables, the immutable Thresholds snapshot,
// operator overrides and the generic assessment pipeline.
package scoring

import (
	"fmt"
	"math"

	"github.com/turtacn/VitalGuard/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Band / RangeTable
// ─────────────────────────────────────────────────────────────────────────────

// Band is one range of a RangeTable. A value falls into the first band whose
// Upper bound it is below (or equal to, when Inclusive). The last band of a
// table is the catch-all and its Upper bound is ignored.
type Band[O any] struct {
	Name      string  `mapstructure:"name" json:"name"`
	Upper     float64 `mapstructure:"upper" json:"upper,omitempty"`
	Inclusive bool    `mapstructure:"inclusive" json:"inclusive,omitempty"`
	Outcome   O       `mapstructure:",squash" json:"outcome"`
}

// contains reports whether v falls under the band's upper bound.
func (b Band[O]) contains(v float64) bool {
	if b.Inclusive {
		return v <= b.Upper
	}
	return v < b.Upper
}

// RangeTable is an ordered, non-overlapping range→outcome mapping. Because
// the terminal band is a catch-all, every value maps to exactly one band.
type RangeTable[O any] []Band[O]

// Index returns the position of the band v falls into, or -1 for an empty
// table.
func (t RangeTable[O]) Index(v float64) int {
	if len(t) == 0 {
		return -1
	}
	last := len(t) - 1
	for i := 0; i < last; i++ {
		if t[i].contains(v) {
			return i
		}
	}
	return last
}

// Lookup returns the band v falls into. It panics on an empty table; tables
// reach the scorers only after Validate.
func (t RangeTable[O]) Lookup(v float64) Band[O] {
	return t[t.Index(v)]
}

// Names returns the band names in order.
func (t RangeTable[O]) Names() []string {
	names := make([]string, len(t))
	for i, b := range t {
		names[i] = b.Name
	}
	return names
}

// Validate checks that the table is non-empty, that band names are present
// and unique, and that the bounds of the non-terminal bands strictly ascend.
// Two adjacent bands may share a bound only when the first is exclusive and
// the second inclusive, so that the bound itself belongs to the second.
func (t RangeTable[O]) Validate(path string) error {
	if len(t) == 0 {
		return errors.Newf(errors.ErrCodeInvalidThresholdTable, "%s: table is empty", path)
	}
	seen := make(map[string]struct{}, len(t))
	for i, b := range t {
		if b.Name == "" {
			return errors.Newf(errors.ErrCodeInvalidThresholdTable, "%s: band %d has no name", path, i)
		}
		if _, dup := seen[b.Name]; dup {
			return errors.Newf(errors.ErrCodeInvalidThresholdTable, "%s: duplicate band %q", path, b.Name)
		}
		seen[b.Name] = struct{}{}

		if i == len(t)-1 {
			break
		}
		if math.IsNaN(b.Upper) || math.IsInf(b.Upper, 0) {
			return errors.Newf(errors.ErrCodeInvalidThresholdTable, "%s.%s: bound must be finite", path, b.Name)
		}
		if i > 0 {
			prev := t[i-1]
			ascending := b.Upper > prev.Upper ||
				(b.Upper == prev.Upper && !prev.Inclusive && b.Inclusive)
			if !ascending {
				return errors.Newf(errors.ErrCodeInvalidThresholdTable,
					"%s.%s: bound %g does not follow %s (%g)", path, b.Name, b.Upper, prev.Name, prev.Upper)
			}
		}
	}
	return nil
}

// SetUpper replaces the upper bound of the named band in place. Callers
// only ever mutate tables of a cloned snapshot.
func (t *RangeTable[O]) SetUpper(band string, v float64) error {
	for i := range *t {
		if (*t)[i].Name == band {
			if i == len(*t)-1 {
				return errors.Newf(errors.ErrCodeUnknownOverrideKey, "band %q is the catch-all and has no bound", band)
			}
			(*t)[i].Upper = v
			return nil
		}
	}
	return errors.Newf(errors.ErrCodeUnknownOverrideKey, "no band %q", band)
}

// Upper returns the bound of the named band. The catch-all has none.
func (t RangeTable[O]) Upper(band string) (float64, bool) {
	for i, b := range t {
		if b.Name == band {
			return b.Upper, i < len(t)-1
		}
	}
	return 0, false
}

// Clone returns a copy of the table that shares no backing array.
func (t RangeTable[O]) Clone() RangeTable[O] {
	if t == nil {
		return nil
	}
	out := make(RangeTable[O], len(t))
	copy(out, t)
	return out
}

// sameNames reports whether two tables list the same band names in order.
func sameNames[A, B any](a RangeTable[A], b RangeTable[B]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

// boundSetter is the type-erased view of a RangeTable used by overrides.
type boundSetter interface {
	SetUpper(band string, v float64) error
	Upper(band string) (float64, bool)
	Names() []string
}

// ─────────────────────────────────────────────────────────────────────────────
// Numeric helpers
// ─────────────────────────────────────────────────────────────────────────────

// Round rounds half away from zero, which for the non-negative totals the
// engine produces is the same as rounding half up.
func Round(x float64) int {
	return int(math.Round(x))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FormatValue renders a measurement without trailing zeros.
func FormatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}
