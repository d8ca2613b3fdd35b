// Package airfoil provides section lift and drag polars for the blade
// element solver. A polar maps angle of attack to the lift and drag
// coefficients of a two-dimensional section. Two implementations are
// provided: TablePolar interpolates measured data read from text files,
// and ThinAirfoil is a closed-form model blending a thin-airfoil linear
// regime into a flat-plate post-stall regime.
package airfoil

import (
	"errors"
	"fmt"
)

// Polar returns the section lift and drag coefficients at an angle of
// attack given in degrees. Implementations must accept any angle and
// return finite coefficients; angles outside the fitted or tabulated
// range are clamped rather than extrapolated.
type Polar interface {
	Coefficients(alpha float64) (cl, cd float64)
}

// Interp linearly interpolates the sampled curve (xs, ys) at x. Outside
// the sampled range the end values are returned, so the curve is clamped
// rather than extrapolated. xs must be sorted ascending; xs and ys must
// have equal length.
func Interp(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	for i := 0; i < n-1; i++ {
		if x < xs[i+1] {
			t := (x - xs[i]) / (xs[i+1] - xs[i])
			return ys[i] + t*(ys[i+1]-ys[i])
		}
	}
	return ys[n-1]
}

// Table holds one sampled polar: lift and drag coefficients over a
// common grid of angles of attack in degrees.
type Table struct {
	Alpha []float64 `json:"alpha"`
	Cl    []float64 `json:"cl"`
	Cd    []float64 `json:"cd"`
}

// Validate reports whether the table is usable for interpolation: at
// least two samples, matching column lengths, and strictly increasing
// angles.
func (t Table) Validate() error {
	if len(t.Alpha) < 2 {
		return errTableTooShort
	}
	if len(t.Cl) != len(t.Alpha) || len(t.Cd) != len(t.Alpha) {
		return errTableRagged
	}
	for i := 1; i < len(t.Alpha); i++ {
		if t.Alpha[i] <= t.Alpha[i-1] {
			return errTableUnsorted
		}
	}
	return nil
}

// TablePolar evaluates one or more sampled polars and averages them.
// Supplying several tables, for example the same section at different
// Reynolds numbers, gives a crude blend across the operating range.
type TablePolar struct {
	tables []Table
}

// NewTablePolar builds a polar from sampled tables. At least one table
// is required and each table must validate.
func NewTablePolar(tables ...Table) (*TablePolar, error) {
	if len(tables) == 0 {
		return nil, errNoTables
	}
	for i, t := range tables {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}
	}
	return &TablePolar{tables: tables}, nil
}

// Coefficients interpolates each table at alpha (degrees, clamped to the
// tabulated range) and returns the mean lift and drag coefficients.
func (p *TablePolar) Coefficients(alpha float64) (cl, cd float64) {
	for _, t := range p.tables {
		cl += Interp(alpha, t.Alpha, t.Cl)
		cd += Interp(alpha, t.Alpha, t.Cd)
	}
	n := float64(len(p.tables))
	return cl / n, cd / n
}

var (
	errTableTooShort = errors.New("polar table needs at least two samples")
	errTableRagged   = errors.New("polar table columns differ in length")
	errTableUnsorted = errors.New("polar table angles must be strictly increasing")
	errNoTables      = errors.New("no polar tables supplied")
)
