package airfoil

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTable parses a three-column polar file: angle of attack in
// degrees, lift coefficient, drag coefficient, whitespace separated.
// Blank lines and lines starting with '#' are skipped. Any other
// malformed line is an error; polar files are loaded once at startup and
// a silent bad read would poison the whole run.
func ReadTable(r io.Reader) (Table, error) {
	var t Table
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if strings.HasPrefix(sc.Text(), "#") {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return Table{}, fmt.Errorf("line %d: expected 3 columns, got %d", line, len(fields))
		}
		vals, err := parseFloats(fields)
		if err != nil {
			return Table{}, fmt.Errorf("line %d: %w", line, err)
		}
		t.Alpha = append(t.Alpha, vals[0])
		t.Cl = append(t.Cl, vals[1])
		t.Cd = append(t.Cd, vals[2])
	}
	if err := sc.Err(); err != nil {
		return Table{}, err
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// ReadClCdTables parses separate lift and drag files, each two columns
// (angle, coefficient), and merges them onto a common grid. The finer of
// the two angle grids is kept and the other curve is interpolated onto
// it, so resampling only ever smooths the sparser curve.
func ReadClCdTables(clr, cdr io.Reader) (Table, error) {
	clAlpha, cl, err := readPairs(clr)
	if err != nil {
		return Table{}, fmt.Errorf("lift table: %w", err)
	}
	cdAlpha, cd, err := readPairs(cdr)
	if err != nil {
		return Table{}, fmt.Errorf("drag table: %w", err)
	}

	var t Table
	if len(clAlpha) > len(cdAlpha) {
		t.Alpha = clAlpha
		t.Cl = cl
		t.Cd = make([]float64, len(clAlpha))
		for i, a := range clAlpha {
			t.Cd[i] = Interp(a, cdAlpha, cd)
		}
	} else {
		t.Alpha = cdAlpha
		t.Cd = cd
		t.Cl = make([]float64, len(cdAlpha))
		for i, a := range cdAlpha {
			t.Cl[i] = Interp(a, clAlpha, cl)
		}
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func readPairs(r io.Reader) (xs, ys []float64, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if strings.HasPrefix(sc.Text(), "#") {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		vals, err := parseFloats(fields)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		xs = append(xs, vals[0])
		ys = append(ys, vals[1])
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(xs) < 2 {
		return nil, nil, errTableTooShort
	}
	return xs, ys, nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		vals[i] = v
	}
	return vals, nil
}
