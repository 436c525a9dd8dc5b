// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ordination reads and writes ordination results files in
// the scikit-bio text format.
//
// A results file consists of six sections in a fixed order:
//
//	Eigvals<TAB>n
//	Proportion explained<TAB>n
//	Species<TAB>rows<TAB>cols
//	Site<TAB>rows<TAB>cols
//	Biplot<TAB>rows<TAB>cols
//	Site constraints<TAB>rows<TAB>cols
//
// Each header is followed by its data lines and sections are
// separated by blank lines. Species, Site and Site constraints rows
// start with an ID; Biplot rows may omit it.
package ordination

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrFormat is wrapped by all errors reporting malformed input.
var ErrFormat = errors.New("malformed ordination results")

// Results is a parsed ordination results file.
type Results struct {
	// Eigvals holds one eigenvalue per ordination axis.
	Eigvals []float64

	// ProportionExplained holds the fraction of variation
	// explained by each ordination axis.
	ProportionExplained []float64

	// Features are the per-feature coordinates (the "Species"
	// section). This is usually empty for PCoA.
	Features Matrix

	// Samples are the per-sample coordinates (the "Site"
	// section).
	Samples Matrix

	Biplot            Matrix
	SampleConstraints Matrix
}

// Matrix is a labeled coordinate matrix. Row i of Data belongs to
// IDs[i]. IDs may be nil for unlabeled sections.
type Matrix struct {
	IDs  []string
	Data [][]float64
	Cols int
}

// Rows returns the number of rows in m.
func (m *Matrix) Rows() int {
	return len(m.Data)
}

var sectionNames = []string{
	"Eigvals",
	"Proportion explained",
	"Species",
	"Site",
	"Biplot",
	"Site constraints",
}

type lineReader struct {
	scanner *bufio.Scanner
	lineno  int
}

// next returns the next non-blank line, or io.EOF.
func (r *lineReader) next() (string, error) {
	for r.scanner.Scan() {
		r.lineno++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *lineReader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %w: %s", r.lineno, ErrFormat, fmt.Sprintf(format, args...))
}

// Read parses an ordination results file from r.
func Read(r io.Reader) (*Results, error) {
	lr := &lineReader{scanner: bufio.NewScanner(r)}
	lr.scanner.Buffer(nil, 64<<20)
	res := new(Results)

	for i, name := range sectionNames {
		line, err := lr.next()
		if err == io.EOF {
			if i >= 4 {
				// Older writers stop after Site.
				break
			}
			return nil, fmt.Errorf("%w: missing %q section", ErrFormat, name)
		} else if err != nil {
			return nil, err
		}
		f := strings.Split(line, "\t")
		if f[0] != name {
			return nil, lr.errorf("expected %q section, found %q", name, f[0])
		}

		switch name {
		case "Eigvals", "Proportion explained":
			if len(f) != 2 {
				return nil, lr.errorf("%s header must have one count", name)
			}
			n, err := strconv.Atoi(f[1])
			if err != nil || n < 0 {
				return nil, lr.errorf("bad %s count %q", name, f[1])
			}
			vec, err := readVector(lr, n)
			if err != nil {
				return nil, err
			}
			if name == "Eigvals" {
				res.Eigvals = vec
			} else {
				res.ProportionExplained = vec
			}

		default:
			if len(f) != 3 {
				return nil, lr.errorf("%s header must have row and column counts", name)
			}
			rows, err1 := strconv.Atoi(f[1])
			cols, err2 := strconv.Atoi(f[2])
			if err1 != nil || err2 != nil || rows < 0 || cols < 0 {
				return nil, lr.errorf("bad %s dimensions %q x %q", name, f[1], f[2])
			}
			m, err := readMatrix(lr, rows, cols, name != "Biplot")
			if err != nil {
				return nil, err
			}
			switch name {
			case "Species":
				res.Features = m
			case "Site":
				res.Samples = m
			case "Biplot":
				res.Biplot = m
			case "Site constraints":
				res.SampleConstraints = m
			}
		}
	}

	if len(res.ProportionExplained) != 0 && len(res.Eigvals) != 0 && len(res.ProportionExplained) != len(res.Eigvals) {
		return nil, fmt.Errorf("%w: %d eigenvalues but %d proportions explained", ErrFormat, len(res.Eigvals), len(res.ProportionExplained))
	}
	return res, nil
}

func readVector(lr *lineReader, n int) ([]float64, error) {
	if n == 0 {
		return []float64{}, nil
	}
	line, err := lr.next()
	if err == io.EOF {
		return nil, lr.errorf("expected %d values, found end of file", n)
	} else if err != nil {
		return nil, err
	}
	f := strings.Split(line, "\t")
	if len(f) != n {
		return nil, lr.errorf("expected %d values, found %d", n, len(f))
	}
	return parseFloats(lr, f)
}

func readMatrix(lr *lineReader, rows, cols int, ids bool) (Matrix, error) {
	m := Matrix{Cols: cols, Data: make([][]float64, 0, rows)}
	for i := 0; i < rows; i++ {
		line, err := lr.next()
		if err == io.EOF {
			return m, lr.errorf("expected %d rows, found %d", rows, i)
		} else if err != nil {
			return m, err
		}
		f := strings.Split(line, "\t")
		rowIDs := ids || len(f) == cols+1
		if rowIDs {
			if len(f) != cols+1 {
				return m, lr.errorf("expected ID and %d values, found %d fields", cols, len(f))
			}
			m.IDs = append(m.IDs, f[0])
			f = f[1:]
		} else if len(f) != cols {
			return m, lr.errorf("expected %d values, found %d", cols, len(f))
		}
		row, err := parseFloats(lr, f)
		if err != nil {
			return m, err
		}
		m.Data = append(m.Data, row)
	}
	return m, nil
}

func parseFloats(lr *lineReader, fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, lr.errorf("bad number %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// Coords2D returns each sample's position on the first two
// ordination axes, keyed by sample ID. Sample order is given by
// r.Samples.IDs.
func (r *Results) Coords2D() (map[string][2]float64, error) {
	if r.Samples.Cols < 2 {
		return nil, fmt.Errorf("%w: need at least 2 ordination axes, have %d", ErrFormat, r.Samples.Cols)
	}
	coords := make(map[string][2]float64, len(r.Samples.IDs))
	for i, id := range r.Samples.IDs {
		row := r.Samples.Data[i]
		if _, dup := coords[id]; dup {
			return nil, fmt.Errorf("%w: duplicate sample %q", ErrFormat, id)
		}
		if math.IsNaN(row[0]) || math.IsNaN(row[1]) || math.IsInf(row[0], 0) || math.IsInf(row[1], 0) {
			return nil, fmt.Errorf("%w: sample %q has non-finite coordinates", ErrFormat, id)
		}
		coords[id] = [2]float64{row[0], row[1]}
	}
	return coords, nil
}
