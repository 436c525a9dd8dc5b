// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metadata reads and writes QIIME 2 style sample metadata
// files.
//
// A metadata file is a tab-separated table. The first non-blank line
// is the header; its first column holds sample IDs. Later lines
// beginning with "#" are comments or directives (such as
// "#q2:types") and are ignored.
package metadata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrFormat is wrapped by all errors reporting a malformed file.
var ErrFormat = errors.New("malformed metadata")

// idHeaders are the case-insensitive names accepted for the ID
// column.
var idHeaders = map[string]bool{
	"id":          true,
	"sampleid":    true,
	"sample id":   true,
	"sample-id":   true,
	"featureid":   true,
	"feature id":  true,
	"feature-id":  true,
	"#sampleid":   true,
	"#sample id":  true,
	"#featureid":  true,
	"#feature id": true,
	"#otuid":      true,
	"#otu id":     true,
	"sample_name": true,
}

// Table is a metadata table. Rows are kept in file order.
type Table struct {
	// IDs lists the sample IDs in file order.
	IDs []string

	// Columns lists the metadata column names, excluding the ID
	// column.
	Columns []string

	rows   map[string][]string
	colIdx map[string]int
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		rows:    make(map[string][]string),
		colIdx:  make(map[string]int),
	}
	for i, c := range columns {
		t.colIdx[c] = i
	}
	return t
}

// AddRow appends a row for sample id. Missing trailing values are
// empty.
func (t *Table) AddRow(id string, values ...string) error {
	if _, dup := t.rows[id]; dup {
		return fmt.Errorf("%w: duplicate sample ID %q", ErrFormat, id)
	}
	if len(values) > len(t.Columns) {
		return fmt.Errorf("%w: sample %q has %d values for %d columns", ErrFormat, id, len(values), len(t.Columns))
	}
	row := make([]string, len(t.Columns))
	copy(row, values)
	t.IDs = append(t.IDs, id)
	t.rows[id] = row
	return nil
}

// Has reports whether t has a row for sample id.
func (t *Table) Has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

// HasColumn reports whether t has column col.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.colIdx[col]
	return ok
}

// Get returns the value of column col for sample id. The empty
// string means the value is missing. ok is false if either the
// sample or the column does not exist.
func (t *Table) Get(id, col string) (val string, ok bool) {
	row, ok1 := t.rows[id]
	ci, ok2 := t.colIdx[col]
	if !ok1 || !ok2 {
		return "", false
	}
	return row[ci], true
}

// Float returns the numeric value of column col for sample id.
// Missing values are NaN.
func (t *Table) Float(id, col string) (float64, error) {
	s, ok := t.Get(id, col)
	if !ok {
		if !t.Has(id) {
			return 0, fmt.Errorf("no sample %q", id)
		}
		return 0, fmt.Errorf("no column %q", col)
	}
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("sample %q: column %q: %q is not numeric", id, col, s)
	}
	return v, nil
}

// Read parses a metadata file from r.
func Read(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 16<<20)
	var t *Table
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := splitLine(line)

		if t == nil {
			if strings.HasPrefix(f[0], "#") && !idHeaders[strings.ToLower(f[0])] {
				// Comment before the header.
				continue
			}
			if !idHeaders[strings.ToLower(f[0])] {
				return nil, fmt.Errorf("line %d: %w: unrecognized ID column header %q", lineno, ErrFormat, f[0])
			}
			seen := map[string]bool{}
			for _, c := range f[1:] {
				if c == "" || seen[c] {
					return nil, fmt.Errorf("line %d: %w: empty or duplicate column name %q", lineno, ErrFormat, c)
				}
				seen[c] = true
			}
			t = New(f[1:]...)
			continue
		}

		if strings.HasPrefix(f[0], "#") {
			// Comment or directive.
			continue
		}
		if f[0] == "" {
			return nil, fmt.Errorf("line %d: %w: empty sample ID", lineno, ErrFormat)
		}
		if err := t.AddRow(f[0], f[1:]...); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: no header", ErrFormat)
	}
	return t, nil
}

func splitLine(line string) []string {
	f := strings.Split(line, "\t")
	for i, s := range f {
		s = strings.TrimSpace(s)
		if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
			s = s[1 : len(s)-1]
		}
		f[i] = s
	}
	return f
}

// Write writes t to w as a tab-separated file with a "sample-id"
// header.
func Write(w io.Writer, t *Table) error {
	buf := bufio.NewWriter(w)
	buf.WriteString("sample-id")
	for _, c := range t.Columns {
		buf.WriteString("\t")
		buf.WriteString(c)
	}
	buf.WriteString("\n")
	for _, id := range t.IDs {
		buf.WriteString(id)
		for _, v := range t.rows[id] {
			buf.WriteString("\t")
			buf.WriteString(v)
		}
		buf.WriteString("\n")
	}
	return buf.Flush()
}
