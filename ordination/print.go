// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ordination

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Write writes res to w in the format accepted by Read.
func Write(w io.Writer, res *Results) (err error) {
	buf := bufio.NewWriter(w)
	defer func() {
		if ferr := buf.Flush(); err == nil {
			err = ferr
		}
	}()

	writeVector(buf, "Eigvals", res.Eigvals)
	buf.WriteString("\n")
	writeVector(buf, "Proportion explained", res.ProportionExplained)
	buf.WriteString("\n")

	for i, m := range []*Matrix{&res.Features, &res.Samples, &res.Biplot, &res.SampleConstraints} {
		if m.IDs != nil && len(m.IDs) != len(m.Data) {
			return fmt.Errorf("%s: %d IDs for %d rows", sectionNames[i+2], len(m.IDs), len(m.Data))
		}
		fmt.Fprintf(buf, "%s\t%d\t%d\n", sectionNames[i+2], m.Rows(), m.Cols)
		for r, row := range m.Data {
			if len(row) != m.Cols {
				return fmt.Errorf("%s: row %d has %d values, want %d", sectionNames[i+2], r, len(row), m.Cols)
			}
			if m.IDs != nil {
				buf.WriteString(m.IDs[r])
				buf.WriteString("\t")
			}
			buf.WriteString(formatFloats(row))
			buf.WriteString("\n")
		}
		if i < 3 {
			buf.WriteString("\n")
		}
	}
	return nil
}

func writeVector(w *bufio.Writer, name string, vec []float64) {
	fmt.Fprintf(w, "%s\t%d\n", name, len(vec))
	if len(vec) > 0 {
		w.WriteString(formatFloats(vec))
		w.WriteString("\n")
	}
}

func formatFloats(xs []float64) string {
	strs := make([]string, len(xs))
	for i, x := range xs {
		strs[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(strs, "\t")
}
