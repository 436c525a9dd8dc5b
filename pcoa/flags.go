// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcoa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFlag is returned for a two-valued flag that is neither
// "True" nor "False".
var ErrInvalidFlag = errors.New("invalid flag value")

// ParseFlag parses a string-encoded boolean parameter. Only the
// exact strings "True" and "False" are accepted.
func ParseFlag(name, value string) (bool, error) {
	switch value {
	case "True":
		return true, nil
	case "False":
		return false, nil
	}
	return false, fmt.Errorf("%w for `%s` parameter: %q; must be either `True` or `False`", ErrInvalidFlag, name, value)
}

// FormatFlag is the inverse of ParseFlag.
func FormatFlag(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// ParseBuckets parses a comma-separated list of bucket numbers, such
// as "3,10". The empty string yields no buckets.
func ParseBuckets(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad bucket %q in %q", f, s)
		}
		out = append(out, v)
	}
	return out, nil
}

// FormatBuckets is the inverse of ParseBuckets.
func FormatBuckets(buckets []float64) string {
	strs := make([]string, len(buckets))
	for i, b := range buckets {
		strs[i] = strconv.FormatFloat(b, 'g', -1, 64)
	}
	return strings.Join(strs, ",")
}
