// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcoa

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/metadata"
)

// ErrMissingSample is returned when a sample ID cannot be found in
// the ordination or the metadata.
var ErrMissingSample = errors.New("missing sample")

// Coords maps sample IDs to their positions on the first two
// ordination axes.
type Coords map[string][2]float64

// Sample is a metadata row retained for plotting.
type Sample struct {
	ID     string
	Bucket float64
	Week   float64
	Type   string
}

// loadSamples returns the metadata rows of the ordination's samples
// whose sample type is plotted, stably sorted by week. Samples with
// no week sort last.
func loadSamples(md *metadata.Table, ids []string, cfg *Config, himalaya bool) ([]Sample, error) {
	for _, col := range []string{cfg.Columns.Bucket, cfg.Columns.Week, cfg.Columns.SampleType} {
		if !md.HasColumn(col) {
			return nil, fmt.Errorf("metadata has no %q column", col)
		}
	}

	var missing []string
	for _, id := range ids {
		if !md.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %d ordination samples have no metadata: %s", ErrMissingSample, len(missing), strings.Join(missing, ", "))
	}

	types := cfg.sampleTypes(himalaya)
	var samples []Sample
	for _, id := range ids {
		typ, _ := md.Get(id, cfg.Columns.SampleType)
		if !types[typ] {
			continue
		}
		bucket, err := md.Float(id, cfg.Columns.Bucket)
		if err != nil {
			return nil, err
		}
		week, err := md.Float(id, cfg.Columns.Week)
		if err != nil {
			return nil, err
		}
		samples = append(samples, Sample{ID: id, Bucket: bucket, Week: week, Type: typ})
	}
	sort.SliceStable(samples, func(i, j int) bool {
		wi, wj := samples[i].Week, samples[j].Week
		if math.IsNaN(wj) {
			return !math.IsNaN(wi)
		}
		return wi < wj
	})
	return samples, nil
}

// filter returns the samples for which keep returns true, in order.
func filter(samples []Sample, keep func(s *Sample) bool) []Sample {
	var out []Sample
	for i := range samples {
		if keep(&samples[i]) {
			out = append(out, samples[i])
		}
	}
	return out
}

// present returns the IDs of samples that have ordination
// coordinates, in order.
func present(samples []Sample, coords Coords) []string {
	var ids []string
	for _, s := range samples {
		if _, ok := coords[s.ID]; ok {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// SwapAxis converts sample IDs to plot coordinates. Ordination axis
// 1 is X and axis 2 is Y, unless swap is set.
func SwapAxis(coords Coords, ids []string, swap bool) (xs, ys []float64, err error) {
	xs = make([]float64, len(ids))
	ys = make([]float64, len(ids))
	for i, id := range ids {
		c, ok := coords[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q has no ordination coordinates", ErrMissingSample, id)
		}
		if swap {
			xs[i], ys[i] = c[1], c[0]
		} else {
			xs[i], ys[i] = c[0], c[1]
		}
	}
	return xs, ys, nil
}

// BucketStart identifies the samples at the start of one bucket's
// composting run.
type BucketStart struct {
	// HE is the subject's fecal (self) sample at baseline.
	HE []string
	// Bulking is the bulking material added at baseline.
	Bulking []string
	// HEC is the first week's post-roll compost sample.
	HEC []string
}

// Highlights is the sample selection for highlighted buckets.
type Highlights struct {
	// Buckets lists the highlighted buckets in request order,
	// without duplicates.
	Buckets []float64

	// Trajectories maps each bucket to its post-roll samples
	// after baseline, in week order.
	Trajectories map[float64][]string

	// Starts maps each bucket to its starting samples.
	Starts map[float64]BucketStart

	// Selected lists Trajectories in Buckets order.
	Selected [][]string

	// Set is the union of all trajectories.
	Set map[string]bool
}

// HighlightBuckets selects the samples of the highlighted buckets.
// samples must be sorted by week. Every returned ID has ordination
// coordinates.
func HighlightBuckets(buckets []float64, samples []Sample, coords Coords, cfg *Config) *Highlights {
	h := &Highlights{
		Trajectories: make(map[float64][]string),
		Starts:       make(map[float64]BucketStart),
		Set:          make(map[string]bool),
	}
	st := cfg.SampleTypes
	for _, b := range buckets {
		if _, dup := h.Trajectories[b]; dup {
			continue
		}
		postRoll := filter(samples, func(s *Sample) bool {
			return s.Bucket == b && s.Type == st.PostRoll
		})
		traj := present(filter(postRoll, func(s *Sample) bool {
			return s.Week > cfg.Weeks.Baseline
		}), coords)
		if traj == nil {
			traj = []string{}
		}

		start := BucketStart{
			HE: present(filter(samples, func(s *Sample) bool {
				return s.Bucket == b && s.Type == st.Self && s.Week == cfg.Weeks.Baseline
			}), coords),
			Bulking: present(filter(samples, func(s *Sample) bool {
				return s.Bucket == b && s.Type == st.Bulking && s.Week == cfg.Weeks.Baseline
			}), coords),
			HEC: present(filter(postRoll, func(s *Sample) bool {
				return s.Week == cfg.Weeks.First
			}), coords),
		}

		h.Buckets = append(h.Buckets, b)
		h.Trajectories[b] = traj
		h.Starts[b] = start
		h.Selected = append(h.Selected, traj)
		for _, id := range traj {
			h.Set[id] = true
		}
	}
	return h
}
