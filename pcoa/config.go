// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcoa

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config describes the study's categorical structure: which metadata
// columns to read, the sample type labels, and the bucket codes of
// each sample source.
type Config struct {
	Columns     Columns     `yaml:"columns"`
	SampleTypes SampleTypes `yaml:"sample_types"`
	Buckets     Buckets     `yaml:"buckets"`
	Weeks       Weeks       `yaml:"weeks"`
}

// Columns names the metadata columns used for grouping.
type Columns struct {
	Bucket     string `yaml:"bucket"`
	Week       string `yaml:"week"`
	SampleType string `yaml:"sample_type"`
}

// SampleTypes holds the sample type labels.
type SampleTypes struct {
	Soil        string `yaml:"soil"`
	FoodCompost string `yaml:"food_compost"`
	Self        string `yaml:"self"`
	PostRoll    string `yaml:"post_roll"`
	Bulking     string `yaml:"bulking"`
	PitToilet   string `yaml:"pit_toilet"`
	Himalaya    string `yaml:"himalaya"`
}

// Buckets holds the bucket codes. Subjects are numbered
// FirstSubject through LastSubject; the other sources share a single
// code each.
type Buckets struct {
	Soil         float64 `yaml:"soil"`
	FirstSubject float64 `yaml:"first_subject"`
	LastSubject  float64 `yaml:"last_subject"`
	FoodCompost  float64 `yaml:"food_compost"`
	Himalaya     float64 `yaml:"himalaya"`
	PitToilet    float64 `yaml:"pit_toilet"`
}

// Weeks holds the sampling schedule. Baseline is the week of the
// inputs (fecal and bulking material); composting runs from First to
// Last.
type Weeks struct {
	Baseline float64 `yaml:"baseline"`
	First    float64 `yaml:"first"`
	Last     float64 `yaml:"last"`
}

// DefaultConfig returns the configuration of the gut-to-soil study.
func DefaultConfig() *Config {
	return &Config{
		Columns: Columns{
			Bucket:     "Bucket",
			Week:       "Week",
			SampleType: "SampleType2",
		},
		SampleTypes: SampleTypes{
			Soil:        "EMP-Soils",
			FoodCompost: "Food-Compost",
			Self:        "Self Sample",
			PostRoll:    "Compost Post-Roll",
			Bulking:     "Bulking Material",
			PitToilet:   "Pit Toilet",
			Himalaya:    "Himalaya",
		},
		Buckets: Buckets{
			Soil:         0,
			FirstSubject: 1,
			LastSubject:  16,
			FoodCompost:  17,
			Himalaya:     18,
			PitToilet:    19,
		},
		Weeks: Weeks{
			Baseline: 0,
			First:    1,
			Last:     52,
		},
	}
}

// LoadConfig reads a YAML configuration from r. Keys absent from r
// keep their default values. Unknown keys are an error.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that c is internally consistent.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"columns.bucket":            c.Columns.Bucket,
		"columns.week":              c.Columns.Week,
		"columns.sample_type":       c.Columns.SampleType,
		"sample_types.self":         c.SampleTypes.Self,
		"sample_types.post_roll":    c.SampleTypes.PostRoll,
		"sample_types.bulking":      c.SampleTypes.Bulking,
		"sample_types.soil":         c.SampleTypes.Soil,
		"sample_types.food_compost": c.SampleTypes.FoodCompost,
	} {
		if v == "" {
			return fmt.Errorf("config: %s must not be empty", name)
		}
	}
	if c.Buckets.FirstSubject > c.Buckets.LastSubject {
		return fmt.Errorf("config: first subject bucket %v is after last %v", c.Buckets.FirstSubject, c.Buckets.LastSubject)
	}
	if c.Weeks.First > c.Weeks.Last {
		return fmt.Errorf("config: first week %v is after last week %v", c.Weeks.First, c.Weeks.Last)
	}
	return nil
}

// isSubject reports whether bucket is a subject's bucket.
func (c *Config) isSubject(bucket float64) bool {
	return bucket >= c.Buckets.FirstSubject && bucket <= c.Buckets.LastSubject
}

// sampleTypes returns the sample types kept for plotting.
func (c *Config) sampleTypes(himalaya bool) map[string]bool {
	st := c.SampleTypes
	types := map[string]bool{
		st.Soil:        true,
		st.FoodCompost: true,
		st.Self:        true,
		st.PostRoll:    true,
		st.Bulking:     true,
		st.PitToilet:   true,
	}
	if himalaya {
		types[st.Himalaya] = true
	}
	delete(types, "")
	return types
}
