package availability

import (
	"fmt"
	"sort"
)

// Bucket is one OTA room type fed by internal categories.
type Bucket struct {
	Name       string   `yaml:"name" json:"name"`
	Categories []string `yaml:"categories" json:"categories"`
}

// Mapping groups the buckets of one channel. Bucket order is output order.
type Mapping struct {
	Name    string   `yaml:"name" json:"name"`
	Prefix  string   `yaml:"prefix" json:"prefix"`
	Buckets []Bucket `yaml:"buckets" json:"buckets"`
}

// Validate rejects mappings without a name or with repeated bucket names.
func (m Mapping) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("ota mapping: name is required")
	}
	seen := make(map[string]bool, len(m.Buckets))
	for i, b := range m.Buckets {
		if b.Name == "" {
			return fmt.Errorf("ota mapping %s: bucket[%d] has no name", m.Name, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("ota mapping %s: duplicate bucket %q", m.Name, b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

// Clone returns a deep copy.
func (m Mapping) Clone() Mapping {
	out := Mapping{Name: m.Name, Prefix: m.Prefix, Buckets: make([]Bucket, len(m.Buckets))}
	for i, b := range m.Buckets {
		out.Buckets[i] = Bucket{Name: b.Name, Categories: append([]string(nil), b.Categories...)}
	}
	return out
}

// OTAMatrix is availability re-aggregated into channel buckets.
type OTAMatrix struct {
	Mapping  string           `json:"mapping"`
	Prefix   string           `json:"prefix"`
	Segments []Segment        `json:"segments"`
	Buckets  []string         `json:"buckets"`
	Counts   map[string][]int `json:"counts"`
	Unmapped []string         `json:"unmapped,omitempty"`
}

// Aggregate sums category counts per bucket and segment. Categories that are
// not in the matrix contribute 0 and are listed in Unmapped. A repeated
// bucket name keeps its first definition.
func Aggregate(m *Matrix, mapping Mapping) *OTAMatrix {
	out := &OTAMatrix{
		Mapping:  mapping.Name,
		Prefix:   mapping.Prefix,
		Segments: m.Segments,
		Counts:   make(map[string][]int, len(mapping.Buckets)),
	}

	unmapped := make(map[string]bool)
	for _, b := range mapping.Buckets {
		if _, dup := out.Counts[b.Name]; dup {
			continue
		}
		row := make([]int, len(m.Segments))
		for _, cat := range b.Categories {
			src, ok := m.Counts[cat]
			if !ok {
				unmapped[cat] = true
				continue
			}
			for i := range row {
				row[i] += src[i]
			}
		}
		out.Buckets = append(out.Buckets, b.Name)
		out.Counts[b.Name] = row
	}

	for cat := range unmapped {
		out.Unmapped = append(out.Unmapped, cat)
	}
	sort.Strings(out.Unmapped)
	return out
}
