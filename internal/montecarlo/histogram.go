package montecarlo

import (
	"fmt"
	"slices"
)

// Bucket is one histogram entry: the number of trials that took Rounds rounds.
type Bucket struct {
	Rounds int `json:"rounds" yaml:"rounds"`
	Count  int `json:"count" yaml:"count"`
}

// Histogram counts how many trials finished after each number of rounds.
//
// Invariant: Total() == sum of all counts; every key >= 1 when built from games.
type Histogram struct {
	counts map[int]int
	total  int
}

// NewHistogram returns an empty histogram.
func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[int]int)}
}

// FromSamples builds a histogram from raw outcomes.
func FromSamples(samples []int) *Histogram {
	h := NewHistogram()
	for _, s := range samples {
		h.Add(s)
	}
	return h
}

// FromBuckets rebuilds a histogram from stored buckets.
//
// Precondition: every bucket count is >= 0.
func FromBuckets(buckets []Bucket) (*Histogram, error) {
	h := NewHistogram()
	for _, b := range buckets {
		if b.Count < 0 {
			return nil, fmt.Errorf("bucket %d has negative count %d", b.Rounds, b.Count)
		}
		if b.Count == 0 {
			continue
		}
		h.counts[b.Rounds] += b.Count
		h.total += b.Count
	}
	return h, nil
}

// Add records one trial that took rounds rounds.
func (h *Histogram) Add(rounds int) {
	h.counts[rounds]++
	h.total++
}

// Count returns the number of trials that took rounds rounds.
func (h *Histogram) Count(rounds int) int { return h.counts[rounds] }

// Total returns the number of recorded trials.
func (h *Histogram) Total() int { return h.total }

// Len returns the number of distinct keys.
func (h *Histogram) Len() int { return len(h.counts) }

// Keys returns the recorded round counts in ascending order.
func (h *Histogram) Keys() []int {
	keys := make([]int, 0, len(h.counts))
	for k := range h.counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Buckets returns the histogram as ascending (rounds, count) pairs.
func (h *Histogram) Buckets() []Bucket {
	keys := h.Keys()
	out := make([]Bucket, len(keys))
	for i, k := range keys {
		out[i] = Bucket{Rounds: k, Count: h.counts[k]}
	}
	return out
}

// Min returns the smallest key, or 0 for an empty histogram.
func (h *Histogram) Min() int {
	keys := h.Keys()
	if len(keys) == 0 {
		return 0
	}
	return keys[0]
}

// Max returns the largest key, or 0 for an empty histogram.
func (h *Histogram) Max() int {
	keys := h.Keys()
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1]
}

// Fraction returns the share of trials that took rounds rounds, in [0, 1].
func (h *Histogram) Fraction(rounds int) float64 {
	if h.total == 0 {
		return 0
	}
	return float64(h.counts[rounds]) / float64(h.total)
}
