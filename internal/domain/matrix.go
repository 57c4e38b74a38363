package domain

import (
	"fmt"
	"math"
)

// DistanceMatrix holds pairwise travel distance (meters) and duration
// (seconds) for a set of places, indexed in PlaceIDs order.
//
// Distances[i][i] is always zero and no entry is negative. A matrix is built
// once per (place set, mode) and must not be mutated afterwards; it may be
// shared through the cache.
type DistanceMatrix struct {
	PlaceIDs   []string      `json:"place_ids"`
	Distances  [][]float64   `json:"distances"`
	Durations  [][]float64   `json:"durations"`
	Mode       TransportMode `json:"mode"`
	IsFallback bool          `json:"is_fallback"`
}

// NewDistanceMatrix allocates a zeroed n×n matrix.
func NewDistanceMatrix(n int, mode TransportMode) *DistanceMatrix {
	m := &DistanceMatrix{
		PlaceIDs:  make([]string, n),
		Distances: make([][]float64, n),
		Durations: make([][]float64, n),
		Mode:      mode,
	}
	for i := 0; i < n; i++ {
		m.Distances[i] = make([]float64, n)
		m.Durations[i] = make([]float64, n)
	}
	return m
}

// Size is the number of places covered.
func (m *DistanceMatrix) Size() int { return len(m.Distances) }

// IndexByID maps place ids to matrix indices.
func (m *DistanceMatrix) IndexByID() map[string]int {
	idx := make(map[string]int, len(m.PlaceIDs))
	for i, id := range m.PlaceIDs {
		idx[id] = i
	}
	return idx
}

// Reindex returns a copy whose row/column k is row/column perm[k] of m,
// labelled with ids. The receiver is left untouched.
func (m *DistanceMatrix) Reindex(perm []int, ids []string) *DistanceMatrix {
	n := len(perm)
	out := NewDistanceMatrix(n, m.Mode)
	out.IsFallback = m.IsFallback
	copy(out.PlaceIDs, ids)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Distances[i][j] = m.Distances[perm[i]][perm[j]]
			out.Durations[i][j] = m.Durations[perm[i]][perm[j]]
		}
	}
	return out
}

// Validate checks the structural invariants.
func (m *DistanceMatrix) Validate() error {
	n := len(m.Distances)
	if len(m.Durations) != n || len(m.PlaceIDs) != n {
		return fmt.Errorf("distance matrix: inconsistent sizes distances=%d durations=%d ids=%d",
			n, len(m.Durations), len(m.PlaceIDs))
	}
	for i := 0; i < n; i++ {
		if len(m.Distances[i]) != n || len(m.Durations[i]) != n {
			return fmt.Errorf("distance matrix: row %d is not square", i)
		}
		if m.Distances[i][i] != 0 {
			return fmt.Errorf("distance matrix: non-zero diagonal at %d", i)
		}
		for j := 0; j < n; j++ {
			if !validEntry(m.Distances[i][j]) || !validEntry(m.Durations[i][j]) {
				return fmt.Errorf("distance matrix: invalid entry at (%d,%d)", i, j)
			}
		}
	}
	return nil
}

func validEntry(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
