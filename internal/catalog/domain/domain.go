// Package domain holds the catalog's core types.
package domain

import "time"

// Product is one sellable item. Identity is the exact Name string, which is
// also the key used everywhere price truth is looked up. Immutable once loaded.
type Product struct {
	Name        string  `json:"nombre"`
	Price       float64 `json:"precio"`
	Category    string  `json:"categoria,omitempty"`
	Description string  `json:"descripcion,omitempty"`
	Size        string  `json:"medida,omitempty"`
	Brand       string  `json:"marca,omitempty"`
}

// Snapshot is a complete catalog as of one fetch. Snapshots are replaced
// wholesale, never mutated in place; FetchedAt is monotonically non-decreasing
// across replacements within a process.
type Snapshot struct {
	Items     []Product
	FetchedAt time.Time
}

// Age returns how long ago the snapshot was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
