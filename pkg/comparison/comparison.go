// Package comparison persists saved bike comparisons.
package comparison

import (
	"errors"
	"sort"
	"time"

	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
)

// ErrNotFound is returned when a comparison ID is unknown.
var ErrNotFound = errors.New("comparison not found")

// Comparison is a named, saved analysis input.
type Comparison struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Input     analysis.Input `json:"input"`
}

// Store defines the interface for comparison storage.
type Store interface {
	// Save creates or updates a comparison, assigning an ID when empty.
	Save(c *Comparison) error

	// Get retrieves a comparison by ID.
	Get(id string) (*Comparison, error)

	// List returns all comparisons, newest update first.
	List() ([]*Comparison, error)

	// Delete removes a comparison by ID.
	Delete(id string) error

	// Count returns the number of stored comparisons.
	Count() int
}

func sortNewestFirst(cs []*Comparison) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].UpdatedAt.Equal(cs[j].UpdatedAt) {
			return cs[i].ID < cs[j].ID
		}
		return cs[i].UpdatedAt.After(cs[j].UpdatedAt)
	})
}
