// Package store persists ingested trial datasets in SQLite.
//
// A dataset is one ingested results CSV under a unique name.
// Re-ingesting a name replaces the previous dataset atomically.
package store

import (
	"time"

	"witness/internal/trial"
)

// Dataset is the stored metadata for one ingested CSV.
type Dataset struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Source     string    `json:"source"` // original CSV path, informational
	ImportedAt time.Time `json:"imported_at"`

	// Counts come from SQL aggregates, not stored columns.
	Trials         int `json:"trials"`
	Composites     int `json:"composites"`
	FalsePositives int `json:"false_positives"`
}

// BitAggregate is a per-bit-length aggregate computed inside SQLite,
// for views that must not load the full trial list.
type BitAggregate struct {
	Bits           int     `json:"bits"`
	Trials         int     `json:"trials"`
	Composites     int     `json:"composites"`
	FalsePositives int     `json:"false_positives"`
	MeanElapsedNS  float64 `json:"mean_elapsed_ns"`
	MaxElapsedNS   int64   `json:"max_elapsed_ns"`
}

// Store is the dataset persistence interface. SqlStore is the real
// implementation; MemStore backs tests.
type Store interface {
	// SaveDataset writes trials under name, replacing any dataset
	// already stored with that name. Source records where the data
	// came from.
	SaveDataset(name, source string, trials []trial.Trial) (Dataset, error)
	// ListDatasets returns all datasets, newest first, with counts.
	ListDatasets() ([]Dataset, error)
	// GetDataset returns one dataset by name with counts.
	GetDataset(name string) (Dataset, error)
	// LoadTrials returns all trials of a dataset in insertion order.
	LoadTrials(name string) ([]trial.Trial, error)
	// BitAggregates returns per-bit-length aggregates, ascending.
	BitAggregates(name string) ([]BitAggregate, error)
	// Close releases the underlying resources.
	Close() error
}
