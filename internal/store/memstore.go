package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"witness/internal/trial"
)

// MemStore is an in-memory Store. It backs tests that exercise the
// Store interface without touching SQLite.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	sets   map[string]*memDataset
}

type memDataset struct {
	meta   Dataset
	trials []trial.Trial
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, sets: make(map[string]*memDataset)}
}

func (m *MemStore) SaveDataset(name, source string, trials []trial.Trial) (Dataset, error) {
	if name == "" {
		return Dataset{}, fmt.Errorf("dataset name must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Dataset{
		ID:         m.nextID,
		Name:       name,
		Source:     source,
		ImportedAt: time.Now().UTC(),
	}
	m.nextID++

	copied := make([]trial.Trial, len(trials))
	copy(copied, trials)
	for i := range copied {
		t := &copied[i]
		d.Trials++
		if t.Composite() {
			d.Composites++
		}
		if t.FalsePositive() {
			d.FalsePositives++
		}
	}

	m.sets[name] = &memDataset{meta: d, trials: copied}
	return d, nil
}

func (m *MemStore) ListDatasets() ([]Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Dataset, 0, len(m.sets))
	for _, ds := range m.sets {
		out = append(out, ds.meta)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].ImportedAt.After(out[j].ImportedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemStore) GetDataset(name string) (Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok := m.sets[name]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return ds.meta, nil
}

func (m *MemStore) LoadTrials(name string) ([]trial.Trial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok := m.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	out := make([]trial.Trial, len(ds.trials))
	copy(out, ds.trials)
	return out, nil
}

func (m *MemStore) BitAggregates(name string) ([]BitAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok := m.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	buckets := make(map[int]*BitAggregate)
	sums := make(map[int]float64)
	for i := range ds.trials {
		t := &ds.trials[i]
		bits := t.BitLen()
		a := buckets[bits]
		if a == nil {
			a = &BitAggregate{Bits: bits}
			buckets[bits] = a
		}
		a.Trials++
		if t.Composite() {
			a.Composites++
		}
		if t.FalsePositive() {
			a.FalsePositives++
		}
		if t.ElapsedNS > a.MaxElapsedNS {
			a.MaxElapsedNS = t.ElapsedNS
		}
		sums[bits] += float64(t.ElapsedNS)
	}

	out := make([]BitAggregate, 0, len(buckets))
	for bits, a := range buckets {
		a.MeanElapsedNS = sums[bits] / float64(a.Trials)
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bits < out[j].Bits })
	return out, nil
}

func (m *MemStore) Close() error { return nil }
