package store_test

import (
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"witness/internal/store"
	"witness/internal/trial"
)

func openStores(t *testing.T) map[string]store.Store {
	t.Helper()
	sq, err := store.Open(filepath.Join(t.TempDir(), "witness.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]store.Store{
		"sql": sq,
		"mem": store.NewMemStore(),
	}
}

func sampleTrials() []trial.Trial {
	return []trial.Trial{
		{N: big.NewInt(561), ProbablyPrime: true, ElapsedNS: 1500},
		{N: big.NewInt(562), ProbablyPrime: false, ElapsedNS: 700, Witness: "3"},
		{N: big.NewInt(65537), ProbablyPrime: true, ElapsedNS: 2000, ReallyPrime: true},
	}
}

func TestSaveAndGet(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			d, err := st.SaveDataset("sweep", "data/results.csv", sampleTrials())
			if err != nil {
				t.Fatalf("SaveDataset: %v", err)
			}
			if d.Trials != 3 || d.Composites != 2 || d.FalsePositives != 1 {
				t.Errorf("counts: %+v", d)
			}

			got, err := st.GetDataset("sweep")
			if err != nil {
				t.Fatalf("GetDataset: %v", err)
			}
			if got.Name != "sweep" || got.Source != "data/results.csv" {
				t.Errorf("metadata: %+v", got)
			}
			if got.Trials != 3 {
				t.Errorf("trials = %d, want 3", got.Trials)
			}
		})
	}
}

func TestSave_EmptyNameRejected(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.SaveDataset("", "x.csv", sampleTrials()); err == nil {
				t.Error("expected error for empty dataset name")
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.GetDataset("nope")
			if !errors.Is(err, store.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestLoadTrials_RoundTrip(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			in := sampleTrials()
			if _, err := st.SaveDataset("rt", "x.csv", in); err != nil {
				t.Fatalf("SaveDataset: %v", err)
			}
			out, err := st.LoadTrials("rt")
			if err != nil {
				t.Fatalf("LoadTrials: %v", err)
			}
			if len(out) != len(in) {
				t.Fatalf("got %d trials, want %d", len(out), len(in))
			}
			for i := range in {
				if in[i].N.Cmp(out[i].N) != 0 ||
					in[i].ProbablyPrime != out[i].ProbablyPrime ||
					in[i].ElapsedNS != out[i].ElapsedNS ||
					in[i].Witness != out[i].Witness ||
					in[i].ReallyPrime != out[i].ReallyPrime {
					t.Errorf("trial %d mismatch: in=%+v out=%+v", i, in[i], out[i])
				}
			}
		})
	}
}

func TestReingestReplaces(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.SaveDataset("v", "a.csv", sampleTrials()); err != nil {
				t.Fatalf("first save: %v", err)
			}
			smaller := sampleTrials()[:1]
			d, err := st.SaveDataset("v", "b.csv", smaller)
			if err != nil {
				t.Fatalf("second save: %v", err)
			}
			if d.Trials != 1 {
				t.Errorf("replacement kept old trials: %+v", d)
			}
			if d.Source != "b.csv" {
				t.Errorf("source = %q, want b.csv", d.Source)
			}

			list, err := st.ListDatasets()
			if err != nil {
				t.Fatalf("ListDatasets: %v", err)
			}
			if len(list) != 1 {
				t.Errorf("got %d datasets, want 1", len(list))
			}
		})
	}
}

func TestBitAggregates(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.SaveDataset("agg", "x.csv", sampleTrials()); err != nil {
				t.Fatalf("SaveDataset: %v", err)
			}
			aggs, err := st.BitAggregates("agg")
			if err != nil {
				t.Fatalf("BitAggregates: %v", err)
			}
			// 561 and 562 share 10 bits; 65537 is 17 bits.
			if len(aggs) != 2 {
				t.Fatalf("got %d buckets, want 2: %+v", len(aggs), aggs)
			}
			b10 := aggs[0]
			if b10.Bits != 10 || b10.Trials != 2 || b10.Composites != 2 || b10.FalsePositives != 1 {
				t.Errorf("10-bit aggregate: %+v", b10)
			}
			if b10.MeanElapsedNS != 1100 {
				t.Errorf("10-bit mean = %v, want 1100", b10.MeanElapsedNS)
			}
			if b10.MaxElapsedNS != 1500 {
				t.Errorf("10-bit max = %d, want 1500", b10.MaxElapsedNS)
			}
			if aggs[1].Bits != 17 {
				t.Errorf("second bucket bits = %d, want 17", aggs[1].Bits)
			}
		})
	}
}

func TestListDatasets_Order(t *testing.T) {
	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.SaveDataset("first", "a.csv", sampleTrials()); err != nil {
				t.Fatal(err)
			}
			if _, err := st.SaveDataset("second", "b.csv", sampleTrials()); err != nil {
				t.Fatal(err)
			}
			list, err := st.ListDatasets()
			if err != nil {
				t.Fatalf("ListDatasets: %v", err)
			}
			if len(list) != 2 {
				t.Fatalf("got %d datasets", len(list))
			}
			if list[0].Name != "second" {
				t.Errorf("newest first: got %q", list[0].Name)
			}
		})
	}
}
