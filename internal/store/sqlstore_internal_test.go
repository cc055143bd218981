package store

import (
	"math/big"
	"path/filepath"
	"testing"

	"witness/internal/trial"
)

// Replacing a dataset deletes its trials through the foreign-key
// cascade. The pragma is per-connection in SQLite, so it must hold on
// whichever pooled connection runs the replacement transaction.
func TestSaveDataset_ReplaceLeavesNoOrphanTrials(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "witness.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	first := []trial.Trial{
		{N: big.NewInt(561), ProbablyPrime: true, ElapsedNS: 1500},
		{N: big.NewInt(562), ElapsedNS: 800, Witness: "3"},
	}
	if _, err := s.SaveDataset("sweep", "a.csv", first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := []trial.Trial{
		{N: big.NewInt(1105), ProbablyPrime: true, ElapsedNS: 900},
	}
	if _, err := s.SaveDataset("sweep", "b.csv", second); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trials").Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != len(second) {
		t.Errorf("trials table holds %d rows, want %d (old rows must cascade away)", total, len(second))
	}
}
