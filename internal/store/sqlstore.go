package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"witness/internal/logging"
	"witness/internal/trial"
)

// ErrNotFound is returned when a dataset name is unknown.
var ErrNotFound = errors.New("dataset not found")

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

var _ Store = (*SqlStore)(nil)

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .witness) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	// The pragma rides in the DSN so every pooled connection enforces
	// the trials -> datasets cascade, not just the first one.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		// Fresh database.
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		v = schemaVersion1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	if v != currentSchemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }

// SaveDataset writes trials under name in one transaction, replacing
// any existing dataset with that name.
func (s *SqlStore) SaveDataset(name, source string, trials []trial.Trial) (Dataset, error) {
	if name == "" {
		return Dataset{}, fmt.Errorf("dataset name must not be empty")
	}
	logger := logging.New("store")

	tx, err := s.db.Begin()
	if err != nil {
		return Dataset{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var oldID int64
	err = tx.QueryRow("SELECT id FROM datasets WHERE name = ?", name).Scan(&oldID)
	switch {
	case err == nil:
		logger.Info("replacing dataset", "name", name, "old_id", oldID)
		if _, err := tx.Exec("DELETE FROM datasets WHERE id = ?", oldID); err != nil {
			return Dataset{}, fmt.Errorf("delete old dataset: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// new dataset
	default:
		return Dataset{}, fmt.Errorf("check existing dataset: %w", err)
	}

	importedAt := nowUTC()
	res, err := tx.Exec("INSERT INTO datasets(name, source, imported_at) VALUES(?,?,?)",
		name, source, importedAt)
	if err != nil {
		return Dataset{}, fmt.Errorf("insert dataset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO trials
		(dataset_id, n, bit_len, probably_prime, elapsed_ns, witness, really_prime)
		VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return Dataset{}, fmt.Errorf("prepare trial insert: %w", err)
	}
	defer stmt.Close()

	for i := range trials {
		t := &trials[i]
		if _, err := stmt.Exec(id, t.N.String(), t.BitLen(),
			boolInt(t.ProbablyPrime), t.ElapsedNS, t.Witness, boolInt(t.ReallyPrime)); err != nil {
			return Dataset{}, fmt.Errorf("insert trial %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Dataset{}, fmt.Errorf("commit: %w", err)
	}
	logger.Info("dataset saved", "name", name, "trials", len(trials))

	return s.GetDataset(name)
}

const datasetQuery = `
SELECT d.id, d.name, d.source, d.imported_at,
       COUNT(t.id),
       COALESCE(SUM(1 - t.really_prime), 0),
       COALESCE(SUM((1 - t.really_prime) * t.probably_prime), 0)
FROM datasets d
LEFT JOIN trials t ON t.dataset_id = d.id
`

// ListDatasets returns all datasets with counts, newest first.
func (s *SqlStore) ListDatasets() ([]Dataset, error) {
	rows, err := s.db.Query(datasetQuery + "GROUP BY d.id ORDER BY d.imported_at DESC, d.id DESC")
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDataset returns one dataset by name with counts.
func (s *SqlStore) GetDataset(name string) (Dataset, error) {
	row := s.db.QueryRow(datasetQuery+"WHERE d.name = ? GROUP BY d.id", name)
	d, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Dataset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return d, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDataset(row scannable) (Dataset, error) {
	var d Dataset
	var source sql.NullString
	var importedAt string
	if err := row.Scan(&d.ID, &d.Name, &source, &importedAt,
		&d.Trials, &d.Composites, &d.FalsePositives); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Dataset{}, err
		}
		return Dataset{}, fmt.Errorf("scan dataset: %w", err)
	}
	d.Source = source.String
	if ts, err := time.Parse(time.RFC3339, importedAt); err == nil {
		d.ImportedAt = ts
	}
	return d, nil
}

// LoadTrials returns all trials of a dataset in insertion order.
func (s *SqlStore) LoadTrials(name string) ([]trial.Trial, error) {
	d, err := s.GetDataset(name)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT n, probably_prime, elapsed_ns, witness, really_prime
		FROM trials WHERE dataset_id = ? ORDER BY id`, d.ID)
	if err != nil {
		return nil, fmt.Errorf("load trials: %w", err)
	}
	defer rows.Close()

	var out []trial.Trial
	for rows.Next() {
		var nStr string
		var pp, rp int
		var witness sql.NullString
		var t trial.Trial
		if err := rows.Scan(&nStr, &pp, &t.ElapsedNS, &witness, &rp); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		n, ok := new(big.Int).SetString(nStr, 10)
		if !ok {
			return nil, fmt.Errorf("corrupt n %q in dataset %q", nStr, name)
		}
		t.N = n
		t.ProbablyPrime = pp == 1
		t.ReallyPrime = rp == 1
		t.Witness = witness.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// BitAggregates computes per-bit-length aggregates inside SQLite.
func (s *SqlStore) BitAggregates(name string) ([]BitAggregate, error) {
	d, err := s.GetDataset(name)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT bit_len,
			COUNT(*),
			COALESCE(SUM(1 - really_prime), 0),
			COALESCE(SUM((1 - really_prime) * probably_prime), 0),
			AVG(elapsed_ns),
			MAX(elapsed_ns)
		FROM trials WHERE dataset_id = ?
		GROUP BY bit_len ORDER BY bit_len`, d.ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate trials: %w", err)
	}
	defer rows.Close()

	var out []BitAggregate
	for rows.Next() {
		var a BitAggregate
		if err := rows.Scan(&a.Bits, &a.Trials, &a.Composites,
			&a.FalsePositives, &a.MeanElapsedNS, &a.MaxElapsedNS); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
