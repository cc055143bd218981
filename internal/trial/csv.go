package trial

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
)

// Column names the reader understands. Order in the file does not
// matter; the header row decides. bit_len and witness are optional.
const (
	colN             = "n"
	colBitLen        = "bit_len"
	colProbablyPrime = "is_probably_prime"
	colElapsedNS     = "elapsed_ns"
	colWitness       = "witness"
	colReallyPrime   = "is_really_prime"
)

var requiredCols = []string{colN, colProbablyPrime, colElapsedNS, colReallyPrime}

// ReadFile loads all trials from a CSV file.
func ReadFile(path string) ([]Trial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()
	trials, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trials, nil
}

// Read parses trials from CSV data. The first row must be a header
// containing at least n, is_probably_prime, elapsed_ns and
// is_really_prime. Unknown columns are skipped.
func Read(r io.Reader) ([]Trial, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1 // witness may leave a trailing empty field

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredCols {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", c)
		}
	}

	var trials []Trial
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		line++

		t, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		trials = append(trials, t)
	}
	return trials, nil
}

func parseRow(rec []string, idx map[string]int) (Trial, error) {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	n, ok := new(big.Int).SetString(field(colN), 10)
	if !ok {
		return Trial{}, fmt.Errorf("bad n %q", field(colN))
	}
	if n.Sign() < 0 {
		return Trial{}, fmt.Errorf("negative n %q", field(colN))
	}

	pp, err := parseFlag(field(colProbablyPrime), colProbablyPrime)
	if err != nil {
		return Trial{}, err
	}
	rp, err := parseFlag(field(colReallyPrime), colReallyPrime)
	if err != nil {
		return Trial{}, err
	}
	elapsed, err := strconv.ParseInt(field(colElapsedNS), 10, 64)
	if err != nil {
		return Trial{}, fmt.Errorf("bad elapsed_ns %q", field(colElapsedNS))
	}

	return Trial{
		N:             n,
		ProbablyPrime: pp,
		ElapsedNS:     elapsed,
		Witness:       field(colWitness),
		ReallyPrime:   rp,
	}, nil
}

func parseFlag(s, col string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("bad %s %q (want 0 or 1)", col, s)
}

// Write emits trials as CSV in the tester's column order, including
// the recomputed bit_len column.
func Write(w io.Writer, trials []Trial) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colN, colBitLen, colProbablyPrime, colElapsedNS, colWitness, colReallyPrime}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range trials {
		t := &trials[i]
		rec := []string{
			t.N.String(),
			strconv.Itoa(t.BitLen()),
			flag(t.ProbablyPrime),
			strconv.FormatInt(t.ElapsedNS, 10),
			t.Witness,
			flag(t.ReallyPrime),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
