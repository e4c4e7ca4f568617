// Package csvfile implements the audit store as an append-only CSV file.
// This is the system of record: one line per scored verification, columns
// stable across releases so history can always be reconstructed.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"kycgate/internal/audit"
)

var header = []string{
	"Timestamp",
	"Name",
	"Document_Number",
	"ID_Type",
	"Fraud_Probability",
	"Fraud_Risk_Level",
	"Confidence",
}

// Store appends audit entries to a CSV file. Appends are serialized with a
// mutex so concurrent writers never interleave partial lines.
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Append durably writes one entry. The header row is written when the file
// is new or empty.
func (s *Store) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat audit log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write audit header: %w", err)
		}
	}
	if err := w.Write(encode(entry)); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush audit entry: %w", err)
	}
	return f.Sync()
}

// List reads every decodable entry, newest first. Corrupted or partially
// written trailing lines are skipped, never fatal.
func (s *Store) List(_ context.Context) ([]audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var entries []audit.Entry
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Unreadable remainder, typically a torn final line.
			break
		}
		if first {
			first = false
			continue
		}
		entry, ok := decode(rec)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func encode(e audit.Entry) []string {
	return []string{
		e.Timestamp.Format(time.RFC3339),
		e.Name,
		e.DocumentNumber,
		e.IDType,
		strconv.FormatFloat(e.FraudProbability, 'f', 2, 64),
		e.RiskLevel,
		strconv.FormatFloat(e.Confidence, 'f', 2, 64),
	}
}

func decode(rec []string) (audit.Entry, bool) {
	if len(rec) != len(header) {
		return audit.Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return audit.Entry{}, false
	}
	prob, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return audit.Entry{}, false
	}
	conf, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return audit.Entry{}, false
	}
	return audit.Entry{
		Timestamp:        ts,
		Name:             rec[1],
		DocumentNumber:   rec[2],
		IDType:           rec[3],
		FraudProbability: prob,
		RiskLevel:        rec[5],
		Confidence:       conf,
	}, true
}
