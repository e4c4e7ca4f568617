package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"kycgate/pkg/platform/sentinel"
)

// DefaultProbability is returned when no classifier is usable and the
// fallback dataset has no entry for the document. Mid-range so unavailable
// scoring never silently passes or fails a record.
const DefaultProbability = 0.50

// Fallback is an externally supplied dataset of prior fraud evaluations
// keyed by document number. Loaded once; read-only afterwards.
type Fallback struct {
	probs map[string]float64
}

// LoadFallback reads the prior-evaluations CSV. A missing file is created
// empty (header only) so later training runs can append to a known location.
func LoadFallback(path string) (*Fallback, error) {
	f := &Fallback{probs: make(map[string]float64)}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		if werr := os.WriteFile(path, []byte("Document_Number,Fraud_Probability\n"), 0o644); werr != nil {
			return nil, fmt.Errorf("create fallback dataset: %w", werr)
		}
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open fallback dataset: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	header := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed remainder; keep what parsed so far.
			break
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 2 {
			continue
		}
		prob, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		f.probs[rec[0]] = prob
	}
	return f, nil
}

// Lookup returns the prior fraud probability for a document number, or
// sentinel.ErrNotFound when the dataset has no entry for it.
func (f *Fallback) Lookup(documentNumber string) (float64, error) {
	if f == nil {
		return 0, sentinel.ErrNotFound
	}
	p, ok := f.probs[documentNumber]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return p, nil
}

// Len reports how many prior evaluations are loaded.
func (f *Fallback) Len() int {
	if f == nil {
		return 0
	}
	return len(f.probs)
}
