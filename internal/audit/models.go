package audit

import (
	"context"
	"time"
)

// Entry is the durable record of one scored verification. Append-only:
// entries are never edited or deleted by this system, and their accumulated
// sequence is the history view.
type Entry struct {
	Timestamp        time.Time
	Name             string
	DocumentNumber   string
	IDType           string
	FraudProbability float64 // percentage, 0-100
	RiskLevel        string
	Confidence       float64 // percentage, 0-100
}

// Store persists audit entries. Append must be safe under concurrent
// writers; List returns entries sorted by timestamp descending and skips
// corrupted trailing records instead of failing.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
}
