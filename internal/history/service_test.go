package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/audit"
	auditmem "kycgate/internal/audit/store/memory"
	"kycgate/pkg/derrors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListRecomputesStatus(t *testing.T) {
	store := auditmem.New()
	ts := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	for i, risk := range []string{"Low", "Medium", "High"} {
		require.NoError(t, store.Append(context.Background(), audit.Entry{
			Timestamp:        ts.Add(time.Duration(i) * time.Minute),
			Name:             "N",
			DocumentNumber:   "123456789012",
			IDType:           "AADHAR",
			FraudProbability: 40,
			RiskLevel:        risk,
			Confidence:       60,
		}))
	}

	svc := NewService(store, nil, 0, discardLogger())
	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first; only High renders as Flagged.
	assert.Equal(t, "High", entries[0].RiskLevel)
	assert.Equal(t, "Flagged", entries[0].Status)
	assert.Equal(t, "Verified", entries[1].Status)
	assert.Equal(t, "Verified", entries[2].Status)
	assert.Equal(t, ts.Add(2*time.Minute).Format(time.RFC3339), entries[0].Timestamp)
}

func TestListEmptyHistory(t *testing.T) {
	svc := NewService(auditmem.New(), nil, 0, discardLogger())
	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingSource struct{}

func (failingSource) List(context.Context) ([]audit.Entry, error) {
	return nil, errors.New("backend down")
}

func TestListSourceFailure(t *testing.T) {
	svc := NewService(failingSource{}, nil, 0, discardLogger())
	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeInternal))
}

func TestInvalidateWithoutCacheIsNoop(t *testing.T) {
	svc := NewService(auditmem.New(), nil, 0, discardLogger())
	assert.NotPanics(t, func() { svc.Invalidate(context.Background()) })
}
