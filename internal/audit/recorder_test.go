package audit_test

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
)

type captureMirror struct {
	published []audit.Entry
}

func (m *captureMirror) Publish(_ context.Context, entry audit.Entry) {
	m.published = append(m.published, entry)
}

type brokenStore struct{}

func (brokenStore) Append(context.Context, audit.Entry) error {
	return errors.New("append refused")
}

func (brokenStore) List(context.Context) ([]audit.Entry, error) {
	return nil, errors.New("list refused")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	store := auditmem.New()
	recorder := audit.NewRecorder(store, testLogger())

	before := time.Now()
	require.NoError(t, recorder.Record(context.Background(), audit.Entry{Name: "N"}))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Timestamp.Before(before))
}

func TestRecordKeepsExplicitTimestamp(t *testing.T) {
	store := auditmem.New()
	recorder := audit.NewRecorder(store, testLogger())

	ts := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, recorder.Record(context.Background(), audit.Entry{Name: "N", Timestamp: ts}))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ts, entries[0].Timestamp)
}

func TestRecordMirrorsAndRunsHooks(t *testing.T) {
	store := auditmem.New()
	mirror := &captureMirror{}
	hookCalls := 0
	recorder := audit.NewRecorder(store, testLogger(),
		audit.WithMirror(mirror),
		audit.WithOnAppend(func(context.Context) { hookCalls++ }),
	)

	require.NoError(t, recorder.Record(context.Background(), audit.Entry{Name: "N"}))
	assert.Len(t, mirror.published, 1)
	assert.Equal(t, 1, hookCalls)
}

func TestRecordFailureSkipsMirrorAndHooks(t *testing.T) {
	mirror := &captureMirror{}
	hookCalls := 0
	recorder := audit.NewRecorder(brokenStore{}, testLogger(),
		audit.WithMirror(mirror),
		audit.WithOnAppend(func(context.Context) { hookCalls++ }),
	)

	err := recorder.Record(context.Background(), audit.Entry{Name: "N"})
	require.Error(t, err)
	assert.Empty(t, mirror.published)
	assert.Equal(t, 0, hookCalls)
}
