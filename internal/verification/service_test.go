package verification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/audit"
	auditmem "kycgate/internal/audit/store/memory"
	"kycgate/internal/model"
	"kycgate/pkg/derrors"
	"kycgate/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx    context.Context
	logger *slog.Logger
	store  *auditmem.Store
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = auditmem.New()
}

// newBundle builds a classifier-only bundle whose probability is
// sigmoid(intercept) for any input, which pins the tier under test.
func (s *ServiceSuite) newBundle(intercept float64) *model.Bundle {
	dir := s.T().TempDir()
	data, err := json.Marshal(model.Classifier{Weights: make([]float64, FeatureWidth), Intercept: intercept})
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(filepath.Join(dir, model.ClassifierFile), data, 0o644))
	return model.Load(dir, FeatureWidth, filepath.Join(dir, "fallback.csv"), s.logger)
}

// emptyBundle has no artifacts at all, forcing the safe-default path.
func (s *ServiceSuite) emptyBundle() *model.Bundle {
	dir := s.T().TempDir()
	return model.Load(dir, FeatureWidth, filepath.Join(dir, "fallback.csv"), s.logger)
}

func (s *ServiceSuite) newService(bundle *model.Bundle, store audit.Store) *Service {
	return NewService(bundle, audit.NewRecorder(store, s.logger), s.logger)
}

func validRecord() IdentityRecord {
	return IdentityRecord{
		Name:           "John Doe",
		DocumentNumber: "123456789012",
		Address:        "123 Main Street, City, State 12345",
		DocumentType:   DocumentAadhar,
	}
}

func (s *ServiceSuite) TestVerifyLowRisk() {
	svc := s.newService(s.newBundle(-3), s.store) // sigmoid(-3) ~ 0.047

	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	result, err := svc.Verify(requestcontext.WithTime(s.ctx, ts), validRecord())
	s.Require().NoError(err)

	s.Regexp(`^VER-[0-9a-f-]{36}$`, result.ID)
	s.Equal(ts, result.Timestamp)
	s.Equal(RiskLow, result.Score.RiskLevel)
	s.Equal(StatusVerified, result.Score.Status)
	s.InDelta(100, result.Score.FraudProbability+result.Score.Confidence, 1e-9)

	entries, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("John Doe", entries[0].Name)
	s.Equal("AADHAR", entries[0].IDType)
	s.Equal(string(RiskLow), entries[0].RiskLevel)
	s.Equal(result.Score.FraudProbability, entries[0].FraudProbability)
	s.Equal(ts, entries[0].Timestamp)
}

func (s *ServiceSuite) TestVerifyHighRiskFlags() {
	svc := s.newService(s.newBundle(3), s.store) // sigmoid(3) ~ 0.953

	result, err := svc.Verify(s.ctx, validRecord())
	s.Require().NoError(err)
	s.Equal(RiskHigh, result.Score.RiskLevel)
	s.Equal(StatusFlagged, result.Score.Status)
	s.Equal("Suspicious", result.Details.DocumentAuthenticity)
}

func (s *ServiceSuite) TestVerifyValidationRejectsBeforeScoring() {
	svc := s.newService(s.newBundle(0), s.store)

	cases := []struct {
		name string
		rec  IdentityRecord
	}{
		{"missing name", IdentityRecord{DocumentNumber: "123456789012", DocumentType: DocumentAadhar}},
		{"missing document number", IdentityRecord{Name: "A", DocumentType: DocumentPan}},
		{"unknown document type", IdentityRecord{Name: "A", DocumentNumber: "1", DocumentType: "PASSPORT"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := svc.Verify(s.ctx, tc.rec)
			s.Require().Error(err)
			s.True(derrors.HasCode(err, derrors.CodeValidation))
		})
	}
	// Rejected records never reach the audit trail.
	s.Equal(0, s.store.Len())
}

func (s *ServiceSuite) TestVerifyCompletesWhenModelUnavailable() {
	svc := s.newService(s.emptyBundle(), s.store)

	result, err := svc.Verify(s.ctx, validRecord())
	s.Require().NoError(err)
	s.Equal(50.0, result.Score.FraudProbability)
	s.Equal(RiskMedium, result.Score.RiskLevel)
	s.Equal(StatusVerified, result.Score.Status)
	s.Equal(1, s.store.Len())
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Entry) error {
	return errors.New("disk full")
}

func (failingStore) List(context.Context) ([]audit.Entry, error) {
	return nil, errors.New("disk full")
}

func (s *ServiceSuite) TestVerifyPersistenceFailureFailsRequest() {
	svc := s.newService(s.newBundle(0), failingStore{})

	_, err := svc.Verify(s.ctx, validRecord())
	s.Require().Error(err)
	s.True(derrors.HasCode(err, derrors.CodeInternal))
	s.Equal("failed to persist verification record", derrors.MessageOf(err))
}

func (s *ServiceSuite) TestVerifyIsDeterministicPerRecord() {
	svc := s.newService(s.newBundle(-1.2), s.store)

	first, err := svc.Verify(s.ctx, validRecord())
	s.Require().NoError(err)
	second, err := svc.Verify(s.ctx, validRecord())
	s.Require().NoError(err)

	s.Equal(first.Score, second.Score)
	s.NotEqual(first.ID, second.ID)
}
