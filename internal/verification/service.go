// Package verification implements the fraud-risk scoring pipeline: feature
// extraction, classification through the model bundle, risk-tier derivation,
// and the audit trail append that makes a result official.
package verification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kycgate/internal/audit"
	"kycgate/internal/model"
	vmetrics "kycgate/internal/verification/metrics"
	"kycgate/pkg/derrors"
	"kycgate/pkg/requestcontext"
)

// Service orchestrates the single-record pipeline:
// validate → extract → score → classify → log → return.
// The model bundle is shared and read-only; the only shared mutable state
// is behind the audit recorder.
type Service struct {
	bundle   *model.Bundle
	recorder *audit.Recorder
	metrics  *vmetrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	workers  int
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithMetrics attaches Prometheus metrics. Absent in tests.
func WithMetrics(m *vmetrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithBatchWorkers bounds batch row concurrency.
func WithBatchWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewService(bundle *model.Bundle, recorder *audit.Recorder, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		bundle:   bundle,
		recorder: recorder,
		logger:   logger,
		tracer:   otel.Tracer("kycgate/verification"),
		workers:  4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify scores one identity record. Validation failures reject before any
// scoring; scoring-internal failures are absorbed by the bundle and the
// record still completes; a persistence failure fails the request because a
// result that was not durably logged never happened.
func (s *Service) Verify(ctx context.Context, rec IdentityRecord) (*VerificationResult, error) {
	ctx, span := s.tracer.Start(ctx, "verification.Verify")
	defer span.End()
	start := time.Now()

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	vec := Extract(rec)
	prob, degraded := s.bundle.Score(vec, rec.DocumentNumber)
	score := Classify(prob)

	span.SetAttributes(
		attribute.String("risk_level", string(score.RiskLevel)),
		attribute.Bool("degraded", degraded),
	)
	if degraded {
		s.logger.WarnContext(ctx, "scoring degraded to fallback",
			"request_id", requestcontext.RequestID(ctx),
			"mode", s.bundle.Mode().String(),
		)
	}

	result := &VerificationResult{
		ID:        "VER-" + uuid.NewString(),
		Timestamp: requestcontext.Now(ctx),
		Record:    rec,
		Score:     score,
		Details:   DeriveDetails(score, rec),
	}

	entry := audit.Entry{
		Timestamp:        result.Timestamp,
		Name:             rec.Name,
		DocumentNumber:   rec.DocumentNumber,
		IDType:           string(rec.DocumentType),
		FraudProbability: score.FraudProbability,
		RiskLevel:        string(score.RiskLevel),
		Confidence:       score.Confidence,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to persist verification record")
	}

	if s.metrics != nil {
		s.metrics.ObserveVerification(string(score.RiskLevel), degraded, start)
	}
	return result, nil
}

// Mode exposes the bundle capability state for health reporting.
func (s *Service) Mode() model.Mode { return s.bundle.Mode() }
