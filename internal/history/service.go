// Package history is the read path over the audit log. It reconstructs
// display records from the stored columns and recomputes status from the
// risk level rather than trusting anything stored redundantly.
package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"kycgate/internal/audit"
	platformredis "kycgate/internal/platform/redis"
	"kycgate/internal/verification"
	"kycgate/pkg/derrors"
)

const cacheKey = "kycgate:history"

// Source is the audit read path backing history queries.
type Source interface {
	List(ctx context.Context) ([]audit.Entry, error)
}

// Entry is one reconstructed history record.
type Entry struct {
	Timestamp        string  `json:"timestamp"`
	Name             string  `json:"name"`
	DocumentNumber   string  `json:"documentNumber"`
	IDType           string  `json:"idType"`
	FraudProbability float64 `json:"fraudProbability"`
	RiskLevel        string  `json:"riskLevel"`
	Confidence       float64 `json:"confidence"`
	Status           string  `json:"status"`
}

// Service serves history queries, optionally caching the rendered view in
// Redis. A nil cache client disables caching entirely.
type Service struct {
	source Source
	cache  *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(source Source, cache *platformredis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{source: source, cache: cache, ttl: ttl, logger: logger}
}

// List returns the full history, newest first. Cache failures degrade to a
// direct store read.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	stored, err := s.source.List(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to read verification history")
	}

	entries := make([]Entry, 0, len(stored))
	for _, e := range stored {
		entries = append(entries, Entry{
			Timestamp:        e.Timestamp.Format(time.RFC3339),
			Name:             e.Name,
			DocumentNumber:   e.DocumentNumber,
			IDType:           e.IDType,
			FraudProbability: e.FraudProbability,
			RiskLevel:        e.RiskLevel,
			Confidence:       e.Confidence,
			Status:           string(verification.StatusFor(verification.RiskLevel(e.RiskLevel))),
		})
	}

	s.toCache(ctx, entries)
	return entries, nil
}

// Invalidate drops the cached view. Wired as an audit append hook.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.WarnContext(ctx, "history cache invalidation failed", "error", err)
	}
}

func (s *Service) fromCache(ctx context.Context) ([]Entry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.WarnContext(ctx, "history cache entry unreadable, dropping", "error", err)
		s.Invalidate(ctx)
		return nil, false
	}
	return entries, true
}

func (s *Service) toCache(ctx context.Context, entries []Entry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "history cache write failed", "error", err)
	}
}
