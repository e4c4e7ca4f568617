package verification

import (
	"context"

	"golang.org/x/sync/errgroup"

	"kycgate/pkg/derrors"
)

// VerifyBatch applies the single-record pipeline to each row independently.
// A failure on one row is captured as that row's outcome and never aborts
// the rest. Rows are scored with bounded parallelism; the outcome sequence
// is reassembled in original row order.
func (s *Service) VerifyBatch(ctx context.Context, rows []IdentityRecord) BatchSummary {
	outcomes := make([]RowOutcome, len(rows))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, rec := range rows {
		g.Go(func() error {
			result, err := s.Verify(ctx, rec)
			if err != nil {
				// Row-scoped: validation and persistence failures alike.
				msg := derrors.MessageOf(err)
				if msg == "" {
					msg = err.Error()
				}
				outcomes[i] = RowOutcome{Row: i + 1, Err: msg}
				return nil
			}
			outcomes[i] = RowOutcome{Row: i + 1, Result: result}
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	summary := BatchSummary{Total: len(rows), Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Err != "" {
			summary.Failed++
			if s.metrics != nil {
				s.metrics.ObserveBatchRow("failed")
			}
			continue
		}
		summary.Successful++
		if s.metrics != nil {
			s.metrics.ObserveBatchRow("success")
		}
	}
	return summary
}
