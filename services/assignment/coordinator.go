// Package assignment hardens a ranked match into a committed workload slot.
package assignment

import (
	"context"
	"time"

	"servicehub/apperrors"
	"servicehub/models"
	"servicehub/services/matching"
	"servicehub/services/workload"

	"go.uber.org/zap"
)

const DefaultMaxAttempts = 3

// Coordinator walks the ranked candidates and commits the first one whose
// workload slot can still be reserved.
type Coordinator struct {
	Workload    *workload.Tracker
	MaxAttempts int
	Logger      *zap.Logger
}

func NewCoordinator(tracker *workload.Tracker, maxAttempts int, logger *zap.Logger) *Coordinator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{Workload: tracker, MaxAttempts: maxAttempts, Logger: logger}
}

// Assign reserves a slot for b and records the assignment on it. The booking
// must be persisted by the caller; on persistence failure call Release.
//
// MaxAttempts bounds the total number of conditional commits across the list.
// A full candidate is skipped; a write conflict retries the same candidate.
func (c *Coordinator) Assign(ctx context.Context, b *models.Booking, candidates []matching.Candidate, at time.Time) (matching.Candidate, error) {
	if b.AssignedServiceman() != "" {
		return matching.Candidate{}, apperrors.Conflict("booking %s is already assigned to %s", b.ID, b.AssignedServiceman())
	}

	attempts := 0
	for i := 0; i < len(candidates) && attempts < c.MaxAttempts; {
		if err := ctx.Err(); err != nil {
			return matching.Candidate{}, err
		}
		cand := candidates[i]
		attempts++

		ok, err := c.Workload.Reserve(ctx, cand.ID(), b.ID)
		if err != nil {
			if apperrors.Retryable(err) {
				c.Logger.Warn("Workload commit conflicted, retrying",
					zap.String("bookingID", b.ID),
					zap.String("servicemanID", cand.ID()),
					zap.Int("attempt", attempts))
				continue
			}
			return matching.Candidate{}, err
		}
		if !ok {
			c.Logger.Debug("Candidate filled before commit",
				zap.String("bookingID", b.ID),
				zap.String("servicemanID", cand.ID()))
			i++
			continue
		}

		if err := b.Assign(cand.ID(), cand.Criteria, true, at); err != nil {
			if relErr := c.Workload.Release(ctx, cand.ID(), b.ID); relErr != nil {
				c.Logger.Error("Failed to release slot after rejected assignment",
					zap.String("bookingID", b.ID), zap.Error(relErr))
			}
			return matching.Candidate{}, apperrors.Wrap(apperrors.KindConflict, err, "assign booking %s", b.ID)
		}
		c.Logger.Info("Booking assigned",
			zap.String("bookingID", b.ID),
			zap.String("servicemanID", cand.ID()),
			zap.Float64("score", cand.Criteria.Score),
			zap.Int("attempts", attempts))
		return cand, nil
	}

	return matching.Candidate{}, apperrors.NoAvailableServiceman(
		"no serviceman could take booking %s after %d attempts over %d candidates", b.ID, attempts, len(candidates))
}

// Release frees the slot held by b's assigned serviceman, if any.
func (c *Coordinator) Release(ctx context.Context, b *models.Booking) error {
	return c.Workload.Release(ctx, b.AssignedServiceman(), b.ID)
}
