package jobs

import (
	"context"

	"eventhub-backend/internal/logger"
)

// ExpireStaleInvites moves PENDING invites past their deadline to EXPIRED. Accept and decline
// already treat such invites as expired; the sweep keeps stored state in line with that.
func (jr *JobRunner) ExpireStaleInvites() error {
	return jr.runWithRecovery("ExpireStaleInvites", func(ctx context.Context) error {
		n, err := jr.services.Invites.SweepExpired(ctx)
		if err != nil {
			return err
		}
		logger.Info("Expired stale invites", "count", n)
		return nil
	})
}

// ReconcileEventOccupancy recomputes every event's cached registration count.
func (jr *JobRunner) ReconcileEventOccupancy() error {
	return jr.runWithRecovery("ReconcileEventOccupancy", func(ctx context.Context) error {
		n, err := jr.services.Registrations.ReconcileOccupancy(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Warn("Corrected event occupancy drift", "events", n)
		} else {
			logger.Info("Event occupancy consistent")
		}
		return nil
	})
}
