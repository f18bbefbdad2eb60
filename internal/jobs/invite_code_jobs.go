package jobs

import (
	"context"
	"errors"
	"time"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
)

const (
	// The external validator accepts at most 5 codes per request.
	reconcileChunkSize = 5
	// Upper bound per run so a huge pool cannot pin the validator.
	reconcileMaxCodes = 200
	// Verdicts older than this are considered stale and re-checked.
	reconcileStaleAfter = 7 * 24 * time.Hour

	reconcileTimeout = 5 * time.Minute
)

// ReconcileInviteCodes re-validates stale invite codes against the external
// validator, oldest verdicts first, in chunks the validator accepts.
func (jr *JobRunner) ReconcileInviteCodes() {
	jr.runWithRecovery("reconcile_invite_codes", func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		cutoff := time.Now().Add(-reconcileStaleAfter)
		stale, err := jr.store.ListStaleChecked(ctx, cutoff, reconcileMaxCodes)
		if err != nil {
			logger.Error("Failed to list stale invite codes", "error", err)
			return
		}
		if len(stale) == 0 {
			logger.Info("No stale invite codes to reconcile")
			return
		}

		var checked, failed int
		for start := 0; start < len(stale); start += reconcileChunkSize {
			end := start + reconcileChunkSize
			if end > len(stale) {
				end = len(stale)
			}

			codes := make([]string, 0, end-start)
			for _, ic := range stale[start:end] {
				codes = append(codes, ic.Code)
			}

			results, err := jr.services.InviteCodes.BatchCheck(ctx, codes, nil)
			if err != nil {
				// A misconfigured validator fails every chunk the same way,
				// so stop instead of hammering it.
				if errors.Is(err, domain.ErrNotConfigured) {
					logger.Warn("Invite code validator not configured, skipping reconcile")
					return
				}
				logger.Error("Invite code check chunk failed", "codes", len(codes), "error", err)
				failed += len(codes)
				continue
			}
			checked += len(results)
		}

		logger.Info("Invite code reconcile finished", "checked", checked, "failed", failed)
	})
}
