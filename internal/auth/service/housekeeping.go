package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// Retention windows for rows that no longer affect any security
// decision. Inactive sessions and terminal invitations are kept a while
// for audit, then purged.
const (
	DefaultSessionRetention    = 30 * 24 * time.Hour
	DefaultInvitationRetention = 30 * 24 * time.Hour
)

// HousekeepingService purges dead rows. There is no background
// scheduler — inactivity expiry is lazy — so purging runs only when an
// admin asks for it.
type HousekeepingService struct {
	Store store.Store

	SessionRetention    time.Duration
	InvitationRetention time.Duration
}

// HousekeepingReport summarizes one purge run.
type HousekeepingReport struct {
	SessionsPurged    int64 `json:"sessions_purged"`
	InvitationsPurged int64 `json:"invitations_purged"`
}

// Run deletes inactive sessions and terminal invitations older than the
// retention windows.
func (s *HousekeepingService) Run(ctx context.Context) (HousekeepingReport, error) {
	now := time.Now().UTC()

	sessionCutoff := now.Add(-s.retention(s.SessionRetention, DefaultSessionRetention))
	inviteCutoff := now.Add(-s.retention(s.InvitationRetention, DefaultInvitationRetention))

	var report HousekeepingReport
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if report.SessionsPurged, err = tx.Sessions().DeleteInactiveBefore(ctx, sessionCutoff); err != nil {
			return err
		}
		report.InvitationsPurged, err = tx.Invitations().DeleteTerminalBefore(ctx, inviteCutoff)
		return err
	})
	if err != nil {
		return HousekeepingReport{}, err
	}

	slogx.FromContext(ctx).Info("housekeeping complete",
		slog.Int64("sessions_purged", report.SessionsPurged),
		slog.Int64("invitations_purged", report.InvitationsPurged),
	)
	return report, nil
}

func (s *HousekeepingService) retention(configured, fallback time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	return fallback
}
