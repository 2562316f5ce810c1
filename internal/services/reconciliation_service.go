package services

import (
	"context"
	"errors"
	"time"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AlertWalletMismatch = "wallet_ledger_mismatch"
	AlertDanglingHold   = "dangling_hold"
	AlertOrphanHold     = "orphan_hold"
	AlertHalfSettled    = "half_applied_settlement"
)

type ReconciliationReport struct {
	StartedAt        time.Time                  `json:"started_at"`
	FinishedAt       time.Time                  `json:"finished_at"`
	WalletsChecked   int                        `json:"wallets_checked"`
	WalletMismatches []*WalletReport            `json:"wallet_mismatches"`
	DanglingHolds    []primitive.ObjectID       `json:"dangling_holds"`
	HalfSettled      []primitive.ObjectID       `json:"half_settled"`
	RidesResumed     []*models.RideCloseSummary `json:"rides_resumed"`
	Errors           []string                   `json:"errors,omitempty"`
}

// Healthy reports whether the sweep found nothing that needs an operator.
func (r *ReconciliationReport) Healthy() bool {
	return len(r.WalletMismatches) == 0 && len(r.DanglingHolds) == 0 && len(r.HalfSettled) == 0 && len(r.Errors) == 0
}

// ReconciliationService audits the ledger. Inconsistencies are raised as
// integrity alerts and never corrected automatically; the only repair it makes
// is resuming interrupted ride closes through the normal booking transitions.
type ReconciliationService interface {
	Run(ctx context.Context) (*ReconciliationReport, error)
	Start(ctx context.Context, interval time.Duration)
}

type reconciliationService struct {
	repos  *interfaces.Repositories
	wallet WalletService
	rides  RideService
	logger *logger.Logger
}

func NewReconciliationService(repos *interfaces.Repositories, wallet WalletService, rides RideService, log *logger.Logger) ReconciliationService {
	return &reconciliationService{
		repos:  repos,
		wallet: wallet,
		rides:  rides,
		logger: log.WithField("component", "reconciliation"),
	}
}

func (s *reconciliationService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.Run(ctx)
			if err != nil {
				s.logger.WithError(err).Error("Reconciliation sweep failed")
				continue
			}
			s.logger.WithFields(map[string]interface{}{
				"wallets_checked": report.WalletsChecked,
				"healthy":         report.Healthy(),
				"rides_resumed":   len(report.RidesResumed),
			}).Info("Reconciliation sweep finished")
		}
	}
}

func (s *reconciliationService) Run(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		StartedAt:        time.Now(),
		WalletMismatches: []*WalletReport{},
		DanglingHolds:    []primitive.ObjectID{},
		HalfSettled:      []primitive.ObjectID{},
		RidesResumed:     []*models.RideCloseSummary{},
	}

	if err := s.checkWallets(ctx, report); err != nil {
		return nil, err
	}
	if err := s.checkActiveHolds(ctx, report); err != nil {
		return nil, err
	}
	if err := s.checkSettledHolds(ctx, report); err != nil {
		return nil, err
	}
	if err := s.resumeRideCloses(ctx, report); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now()
	return report, nil
}

func (s *reconciliationService) checkWallets(ctx context.Context, report *ReconciliationReport) error {
	params := &utils.PaginationParams{Page: 1, PageSize: utils.MaxPageSize, Sort: "created_at", Order: "asc"}
	for {
		wallets, total, err := s.repos.Wallets.List(ctx, params)
		if err != nil {
			return err
		}

		for _, wallet := range wallets {
			report.WalletsChecked++
			result, err := s.wallet.VerifyWallet(ctx, wallet.UserID)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			if !result.Consistent {
				report.WalletMismatches = append(report.WalletMismatches, result)
				s.logger.LogIntegrityAlert(AlertWalletMismatch, map[string]interface{}{
					"user_id":          wallet.UserID.Hex(),
					"wallet_available": result.Wallet.AvailableBalance,
					"wallet_held":      result.Wallet.HeldAmount,
					"ledger_available": result.Ledger.Available,
					"ledger_held":      result.Ledger.Held,
				})
			}
		}

		if int64(params.Page*params.PageSize) >= total || len(wallets) == 0 {
			return nil
		}
		params.Page++
	}
}

// checkActiveHolds flags holds still active although their booking is
// closed, or that belong to no booking at all.
func (s *reconciliationService) checkActiveHolds(ctx context.Context, report *ReconciliationReport) error {
	holds, err := s.repos.Holds.ListByStatus(ctx, models.HoldStatusActive)
	if err != nil {
		return err
	}

	for _, hold := range holds {
		booking, err := s.repos.Bookings.GetByID(ctx, hold.BookingID)
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			report.DanglingHolds = append(report.DanglingHolds, hold.BookingID)
			s.logger.LogIntegrityAlert(AlertOrphanHold, map[string]interface{}{
				"booking_id": hold.BookingID.Hex(),
				"user_id":    hold.UserID.Hex(),
				"amount":     hold.Amount,
			})
		case err != nil:
			report.Errors = append(report.Errors, err.Error())
		case booking.Status.IsTerminal():
			report.DanglingHolds = append(report.DanglingHolds, hold.BookingID)
			s.logger.LogIntegrityAlert(AlertDanglingHold, map[string]interface{}{
				"booking_id":     hold.BookingID.Hex(),
				"booking_status": string(booking.Status),
				"user_id":        hold.UserID.Hex(),
				"amount":         hold.Amount,
			})
		}
	}
	return nil
}

func (s *reconciliationService) checkSettledHolds(ctx context.Context, report *ReconciliationReport) error {
	holds, err := s.repos.Holds.ListByStatus(ctx, models.HoldStatusSettled)
	if err != nil {
		return err
	}

	for _, hold := range holds {
		_, err := s.repos.Settlements.GetByBookingID(ctx, hold.BookingID)
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			report.HalfSettled = append(report.HalfSettled, hold.BookingID)
			s.logger.LogIntegrityAlert(AlertHalfSettled, map[string]interface{}{
				"booking_id": hold.BookingID.Hex(),
				"user_id":    hold.UserID.Hex(),
				"amount":     hold.Amount,
			})
		case err != nil:
			report.Errors = append(report.Errors, err.Error())
		}
	}
	return nil
}

// resumeRideCloses finishes bookings left open on rides that already ended or
// were cancelled, for instance after a crash in the middle of EndRide.
func (s *reconciliationService) resumeRideCloses(ctx context.Context, report *ReconciliationReport) error {
	for _, status := range []models.RideStatus{models.RideStatusCompleted, models.RideStatusCancelled} {
		rides, err := s.repos.Rides.ListByStatus(ctx, status)
		if err != nil {
			return err
		}

		for _, ride := range rides {
			open, err := s.repos.Bookings.ListByRide(ctx, ride.ID, models.OpenBookingStatuses...)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			if len(open) == 0 {
				continue
			}

			summary, err := s.rides.CloseRideBookings(ctx, ride.ID)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			report.RidesResumed = append(report.RidesResumed, summary)
			s.logger.WithRideID(ride.ID).WithFields(map[string]interface{}{
				"completed": len(summary.Completed),
				"rejected":  len(summary.Rejected),
				"cancelled": len(summary.Cancelled),
				"failed":    len(summary.Failed),
			}).Warn("Resumed interrupted ride close")
		}
	}
	return nil
}
