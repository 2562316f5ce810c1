package services

import (
	"context"
	"errors"
	"fmt"

	"goride-ledger/internal/models"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/utils"
	"goride-ledger/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Descriptions attached to ledger lines that share a type.
const (
	DescriptionRidePayment     = "ride_payment"
	DescriptionRideEarning     = "ride_earning"
	DescriptionCancellationFee = "cancellation_fee"
)

type WalletService interface {
	TopUp(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Transaction, error)

	// Hold moves amount from available to held funds for bookingID.
	Hold(ctx context.Context, userID primitive.ObjectID, amount int64, bookingID primitive.ObjectID) (*models.Hold, error)
	// Release returns the whole hold to available funds.
	Release(ctx context.Context, bookingID primitive.ObjectID) (*models.RefundResult, error)
	// Refund returns refundBps of the hold and forfeits the rest.
	Refund(ctx context.Context, bookingID primitive.ObjectID, refundBps int64) (*models.RefundResult, error)
	// Settle debits the hold and credits the driver net of the platform fee,
	// across both wallets in one transaction.
	Settle(ctx context.Context, bookingID, driverID primitive.ObjectID, feeBps int64) (*models.Settlement, error)

	GetBalance(ctx context.Context, userID primitive.ObjectID) (*models.WalletBalance, error)
	GetTransactions(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error)
	VerifyWallet(ctx context.Context, userID primitive.ObjectID) (*WalletReport, error)
	// RefreshBalance writes the committed projections of userIDs to the
	// cache. Inside a transaction it does nothing; the caller refreshes after
	// commit.
	RefreshBalance(ctx context.Context, userIDs ...primitive.ObjectID)
}

// WalletReport compares a wallet projection with the replay of its log.
type WalletReport struct {
	UserID     primitive.ObjectID    `json:"user_id"`
	Wallet     *models.WalletBalance `json:"wallet"`
	Ledger     *models.LedgerSums    `json:"ledger"`
	Consistent bool                  `json:"consistent"`
}

type walletService struct {
	repos    *interfaces.Repositories
	cache    CacheService
	logger   *logger.Logger
	currency string
}

func NewWalletService(repos *interfaces.Repositories, cache CacheService, currency string, log *logger.Logger) WalletService {
	return &walletService{
		repos:    repos,
		cache:    cache,
		logger:   log,
		currency: currency,
	}
}

func (s *walletService) TopUp(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var tx *models.Transaction
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repos.Wallets.Ensure(ctx, userID, s.currency); err != nil {
			return err
		}
		if _, err := s.repos.Wallets.ApplyDelta(ctx, userID, amount, 0); err != nil {
			return fmt.Errorf("failed to credit wallet: %w", err)
		}
		tx = models.NewTransaction(userID, models.TransactionTypeTopUp, amount, nil)
		return s.repos.Transactions.Append(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.RefreshBalance(ctx, userID)
	s.logger.LogLedgerEvent(userID, string(tx.Type), tx.Amount, s.currency)
	return tx, nil
}

func (s *walletService) Withdraw(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var tx *models.Transaction
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.debitAvailable(ctx, userID, amount, 0); err != nil {
			return err
		}
		tx = models.NewTransaction(userID, models.TransactionTypeWithdrawal, amount, nil)
		return s.repos.Transactions.Append(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.RefreshBalance(ctx, userID)
	s.logger.LogLedgerEvent(userID, string(tx.Type), tx.Amount, s.currency)
	return tx, nil
}

func (s *walletService) Hold(ctx context.Context, userID primitive.ObjectID, amount int64, bookingID primitive.ObjectID) (*models.Hold, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var hold *models.Hold
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.debitAvailable(ctx, userID, amount, amount); err != nil {
			return err
		}

		tx := models.NewTransaction(userID, models.TransactionTypeHold, amount, &bookingID)
		if err := s.repos.Transactions.Append(ctx, tx); err != nil {
			return err
		}

		hold = &models.Hold{
			BookingID:     bookingID,
			UserID:        userID,
			Amount:        amount,
			Status:        models.HoldStatusActive,
			TransactionID: tx.ID,
		}
		if err := s.repos.Holds.Create(ctx, hold); err != nil {
			if errors.Is(err, interfaces.ErrDuplicate) {
				return ErrHoldExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.RefreshBalance(ctx, userID)
	s.logger.WithBookingID(bookingID).LogLedgerEvent(userID, string(models.TransactionTypeHold), -amount, s.currency)
	return hold, nil
}

func (s *walletService) Release(ctx context.Context, bookingID primitive.ObjectID) (*models.RefundResult, error) {
	var result *models.RefundResult
	var hold *models.Hold
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		hold, err = s.closeHold(ctx, bookingID, models.HoldStatusReleased)
		if err != nil {
			return err
		}

		if _, err := s.repos.Wallets.ApplyDelta(ctx, hold.UserID, hold.Amount, -hold.Amount); err != nil {
			return fmt.Errorf("failed to release hold: %w", err)
		}
		tx := models.NewTransaction(hold.UserID, models.TransactionTypeRelease, hold.Amount, &bookingID)
		if err := s.repos.Transactions.Append(ctx, tx); err != nil {
			return err
		}

		result = &models.RefundResult{
			BookingID:    bookingID,
			HeldAmount:   hold.Amount,
			RefundAmount: hold.Amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.RefreshBalance(ctx, hold.UserID)
	s.logger.WithBookingID(bookingID).LogLedgerEvent(hold.UserID, string(models.TransactionTypeRelease), hold.Amount, s.currency)
	return result, nil
}

func (s *walletService) Refund(ctx context.Context, bookingID primitive.ObjectID, refundBps int64) (*models.RefundResult, error) {
	if !validBps(refundBps) {
		return nil, ErrInvalidRate
	}

	var result *models.RefundResult
	var hold *models.Hold
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		hold, err = s.closeHold(ctx, bookingID, models.HoldStatusRefunded)
		if err != nil {
			return err
		}

		refund, err := RefundAmount(hold.Amount, refundBps)
		if err != nil {
			return err
		}
		fee := hold.Amount - refund

		if _, err := s.repos.Wallets.ApplyDelta(ctx, hold.UserID, refund, -hold.Amount); err != nil {
			return fmt.Errorf("failed to refund hold: %w", err)
		}

		if refund > 0 {
			tx := models.NewTransaction(hold.UserID, models.TransactionTypeRefund, refund, &bookingID)
			if err := s.repos.Transactions.Append(ctx, tx); err != nil {
				return err
			}
		}
		// The forfeited part is logged as a payment so every decrease of
		// held funds has a ledger line. It is not credited to any wallet.
		if fee > 0 {
			tx := models.NewTransaction(hold.UserID, models.TransactionTypePayment, fee, &bookingID)
			tx.Description = DescriptionCancellationFee
			if err := s.repos.Transactions.Append(ctx, tx); err != nil {
				return err
			}
		}

		result = &models.RefundResult{
			BookingID:       bookingID,
			HeldAmount:      hold.Amount,
			RefundAmount:    refund,
			CancellationFee: fee,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.RefreshBalance(ctx, hold.UserID)
	s.logger.WithBookingID(bookingID).WithField("cancellation_fee", result.CancellationFee).
		LogLedgerEvent(hold.UserID, string(models.TransactionTypeRefund), result.RefundAmount, s.currency)
	return result, nil
}

func (s *walletService) Settle(ctx context.Context, bookingID, driverID primitive.ObjectID, feeBps int64) (*models.Settlement, error) {
	var settlement *models.Settlement
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		hold, err := s.closeHold(ctx, bookingID, models.HoldStatusSettled)
		if err != nil {
			return err
		}

		fee, net, err := ComputePayout(hold.Amount, feeBps)
		if err != nil {
			return err
		}

		if _, err := s.repos.Wallets.ApplyDelta(ctx, hold.UserID, 0, -hold.Amount); err != nil {
			return fmt.Errorf("failed to debit passenger: %w", err)
		}
		payment := models.NewTransaction(hold.UserID, models.TransactionTypePayment, hold.Amount, &bookingID)
		payment.Description = DescriptionRidePayment
		if err := s.repos.Transactions.Append(ctx, payment); err != nil {
			return err
		}

		if _, err := s.repos.Wallets.Ensure(ctx, driverID, s.currency); err != nil {
			return err
		}
		if _, err := s.repos.Wallets.ApplyDelta(ctx, driverID, net, 0); err != nil {
			return fmt.Errorf("failed to credit driver: %w", err)
		}
		earning := models.NewTransaction(driverID, models.TransactionTypeEarning, net, &bookingID)
		earning.Description = DescriptionRideEarning
		if err := s.repos.Transactions.Append(ctx, earning); err != nil {
			return err
		}

		settlement = &models.Settlement{
			BookingID:            bookingID,
			PassengerID:          hold.UserID,
			DriverID:             driverID,
			GrossAmount:          hold.Amount,
			PlatformFee:          fee,
			DriverNet:            net,
			FeeRateBps:           feeBps,
			PaymentTransactionID: payment.ID,
			EarningTransactionID: earning.ID,
		}
		if err := s.repos.Settlements.Create(ctx, settlement); err != nil {
			if errors.Is(err, interfaces.ErrDuplicate) {
				return ErrAlreadySettled
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.RefreshBalance(ctx, settlement.PassengerID, driverID)
	s.logger.WithBookingID(bookingID).WithFields(map[string]interface{}{
		"passenger_id": settlement.PassengerID.Hex(),
		"platform_fee": settlement.PlatformFee,
	}).LogLedgerEvent(driverID, string(models.TransactionTypeEarning), settlement.DriverNet, s.currency)
	return settlement, nil
}

func (s *walletService) GetBalance(ctx context.Context, userID primitive.ObjectID) (*models.WalletBalance, error) {
	key := cacheKey(utils.CacheBalancePrefix, userID)

	var balance models.WalletBalance
	if s.cache.Get(ctx, key, &balance) {
		return &balance, nil
	}

	wallet, err := s.repos.Wallets.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return nil, err
		}
		// wallets are created lazily; no wallet is an empty one
		return &models.WalletBalance{UserID: userID, Currency: s.currency}, nil
	}

	result := wallet.Balance()
	s.cache.Set(ctx, key, result, result.Version, utils.BalanceCacheTTL)
	return result, nil
}

func (s *walletService) GetTransactions(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Transaction, int64, error) {
	return s.repos.Transactions.ListByOwner(ctx, userID, params)
}

func (s *walletService) VerifyWallet(ctx context.Context, userID primitive.ObjectID) (*WalletReport, error) {
	report := &WalletReport{UserID: userID}
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		wallet, err := s.repos.Wallets.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		sums, err := s.repos.Transactions.SumByOwner(ctx, userID)
		if err != nil {
			return err
		}

		report.Wallet = wallet.Balance()
		report.Ledger = sums
		report.Consistent = wallet.AvailableBalance == sums.Available && wallet.HeldAmount == sums.Held
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *walletService) RefreshBalance(ctx context.Context, userIDs ...primitive.ObjectID) {
	if s.repos.Tx.InTransaction(ctx) {
		return
	}
	for _, userID := range userIDs {
		key := cacheKey(utils.CacheBalancePrefix, userID)
		wallet, err := s.repos.Wallets.GetByUserID(ctx, userID)
		if err != nil {
			s.logger.WithUserID(userID).WithError(err).Warn("Failed to refresh cached balance")
			s.cache.Delete(ctx, key)
			continue
		}
		balance := wallet.Balance()
		s.cache.Set(ctx, key, balance, balance.Version, utils.BalanceCacheTTL)
	}
}

// debitAvailable takes amount from available funds, optionally moving heldDelta
// into held funds. A missing wallet has no funds.
func (s *walletService) debitAvailable(ctx context.Context, userID primitive.ObjectID, amount, heldDelta int64) error {
	_, err := s.repos.Wallets.ApplyDelta(ctx, userID, -amount, heldDelta)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, interfaces.ErrNotFound), errors.Is(err, interfaces.ErrConditionFailed):
		return ErrInsufficientFunds
	default:
		return fmt.Errorf("failed to debit wallet: %w", err)
	}
}

// closeHold moves the booking's hold out of active. Losing the race to another
// release or settle is reported by what the hold became.
func (s *walletService) closeHold(ctx context.Context, bookingID primitive.ObjectID, to models.HoldStatus) (*models.Hold, error) {
	hold, err := s.repos.Holds.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	if !hold.IsActive() {
		return nil, holdClosedError(hold.Status)
	}

	updated, err := s.repos.Holds.Transition(ctx, bookingID, models.HoldStatusActive, to)
	if err != nil {
		if errors.Is(err, interfaces.ErrConditionFailed) {
			current, getErr := s.repos.Holds.GetByBookingID(ctx, bookingID)
			if getErr != nil {
				return nil, ErrAlreadyReleased
			}
			return nil, holdClosedError(current.Status)
		}
		return nil, err
	}
	return updated, nil
}

func holdClosedError(status models.HoldStatus) error {
	if status == models.HoldStatusSettled {
		return ErrAlreadySettled
	}
	return ErrAlreadyReleased
}
