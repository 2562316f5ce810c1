package services

import (
	"goride-ledger/internal/config"
	"goride-ledger/internal/models"
	"goride-ledger/internal/utils"
)

// FeePolicy is the global fee and refund schedule, in basis points.
type FeePolicy struct {
	PlatformFeeBps        int64
	DriverCancelRefundBps int64
	PassengerRefundBps    int64
	RejectionRefundBps    int64
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		PlatformFeeBps:        utils.DefaultPlatformFeeBps,
		DriverCancelRefundBps: utils.DefaultDriverCancelRefundBps,
		PassengerRefundBps:    utils.DefaultPassengerRefundBps,
		RejectionRefundBps:    utils.DefaultRejectionRefundBps,
	}
}

func NewFeePolicy(cfg *config.LedgerConfig) FeePolicy {
	return FeePolicy{
		PlatformFeeBps:        cfg.PlatformFeeBps,
		DriverCancelRefundBps: cfg.DriverCancelRefundBps,
		PassengerRefundBps:    cfg.PassengerRefundBps,
		RejectionRefundBps:    cfg.RejectionRefundBps,
	}
}

// RefundBps returns the share of a hold given back for the given canceller.
func (p FeePolicy) RefundBps(cancelledBy models.CancelledBy) (int64, error) {
	switch cancelledBy {
	case models.CancelledByDriver:
		return p.DriverCancelRefundBps, nil
	case models.CancelledByPassenger:
		return p.PassengerRefundBps, nil
	case models.CancelledByRejection:
		return p.RejectionRefundBps, nil
	}
	return 0, ErrInvalidTransition
}

// ComputePayout splits a settled amount into platform fee and driver net. The
// driver's share is truncated and the fee takes the remainder, so the two
// always add up to amount.
func ComputePayout(amount, feeBps int64) (platformFee, driverNet int64, err error) {
	if amount < 0 {
		return 0, 0, ErrInvalidAmount
	}
	if !validBps(feeBps) {
		return 0, 0, ErrInvalidRate
	}

	driverNet = applyBps(amount, utils.BasisPointsScale-feeBps)
	return amount - driverNet, driverNet, nil
}

// ComputeRefund returns the part of heldAmount handed back to the passenger.
func ComputeRefund(heldAmount int64, cancelledBy models.CancelledBy, policy FeePolicy) (int64, error) {
	bps, err := policy.RefundBps(cancelledBy)
	if err != nil {
		return 0, err
	}
	return RefundAmount(heldAmount, bps)
}

func RefundAmount(heldAmount, refundBps int64) (int64, error) {
	if heldAmount < 0 {
		return 0, ErrInvalidAmount
	}
	if !validBps(refundBps) {
		return 0, ErrInvalidRate
	}
	return applyBps(heldAmount, refundBps), nil
}

func validBps(bps int64) bool {
	return bps >= 0 && bps <= utils.BasisPointsScale
}

// applyBps computes amount*bps/scale truncated toward zero for non-negative
// inputs without forming the full product.
func applyBps(amount, bps int64) int64 {
	q, r := amount/utils.BasisPointsScale, amount%utils.BasisPointsScale
	return q*bps + r*bps/utils.BasisPointsScale
}
