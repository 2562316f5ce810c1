package config

import (
	"fmt"
	"time"

	"goride-ledger/internal/utils"
)

// LedgerConfig holds the single global fee and refund policy. Rates are in
// basis points.
type LedgerConfig struct {
	PlatformFeeBps         int64         `yaml:"platform_fee_bps"`
	DriverCancelRefundBps  int64         `yaml:"driver_cancel_refund_bps"`
	PassengerRefundBps     int64         `yaml:"passenger_refund_bps"`
	RejectionRefundBps     int64         `yaml:"rejection_refund_bps"`
	ReconciliationEnabled  bool          `yaml:"reconciliation_enabled"`
	ReconciliationInterval time.Duration `yaml:"reconciliation_interval"`
}

func loadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		PlatformFeeBps:         getEnvAsInt64("LEDGER_PLATFORM_FEE_BPS", utils.DefaultPlatformFeeBps),
		DriverCancelRefundBps:  getEnvAsInt64("LEDGER_DRIVER_CANCEL_REFUND_BPS", utils.DefaultDriverCancelRefundBps),
		PassengerRefundBps:     getEnvAsInt64("LEDGER_PASSENGER_REFUND_BPS", utils.DefaultPassengerRefundBps),
		RejectionRefundBps:     getEnvAsInt64("LEDGER_REJECTION_REFUND_BPS", utils.DefaultRejectionRefundBps),
		ReconciliationEnabled:  getEnvAsBool("LEDGER_RECONCILIATION_ENABLED", true),
		ReconciliationInterval: getEnvAsDuration("LEDGER_RECONCILIATION_INTERVAL", utils.ReconciliationInterval),
	}
}

func (c *LedgerConfig) Validate() error {
	rates := map[string]int64{
		"LEDGER_PLATFORM_FEE_BPS":         c.PlatformFeeBps,
		"LEDGER_DRIVER_CANCEL_REFUND_BPS": c.DriverCancelRefundBps,
		"LEDGER_PASSENGER_REFUND_BPS":     c.PassengerRefundBps,
		"LEDGER_REJECTION_REFUND_BPS":     c.RejectionRefundBps,
	}
	for name, bps := range rates {
		if bps < 0 || bps > utils.BasisPointsScale {
			return fmt.Errorf("%s must be between 0 and %d, got %d", name, utils.BasisPointsScale, bps)
		}
	}
	if c.ReconciliationEnabled && c.ReconciliationInterval <= 0 {
		return fmt.Errorf("LEDGER_RECONCILIATION_INTERVAL must be positive")
	}
	return nil
}
