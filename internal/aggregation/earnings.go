package aggregation

import (
	"math"

	"handicapper/internal/models"
)

// DefaultPlatformFeeRate is the share of each sale kept by the platform.
const DefaultPlatformFeeRate = 0.15

// PlatformFee is applied once, when a transaction is recorded. Results are
// rounded to cents.
func PlatformFee(amount, rate float64) (fee, net float64) {
	fee = roundCents(amount * rate)
	net = roundCents(amount - fee)
	return fee, net
}

// ComputeEarnings sums completed transactions. The stored PlatformFee of each
// transaction is trusted as is.
func ComputeEarnings(transactions []*models.Transaction) models.Earnings {
	var e models.Earnings
	for _, t := range transactions {
		if !t.IsCompleted() {
			continue
		}
		e.TransactionCount++
		e.TotalEarnings += t.Amount
		e.PlatformFees += t.PlatformFee
	}
	e.TotalEarnings = roundCents(e.TotalEarnings)
	e.PlatformFees = roundCents(e.PlatformFees)
	e.NetEarnings = roundCents(e.TotalEarnings - e.PlatformFees)
	return e
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
