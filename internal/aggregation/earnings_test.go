package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"handicapper/internal/models"
)

func TestPlatformFee(t *testing.T) {
	fee, net := PlatformFee(19.99, DefaultPlatformFeeRate)

	assert.Equal(t, 3.0, fee)
	assert.Equal(t, 16.99, net)
}

func TestComputeEarnings_CompletedOnly(t *testing.T) {
	txs := []*models.Transaction{
		{Amount: 10, PlatformFee: 1.5, Status: models.TransactionStatusCompleted},
		{Amount: 20, PlatformFee: 3, Status: models.TransactionStatusCompleted},
		{Amount: 50, PlatformFee: 7.5, Status: models.TransactionStatusRefunded},
		{Amount: 5, PlatformFee: 0.75, Status: models.TransactionStatusPending},
	}

	e := ComputeEarnings(txs)

	assert.Equal(t, 30.0, e.TotalEarnings)
	assert.Equal(t, 4.5, e.PlatformFees)
	assert.Equal(t, 25.5, e.NetEarnings)
	assert.Equal(t, 2, e.TransactionCount)
}

func TestComputeEarnings_TrustsStoredFee(t *testing.T) {
	txs := []*models.Transaction{
		{Amount: 100, PlatformFee: 10, Status: models.TransactionStatusCompleted},
	}

	e := ComputeEarnings(txs)

	assert.Equal(t, 10.0, e.PlatformFees)
	assert.Equal(t, 90.0, e.NetEarnings)
}

func TestComputeEarnings_Empty(t *testing.T) {
	assert.Equal(t, models.Earnings{}, ComputeEarnings(nil))
}
