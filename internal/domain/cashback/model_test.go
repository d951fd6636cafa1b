package cashback

import (
	"math/rand"
	"testing"

	ierr "github.com/clubpulse/clubpulse/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccrueAndRedeemKeepInvariant(t *testing.T) {
	b := &Balance{SubscriberID: "sub_1", PartnerID: "ptnr_1"}

	b.Accrue(decimal.RequireFromString("10.50"))
	b.Accrue(decimal.RequireFromString("4.25"))
	require.NoError(t, b.Validate())
	assert.True(t, b.Balance.Equal(decimal.RequireFromString("14.75")))

	require.NoError(t, b.Redeem(decimal.NewFromInt(5)))
	require.NoError(t, b.Validate())
	assert.True(t, b.Balance.Equal(decimal.RequireFromString("9.75")))
	assert.True(t, b.TotalEarned.Equal(decimal.RequireFromString("14.75")))
	assert.True(t, b.TotalUsed.Equal(decimal.NewFromInt(5)))
}

func TestRedeemExceedingBalance(t *testing.T) {
	b := &Balance{SubscriberID: "sub_1", PartnerID: "ptnr_1"}
	b.Accrue(decimal.NewFromInt(10))

	err := b.Redeem(decimal.NewFromInt(11))
	require.Error(t, err)
	assert.True(t, ierr.IsInsufficientCashback(err))

	// A failed redemption leaves the ledger untouched
	require.NoError(t, b.Validate())
	assert.True(t, b.Balance.Equal(decimal.NewFromInt(10)))
	assert.True(t, b.TotalUsed.IsZero())
}

func TestInvariantUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1729))

	for seq := 0; seq < 20; seq++ {
		b := &Balance{SubscriberID: "sub_rand", PartnerID: "ptnr_rand"}

		for op := 0; op < 100; op++ {
			amount := decimal.NewFromInt(rng.Int63n(500)).Div(decimal.NewFromInt(100))
			if rng.Intn(2) == 0 {
				b.Accrue(amount)
			} else if err := b.Redeem(amount); err != nil {
				require.True(t, ierr.IsInsufficientCashback(err))
			}
			require.NoError(t, b.Validate(), "sequence %d op %d", seq, op)
		}

		assert.True(t, b.Balance.Equal(b.TotalEarned.Sub(b.TotalUsed)))
	}
}

func TestValidateRejectsBrokenLedger(t *testing.T) {
	b := &Balance{
		SubscriberID: "sub_1",
		PartnerID:    "ptnr_1",
		Balance:      decimal.NewFromInt(10),
		TotalEarned:  decimal.NewFromInt(5),
		TotalUsed:    decimal.Zero,
	}
	require.Error(t, b.Validate())

	b.Balance = decimal.NewFromInt(-1)
	b.TotalEarned = decimal.NewFromInt(-1)
	require.Error(t, b.Validate())
}
