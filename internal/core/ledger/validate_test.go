package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmacharia/ledgerd/internal/core/domain"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func validTransfer() TransferRequest {
	return TransferRequest{
		From:     "A-1002",
		To:       "A-1003",
		Amount:   json.Number("250"),
		Currency: "usd",
		TxID:     "tx1",
	}
}

func TestParseTransferDefaults(t *testing.T) {
	before := time.Now().UTC()
	in, err := ParseTransfer(validTransfer())
	require.NoError(t, err)

	assert.Equal(t, "A-1002", in.From)
	assert.Equal(t, "A-1003", in.To)
	assert.Equal(t, "USD", in.Currency, "currency is upper-cased")
	assert.Equal(t, "api", in.Channel, "channel defaults to api")
	assert.True(t, in.Amount.Equal(mustDecimal(t, "250")))
	assert.False(t, in.CreatedAt.Before(before), "createdAt defaults to now")
}

func TestParseTransferExplicitChannelAndTimestamp(t *testing.T) {
	req := validTransfer()
	req.Channel = "batch"
	req.CreatedAt = "2025-04-01T12:00:00Z"

	in, err := ParseTransfer(req)
	require.NoError(t, err)
	assert.Equal(t, "batch", in.Channel)
	assert.Equal(t, time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC), in.CreatedAt)
}

func TestParseTransferBareTimestamp(t *testing.T) {
	req := validTransfer()
	req.CreatedAt = "2025-04-01T12:30:00"

	in, err := ParseTransfer(req)
	require.NoError(t, err)
	assert.Equal(t, 12, in.CreatedAt.Hour())
	assert.Equal(t, 30, in.CreatedAt.Minute())
}

func TestParseTimestampShapes(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-04-01T12:00:00Z", time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-04-01T12:00:00", time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-04-01 12:00:00", time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)},
		{"2025-04-01T12:00:00.500000", time.Date(2025, 4, 1, 12, 0, 0, 500000000, time.UTC)},
		{"2025-04-01 12:00:00.500000", time.Date(2025, 4, 1, 12, 0, 0, 500000000, time.UTC)},
		{"2025-04-01", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimestamp(tc.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestParseTransferSpaceSeparatedTimestamp(t *testing.T) {
	req := validTransfer()
	req.CreatedAt = "2025-04-01 12:30:00"

	in, err := ParseTransfer(req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 12, 30, 0, 0, time.UTC), in.CreatedAt)
}

func TestParseTransferMissingFields(t *testing.T) {
	cases := map[string]func(*TransferRequest){
		"from":     func(r *TransferRequest) { r.From = "" },
		"to":       func(r *TransferRequest) { r.To = " " },
		"amount":   func(r *TransferRequest) { r.Amount = "" },
		"currency": func(r *TransferRequest) { r.Currency = "" },
		"txId":     func(r *TransferRequest) { r.TxID = "" },
	}
	for name, blank := range cases {
		t.Run(name, func(t *testing.T) {
			req := validTransfer()
			blank(&req)
			_, err := ParseTransfer(req)
			assert.ErrorIs(t, err, domain.ErrMissingFields)
		})
	}
}

func TestParseTransferAmount(t *testing.T) {
	cases := []struct {
		amount  string
		wantErr error
	}{
		{"0", nil},
		{"0.01", nil},
		{"100.50", nil},
		{"-1", domain.ErrInvalidAmount},
		{"-0.01", domain.ErrInvalidAmount},
		{"abc", domain.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			req := validTransfer()
			req.Amount = json.Number(tc.amount)
			_, err := ParseTransfer(req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTransferBadTimestamp(t *testing.T) {
	req := validTransfer()
	req.CreatedAt = "yesterday"
	_, err := ParseTransfer(req)
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)
}

func TestParsePayment(t *testing.T) {
	in, err := ParsePayment(PaymentRequest{
		From:       "A-1002",
		MerchantID: "M-Grocery",
		Amount:     json.Number("19.99"),
		Currency:   "usd",
		TxID:       "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, "M-Grocery", in.MerchantID)
	assert.Equal(t, "USD", in.Currency)
	assert.Equal(t, "api", in.Channel)
	assert.True(t, in.Amount.Equal(mustDecimal(t, "19.99")))
}

func TestParsePaymentMissingMerchant(t *testing.T) {
	_, err := ParsePayment(PaymentRequest{
		From:     "A-1002",
		Amount:   json.Number("5"),
		Currency: "USD",
		TxID:     "p1",
	})
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}
