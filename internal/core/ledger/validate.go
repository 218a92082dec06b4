package ledger

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmacharia/ledgerd/internal/core/domain"
)

// DefaultChannel is recorded when a write does not name its originating channel.
const DefaultChannel = "api"

// TransferRequest is the raw recordTransfer payload before validation.
type TransferRequest struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Amount    json.Number `json:"amount"`
	Currency  string      `json:"currency"`
	TxID      string      `json:"txId"`
	Channel   string      `json:"channel"`
	CreatedAt string      `json:"createdAt"`
}

// PaymentRequest is the raw recordPayment payload before validation.
type PaymentRequest struct {
	From       string      `json:"from"`
	MerchantID string      `json:"merchantId"`
	Amount     json.Number `json:"amount"`
	Currency   string      `json:"currency"`
	TxID       string      `json:"txId"`
	Channel    string      `json:"channel"`
	CreatedAt  string      `json:"createdAt"`
}

// ParseTransfer validates a transfer request and applies defaults.
// Checks run in a fixed order: required fields first, then the amount.
// Reference resolution happens later, at the store.
func ParseTransfer(req TransferRequest) (domain.TransferInput, error) {
	if anyBlank(req.From, req.To, string(req.Amount), req.Currency, req.TxID) {
		return domain.TransferInput{}, domain.ErrMissingFields
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return domain.TransferInput{}, err
	}
	createdAt, err := resolveCreatedAt(req.CreatedAt)
	if err != nil {
		return domain.TransferInput{}, err
	}
	return domain.TransferInput{
		From:      req.From,
		To:        req.To,
		Amount:    amt,
		Currency:  strings.ToUpper(req.Currency),
		TxID:      req.TxID,
		Channel:   defaultIfBlank(req.Channel, DefaultChannel),
		CreatedAt: createdAt,
	}, nil
}

// ParsePayment validates a payment request and applies defaults, mirroring
// ParseTransfer with a merchant in place of the destination account.
func ParsePayment(req PaymentRequest) (domain.PaymentInput, error) {
	if anyBlank(req.From, req.MerchantID, string(req.Amount), req.Currency, req.TxID) {
		return domain.PaymentInput{}, domain.ErrMissingFields
	}
	amt, err := parseAmount(req.Amount)
	if err != nil {
		return domain.PaymentInput{}, err
	}
	createdAt, err := resolveCreatedAt(req.CreatedAt)
	if err != nil {
		return domain.PaymentInput{}, err
	}
	return domain.PaymentInput{
		From:       req.From,
		MerchantID: req.MerchantID,
		Amount:     amt,
		Currency:   strings.ToUpper(req.Currency),
		TxID:       req.TxID,
		Channel:    defaultIfBlank(req.Channel, DefaultChannel),
		CreatedAt:  createdAt,
	}, nil
}

// timestampLayouts covers the ISO-8601 shapes callers and import files use:
// with or without an offset, T or space separator, optional fractional
// seconds, and a bare date.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp in any of timestampLayouts.
func ParseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func parseAmount(n json.Number) (decimal.Decimal, error) {
	amt, err := decimal.NewFromString(strings.TrimSpace(string(n)))
	if err != nil || amt.IsNegative() {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	return amt, nil
}

func resolveCreatedAt(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Now().UTC(), nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidTimestamp
	}
	return t, nil
}

func anyBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

func defaultIfBlank(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
