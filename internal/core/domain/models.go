package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is identified externally by CustomerID; ID is the storage surrogate.
type Customer struct {
	ID         int64  `json:"-"`
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
}

// Account is the monetary unit every transfer and payment references.
type Account struct {
	ID        int64  `json:"-"`
	AccountNo string `json:"accountNo"`
	Type      string `json:"type"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

// Merchant receives payments.
type Merchant struct {
	ID         int64  `json:"-"`
	MerchantID string `json:"merchantId"`
	Name       string `json:"name"`
	MCC        string `json:"mcc"`
}

// Ownership links a customer to an account. The (customer, account) pair is unique.
type Ownership struct {
	ID         int64
	CustomerID int64
	AccountID  int64
	Since      time.Time
}

// Transfer is an account-to-account movement. TxID is the idempotency key.
type Transfer struct {
	ID            int64
	TxID          string
	Amount        decimal.Decimal
	Currency      string
	Channel       string
	CreatedAt     time.Time
	FromAccountID int64
	ToAccountID   int64
}

// Payment is an account-to-merchant movement.
type Payment struct {
	ID            int64
	TxID          string
	Amount        decimal.Decimal
	Currency      string
	Channel       string
	CreatedAt     time.Time
	FromAccountID int64
	MerchantID    int64
}

// Ledger entry kinds, as they appear on the wire.
const (
	KindTransfer = "Transfers"
	KindPay      = "Pays"
)

// LedgerEntry is the unified history row spanning both transaction kinds.
// Target is the destination account number for transfers and the merchant id
// for payments.
type LedgerEntry struct {
	Kind      string    `json:"kind"`
	FromAcct  string    `json:"fromAcct"`
	Target    string    `json:"target"`
	TxID      string    `json:"txId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
}

// TransferInput is a validated recordTransfer intent. Natural keys only;
// storage resolves them to rows at write time.
type TransferInput struct {
	From      string
	To        string
	Amount    decimal.Decimal
	Currency  string
	TxID      string
	Channel   string
	CreatedAt time.Time
}

// PaymentInput is a validated recordPayment intent.
type PaymentInput struct {
	From       string
	MerchantID string
	Amount     decimal.Decimal
	Currency   string
	TxID       string
	Channel    string
	CreatedAt  time.Time
}
