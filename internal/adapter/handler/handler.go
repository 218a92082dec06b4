// Package handler exposes the HTTP surface: read endpoints degrade to
// zero/empty results, write endpoints report typed failures with the exact
// machine-readable messages callers match on.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/nmacharia/ledgerd/internal/core/domain"
)

// LedgerStore is the query/write engine surface the ledger handlers need.
type LedgerStore interface {
	Balance(ctx context.Context, accountNo string) (decimal.Decimal, error)
	CustomerLedger(ctx context.Context, customerID string) ([]domain.LedgerEntry, error)
	RecordTransfer(ctx context.Context, in domain.TransferInput) error
	RecordPayment(ctx context.Context, in domain.PaymentInput) error
}

// Directory is the entity-store surface behind the listing endpoints.
type Directory interface {
	Ping(ctx context.Context) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	SearchMerchants(ctx context.Context, q string) ([]domain.Merchant, error)
}

// Seeder loads the fixed development dataset.
type Seeder interface {
	SeedMinimal(ctx context.Context) error
}

// fail maps a failure to its HTTP status and {"error": msg} body.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateTx):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidTimestamp),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrMerchantNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.Error("internal error", "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
