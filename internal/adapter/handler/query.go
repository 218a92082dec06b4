package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type QueryHandler struct {
	Ledger    LedgerStore
	Directory Directory
}

// Health answers 200 when the store is reachable, 500 otherwise.
func (h *QueryHandler) Health(c *fiber.Ctx) error {
	if err := h.Directory.Ping(c.Context()); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("backend not ready: %v", err),
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}

// ListAccounts returns every account ordered by account number.
func (h *QueryHandler) ListAccounts(c *fiber.Ctx) error {
	accounts, err := h.Directory.ListAccounts(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(accounts)
}

// GetBalance derives the account balance. Unknown accounts report zero.
func (h *QueryHandler) GetBalance(c *fiber.Ctx) error {
	acct := c.Params("acct")

	balance, err := h.Ledger.Balance(c.Context(), acct)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"accountNo": acct,
		"balance":   balance.InexactFloat64(),
	})
}

// GetCustomerTransactions returns the merged transfer/payment history for the
// customer's accounts, newest first. Unknown customers get an empty list.
func (h *QueryHandler) GetCustomerTransactions(c *fiber.Ctx) error {
	cid := c.Params("cid")

	entries, err := h.Ledger.CustomerLedger(c.Context(), cid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}

// ListMerchants filters merchants by the optional q substring.
func (h *QueryHandler) ListMerchants(c *fiber.Ctx) error {
	merchants, err := h.Directory.SearchMerchants(c.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(merchants)
}
