package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nmacharia/ledgerd/internal/core/ledger"
)

type WriteHandler struct {
	Ledger LedgerStore
}

// RecordTransfer validates and persists an account-to-account transfer.
func (h *WriteHandler) RecordTransfer(c *fiber.Ctx) error {
	var req ledger.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("invalid transfer body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	in, err := ledger.ParseTransfer(req)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Ledger.RecordTransfer(c.Context(), in); err != nil {
		return fail(c, err)
	}

	slog.Info("transfer recorded", "txId", in.TxID, "from", in.From, "to", in.To)
	return c.JSON(fiber.Map{"ok": true})
}

// RecordPayment validates and persists an account-to-merchant payment.
func (h *WriteHandler) RecordPayment(c *fiber.Ctx) error {
	var req ledger.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("invalid payment body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	in, err := ledger.ParsePayment(req)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Ledger.RecordPayment(c.Context(), in); err != nil {
		return fail(c, err)
	}

	slog.Info("payment recorded", "txId", in.TxID, "from", in.From, "merchant", in.MerchantID)
	return c.JSON(fiber.Map{"ok": true})
}
