package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/nmacharia/ledgerd/internal/adapter/handler"
	"github.com/nmacharia/ledgerd/internal/adapter/middleware"
	"github.com/nmacharia/ledgerd/internal/adapter/storage"
	"github.com/nmacharia/ledgerd/internal/core/config"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()
	dbPool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := storage.EnsureSchema(ctx, dbPool); err != nil {
		slog.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	entityRepo := storage.NewEntityRepository(dbPool)
	ledgerRepo := storage.NewLedgerRepository(dbPool)

	queryHandler := &handler.QueryHandler{Ledger: ledgerRepo, Directory: entityRepo}
	writeHandler := &handler.WriteHandler{Ledger: ledgerRepo}
	seedHandler := &handler.SeedHandler{Seeder: entityRepo}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api")
	api.Get("/health", queryHandler.Health)
	api.Get("/accounts", queryHandler.ListAccounts)
	api.Get("/account/:acct/balance", queryHandler.GetBalance)
	api.Get("/customer/:cid/transactions", queryHandler.GetCustomerTransactions)
	api.Get("/merchants", queryHandler.ListMerchants)
	api.Post("/transfer", writeHandler.RecordTransfer)
	api.Post("/pay", writeHandler.RecordPayment)
	api.Post("/seed/minimal", middleware.SeedAuth(cfg.SeedToken), seedHandler.SeedMinimal)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("server exited")
}
