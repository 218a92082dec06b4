// Command loader bulk-imports customers, accounts, merchants, ownership rows,
// transfers and pays from CSV files into the ledger store.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/nmacharia/ledgerd/internal/adapter/storage"
	"github.com/nmacharia/ledgerd/internal/core/config"
	"github.com/nmacharia/ledgerd/internal/core/importer"
)

// importStore joins the two repositories into the importer's store surface.
type importStore struct {
	*storage.EntityRepository
	*storage.LedgerRepository
}

func main() {
	dir := flag.String("dir", ".", "directory holding the CSV files")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	ctx := context.Background()
	dbPool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := storage.EnsureSchema(ctx, dbPool); err != nil {
		slog.Error("schema setup failed", "error", err)
		os.Exit(1)
	}

	store := importStore{
		EntityRepository: storage.NewEntityRepository(dbPool),
		LedgerRepository: storage.NewLedgerRepository(dbPool),
	}

	rep, err := importer.Run(ctx, store, *dir)
	if err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}

	slog.Info("import finished",
		"customers", rep.Customers,
		"accounts", rep.Accounts,
		"merchants", rep.Merchants,
		"ownerships", rep.Ownerships,
		"transfers", rep.Transfers,
		"pays", rep.Pays,
	)
}
