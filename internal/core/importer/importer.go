// Package importer bulk-loads the ledger entities from delimited files. It
// applies the same write rules as the interactive API: create-or-skip for
// directory entities, duplicate-txId rows skipped and counted, unresolved
// references aborting the run.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmacharia/ledgerd/internal/core/domain"
	"github.com/nmacharia/ledgerd/internal/core/ledger"
)

// Store is the persistence surface the importer writes through. RecordTransfer
// and RecordPayment carry the Write Engine's idempotency and reference checks.
type Store interface {
	EnsureCustomer(ctx context.Context, c domain.Customer) (bool, error)
	EnsureAccount(ctx context.Context, a domain.Account) (bool, error)
	EnsureMerchant(ctx context.Context, m domain.Merchant) (bool, error)
	EnsureOwnership(ctx context.Context, customerID, accountNo string, since time.Time) (bool, error)
	RecordTransfer(ctx context.Context, in domain.TransferInput) error
	RecordPayment(ctx context.Context, in domain.PaymentInput) error
}

// Report counts the rows actually inserted per file.
type Report struct {
	Customers  int
	Accounts   int
	Merchants  int
	Ownerships int
	Transfers  int
	Pays       int
}

// Run imports the six files from dir in dependency order: directory entities
// first, then ownership, then the ledger rows that reference them.
func Run(ctx context.Context, store Store, dir string) (Report, error) {
	var rep Report

	steps := []struct {
		file string
		fn   func(context.Context, Store, io.Reader) (int, error)
		dst  *int
	}{
		{"customers.csv", importCustomers, &rep.Customers},
		{"accounts.csv", importAccounts, &rep.Accounts},
		{"merchants.csv", importMerchants, &rep.Merchants},
		{"owns.csv", importOwnerships, &rep.Ownerships},
		{"transfers.csv", importTransfers, &rep.Transfers},
		{"pays.csv", importPays, &rep.Pays},
	}

	for _, step := range steps {
		f, err := os.Open(filepath.Join(dir, step.file))
		if err != nil {
			return rep, fmt.Errorf("open %s: %w", step.file, err)
		}
		n, err := step.fn(ctx, store, f)
		f.Close()
		if err != nil {
			return rep, fmt.Errorf("import %s: %w", step.file, err)
		}
		*step.dst = n
		slog.Info("file imported", "file", step.file, "inserted", n)
	}

	return rep, nil
}

func importCustomers(ctx context.Context, store Store, r io.Reader) (int, error) {
	t, err := readTable(r)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return inserted, nil
		}
		if err != nil {
			return inserted, err
		}
		created, err := store.EnsureCustomer(ctx, domain.Customer{
			CustomerID: row.get("customer_id"),
			Name:       row.get("name"),
		})
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
}

func importAccounts(ctx context.Context, store Store, r io.Reader) (int, error) {
	t, err := readTable(r)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return inserted, nil
		}
		if err != nil {
			return inserted, err
		}
		created, err := store.EnsureAccount(ctx, domain.Account{
			AccountNo: row.get("account_no"),
			Type:      row.get("type"),
			Currency:  row.get("currency"),
			Status:    row.get("status"),
		})
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
}

func importMerchants(ctx context.Context, store Store, r io.Reader) (int, error) {
	t, err := readTable(r)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return inserted, nil
		}
		if err != nil {
			return inserted, err
		}
		created, err := store.EnsureMerchant(ctx, domain.Merchant{
			MerchantID: row.get("merchant_id"),
			Name:       row.get("name"),
			MCC:        row.get("mcc"),
		})
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
}

// importOwnerships links customers to accounts. A since value that does not
// parse is a hard abort, and so is a missing customer or account.
func importOwnerships(ctx context.Context, store Store, r io.Reader) (int, error) {
	t, err := readTable(r)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return inserted, nil
		}
		if err != nil {
			return inserted, err
		}
		since, err := ledger.ParseTimestamp(row.get("since"))
		if err != nil {
			return inserted, fmt.Errorf("parse since %q: %w", row.get("since"), err)
		}
		created, err := store.EnsureOwnership(ctx, row.get("customer_id"), row.get("account_no"), since)
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
}

// importTransfers inserts ledger rows. A row whose txId already exists is
// skipped and counted; any other failure aborts the file.
func importTransfers(ctx context.Context, store Store, r io.Reader) (int, error) {
	t, err := readTable(r)
	if err != nil {
		return 0, err
	}
	inserted, skipped := 0, 0
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			if skipped > 0 {
				slog.Info("duplicate transfers skipped", "count", skipped)
			}
			return inserted, nil
		}
		if err != nil {
			return inserted, err
		}
		in, err := transferFromRow(row)
		if err != nil {
			return inserted, err
		}
		switch err := store.RecordTransfer(ctx, in); {
		case errors.Is(err, domain.ErrDuplicateTx):
			skipped++
		case err != nil:
			return inserted, err
		default:
			inserted++
		}
	}
}

func importPays(ctx context.Context, store Store, r io.Reader) (int, error) {
	t, err := readTable(r)
	if err != nil {
		return 0, err
	}
	inserted, skipped := 0, 0
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			if skipped > 0 {
				slog.Info("duplicate pays skipped", "count", skipped)
			}
			return inserted, nil
		}
		if err != nil {
			return inserted, err
		}
		in, err := paymentFromRow(row)
		if err != nil {
			return inserted, err
		}
		switch err := store.RecordPayment(ctx, in); {
		case errors.Is(err, domain.ErrDuplicateTx):
			skipped++
		case err != nil:
			return inserted, err
		default:
			inserted++
		}
	}
}

func transferFromRow(row row) (domain.TransferInput, error) {
	amount, err := decimal.NewFromString(row.get("amount"))
	if err != nil {
		return domain.TransferInput{}, fmt.Errorf("parse amount %q: %w", row.get("amount"), err)
	}
	createdAt, err := ledger.ParseTimestamp(row.get("created_at"))
	if err != nil {
		return domain.TransferInput{}, fmt.Errorf("parse created_at %q: %w", row.get("created_at"), err)
	}
	return domain.TransferInput{
		From:      row.get("from_account_no"),
		To:        row.get("to_account_no"),
		Amount:    amount,
		Currency:  row.get("currency"),
		TxID:      row.get("tx_id"),
		Channel:   row.get("channel"),
		CreatedAt: createdAt,
	}, nil
}

func paymentFromRow(row row) (domain.PaymentInput, error) {
	amount, err := decimal.NewFromString(row.get("amount"))
	if err != nil {
		return domain.PaymentInput{}, fmt.Errorf("parse amount %q: %w", row.get("amount"), err)
	}
	createdAt, err := ledger.ParseTimestamp(row.get("created_at"))
	if err != nil {
		return domain.PaymentInput{}, fmt.Errorf("parse created_at %q: %w", row.get("created_at"), err)
	}
	return domain.PaymentInput{
		From:       row.get("from_account_no"),
		MerchantID: row.get("merchant_id"),
		Amount:     amount,
		Currency:   row.get("currency"),
		TxID:       row.get("tx_id"),
		Channel:    row.get("channel"),
		CreatedAt:  createdAt,
	}, nil
}

// table reads header-keyed CSV rows.
type table struct {
	cr   *csv.Reader
	cols map[string]int
}

type row struct {
	rec  []string
	cols map[string]int
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	return &table{cr: cr, cols: cols}, nil
}

func (t *table) next() (row, error) {
	rec, err := t.cr.Read()
	if err != nil {
		return row{}, err
	}
	return row{rec: rec, cols: t.cols}, nil
}

func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return r.rec[i]
}
