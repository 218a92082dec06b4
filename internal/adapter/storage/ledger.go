package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nmacharia/ledgerd/internal/core/domain"
	"github.com/nmacharia/ledgerd/internal/core/ledger"
)

// LedgerRepository derives balances, assembles transaction history and
// persists new transfers and payments. Balances are never cached: every read
// recomputes from the current rows.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Balance computes incoming transfers minus outgoing transfers minus outgoing
// payments for the account. An unknown account yields zero, not an error.
func (r *LedgerRepository) Balance(ctx context.Context, accountNo string) (decimal.Decimal, error) {
	const query = `
		SELECT
			COALESCE((SELECT SUM(t.amount) FROM transfers t WHERE t.to_account_id = a.id), 0)
			- COALESCE((SELECT SUM(t.amount) FROM transfers t WHERE t.from_account_id = a.id), 0)
			- COALESCE((SELECT SUM(p.amount) FROM pays p WHERE p.from_account_id = a.id), 0)
		FROM accounts a
		WHERE a.account_no = $1`

	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, query, accountNo).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance %s: %w", accountNo, err)
	}
	return balance, nil
}

// CustomerLedger assembles the unified history for every account the customer
// owns. Each kind is independently capped before the merge; see
// ledger.MergeEntries for the ordering rules. An unknown customer or a
// customer with no accounts yields an empty list.
func (r *LedgerRepository) CustomerLedger(ctx context.Context, customerID string) ([]domain.LedgerEntry, error) {
	acctIDs, err := r.ownedAccountIDs(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(acctIDs) == 0 {
		return []domain.LedgerEntry{}, nil
	}

	transfers, err := r.outgoingTransfers(ctx, acctIDs)
	if err != nil {
		return nil, err
	}
	pays, err := r.outgoingPays(ctx, acctIDs)
	if err != nil {
		return nil, err
	}

	return ledger.MergeEntries(transfers, pays, ledger.HistoryCap), nil
}

func (r *LedgerRepository) ownedAccountIDs(ctx context.Context, customerID string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.account_id_fk
		FROM owns o
		JOIN customers c ON c.id = o.customer_id_fk
		WHERE c.customer_id = $1`, customerID)
	if err != nil {
		return nil, fmt.Errorf("owned accounts for %s: %w", customerID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *LedgerRepository) outgoingTransfers(ctx context.Context, acctIDs []int64) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT src.account_no, dst.account_no, t.tx_id, t.amount, t.currency, t.channel, t.created_at
		FROM transfers t
		JOIN accounts src ON src.id = t.from_account_id
		JOIN accounts dst ON dst.id = t.to_account_id
		WHERE t.from_account_id = ANY($1)
		ORDER BY t.created_at DESC
		LIMIT $2`, acctIDs, ledger.HistoryCap)
	if err != nil {
		return nil, fmt.Errorf("outgoing transfers: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows, domain.KindTransfer)
}

func (r *LedgerRepository) outgoingPays(ctx context.Context, acctIDs []int64) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT src.account_no, m.merchant_id, p.tx_id, p.amount, p.currency, p.channel, p.created_at
		FROM pays p
		JOIN accounts src ON src.id = p.from_account_id
		JOIN merchants m ON m.id = p.merchant_id_fk
		WHERE p.from_account_id = ANY($1)
		ORDER BY p.created_at DESC
		LIMIT $2`, acctIDs, ledger.HistoryCap)
	if err != nil {
		return nil, fmt.Errorf("outgoing pays: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows, domain.KindPay)
}

func scanEntries(rows pgx.Rows, kind string) ([]domain.LedgerEntry, error) {
	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var e domain.LedgerEntry
		var amount decimal.Decimal
		if err := rows.Scan(&e.FromAcct, &e.Target, &e.TxID, &amount, &e.Currency, &e.Channel, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Kind = kind
		e.Amount = amount.InexactFloat64()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordTransfer persists a validated transfer. Both accounts must exist and
// the txId must be unused. The pre-insert duplicate check is a fast path; the
// unique index on tx_id decides races, so a concurrent duplicate surfaces as
// ErrDuplicateTx rather than a second row.
func (r *LedgerRepository) RecordTransfer(ctx context.Context, in domain.TransferInput) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transfer tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fromID, err := accountID(ctx, tx, in.From)
	if err != nil {
		return err
	}
	toID, err := accountID(ctx, tx, in.To)
	if err != nil {
		return err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transfers WHERE tx_id = $1)`, in.TxID).Scan(&exists); err != nil {
		return fmt.Errorf("check transfer txId: %w", err)
	}
	if exists {
		return domain.ErrDuplicateTx
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transfers (tx_id, amount, currency, channel, created_at, from_account_id, to_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.TxID, in.Amount, in.Currency, in.Channel, in.CreatedAt, fromID, toID)
	if IsUniqueViolation(err) {
		return domain.ErrDuplicateTx
	}
	if err != nil {
		return fmt.Errorf("insert transfer %s: %w", in.TxID, err)
	}

	return tx.Commit(ctx)
}

// RecordPayment persists a validated payment, mirroring RecordTransfer with a
// merchant as the destination.
func (r *LedgerRepository) RecordPayment(ctx context.Context, in domain.PaymentInput) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var fromID int64
	err = tx.QueryRow(ctx, `SELECT id FROM accounts WHERE account_no = $1`, in.From).Scan(&fromID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrMerchantNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve account %s: %w", in.From, err)
	}

	var merchantID int64
	err = tx.QueryRow(ctx, `SELECT id FROM merchants WHERE merchant_id = $1`, in.MerchantID).Scan(&merchantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrMerchantNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve merchant %s: %w", in.MerchantID, err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pays WHERE tx_id = $1)`, in.TxID).Scan(&exists); err != nil {
		return fmt.Errorf("check payment txId: %w", err)
	}
	if exists {
		return domain.ErrDuplicateTx
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO pays (tx_id, amount, currency, channel, created_at, from_account_id, merchant_id_fk)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.TxID, in.Amount, in.Currency, in.Channel, in.CreatedAt, fromID, merchantID)
	if IsUniqueViolation(err) {
		return domain.ErrDuplicateTx
	}
	if err != nil {
		return fmt.Errorf("insert payment %s: %w", in.TxID, err)
	}

	return tx.Commit(ctx)
}

func accountID(ctx context.Context, tx pgx.Tx, accountNo string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE account_no = $1`, accountNo).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve account %s: %w", accountNo, err)
	}
	return id, nil
}
