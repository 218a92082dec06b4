package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nmacharia/ledgerd/internal/core/domain"
)

// EntityRepository covers the directory reads and the create-or-skip writes
// for customers, accounts, merchants and ownership rows. Those entities are
// append-only: nothing here updates or deletes an existing row.
type EntityRepository struct {
	db *pgxpool.Pool
}

func NewEntityRepository(db *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{db: db}
}

// Ping verifies the store is reachable and the schema answers queries.
func (r *EntityRepository) Ping(ctx context.Context) error {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&n); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// ListAccounts returns every account ordered by account number. No cap.
func (r *EntityRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT account_no, type, currency, status
		FROM accounts
		ORDER BY account_no`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.AccountNo, &a.Type, &a.Currency, &a.Status); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// SearchMerchants matches q as a substring of the merchant name or id.
// An empty q lists all merchants. Ordered by name, capped at 50.
func (r *EntityRepository) SearchMerchants(ctx context.Context, q string) ([]domain.Merchant, error) {
	query := `
		SELECT merchant_id, name, mcc
		FROM merchants
		WHERE $1 = '' OR name LIKE '%' || $1 || '%' OR merchant_id LIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 50`

	rows, err := r.db.Query(ctx, query, q)
	if err != nil {
		return nil, fmt.Errorf("search merchants: %w", err)
	}
	defer rows.Close()

	merchants := make([]domain.Merchant, 0)
	for rows.Next() {
		var m domain.Merchant
		if err := rows.Scan(&m.MerchantID, &m.Name, &m.MCC); err != nil {
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	return merchants, rows.Err()
}

// EnsureCustomer creates the customer if absent. An existing row is left
// untouched, never updated. Reports whether a row was inserted.
func (r *EntityRepository) EnsureCustomer(ctx context.Context, c domain.Customer) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO customers (customer_id, name)
		VALUES ($1, $2)
		ON CONFLICT (customer_id) DO NOTHING`, c.CustomerID, c.Name)
	if err != nil {
		return false, fmt.Errorf("ensure customer %s: %w", c.CustomerID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// EnsureAccount creates the account if absent, leaving existing rows untouched.
func (r *EntityRepository) EnsureAccount(ctx context.Context, a domain.Account) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO accounts (account_no, type, currency, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_no) DO NOTHING`, a.AccountNo, a.Type, a.Currency, a.Status)
	if err != nil {
		return false, fmt.Errorf("ensure account %s: %w", a.AccountNo, err)
	}
	return tag.RowsAffected() == 1, nil
}

// EnsureMerchant creates the merchant if absent, leaving existing rows untouched.
func (r *EntityRepository) EnsureMerchant(ctx context.Context, m domain.Merchant) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO merchants (merchant_id, name, mcc)
		VALUES ($1, $2, $3)
		ON CONFLICT (merchant_id) DO NOTHING`, m.MerchantID, m.Name, m.MCC)
	if err != nil {
		return false, fmt.Errorf("ensure merchant %s: %w", m.MerchantID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// EnsureOwnership links customer and account if the pair is not linked yet.
// Both sides must already exist; a missing side is an error, not a skip.
func (r *EntityRepository) EnsureOwnership(ctx context.Context, customerID, accountNo string, since time.Time) (bool, error) {
	var cid int64
	err := r.db.QueryRow(ctx, `SELECT id FROM customers WHERE customer_id = $1`, customerID).Scan(&cid)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, domain.ErrCustomerNotFound
	}
	if err != nil {
		return false, fmt.Errorf("resolve customer %s: %w", customerID, err)
	}

	var aid int64
	err = r.db.QueryRow(ctx, `SELECT id FROM accounts WHERE account_no = $1`, accountNo).Scan(&aid)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, domain.ErrAccountNotFound
	}
	if err != nil {
		return false, fmt.Errorf("resolve account %s: %w", accountNo, err)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO owns (customer_id_fk, account_id_fk, since)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id_fk, account_id_fk) DO NOTHING`, cid, aid, since)
	if err != nil {
		return false, fmt.Errorf("ensure ownership %s/%s: %w", customerID, accountNo, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SeedMinimal loads the fixed development dataset: two customers, two owned
// accounts and one merchant. Safe to call repeatedly.
func (r *EntityRepository) SeedMinimal(ctx context.Context) error {
	customers := []domain.Customer{
		{CustomerID: "C001", Name: "Alice"},
		{CustomerID: "C002", Name: "Bob"},
	}
	accounts := []domain.Account{
		{AccountNo: "A-1002", Type: "checking", Currency: "USD", Status: "active"},
		{AccountNo: "A-1003", Type: "savings", Currency: "USD", Status: "active"},
	}
	merchant := domain.Merchant{MerchantID: "M-Grocery", Name: "Fresh Grocery", MCC: "5411"}

	for _, c := range customers {
		if _, err := r.EnsureCustomer(ctx, c); err != nil {
			return err
		}
	}
	for _, a := range accounts {
		if _, err := r.EnsureAccount(ctx, a); err != nil {
			return err
		}
	}
	if _, err := r.EnsureMerchant(ctx, merchant); err != nil {
		return err
	}

	since := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	if _, err := r.EnsureOwnership(ctx, "C001", "A-1002", since); err != nil {
		return err
	}
	if _, err := r.EnsureOwnership(ctx, "C002", "A-1003", since); err != nil {
		return err
	}
	return nil
}
