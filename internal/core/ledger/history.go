// Package ledger holds the pure query/write-engine rules: how histories are
// merged and capped, and how write intents are validated and defaulted.
// Nothing here touches the database.
package ledger

import (
	"sort"

	"github.com/nmacharia/ledgerd/internal/core/domain"
)

// HistoryCap is the maximum number of rows returned per transaction kind
// before merging, and for the merged result as a whole.
const HistoryCap = 200

// MergeEntries combines the per-kind history slices into one list sorted by
// createdAt descending and truncated to max rows.
//
// Each input is expected to already be capped at HistoryCap by the store.
// Capping per kind before the merge means a customer with more than HistoryCap
// rows of both kinds can lose cross-kind chronological accuracy at the
// boundary; that is deliberate, long-standing behavior.
//
// The sort is stable: on equal timestamps transfers keep their place ahead of
// pays, and rows within a kind keep the store's newest-first order.
func MergeEntries(transfers, pays []domain.LedgerEntry, max int) []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, 0, len(transfers)+len(pays))
	out = append(out, transfers...)
	out = append(out, pays...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > max {
		out = out[:max]
	}
	return out
}
