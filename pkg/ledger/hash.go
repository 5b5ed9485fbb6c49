package ledger

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// TransactionHash returns a stable identity hash for a transaction,
// used to detect statements re-imported across runs. It covers the
// date, payee, narration and every posting leg, but not metadata, so
// the same statement row always hashes the same regardless of which
// file it came from.
func TransactionHash(txn Transaction) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%s|%s", txn.Date.Format("2006-01-02"), txn.Payee, txn.Narration)
	for _, posting := range txn.Postings {
		fmt.Fprintf(h, "|%s|%s %s",
			posting.Account,
			FormatNumber(posting.Amount.Number),
			posting.Amount.Currency,
		)
	}
	return h.Sum64()
}

// BalanceHash returns a stable identity hash for a balance assertion.
func BalanceHash(bal Balance) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "balance|%s|%s|%s %s",
		bal.Date.Format("2006-01-02"),
		bal.Account,
		FormatNumber(bal.Amount.Number),
		bal.Amount.Currency,
	)
	return h.Sum64()
}

// DirectiveHash returns the identity hash for any directive.
func DirectiveHash(d Directive) uint64 {
	switch v := d.(type) {
	case Transaction:
		return TransactionHash(v)
	case *Transaction:
		return TransactionHash(*v)
	case Balance:
		return BalanceHash(v)
	case *Balance:
		return BalanceHash(*v)
	}
	return 0
}
