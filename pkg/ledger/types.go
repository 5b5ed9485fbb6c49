// Package ledger provides the Beancount directive model and text rendering.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Flag characters for transactions.
const (
	FlagOkay    = "*"
	FlagWarning = "!"
)

// Amount represents a number of units of a currency.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// NewAmount creates an Amount from a decimal string (e.g. "-12.34").
func NewAmount(number, currency string) (Amount, error) {
	n, err := decimal.NewFromString(number)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Number: n, Currency: currency}, nil
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

// MetaItem is a single metadata key-value pair on a directive.
// Metadata is kept ordered so rendering is deterministic.
type MetaItem struct {
	Key   string
	Value string
}

// Posting represents one leg of a transaction.
type Posting struct {
	Account string
	Amount  Amount
	Comment string
}

// Transaction represents a Beancount transaction directive.
type Transaction struct {
	Date      time.Time
	Flag      string // "*" or "!"
	Payee     string
	Narration string
	Tags      []string
	Links     []string
	Meta      []MetaItem
	Postings  []Posting
}

// EntryDate returns the directive date.
func (t Transaction) EntryDate() time.Time { return t.Date }

// AddMeta appends a metadata key-value pair.
func (t *Transaction) AddMeta(key, value string) {
	t.Meta = append(t.Meta, MetaItem{Key: key, Value: value})
}

// Balance represents a Beancount balance assertion directive.
type Balance struct {
	Date    time.Time
	Account string
	Amount  Amount
}

// EntryDate returns the directive date.
func (b Balance) EntryDate() time.Time { return b.Date }

// Directive is a dated ledger entry: a Transaction or a Balance.
type Directive interface {
	EntryDate() time.Time
}

// Sort sorts directives by date, keeping the original order of
// directives that share a date.
func Sort(directives []Directive) {
	sort.SliceStable(directives, func(i, j int) bool {
		return directives[i].EntryDate().Before(directives[j].EntryDate())
	})
}

// MonthKey returns the YYYY-MM key for a directive date.
func MonthKey(date time.Time) string {
	return date.Format("2006-01")
}
