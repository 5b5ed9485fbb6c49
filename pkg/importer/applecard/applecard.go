// Package applecard implements an importer for the monthly CSV exports
// of Apple Card transactions.
package applecard

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidciani/beancount-addons/pkg/importer"
	"github.com/davidciani/beancount-addons/pkg/ledger"
)

var (
	filenamePattern = regexp.MustCompile(`^Apple Card Transactions.+`)
	datePattern     = regexp.MustCompile(`(?i)^Apple Card Transactions - (\w+) (\d{4})\.csv$`)
)

// Config configures an Importer.
type Config struct {
	// Account is the card liability account amounts post to.
	Account string
}

// Importer imports Apple Card monthly transaction CSVs.
type Importer struct {
	account string
}

// New creates a new Apple Card importer.
func New(config Config) *Importer {
	return &Importer{account: config.Account}
}

// Name returns the importer identifier.
func (imp *Importer) Name() string {
	return "applecard." + imp.account
}

// Identify matches on the export filename.
func (imp *Importer) Identify(path string) bool {
	return filenamePattern.MatchString(filepath.Base(path))
}

// Account returns the account against which we post transactions.
func (imp *Importer) Account(path string) string {
	return imp.account
}

// Date returns the last day of the statement month encoded in the
// filename ("Apple Card Transactions - April 2021.csv").
func (imp *Importer) Date(path string) (time.Time, error) {
	match := datePattern.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return time.Time{}, nil
	}

	// The pattern is case-insensitive but the month layout is not.
	first, err := time.Parse("January 2006", importer.Titlecase(match[1])+" "+match[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid statement month: %w", err)
	}
	return first.AddDate(0, 1, -1), nil
}

// Filename returns the archive filename.
func (imp *Importer) Filename(path string) string {
	return "AppleCard.csv"
}

// Extract returns the transactions in the export. Installment rows get
// an offsetting posting on the card's Installments subaccount, payment
// rows one on the transfer suspense account.
func (imp *Importer) Extract(path string) ([]ledger.Directive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("empty CSV file: %s", filepath.Base(path))
	}

	column := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		column[name] = i
	}
	for _, required := range []string{"Transaction Date", "Merchant", "Description", "Amount (USD)", "Type"} {
		if _, ok := column[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var directives []ledger.Directive
	for _, row := range rows[1:] {
		date, err := time.Parse("01/02/2006", row[column["Transaction Date"]])
		if err != nil {
			return nil, fmt.Errorf("invalid transaction date %q: %w", row[column["Transaction Date"]], err)
		}

		number, err := decimal.NewFromString(row[column["Amount (USD)"]])
		if err != nil {
			return nil, fmt.Errorf("invalid amount on %s: %w", row[column["Transaction Date"]], err)
		}

		payee := importer.Titlecase(row[column["Merchant"]])

		txn := ledger.Transaction{
			Date:  date,
			Flag:  ledger.FlagOkay,
			Payee: payee,
			Postings: []ledger.Posting{
				{Account: imp.account, Amount: ledger.Amount{Number: number, Currency: "USD"}},
			},
		}
		txn.AddMeta("original-description", payee)

		switch row[column["Type"]] {
		case "Installment":
			txn.Postings = append(txn.Postings, ledger.Posting{
				Account: imp.account + ":Installments",
				Amount:  ledger.Amount{Number: number.Neg(), Currency: "USD"},
			})
		case "Payment":
			txn.Postings = append(txn.Postings, ledger.Posting{
				Account: "Equity:TransferSuspense",
				Amount:  ledger.Amount{Number: number.Neg(), Currency: "USD"},
			})
		}

		directives = append(directives, txn)
	}

	ledger.Sort(directives)
	return directives, nil
}
