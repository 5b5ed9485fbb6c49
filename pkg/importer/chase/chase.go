// Package chase implements an importer for Chase card activity CSV
// downloads.
package chase

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

var datePattern = regexp.MustCompile(`(?i)^Chase\d{4}_Activity\d{8}_(\d{8})_\d{8}\.CSV$`)

// Config configures an Importer.
type Config struct {
	// LastFour is the last four digits of the card number as they
	// appear in the download filename.
	LastFour string
	// Account is the card liability account amounts post to.
	Account string
}

// Importer imports Chase card activity CSVs.
type Importer struct {
	filenameRe *regexp.Regexp
	lastFour   string
	account    string
}

// New creates a new Chase importer.
func New(config Config) (*Importer, error) {
	re, err := regexp.Compile(
		fmt.Sprintf(`^Chase%s.*\.CSV$`, regexp.QuoteMeta(config.LastFour)),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filename pattern: %w", err)
	}

	return &Importer{
		filenameRe: re,
		lastFour:   config.LastFour,
		account:    config.Account,
	}, nil
}

// Name returns the importer identifier.
func (imp *Importer) Name() string {
	return "chase." + imp.account
}

// Identify matches on the card number in the download filename.
func (imp *Importer) Identify(path string) bool {
	return imp.filenameRe.MatchString(filepath.Base(path))
}

// Account returns the account against which we post transactions.
func (imp *Importer) Account(path string) string {
	return imp.account
}

// Date returns the statement date encoded in the activity filename.
func (imp *Importer) Date(path string) (time.Time, error) {
	match := datePattern.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return time.Time{}, nil
	}
	return time.Parse("20060102", match[1])
}

// Filename returns the archive filename.
func (imp *Importer) Filename(path string) string {
	return fmt.Sprintf("Chase%s.csv", imp.lastFour)
}

// Extract returns single-leg transactions for the activity rows.
func (imp *Importer) Extract(path string) ([]ledger.Directive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

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
	for _, required := range []string{"Transaction Date", "Description", "Amount"} {
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

		number, err := decimal.NewFromString(row[column["Amount"]])
		if err != nil {
			return nil, fmt.Errorf("invalid amount on %s: %w", row[column["Transaction Date"]], err)
		}

		description := importer.Titlecase(row[column["Description"]])

		txn := ledger.Transaction{
			Date:  date,
			Flag:  ledger.FlagOkay,
			Payee: description,
			Postings: []ledger.Posting{
				{Account: imp.account, Amount: ledger.Amount{Number: number, Currency: "USD"}},
			},
		}
		txn.AddMeta("original-description", description)

		directives = append(directives, txn)
	}

	ledger.Sort(directives)
	return directives, nil
}
