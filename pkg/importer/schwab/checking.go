// Package schwab implements importers for Charles Schwab transaction
// exports: the JSON checking-account download and the older CSV bank
// statement format.
package schwab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidciani/beancount-addons/pkg/ledger"
)

// checkingFile is the shape of a Schwab checking JSON export.
type checkingFile struct {
	FromDate           string              `json:"FromDate"`
	ToDate             string              `json:"ToDate"`
	PostedTransactions []postedTransaction `json:"PostedTransactions"`
}

type postedTransaction struct {
	Date        string `json:"Date"` // MM/DD/YYYY
	Type        string `json:"Type"`
	CheckNumber string `json:"CheckNumber"`
	Description string `json:"Description"`
	Withdrawal  string `json:"Withdrawal"` // "$123.45" or ""
	Deposit     string `json:"Deposit"`
	Balance     string `json:"RunningBalance"`
}

// CheckingConfig configures a CheckingImporter.
type CheckingConfig struct {
	// AcctIDRegexp is matched against the start of the file stem; the
	// partially redacted account number in the download name is the only
	// way Schwab files identify their account.
	AcctIDRegexp string
	// Account is the account all parsed amounts post to.
	Account string
	// Basename optionally renames archived files.
	Basename string
}

// CheckingImporter imports Schwab checking account JSON exports.
type CheckingImporter struct {
	acctidRe *regexp.Regexp
	account  string
	basename string
}

// NewChecking creates a new checking importer.
func NewChecking(config CheckingConfig) (*CheckingImporter, error) {
	re, err := regexp.Compile("^(?:" + config.AcctIDRegexp + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid acctid regexp: %w", err)
	}

	return &CheckingImporter{
		acctidRe: re,
		account:  config.Account,
		basename: config.Basename,
	}, nil
}

// Name returns the importer identifier.
func (imp *CheckingImporter) Name() string {
	return "schwab-checking." + imp.account
}

// Identify matches JSON files whose stem carries the checking
// transactions marker and the configured account number.
func (imp *CheckingImporter) Identify(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !strings.Contains(strings.ToLower(stem), "checking_transactions") {
		return false
	}

	return imp.acctidRe.MatchString(stem)
}

// Account returns the account against which we post transactions.
func (imp *CheckingImporter) Account(path string) string {
	return imp.account
}

// Date returns the statement end date from the ToDate field.
func (imp *CheckingImporter) Date(path string) (time.Time, error) {
	contents, err := readChecking(path)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse("01/02/2006", contents.ToDate)
}

// Filename returns the optional renamed archive filename.
func (imp *CheckingImporter) Filename(path string) string {
	if imp.basename != "" {
		return imp.basename + filepath.Ext(path)
	}
	return ""
}

// Extract returns single-leg transactions for the posted transactions.
func (imp *CheckingImporter) Extract(path string) ([]ledger.Directive, error) {
	contents, err := readChecking(path)
	if err != nil {
		return nil, err
	}

	var directives []ledger.Directive
	for _, row := range contents.PostedTransactions {
		date, err := time.Parse("01/02/2006", row.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction date %q: %w", row.Date, err)
		}

		var number decimal.Decimal
		switch {
		case row.Withdrawal != "":
			number, err = parseDollars(row.Withdrawal)
			number = number.Neg()
		case row.Deposit != "":
			number, err = parseDollars(row.Deposit)
		default:
			continue // zero dollar transaction
		}
		if err != nil {
			return nil, fmt.Errorf("invalid amount on %s: %w", row.Date, err)
		}

		txn := ledger.Transaction{
			Date:      date,
			Flag:      ledger.FlagOkay,
			Narration: row.Description,
			Postings: []ledger.Posting{
				{Account: imp.account, Amount: ledger.Amount{Number: number, Currency: "USD"}},
			},
		}
		txn.AddMeta("transaction_type", row.Type)
		if row.CheckNumber != "" {
			txn.AddMeta("check_number", row.CheckNumber)
		}

		directives = append(directives, txn)
	}

	ledger.Sort(directives)
	return directives, nil
}

func readChecking(path string) (*checkingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var contents checkingFile
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &contents, nil
}

// parseDollars parses a dollar string like "$1,234.56".
func parseDollars(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}
