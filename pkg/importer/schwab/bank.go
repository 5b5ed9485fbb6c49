package schwab

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/davidciani/beancount-addons/pkg/importer"
	"github.com/davidciani/beancount-addons/pkg/ledger"
)

var bankDatePattern = regexp.MustCompile(`(?i)to (\d{2}/\d{2}/\d{4})`)

// BankConfig configures a BankImporter.
type BankConfig struct {
	// LastFour is the last four digits of the account number as they
	// appear in the download filename.
	LastFour string
	// Account is the account all parsed amounts post to.
	Account string
}

// BankImporter imports the older Schwab bank CSV statement format.
type BankImporter struct {
	filenameRe *regexp.Regexp
	lastFour   string
	account    string
}

// NewBank creates a new bank CSV importer.
func NewBank(config BankConfig) (*BankImporter, error) {
	re, err := regexp.Compile(
		fmt.Sprintf(`^XXXXXX.*%s_Checking_Transactions_.*\.CSV$`, regexp.QuoteMeta(config.LastFour)),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filename pattern: %w", err)
	}

	return &BankImporter{
		filenameRe: re,
		lastFour:   config.LastFour,
		account:    config.Account,
	}, nil
}

// Name returns the importer identifier.
func (imp *BankImporter) Name() string {
	return "schwab-bank." + imp.account
}

// Identify matches on the redacted account number in the filename.
func (imp *BankImporter) Identify(path string) bool {
	return imp.filenameRe.MatchString(filepath.Base(path))
}

// Account returns the account against which we post transactions.
func (imp *BankImporter) Account(path string) string {
	return imp.account
}

// Date returns the statement end date from the header line.
func (imp *BankImporter) Date(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return time.Time{}, fmt.Errorf("failed to read header line: %w", scanner.Err())
	}

	match := bankDatePattern.FindStringSubmatch(scanner.Text())
	if match == nil {
		return time.Time{}, nil
	}
	return time.Parse("01/02/2006", match[1])
}

// Filename returns the archive filename.
func (imp *BankImporter) Filename(path string) string {
	return fmt.Sprintf("SchwabBank%s.csv", imp.lastFour)
}

// Extract returns single-leg transactions for the posted rows.
// The statement preamble before the "Posted Transactions" marker is
// skipped, withdrawal amounts are negated, zero-dollar rows dropped.
func (imp *BankImporter) Extract(path string) ([]ledger.Directive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var body strings.Builder
	inBody := false
	for scanner.Scan() {
		if !inBody {
			if strings.Contains(scanner.Text(), "Posted Transactions") {
				inBody = true
			}
			continue
		}
		body.WriteString(scanner.Text())
		body.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !inBody {
		return nil, fmt.Errorf("no Posted Transactions section in %s", filepath.Base(path))
	}

	reader := csv.NewReader(strings.NewReader(body.String()))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	var directives []ledger.Directive
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}

		date, err := time.Parse("01/02/2006", row[0])
		if err != nil {
			continue // column header or section footer row
		}

		var amount ledger.Amount
		switch {
		case row[4] != "":
			number, err := parseDollars(row[4])
			if err != nil {
				return nil, fmt.Errorf("invalid withdrawal on %s: %w", row[0], err)
			}
			amount = ledger.Amount{Number: number.Neg(), Currency: "USD"}
		case row[5] != "":
			number, err := parseDollars(row[5])
			if err != nil {
				return nil, fmt.Errorf("invalid deposit on %s: %w", row[0], err)
			}
			amount = ledger.Amount{Number: number, Currency: "USD"}
		default:
			continue // zero dollar transaction
		}

		directives = append(directives, ledger.Transaction{
			Date:     date,
			Flag:     ledger.FlagOkay,
			Payee:    importer.Titlecase(row[3]),
			Postings: []ledger.Posting{{Account: imp.account, Amount: amount}},
		})
	}

	ledger.Sort(directives)
	return directives, nil
}
