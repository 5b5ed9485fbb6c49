package paystub

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidciani/beancount-addons/pkg/ledger"
)

// Paystub sections that contribute postings or metadata.
const (
	sectionEarnings     = "earnings"
	sectionDeductions   = "deductions"
	sectionTaxes        = "taxes"
	sectionDistribution = "distribution_of_net_payment"
)

var tableSections = map[string]string{
	"Earnings":                     sectionEarnings,
	"Deductions":                   sectionDeductions,
	"Taxes":                        sectionTaxes,
	"Other Benefits & Information": "other_benefits_information",
	"Quota Information":            "quota_information",
	"Distribution of Net Payment":  sectionDistribution,
}

var headerKeys = map[string]bool{
	"Name":         true,
	"My ID":        true,
	"Badge":        true,
	"Cost Center":  true,
	"SubArea":      true,
	"EE Grp":       true,
	"EE SGrp":      true,
	"Pay Date":     true,
	"Pay Period":   true,
	"Hours worked": true,
}

var (
	columnSplit   = regexp.MustCompile(`\s{2,}`)
	periodPattern = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})- (\d{2})/(\d{2})/(\d{4}) Period No: (\d{2})/(\d{4})`)
)

// Config configures an Importer.
type Config struct {
	// Employer becomes the transaction payee.
	Employer string
	// Mapper resolves line descriptions to ledger accounts.
	Mapper *Mapper
	// Account is the account reported for archival; the postings
	// themselves come from the mapper.
	Account string
	// Basename optionally renames archived files.
	Basename string
}

// Importer imports text extracted from paystub PDFs.
type Importer struct {
	employer string
	mapper   *Mapper
	account  string
	basename string
}

// New creates a new paystub importer.
func New(config Config) *Importer {
	return &Importer{
		employer: config.Employer,
		mapper:   config.Mapper,
		account:  config.Account,
		basename: config.Basename,
	}
}

// Name returns the importer identifier.
func (imp *Importer) Name() string {
	return "paystub." + imp.account
}

// Identify matches extracted-text files that carry the paystub section
// markers.
func (imp *Importer) Identify(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".txt") {
		return false
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	text := string(contents)
	return strings.Contains(text, "Pay Period") &&
		strings.Contains(text, "Distribution of Net Payment")
}

// Account returns the account the stub files under.
func (imp *Importer) Account(path string) string {
	return imp.account
}

// Date returns the pay date from the stub header.
func (imp *Importer) Date(path string) (time.Time, error) {
	stub, err := parseFile(path)
	if err != nil {
		return time.Time{}, err
	}
	return stub.payDate, nil
}

// Filename returns the optional renamed archive filename.
func (imp *Importer) Filename(path string) string {
	if imp.basename != "" {
		return imp.basename + filepath.Ext(path)
	}
	return ""
}

// Extract returns one multi-posting transaction for the stub.
func (imp *Importer) Extract(path string) ([]ledger.Directive, error) {
	stub, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	txn := ledger.Transaction{
		Date:      stub.payDate,
		Flag:      ledger.FlagOkay,
		Payee:     imp.employer,
		Narration: fmt.Sprintf("Paystub for period %02d/%04d", stub.periodNumber, stub.periodYear),
	}
	if !stub.periodStart.IsZero() {
		txn.AddMeta("pay-period-start", stub.periodStart.Format("2006-01-02"))
	}
	if !stub.periodEnd.IsZero() {
		txn.AddMeta("pay-period-end", stub.periodEnd.Format("2006-01-02"))
	}

	// Earnings are income, so they post with flipped sign.
	for _, line := range stub.tables[sectionEarnings] {
		txn.Postings = append(txn.Postings, ledger.Posting{
			Account: imp.mapper.Account(sectionEarnings, line.description),
			Amount:  ledger.Amount{Number: line.amount.Neg(), Currency: "USD"},
		})
	}
	for _, section := range []string{sectionDeductions, sectionTaxes, sectionDistribution} {
		for _, line := range stub.tables[section] {
			txn.Postings = append(txn.Postings, ledger.Posting{
				Account: imp.mapper.Account(section, line.description),
				Amount:  ledger.Amount{Number: line.amount, Currency: "USD"},
			})
		}
	}

	if len(txn.Postings) == 0 {
		return nil, fmt.Errorf("no amount lines found in %s", filepath.Base(path))
	}

	return []ledger.Directive{txn}, nil
}

// stub is the parsed content of one paystub text file.
type stub struct {
	payDate      time.Time
	periodStart  time.Time
	periodEnd    time.Time
	periodYear   int
	periodNumber int
	tables       map[string][]tableLine
}

// tableLine is one amount-bearing row of a paystub section.
type tableLine struct {
	description string
	amount      decimal.Decimal
}

func parseFile(path string) (*stub, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return parse(string(contents))
}

func parse(text string) (*stub, error) {
	header := parseHeader(text)

	payDateStr, ok := header["Pay Date"]
	if !ok {
		return nil, fmt.Errorf("no Pay Date field in paystub")
	}
	payDate, err := time.Parse("01/02/2006", payDateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid pay date %q: %w", payDateStr, err)
	}

	result := &stub{
		payDate: payDate,
		tables:  parseTables(text),
	}

	if match := periodPattern.FindStringSubmatch(header["Pay Period"]); match != nil {
		result.periodStart, _ = time.Parse("01/02/2006", fmt.Sprintf("%s/%s/%s", match[1], match[2], match[3]))
		result.periodEnd, _ = time.Parse("01/02/2006", fmt.Sprintf("%s/%s/%s", match[4], match[5], match[6]))
		fmt.Sscanf(match[7], "%d", &result.periodNumber)
		fmt.Sscanf(match[8], "%d", &result.periodYear)
	}

	return result, nil
}

// parseHeader scans the column-aligned key/value pairs at the top of
// the stub. Within a line, keys and values alternate when split on
// runs of two or more spaces.
func parseHeader(text string) map[string]string {
	header := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		fields := columnSplit.Split(strings.TrimSpace(line), -1)
		for i := 0; i+1 < len(fields); i++ {
			key := strings.TrimSuffix(fields[i], ":")
			if headerKeys[key] && header[key] == "" {
				header[key] = strings.TrimSpace(fields[i+1])
			}
		}
	}
	return header
}

// parseTables collects the amount lines of each section. A section
// starts at its title line and ends at the first blank line; rows are
// split on runs of two or more spaces, with the description in the
// first column and the current amount in the second. Tax descriptions
// span two columns and are re-joined. Header and total rows are
// dropped.
func parseTables(text string) map[string][]tableLine {
	tables := make(map[string][]tableLine)
	current := ""

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			current = ""
			continue
		}

		if section, ok := tableSections[stripped]; ok {
			current = section
			continue
		}
		if current == "" {
			continue
		}

		fields := columnSplit.Split(stripped, -1)
		if current == sectionTaxes && len(fields) > 2 {
			fields = append([]string{fields[0] + " " + fields[1]}, fields[2:]...)
		}
		if len(fields) < 2 {
			continue
		}

		description := strings.TrimSpace(fields[0])
		if description == "" || strings.EqualFold(description, "DESCRIPTION") ||
			strings.HasPrefix(description, "Total") {
			continue
		}

		// The distribution table carries the account number between the
		// bank name and the amount, so the amount is the last column.
		amountField := fields[1]
		if current == sectionDistribution {
			amountField = fields[len(fields)-1]
		}

		amount, err := parseAmount(amountField)
		if err != nil {
			continue // remark or date column, not an amount row
		}

		tables[current] = append(tables[current], tableLine{
			description: description,
			amount:      amount,
		})
	}

	return tables
}

// parseAmount parses a paystub amount like "1,234.56" or "123.45-"
// (trailing minus for negatives).
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasSuffix(s, "-") {
		s = "-" + strings.TrimSuffix(s, "-")
	}
	return decimal.NewFromString(s)
}
