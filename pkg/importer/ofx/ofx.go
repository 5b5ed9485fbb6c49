// Package ofx implements an importer for Open Financial Exchange files
// (bank and credit card statements, .ofx/.qfx/.qbo downloads).
//
// OFX 1.x is SGML with unclosed leaf tags, OFX 2.x is XML. Both parse
// with the lenient HTML parser, which lowercases tag names and keeps
// the leading text of each element intact, so the same tree walk works
// for either version.
package ofx

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/davidciani/beancount-addons/pkg/importer"
	"github.com/davidciani/beancount-addons/pkg/ledger"
)

// Extensions the importer claims, lowercased.
var ofxExtensions = map[string]bool{
	".ofx": true,
	".qbo": true,
	".qfx": true,
}

var acctidPattern = regexp.MustCompile(`(?i)<ACCTID>([^<\r\n]*)`)

// Config configures an OFX importer instance.
type Config struct {
	// AcctIDRegexp is matched against the start of each <ACCTID> value.
	AcctIDRegexp string
	// Account is the account all parsed amounts post to.
	Account string
	// Basename optionally renames archived files.
	Basename string
	// BalanceType selects where the balance assertion is placed.
	BalanceType importer.BalanceType
}

// Importer extracts transactions and balance assertions from OFX files.
type Importer struct {
	acctidRe    *regexp.Regexp
	account     string
	basename    string
	balanceType importer.BalanceType
}

// New creates a new OFX importer posting to the configured account.
func New(config Config) (*Importer, error) {
	re, err := regexp.Compile("^(?:" + config.AcctIDRegexp + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid acctid regexp: %w", err)
	}

	return &Importer{
		acctidRe:    re,
		account:     config.Account,
		basename:    config.Basename,
		balanceType: config.BalanceType,
	}, nil
}

// Name returns the importer identifier.
func (imp *Importer) Name() string {
	return "ofx." + imp.account
}

// Identify matches on file extension and a configured account ID.
func (imp *Importer) Identify(path string) bool {
	if !ofxExtensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	for _, match := range acctidPattern.FindAllStringSubmatch(string(contents), -1) {
		if imp.acctidRe.MatchString(strings.TrimSpace(match[1])) {
			return true
		}
	}
	return false
}

// Account returns the account against which we post transactions.
func (imp *Importer) Account(path string) string {
	return imp.account
}

// Date returns the latest ledger balance date declared in the file.
func (imp *Importer) Date(path string) (time.Time, error) {
	root, err := parseFile(path)
	if err != nil {
		return time.Time{}, err
	}

	var max time.Time
	for _, ledgerbal := range findAll(root, isName("ledgerbal")) {
		dtasof, ok := childTime(ledgerbal, "dtasof")
		if ok && dtasof.After(max) {
			max = dtasof
		}
	}
	return max, nil
}

// Filename returns the optional renamed archive filename.
func (imp *Importer) Filename(path string) string {
	if imp.basename != "" {
		return imp.basename + filepath.Ext(path)
	}
	return ""
}

// Extract returns a sorted list of single-leg transactions and balance
// assertions for the statements matching the configured account ID.
func (imp *Importer) Extract(path string) ([]ledger.Directive, error) {
	root, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	var directives []ledger.Directive
	for _, stmt := range findStatements(root) {
		if !imp.acctidRe.MatchString(stmt.acctid) {
			continue
		}

		var entries []ledger.Directive
		for _, stmttrn := range stmt.transactions {
			txn, err := buildTransaction(stmttrn, imp.account, stmt.currency)
			if err != nil {
				return nil, fmt.Errorf("failed to build transaction: %w", err)
			}
			entries = append(entries, txn)
		}
		ledger.Sort(entries)

		if stmt.balance != nil && imp.balanceType != importer.BalanceNone {
			date := stmt.balance.date
			if imp.balanceType == importer.BalanceLast && len(entries) > 0 {
				date = entries[len(entries)-1].EntryDate()
			}

			// The assertion holds at the beginning of the day, so it
			// moves to the day after the balance date.
			entries = append(entries, ledger.Balance{
				Date:    date.AddDate(0, 0, 1),
				Account: imp.account,
				Amount:  ledger.Amount{Number: stmt.balance.amount, Currency: stmt.currency},
			})
		}

		directives = append(directives, entries...)
	}

	ledger.Sort(directives)
	return directives, nil
}

// statement is one *STMTRS section of an OFX file.
type statement struct {
	acctid       string
	currency     string
	transactions []*html.Node
	balance      *statementBalance
}

type statementBalance struct {
	date   time.Time
	amount decimal.Decimal
}

func parseFile(path string) (*html.Node, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	root, err := html.Parse(strings.NewReader(string(contents)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX: %w", err)
	}
	return root, nil
}

var (
	stmtrsPattern   = regexp.MustCompile(`stmtrs$`)
	tranlistPattern = regexp.MustCompile(`^(|bank|cc)tranlist$`)
)

// findStatements collects the STMTRS and CCSTMTRS sections with their
// account ID, currency, transaction nodes and declared balance.
func findStatements(root *html.Node) []statement {
	var statements []statement
	for _, stmtrs := range findAll(root, func(name string) bool {
		return stmtrsPattern.MatchString(name)
	}) {
		stmt := statement{
			acctid:   childText(stmtrs, "acctid"),
			currency: childText(stmtrs, "curdef"),
		}

		if ledgerbal := findFirst(stmtrs, isName("ledgerbal")); ledgerbal != nil {
			dtasof, okDate := childTime(ledgerbal, "dtasof")
			balamt, err := decimal.NewFromString(childText(ledgerbal, "balamt"))
			if okDate && err == nil {
				stmt.balance = &statementBalance{date: dtasof, amount: balamt}
			}
		}

		for _, tranlist := range findAll(stmtrs, func(name string) bool {
			return tranlistPattern.MatchString(name)
		}) {
			stmt.transactions = append(stmt.transactions, findAll(tranlist, isName("stmttrn"))...)
		}

		statements = append(statements, stmt)
	}
	return statements
}

// buildTransaction builds a single-leg transaction from a STMTTRN node.
// The user categorizes the other side by hand.
func buildTransaction(stmttrn *html.Node, account, currency string) (ledger.Transaction, error) {
	dtposted := childText(stmttrn, "dtposted")
	date, err := ParseOFXTime(dtposted)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid DTPOSTED %q: %w", dtposted, err)
	}

	name := childText(stmttrn, "name")
	memo := childText(stmttrn, "memo")

	// Drop memos duplicated from the name.
	if memo == name {
		memo = ""
	}

	// The transaction type goes into the description, unless it carries
	// no information beyond the amount's sign.
	trntype := childText(stmttrn, "trntype")
	if trntype == "DEBIT" || trntype == "CREDIT" {
		trntype = ""
	}

	var parts []string
	for _, part := range []string{name, memo, trntype} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	narration := strings.Join(parts, " / ")

	number, err := decimal.NewFromString(childText(stmttrn, "trnamt"))
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid TRNAMT: %w", err)
	}

	txn := ledger.Transaction{
		Date:      date,
		Flag:      ledger.FlagOkay,
		Narration: narration,
		Postings: []ledger.Posting{
			{Account: account, Amount: ledger.Amount{Number: number, Currency: currency}},
		},
	}
	if fitid := childText(stmttrn, "fitid"); fitid != "" {
		txn.AddMeta("fitid", fitid)
	}
	return txn, nil
}

// ParseOFXTime parses an OFX date string. Strings shorter than 14
// characters carry only the date, longer ones a full timestamp; the
// timezone suffix ("[-8:PST]") is ignored.
func ParseOFXTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return time.Time{}, fmt.Errorf("date string too short: %q", s)
	}
	if len(s) < 14 {
		return time.Parse("20060102", s[:8])
	}
	return time.Parse("20060102150405", s[:14])
}

// Node helpers. The HTML parser represents the unclosed OFX leaf tags
// as elements whose leading text node holds the value and whose later
// children are the sibling tags that follow in the file.

func isName(name string) func(string) bool {
	return func(n string) bool { return n == name }
}

// findAll returns, in document order, every element whose lowercased
// tag name satisfies match.
func findAll(node *html.Node, match func(string) bool) []*html.Node {
	var result []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n.Data) {
			result = append(result, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return result
}

// findFirst returns the first matching element in document order.
func findFirst(node *html.Node, match func(string) bool) *html.Node {
	if nodes := findAll(node, match); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// childText returns the trimmed leading text of the first descendant
// element with the given name, or empty.
func childText(node *html.Node, name string) string {
	child := findFirst(node, isName(name))
	if child == nil {
		return ""
	}
	for c := child.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			return strings.TrimSpace(c.Data)
		}
		if c.Type == html.ElementNode {
			break
		}
	}
	return ""
}

// childTime parses the leading text of a named descendant as an OFX time.
func childTime(node *html.Node, name string) (time.Time, bool) {
	text := childText(node, name)
	if text == "" {
		return time.Time{}, false
	}
	t, err := ParseOFXTime(text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
