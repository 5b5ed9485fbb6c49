package ofx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidciani/beancount-addons/pkg/importer"
	"github.com/davidciani/beancount-addons/pkg/ledger"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240131120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>9876543210
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101
<DTEND>20240131
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105120000
<TRNAMT>-45.67
<FITID>202401051
<NAME>COFFEE SHOP
<MEMO>CARD PURCHASE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240110
<TRNAMT>-100.00
<FITID>202401102
<NAME>CHECK 1234
<MEMO>CHECK 1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240115120000
<TRNAMT>2500.00
<FITID>202401153
<NAME>PAYROLL DEPOSIT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>3354.33
<DTASOF>20240131
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

// Two statement sections for different accounts. The matching section
// declares no ledger balance.
const multiSectionOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1111222233
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240103
<TRNAMT>-10.00
<FITID>other1
<NAME>OTHER ACCOUNT ROW
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>999.99
<DTASOF>20240131
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
<STMTTRNRS>
<TRNUID>2
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>9876543210
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240105
<TRNAMT>-45.67
<FITID>match1
<NAME>COFFEE SHOP
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func writeSample(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func newTestImporter(t *testing.T, balanceType importer.BalanceType) *Importer {
	t.Helper()
	imp, err := New(Config{
		AcctIDRegexp: "9876",
		Account:      "Assets:Bank:Checking",
		Basename:     "mybank",
		BalanceType:  balanceType,
	})
	require.NoError(t, err)
	return imp
}

func TestIdentify(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceDeclared)

	path := writeSample(t, "statement.qfx", sampleOFX)
	assert.True(t, imp.Identify(path))

	// Wrong extension.
	csvPath := writeSample(t, "statement.csv", sampleOFX)
	assert.False(t, imp.Identify(csvPath))

	// Non-matching account ID.
	other, err := New(Config{AcctIDRegexp: "1111", Account: "Assets:Other"})
	require.NoError(t, err)
	assert.False(t, other.Identify(path))
}

func TestDate(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceDeclared)
	path := writeSample(t, "statement.ofx", sampleOFX)

	date, err := imp.Date(path)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), date)
}

func TestFilename(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceDeclared)
	assert.Equal(t, "mybank.qfx", imp.Filename("/downloads/statement.qfx"))

	plain, err := New(Config{AcctIDRegexp: "9876", Account: "Assets:Bank:Checking"})
	require.NoError(t, err)
	assert.Equal(t, "", plain.Filename("/downloads/statement.qfx"))
}

func TestExtract(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceDeclared)
	path := writeSample(t, "statement.qfx", sampleOFX)

	directives, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, directives, 4)

	txn1, ok := directives[0].(ledger.Transaction)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), txn1.Date)
	assert.Equal(t, "COFFEE SHOP / CARD PURCHASE", txn1.Narration)
	require.Len(t, txn1.Postings, 1)
	assert.Equal(t, "Assets:Bank:Checking", txn1.Postings[0].Account)
	assert.Equal(t, "-45.67 USD", ledger.FormatAmount(txn1.Postings[0].Amount))
	require.Len(t, txn1.Meta, 1)
	assert.Equal(t, ledger.MetaItem{Key: "fitid", Value: "202401051"}, txn1.Meta[0])

	// Duplicate memo dropped, non-trivial transaction type kept.
	txn2 := directives[1].(ledger.Transaction)
	assert.Equal(t, "CHECK 1234 / CHECK", txn2.Narration)

	// DEBIT/CREDIT types carry no information.
	txn3 := directives[2].(ledger.Transaction)
	assert.Equal(t, "PAYROLL DEPOSIT", txn3.Narration)
	assert.Equal(t, "2500.00 USD", ledger.FormatAmount(txn3.Postings[0].Amount))

	// Balance assertion lands the day after the declared date.
	bal, ok := directives[3].(ledger.Balance)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), bal.Date)
	assert.Equal(t, "Assets:Bank:Checking", bal.Account)
	assert.Equal(t, "3354.33 USD", ledger.FormatAmount(bal.Amount))
}

func TestExtractBalanceLast(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceLast)
	path := writeSample(t, "statement.qfx", sampleOFX)

	directives, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, directives, 4)

	// The assertion follows the last transaction instead of the
	// declared date.
	bal := directives[3].(ledger.Balance)
	assert.Equal(t, time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC), bal.Date)
}

func TestExtractBalanceNone(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceNone)
	path := writeSample(t, "statement.qfx", sampleOFX)

	directives, err := imp.Extract(path)
	require.NoError(t, err)
	assert.Len(t, directives, 3)
}

func TestExtractMatchingSectionOnly(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceDeclared)
	path := writeSample(t, "statement.qfx", multiSectionOFX)

	directives, err := imp.Extract(path)
	require.NoError(t, err)

	// Only the matching section's transaction; the other account's
	// rows and balance stay out.
	require.Len(t, directives, 1)

	txn, ok := directives[0].(ledger.Transaction)
	require.True(t, ok)
	assert.Equal(t, "COFFEE SHOP", txn.Narration)
	assert.Contains(t, txn.Meta, ledger.MetaItem{Key: "fitid", Value: "match1"})
	assert.Equal(t, "-45.67 USD", ledger.FormatAmount(txn.Postings[0].Amount))
}

func TestExtractMissingLedgerBalance(t *testing.T) {
	imp := newTestImporter(t, importer.BalanceDeclared)
	path := writeSample(t, "statement.qfx", multiSectionOFX)

	directives, err := imp.Extract(path)
	require.NoError(t, err)

	// The matching section declares no LEDGERBAL, so no balance
	// assertion is emitted even with a declared balance type.
	for _, directive := range directives {
		_, isBalance := directive.(ledger.Balance)
		assert.False(t, isBalance, "no balance directive expected")
	}
}

func TestExtractNonMatchingAccount(t *testing.T) {
	imp, err := New(Config{AcctIDRegexp: "1111", Account: "Assets:Other"})
	require.NoError(t, err)
	path := writeSample(t, "statement.qfx", sampleOFX)

	directives, err := imp.Extract(path)
	require.NoError(t, err)
	assert.Empty(t, directives)
}

func TestParseOFXTime(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  time.Time
		expectErr bool
	}{
		{"date only", "20240105", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), false},
		{"datetime", "20240105120000", time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), false},
		{"with timezone suffix", "20240105120000[-8:PST]", time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), false},
		{"date with trailing digits", "202401051", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), false},
		{"too short", "2024", time.Time{}, true},
		{"garbage", "not-a-date", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOFXTime(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
