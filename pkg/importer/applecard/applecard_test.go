package applecard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidciani/beancount-addons/pkg/ledger"
)

const sampleCSV = `Transaction Date,Clearing Date,Description,Merchant,Category,Type,Amount (USD)
04/05/2021,04/06/2021,COFFEE SHOP SF CA,COFFEE SHOP,Restaurants,Purchase,4.50
04/10/2021,04/11/2021,MONTHLY INSTALLMENT,APPLE STORE,Shopping,Installment,50.00
04/15/2021,04/15/2021,ACH DEPOSIT,ACH DEPOSIT,Payment,Payment,-200.00
`

func writeSample(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	return path
}

func TestIdentify(t *testing.T) {
	imp := New(Config{Account: "Liabilities:CreditCard:AppleCard"})

	assert.True(t, imp.Identify("Apple Card Transactions - April 2021.csv"))
	assert.False(t, imp.Identify("Chase1234_Activity.csv"))
}

func TestDate(t *testing.T) {
	imp := New(Config{Account: "Liabilities:CreditCard:AppleCard"})

	date, err := imp.Date("Apple Card Transactions - April 2021.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 4, 30, 0, 0, 0, 0, time.UTC), date)

	// February clamps to its own last day.
	date, err = imp.Date("Apple Card Transactions - February 2021.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC), date)

	// Month casing in the filename doesn't matter.
	date, err = imp.Date("Apple Card Transactions - april 2021.csv")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 4, 30, 0, 0, 0, 0, time.UTC), date)

	// No date encoded in a non-standard name.
	date, err = imp.Date("Apple Card Transactions export.csv")
	require.NoError(t, err)
	assert.True(t, date.IsZero())
}

func TestFilename(t *testing.T) {
	imp := New(Config{Account: "Liabilities:CreditCard:AppleCard"})
	assert.Equal(t, "AppleCard.csv", imp.Filename("Apple Card Transactions - April 2021.csv"))
}

func TestExtract(t *testing.T) {
	imp := New(Config{Account: "Liabilities:CreditCard:AppleCard"})
	path := writeSample(t, "Apple Card Transactions - April 2021.csv")

	directives, err := imp.Extract(path)
	require.NoError(t, err)
	require.Len(t, directives, 3)

	purchase := directives[0].(ledger.Transaction)
	assert.Equal(t, time.Date(2021, 4, 5, 0, 0, 0, 0, time.UTC), purchase.Date)
	assert.Equal(t, "Coffee Shop", purchase.Payee)
	require.Len(t, purchase.Postings, 1)
	assert.Equal(t, "Liabilities:CreditCard:AppleCard", purchase.Postings[0].Account)
	assert.Equal(t, "4.50 USD", ledger.FormatAmount(purchase.Postings[0].Amount))
	assert.Contains(t, purchase.Meta, ledger.MetaItem{Key: "original-description", Value: "Coffee Shop"})

	// Installments get an offsetting posting on the subaccount.
	installment := directives[1].(ledger.Transaction)
	require.Len(t, installment.Postings, 2)
	assert.Equal(t, "Liabilities:CreditCard:AppleCard:Installments", installment.Postings[1].Account)
	assert.Equal(t, "-50.00 USD", ledger.FormatAmount(installment.Postings[1].Amount))

	// Payments offset against the transfer suspense account.
	payment := directives[2].(ledger.Transaction)
	require.Len(t, payment.Postings, 2)
	assert.Equal(t, "Equity:TransferSuspense", payment.Postings[1].Account)
	assert.Equal(t, "200.00 USD", ledger.FormatAmount(payment.Postings[1].Amount))
}
