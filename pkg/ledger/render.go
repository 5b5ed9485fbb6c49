package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// amountColumn is the column postings amounts are aligned to,
// counted from the start of the account name.
const amountColumn = 60

// FormatDirective renders a directive as Beancount text.
func FormatDirective(d Directive) string {
	switch v := d.(type) {
	case Transaction:
		return FormatTransaction(v)
	case *Transaction:
		return FormatTransaction(*v)
	case Balance:
		return FormatBalance(v)
	case *Balance:
		return FormatBalance(*v)
	}
	return ""
}

// FormatTransaction renders a transaction as Beancount text.
func FormatTransaction(txn Transaction) string {
	var sb strings.Builder

	// Header line: date, flag, optional payee, narration, tags, links.
	sb.WriteString(txn.Date.Format("2006-01-02"))
	sb.WriteString(" ")
	flag := txn.Flag
	if flag == "" {
		flag = FlagOkay
	}
	sb.WriteString(flag)
	if txn.Payee != "" {
		sb.WriteString(fmt.Sprintf(" %q", txn.Payee))
	}
	sb.WriteString(fmt.Sprintf(" %q", txn.Narration))
	for _, tag := range txn.Tags {
		sb.WriteString(" #")
		sb.WriteString(tag)
	}
	for _, link := range txn.Links {
		sb.WriteString(" ^")
		sb.WriteString(link)
	}
	sb.WriteString("\n")

	for _, item := range txn.Meta {
		sb.WriteString(fmt.Sprintf("  %s: %q\n", item.Key, item.Value))
	}

	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		amountStr := FormatAmount(posting.Amount)
		spaces := amountColumn - len(posting.Account) - len(amountStr)
		if spaces < 1 {
			spaces = 1
		}
		sb.WriteString(strings.Repeat(" ", spaces))
		sb.WriteString(amountStr)

		if posting.Comment != "" {
			sb.WriteString(" ; ")
			sb.WriteString(posting.Comment)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatBalance renders a balance assertion as Beancount text.
func FormatBalance(bal Balance) string {
	return fmt.Sprintf("%s balance %s%s%s\n",
		bal.Date.Format("2006-01-02"),
		bal.Account,
		balancePadding(bal),
		FormatAmount(bal.Amount),
	)
}

func balancePadding(bal Balance) string {
	spaces := amountColumn - len("balance ") - len(bal.Account) - len(FormatAmount(bal.Amount))
	if spaces < 1 {
		spaces = 1
	}
	return strings.Repeat(" ", spaces)
}

// FormatAmount renders an amount, preserving the decimal scale the
// number was parsed with ("20.00 USD" stays "20.00 USD").
func FormatAmount(a Amount) string {
	return FormatNumber(a.Number) + " " + a.Currency
}

// FormatNumber renders a decimal without trimming trailing zeros.
func FormatNumber(n decimal.Decimal) string {
	if n.Exponent() < 0 {
		return n.StringFixed(-n.Exponent())
	}
	return n.String()
}
