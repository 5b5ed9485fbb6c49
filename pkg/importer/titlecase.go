package importer

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// Titlecase normalizes the all-caps descriptions banks put on
// statement rows ("PAYROLL DEPOSIT" becomes "Payroll Deposit").
func Titlecase(s string) string {
	return titleCaser.String(s)
}
