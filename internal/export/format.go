// Package export renders assessments to spreadsheet workbooks.
package export

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.SimplifiedChinese)

// Currency formats a monthly amount in yuan with thousands grouping.
func Currency(v float64) string {
	return printer.Sprintf("¥%.0f", v)
}

// Percent formats a ratio as a percentage with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// Score formats a 0-100 sub-score with one decimal.
func Score(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
