package notification

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencySymbol = "₦"

var printer = message.NewPrinter(language.MustParse("en-NG"))

// FormatAmount renders an amount the way notification messages show money, e.g. ₦1,250.00.
func FormatAmount(d decimal.Decimal) string {
	return currencySymbol + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}
