package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount the way the shop displays prices,
// e.g. "R$ 1.234,56". Used by coupon messages and installment labels.
func FormatBRL(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return ptBR.Sprintf("R$ %v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
