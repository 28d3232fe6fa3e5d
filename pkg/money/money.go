// Package money formatea montos en pesos mexicanos para el comprobante y los mensajes.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("es-MX"))

// Format devuelve el monto con símbolo, separador de miles y dos decimales. Ej: $1,234.50
func Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Percent formatea un porcentaje con un decimal. Ej: 81.3%
func Percent(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(1).InexactFloat64(), number.Scale(1))) + "%"
}
