package i18n

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is used for any currency string we do not recognise.
const DefaultCurrency = "KGS"

// parseUnit is swapped in tests to exercise the fallback path.
var parseUnit = currency.ParseISO

// NormalizeCurrency maps the free-form currency labels users type to ISO codes.
func NormalizeCurrency(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "сом", "som", "kgs":
		return "KGS"
	case "руб", "rub", "₽":
		return "RUB"
	case "usd", "$":
		return "USD"
	case "eur", "€":
		return "EUR"
	}
	return DefaultCurrency
}

// FormatPrice renders price in the ru locale without fraction digits, e.g.
// "5 000 сом". It never panics; on any formatting failure it returns the raw
// number followed by the original currency label.
func FormatPrice(price float64, cur string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fallbackPrice(price, cur)
		}
	}()

	unit, err := parseUnit(NormalizeCurrency(cur))
	if err != nil {
		return fallbackPrice(price, cur)
	}

	p := message.NewPrinter(language.Russian)
	amount := p.Sprint(number.Decimal(math.Round(price), number.MaxFractionDigits(0)))
	symbol := p.Sprint(currency.Symbol(unit))
	if unit.String() == "KGS" {
		symbol = "сом"
	}
	return amount + " " + symbol
}

func fallbackPrice(price float64, cur string) string {
	return fmt.Sprintf("%v %s", price, cur)
}
