package utils

import (
	"fmt"
	"strconv"
	"strings"
)

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Amounts are stored in the smallest unit; MNT and JPY have no minor unit.
var SupportedCurrencies = map[string]Currency{
	"MNT": {Code: "MNT", Symbol: "₮", Name: "Mongolian Tugrik"},
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
}

var minorUnits = map[string]int{
	"MNT": 0,
	"JPY": 0,
	"USD": 2,
	"EUR": 2,
}

func IsValidCurrency(code string) bool {
	_, ok := SupportedCurrencies[code]
	return ok
}

// FormatAmount renders an integer amount, e.g. FormatAmount(60000, "MNT") is "₮60,000".
func FormatAmount(amount int64, currencyCode string) string {
	currency, exists := SupportedCurrencies[currencyCode]
	if !exists {
		currency = SupportedCurrencies[DefaultCurrency]
		currencyCode = DefaultCurrency
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := minorUnits[currencyCode]
	if digits == 0 {
		return sign + currency.Symbol + groupThousands(amount)
	}

	scale := int64(1)
	for i := 0; i < digits; i++ {
		scale *= 10
	}
	return fmt.Sprintf("%s%s%s.%0*d", sign, currency.Symbol, groupThousands(amount/scale), digits, amount%scale)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
