package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies without a minor unit per ISO 4217. Their provider amounts are
// already expressed in the major unit.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// FromMinorUnits converts a provider minor-unit amount (e.g. piastres, cents)
// to the major currency unit. amount_cents=10000, EGP -> 100.00.
func FromMinorUnits(amount int64, currency string) decimal.Decimal {
	exp := minorUnitExponent(currency)
	if exp == 0 {
		return decimal.NewFromInt(amount)
	}
	return decimal.New(amount, -exp)
}

func minorUnitExponent(currency string) int32 {
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(currency)]; ok {
		return 0
	}
	return 2
}
