package model

import "github.com/shopspring/decimal"

// All derived quantities (overflow cm, volumes, percentages) round up to
// three decimal places. Downstream fee and compliance comparisons depend on
// these exact values, so consumers must not re-round differently.
const quantPlaces = 3

var cm3PerM3 = decimal.NewFromInt(1_000_000)

// Ceil3 rounds a value towards positive infinity at three decimal places.
func Ceil3(v decimal.Decimal) decimal.Decimal {
	return v.RoundCeil(quantPlaces)
}

// VolumeM3 converts l x w x h in cm to a ceiling-rounded volume in m3.
func VolumeM3(l, w, h decimal.Decimal) decimal.Decimal {
	return Ceil3(l.Mul(w).Mul(h).Div(cm3PerM3))
}
