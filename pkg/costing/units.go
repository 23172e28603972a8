package costing

import (
	"strings"

	"seasonplan/entities"
)

const (
	UnitGallon = "gal"
	UnitPound  = "lbs"
)

const (
	OuncesPerGallon = 128.0
	QuartsPerGallon = 4.0
	PintsPerGallon  = 8.0
	LitersPerGallon = 3.78541
	OuncesPerPound  = 16.0
	GramsPerPound   = 453.592
	PoundsPerTon    = 2000.0
	GramsPerKilo    = 1000.0
)

// factor converts a quantity to the canonical unit as qty * mul / div.
type factor struct{ mul, div float64 }

var liquidFactors = map[string]factor{
	"gal": {1, 1},
	"qt":  {1, QuartsPerGallon},
	"pt":  {1, PintsPerGallon},
	"oz":  {1, OuncesPerGallon},
	"l":   {1, LitersPerGallon},
}

var dryFactors = map[string]factor{
	"lbs": {1, 1},
	"oz":  {1, OuncesPerPound},
	"g":   {1, GramsPerPound},
	"kg":  {GramsPerKilo, GramsPerPound},
	"ton": {PoundsPerTon, 1},
}

var unitAliases = map[string]string{
	"gallon": "gal", "gallons": "gal", "gals": "gal",
	"quart": "qt", "quarts": "qt", "qts": "qt",
	"pint": "pt", "pints": "pt", "pts": "pt",
	"fl oz": "oz", "floz": "oz", "fl.oz": "oz", "fl. oz": "oz", "ounce": "oz", "ounces": "oz",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"lb": "lbs", "pound": "lbs", "pounds": "lbs",
	"gram": "g", "grams": "g", "gm": "g",
	"kilogram": "kg", "kilograms": "kg", "kgs": "kg",
	"tons": "ton", "tn": "ton", "short ton": "ton",
}

// NormalizeUnit lowercases unit, strips a leading "$/" or "/", and folds aliases.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimPrefix(u, "$")
	u = strings.TrimPrefix(u, "/")
	u = strings.TrimSuffix(u, "/ac")
	u = strings.TrimSuffix(u, "/acre")
	u = strings.TrimSpace(u)
	if a, ok := unitAliases[u]; ok {
		return a
	}
	return u
}

// CanonicalUnit is gal for liquids and lbs for dry products.
func CanonicalUnit(form string) string {
	switch form {
	case entities.FormLiquid:
		return UnitGallon
	case entities.FormDry:
		return UnitPound
	}
	return ""
}

func factorsFor(form string) map[string]factor {
	switch form {
	case entities.FormLiquid:
		return liquidFactors
	case entities.FormDry:
		return dryFactors
	}
	return nil
}

// ToGallons converts a liquid quantity to gallons.
func ToGallons(rate float64, unit string) (float64, error) {
	return convert(rate, unit, entities.FormLiquid)
}

// ToPounds converts a dry quantity to pounds.
func ToPounds(rate float64, unit string) (float64, error) {
	return convert(rate, unit, entities.FormDry)
}

// ToCanonical converts rate to the canonical unit of form and returns that unit.
func ToCanonical(rate float64, unit, form string) (float64, string, error) {
	v, err := convert(rate, unit, form)
	if err != nil {
		return 0, "", err
	}
	return v, CanonicalUnit(form), nil
}

// ValidUnit reports whether unit is a rate unit for form.
func ValidUnit(unit, form string) bool {
	_, ok := factorsFor(form)[NormalizeUnit(unit)]
	return ok
}

func convert(rate float64, unit, form string) (float64, error) {
	f, ok := factorsFor(form)[NormalizeUnit(unit)]
	if !ok {
		return 0, &UnitError{Unit: unit, Form: form}
	}
	return finite(rate * f.mul / f.div), nil
}
