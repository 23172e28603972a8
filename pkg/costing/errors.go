package costing

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidUnit    = errors.New("invalid unit")
	ErrMissingProduct = errors.New("missing product")
	ErrMissingPrice   = errors.New("missing price")
)

// UnitError reports a unit that is not recognized for a product form.
type UnitError struct {
	Unit string
	Form string
}

func (e *UnitError) Error() string {
	if e.Form == "" {
		return fmt.Sprintf("invalid unit %q", e.Unit)
	}
	return fmt.Sprintf("invalid unit %q for %s product", e.Unit, e.Form)
}

func (e *UnitError) Unwrap() error { return ErrInvalidUnit }

// safeDiv returns 0 instead of NaN or Inf.
func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return finite(n / d)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampPercent(p float64) float64 {
	p = finite(p)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Err maps an issue to its sentinel error; IssueNone maps to nil.
func (c IssueCode) Err() error {
	switch c {
	case IssueMissingProduct:
		return ErrMissingProduct
	case IssueInvalidUnit:
		return ErrInvalidUnit
	case IssueUnpriced:
		return ErrMissingPrice
	}
	return nil
}
