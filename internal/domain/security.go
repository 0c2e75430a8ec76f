package domain

import (
	"strings"
)

// Classification defines how a security pays dividends
type Classification int

const (
	Common Classification = iota + 1
	Preferred
)

// String returns the string representation of Classification
func (c Classification) String() string {
	switch c {
	case Common:
		return "COMMON"
	case Preferred:
		return "PREFERRED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether c is one of the known classifications.
func (c Classification) Valid() bool {
	return c == Common || c == Preferred
}

// ParseClassification parses "common" or "preferred" (case-insensitive).
func ParseClassification(s string) (Classification, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COMMON":
		return Common, nil
	case "PREFERRED":
		return Preferred, nil
	default:
		return 0, NewInvalidArgument("parse_classification", "", "unknown classification "+s)
	}
}

// Security is an immutable description of a tradable instrument.
// Updating a security means building a new value with NewSecurity.
type Security struct {
	symbol            string
	classification    Classification
	parValue          int64 // pennies
	fixedDividendRate int64 // whole percent, meaningful for Preferred only
}

// NewSecurity validates the fields and returns a Security value.
//
// The fixed dividend rate is required for Preferred securities and ignored for
// Common ones, where any non-negative value is accepted.
func NewSecurity(symbol string, classification Classification, parValue, fixedDividendRate int64) (Security, error) {
	const op = "new_security"

	if symbol == "" {
		return Security{}, NewInvalidArgument(op, symbol, "symbol is required")
	}
	if !classification.Valid() {
		return Security{}, NewInvalidArgument(op, symbol, "unknown classification")
	}
	if parValue <= 0 {
		return Security{}, NewInvalidArgument(op, symbol, "par value must be positive")
	}
	if fixedDividendRate < 0 {
		return Security{}, NewInvalidArgument(op, symbol, "fixed dividend rate must not be negative")
	}
	if classification == Preferred && fixedDividendRate == 0 {
		return Security{}, NewInvalidArgument(op, symbol, "fixed dividend rate is required for preferred securities")
	}

	return Security{
		symbol:            symbol,
		classification:    classification,
		parValue:          parValue,
		fixedDividendRate: fixedDividendRate,
	}, nil
}

func (s Security) Symbol() string                 { return s.symbol }
func (s Security) Classification() Classification { return s.classification }
func (s Security) ParValue() int64                { return s.parValue }
func (s Security) FixedDividendRate() int64       { return s.fixedDividendRate }

// IsZero reports whether s is the zero Security.
func (s Security) IsZero() bool {
	return s.symbol == ""
}
