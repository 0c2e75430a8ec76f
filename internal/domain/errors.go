package domain

import "errors"

var (
	// ErrInvalidArgument is returned for malformed or out-of-range input. State is left unchanged.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSecurityNotFound is returned when a symbol is not registered.
	ErrSecurityNotFound = errors.New("security not found")

	// ErrNoTradesRecorded is returned when a metric needs a trade and the ledger is empty.
	ErrNoTradesRecorded = errors.New("no trades recorded")

	// ErrInsufficientData is returned when no trade falls inside the calculation window.
	ErrInsufficientData = errors.New("insufficient data")
)

// StockError carries the failing operation and symbol alongside one of the sentinel errors above.
type StockError struct {
	Op     string // Operation that failed (e.g., "upsert", "submit", "price")
	Symbol string // Security symbol, may be empty
	Err    error  // One of the Err* sentinels
	Detail string // Optional human readable detail
}

func (e *StockError) Error() string {
	msg := e.Op
	if e.Symbol != "" {
		msg += " [" + e.Symbol + "]"
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// NewInvalidArgument creates an ErrInvalidArgument error.
func NewInvalidArgument(op, symbol, detail string) *StockError {
	return &StockError{Op: op, Symbol: symbol, Err: ErrInvalidArgument, Detail: detail}
}

// NewSecurityNotFound creates an ErrSecurityNotFound error.
func NewSecurityNotFound(op, symbol string) *StockError {
	return &StockError{Op: op, Symbol: symbol, Err: ErrSecurityNotFound}
}

// NewNoTradesRecorded creates an ErrNoTradesRecorded error.
func NewNoTradesRecorded(op, symbol string) *StockError {
	return &StockError{Op: op, Symbol: symbol, Err: ErrNoTradesRecorded}
}

// NewInsufficientData creates an ErrInsufficientData error.
func NewInsufficientData(op, symbol, detail string) *StockError {
	return &StockError{Op: op, Symbol: symbol, Err: ErrInsufficientData, Detail: detail}
}

// ErrorKind discriminates the sentinel an error wraps.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidArgument
	KindSecurityNotFound
	KindNoTradesRecorded
	KindInsufficientData
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindSecurityNotFound:
		return "security_not_found"
	case KindNoTradesRecorded:
		return "no_trades_recorded"
	case KindInsufficientData:
		return "insufficient_data"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err, or KindUnknown for nil and foreign errors.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrSecurityNotFound):
		return KindSecurityNotFound
	case errors.Is(err, ErrNoTradesRecorded):
		return KindNoTradesRecorded
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	default:
		return KindUnknown
	}
}

// SymbolOf extracts the symbol carried by a StockError, if any.
func SymbolOf(err error) string {
	var se *StockError
	if errors.As(err, &se) {
		return se.Symbol
	}
	return ""
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
