package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeType defines the side of a trade
type TradeType int

const (
	Buy TradeType = iota + 1
	Sell
)

// String returns the string representation of TradeType
func (t TradeType) String() string {
	switch t {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is Buy or Sell.
func (t TradeType) Valid() bool {
	return t == Buy || t == Sell
}

// ParseTradeType parses "buy" or "sell" (case-insensitive).
func ParseTradeType(s string) (TradeType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return 0, NewInvalidArgument("parse_trade_type", "", "unknown trade type "+s)
	}
}

// TradeRequest is the caller-supplied part of a trade.
type TradeRequest struct {
	Symbol       string
	Type         TradeType
	Quantity     int64 // shares
	TotalPrice   int64 // pennies for the whole trade
	DividendPaid int64 // pennies
}

// Validate checks the request fields. Symbol existence is not checked here.
func (r TradeRequest) Validate() error {
	const op = "submit"

	switch {
	case r.Symbol == "":
		return NewInvalidArgument(op, r.Symbol, "symbol is required")
	case !r.Type.Valid():
		return NewInvalidArgument(op, r.Symbol, "unknown trade type")
	case r.Quantity <= 0:
		return NewInvalidArgument(op, r.Symbol, "quantity must be positive")
	case r.TotalPrice <= 0:
		return NewInvalidArgument(op, r.Symbol, "total price must be positive")
	case r.DividendPaid <= 0:
		return NewInvalidArgument(op, r.Symbol, "dividend paid must be positive")
	}
	return nil
}

// Trade is an immutable record of one accepted transaction.
type Trade struct {
	id           uuid.UUID
	symbol       string
	tradeType    TradeType
	timestamp    time.Time
	quantity     int64
	totalPrice   int64
	dividendPaid int64
	singlePrice  int64
}

// NewTrade validates req and stamps it with ts. SinglePrice is derived here once.
func NewTrade(req TradeRequest, ts time.Time) (Trade, error) {
	if err := req.Validate(); err != nil {
		return Trade{}, err
	}
	if ts.IsZero() {
		return Trade{}, NewInvalidArgument("submit", req.Symbol, "timestamp is required")
	}

	return Trade{
		id:           uuid.New(),
		symbol:       req.Symbol,
		tradeType:    req.Type,
		timestamp:    ts,
		quantity:     req.Quantity,
		totalPrice:   req.TotalPrice,
		dividendPaid: req.DividendPaid,
		singlePrice:  roundedUnitPrice(req.TotalPrice, req.Quantity),
	}, nil
}

// roundedUnitPrice returns round(total / qty), halves rounded up.
func roundedUnitPrice(total, qty int64) int64 {
	return decimal.NewFromInt(total).
		Div(decimal.NewFromInt(qty)).
		Round(0).
		IntPart()
}

func (t Trade) ID() uuid.UUID        { return t.id }
func (t Trade) Symbol() string       { return t.symbol }
func (t Trade) Type() TradeType      { return t.tradeType }
func (t Trade) Timestamp() time.Time { return t.timestamp }
func (t Trade) Quantity() int64      { return t.quantity }
func (t Trade) TotalPrice() int64    { return t.totalPrice }
func (t Trade) DividendPaid() int64  { return t.dividendPaid }
func (t Trade) SinglePrice() int64   { return t.singlePrice }
