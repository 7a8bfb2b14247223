package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSide tags a swap direction.
type TradeSide string

const (
	TradeBuy  TradeSide = "BUY"
	TradeSell TradeSide = "SELL"
)

// TradeResult is the outcome of a single buy or sell swap. A failed trade
// carries the error text in Err and zero amounts.
type TradeResult struct {
	Side        TradeSide       `json:"side"`
	WalletID    int             `json:"wallet_id"`
	TokenMint   string          `json:"token_mint"`
	SolAmount   decimal.Decimal `json:"sol_amount"`
	TokenAmount decimal.Decimal `json:"token_amount"`
	Price       decimal.Decimal `json:"price"`
	SlippagePct float64         `json:"slippage_pct"`
	Signature   string          `json:"signature"`
	Err         string          `json:"err,omitempty"`
	At          time.Time       `json:"at"`
}

// Success reports whether the trade completed without error.
func (t TradeResult) Success() bool {
	return t.Err == ""
}

// TradeRecord is the journal representation of a trade.
type TradeRecord struct {
	ID string `json:"id"`
	TradeResult
}

// NewTradeRecord assigns a fresh id to a trade result for journaling.
func NewTradeRecord(result TradeResult) TradeRecord {
	return TradeRecord{ID: uuid.NewString(), TradeResult: result}
}
