package trading

import (
	"time"

	"github.com/shopspring/decimal"

	"memeforge/internal/model"
)

// Stats accumulates counters for one trading run. A snapshot is returned by
// Status while the loop is live and by Stop when it ends. Every attempt
// counts toward its side, so Trades == Buys + Sells == Successes + Failures
// holds at all times.
type Stats struct {
	TokenMint   string          `json:"token_mint"`
	StartedAt   time.Time       `json:"started_at"`
	StoppedAt   time.Time       `json:"stopped_at,omitempty"`
	Trades      int             `json:"trades"`
	Buys        int             `json:"buys"`
	Sells       int             `json:"sells"`
	Successes   int             `json:"successes"`
	Failures    int             `json:"failures"`
	SOLSpent    decimal.Decimal `json:"sol_spent"`
	SOLReceived decimal.Decimal `json:"sol_received"`
}

func (s *Stats) record(result model.TradeResult) {
	s.Trades++
	switch result.Side {
	case model.TradeBuy:
		s.Buys++
	case model.TradeSell:
		s.Sells++
	}
	if !result.Success() {
		s.Failures++
		return
	}
	s.Successes++
	switch result.Side {
	case model.TradeBuy:
		s.SOLSpent = s.SOLSpent.Add(result.SolAmount)
	case model.TradeSell:
		s.SOLReceived = s.SOLReceived.Add(result.SolAmount)
	}
}
