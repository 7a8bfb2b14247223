package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pool is the mock liquidity-pool record for a mint. Vault and authority
// addresses are fabricated placeholders, not live program accounts.
type Pool struct {
	PoolID      string          `json:"pool_id"`
	TokenMint   string          `json:"token_mint"`
	LPMint      string          `json:"lp_mint"`
	Authority   string          `json:"authority"`
	BaseVault   string          `json:"base_vault"`
	QuoteVault  string          `json:"quote_vault"`
	SolAmount   decimal.Decimal `json:"sol_amount"`
	TokenAmount decimal.Decimal `json:"token_amount"`
	Signature   string          `json:"signature"`
	CreatedAt   time.Time       `json:"created_at"`
	Creator     string          `json:"creator"`
}

// RugpullResult reports the outcome of draining a pool.
type RugpullResult struct {
	TokenMint     string          `json:"token_mint"`
	RecoveredSOL  decimal.Decimal `json:"recovered_sol"`
	TokensSold    decimal.Decimal `json:"tokens_sold"`
	WalletsSold   int             `json:"wallets_sold"`
	Signature     string          `json:"signature"`
	PoolRemoved   bool            `json:"pool_removed"`
	CompletedAt   time.Time       `json:"completed_at"`
}
