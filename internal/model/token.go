package model

import "time"

// Token is the record kept for every SPL mint created by the bot.
// It is immutable once created.
type Token struct {
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Mint          string    `json:"mint"`
	TotalSupply   uint64    `json:"total_supply"`
	Decimals      uint8     `json:"decimals"`
	MintAuthority string    `json:"mint_authority"`
	TokenAccount  string    `json:"token_account"`
	Signature     string    `json:"signature"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     int64     `json:"created_by"`
}

// TokenDraft holds wizard-collected parameters before the mint exists.
type TokenDraft struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Supply uint64 `json:"supply"`
}
