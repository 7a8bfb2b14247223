package model

// WalletInfo is the display snapshot of one bot wallet.
type WalletInfo struct {
	ID        int     `json:"id"`
	PublicKey string  `json:"public_key"`
	SOL       float64 `json:"sol"`
	Generated bool    `json:"generated"`
}
