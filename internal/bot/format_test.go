package bot

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"memeforge/internal/model"
)

func TestGroupThousands(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{999, "999"},
		{1000, "1,000"},
		{1000000, "1,000,000"},
		{1000000000000, "1,000,000,000,000"},
		{123456789, "123,456,789"},
	}
	for _, tc := range cases {
		if got := groupThousands(tc.in); got != tc.want {
			t.Errorf("groupThousands(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatTradeFailure(t *testing.T) {
	result := model.TradeResult{
		Side:     model.TradeSell,
		WalletID: 3,
		Err:      "insufficient token balance",
	}
	got := formatTrade(result)
	if !strings.Contains(got, "Trade failed") {
		t.Fatalf("failure message missing marker: %q", got)
	}
	if !strings.Contains(got, "insufficient token balance") {
		t.Fatalf("failure message missing cause: %q", got)
	}
}

func TestFormatTradeBuyContents(t *testing.T) {
	result := model.TradeResult{
		Side:        model.TradeBuy,
		WalletID:    2,
		TokenMint:   "MintA",
		SolAmount:   decimal.RequireFromString("0.1"),
		TokenAmount: decimal.RequireFromString("95"),
		Price:       decimal.RequireFromString("0.001"),
		SlippagePct: 5,
		Signature:   "SigABC",
	}
	got := formatTrade(result)
	for _, want := range []string{"BUY EXECUTED", "Wallet: 2", "0.1000 SOL", "95.00", "0.001000", "SigABC"} {
		if !strings.Contains(got, want) {
			t.Errorf("buy message missing %q:\n%s", want, got)
		}
	}
}

func TestNetworkName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://api.devnet.solana.com", "devnet"},
		{"https://api.testnet.solana.com", "testnet"},
		{"https://api.mainnet-beta.solana.com", "mainnet-beta"},
		{"http://localhost:8899", "http://localhost:8899"},
	}
	for _, tc := range cases {
		if got := networkName(tc.url); got != tc.want {
			t.Errorf("networkName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
