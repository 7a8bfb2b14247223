package pool

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"memeforge/internal/model"
	"memeforge/internal/token"
	"memeforge/internal/wallet"
)

// newFixture builds a simulated wallet/token/pool stack with one launched
// token and returns its mint.
func newFixture(t *testing.T) (*Manager, *token.Minter, *wallet.Manager, string) {
	t.Helper()
	prev := creationDelay
	creationDelay = 0
	t.Cleanup(func() { creationDelay = prev })
	wallets, err := wallet.NewManager(nil, nil, true, nil)
	if err != nil {
		t.Fatalf("wallets: %v", err)
	}
	tokens := token.NewMinter(nil, wallets, true, nil)
	created, err := tokens.Create(context.Background(), model.TokenDraft{
		Name: "Moon Doge", Symbol: "MDOGE", Supply: 1_000_000,
	}, 99)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	pools := NewManager(nil, wallets, tokens, true, 5, nil)
	return pools, tokens, wallets, created.Mint
}

func TestCreatePool(t *testing.T) {
	pools, tokens, _, mint := newFixture(t)
	ctx := context.Background()

	record, err := pools.Create(ctx, mint, decimal.RequireFromString("0.5"))
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if !record.TokenAmount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("pool token side = %s, want 500", record.TokenAmount)
	}
	if !pools.Has(mint) {
		t.Fatal("pool not registered")
	}

	// Wallet 1's holding shrinks by the liquidity deposit.
	held, err := tokens.Balance(ctx, mint, wallet.AuthorityID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !held.Equal(decimal.NewFromInt(999_500)) {
		t.Fatalf("authority holding = %s, want 999500", held)
	}

	if _, err := pools.Create(ctx, mint, decimal.RequireFromString("0.5")); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate create: got %v, want ErrExists", err)
	}
}

func TestCreatePoolUnknownMint(t *testing.T) {
	pools, _, _, _ := newFixture(t)
	if _, err := pools.Create(context.Background(), "NoSuchMint", decimal.NewFromInt(1)); err == nil {
		t.Fatal("create for unknown mint succeeded")
	}
}

func TestBuyCreditsTokensAndDebitsSOL(t *testing.T) {
	pools, tokens, wallets, mint := newFixture(t)
	ctx := context.Background()
	if _, err := pools.Create(ctx, mint, decimal.RequireFromString("0.5")); err != nil {
		t.Fatalf("create pool: %v", err)
	}

	result, err := pools.Buy(ctx, mint, decimal.RequireFromString("0.1"), 2)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if result.Side != model.TradeBuy || !result.Success() {
		t.Fatalf("unexpected result: %+v", result)
	}
	// 0.1 SOL at 0.001 SOL per token less 5% slippage is 95 tokens.
	if !result.TokenAmount.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("tokens received = %s, want 95", result.TokenAmount)
	}

	held, err := tokens.Balance(ctx, mint, 2)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !held.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("wallet 2 holding = %s, want 95", held)
	}

	sol, err := wallets.Balance(ctx, 2)
	if err != nil {
		t.Fatalf("sol balance: %v", err)
	}
	if sol >= 10 {
		t.Fatalf("wallet 2 SOL = %f, want below seed after buy", sol)
	}
}

func TestSellWithoutHoldingsFails(t *testing.T) {
	pools, _, _, mint := newFixture(t)
	ctx := context.Background()
	if _, err := pools.Create(ctx, mint, decimal.RequireFromString("0.5")); err != nil {
		t.Fatalf("create pool: %v", err)
	}

	if _, err := pools.Sell(ctx, mint, decimal.NewFromInt(50), 3); err == nil {
		t.Fatal("sell with no holdings succeeded")
	}
	if pools.Has(mint) != true {
		t.Fatal("failed sell removed the pool")
	}
}

func TestSellAfterBuy(t *testing.T) {
	pools, tokens, _, mint := newFixture(t)
	ctx := context.Background()
	if _, err := pools.Create(ctx, mint, decimal.RequireFromString("0.5")); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if _, err := pools.Buy(ctx, mint, decimal.RequireFromString("0.1"), 2); err != nil {
		t.Fatalf("buy: %v", err)
	}

	result, err := pools.Sell(ctx, mint, decimal.NewFromInt(50), 2)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if result.Side != model.TradeSell {
		t.Fatalf("side = %s, want SELL", result.Side)
	}
	// 50 tokens at 0.0009 SOL less 5% slippage.
	want := decimal.RequireFromString("0.04275")
	if !result.SolAmount.Equal(want) {
		t.Fatalf("SOL received = %s, want %s", result.SolAmount, want)
	}

	held, err := tokens.Balance(ctx, mint, 2)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !held.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("wallet 2 holding = %s, want 45", held)
	}
}

func TestRugpullDrainsAndRemovesPool(t *testing.T) {
	pools, tokens, wallets, mint := newFixture(t)
	ctx := context.Background()
	if _, err := pools.Create(ctx, mint, decimal.RequireFromString("0.5")); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	for _, id := range []int{2, 3, 4} {
		if _, err := pools.Buy(ctx, mint, decimal.RequireFromString("0.1"), id); err != nil {
			t.Fatalf("buy wallet %d: %v", id, err)
		}
	}
	before, err := wallets.Balance(ctx, wallet.AuthorityID)
	if err != nil {
		t.Fatalf("authority balance: %v", err)
	}

	result, err := pools.Rugpull(ctx, mint)
	if err != nil {
		t.Fatalf("rugpull: %v", err)
	}
	if !result.PoolRemoved || pools.Has(mint) {
		t.Fatal("pool survived rugpull")
	}
	if result.WalletsSold != 3 {
		t.Fatalf("wallets sold = %d, want 3", result.WalletsSold)
	}
	// Each buyer held 95 tokens.
	if !result.TokensSold.Equal(decimal.NewFromInt(285)) {
		t.Fatalf("tokens sold = %s, want 285", result.TokensSold)
	}

	after, err := wallets.Balance(ctx, wallet.AuthorityID)
	if err != nil {
		t.Fatalf("authority balance: %v", err)
	}
	if after <= before {
		t.Fatalf("authority SOL did not grow: before %f, after %f", before, after)
	}

	for _, id := range []int{2, 3, 4} {
		held, err := tokens.Balance(ctx, mint, id)
		if err != nil {
			t.Fatalf("balance wallet %d: %v", id, err)
		}
		if !held.IsZero() {
			t.Fatalf("wallet %d still holds %s tokens", id, held)
		}
	}

	if _, err := pools.Rugpull(ctx, mint); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second rugpull: got %v, want ErrNotFound", err)
	}
}
