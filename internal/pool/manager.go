package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"memeforge/internal/chain"
	"memeforge/internal/model"
	"memeforge/internal/token"
	"memeforge/internal/wallet"
)

// Devnet price model. These are demo constants, not AMM output: every token
// trades at a fixed SOL price with the sell side quoted slightly under the
// buy side.
var (
	buyPrice  = decimal.RequireFromString("0.001")
	sellPrice = decimal.RequireFromString("0.0009")
)

// TokensPerSOL fixes the initial liquidity ratio when a pool is created.
const TokensPerSOL = 1000

// rugpullRecovery is the share of pool reserves recovered when liquidity is
// pulled; the remainder stands in for slippage and fees.
var rugpullRecovery = decimal.RequireFromString("0.95")

// creationDelay paces simulated pool creation so the chat flow reads like a
// real deployment. Tests zero it.
var creationDelay = 2 * time.Second

var (
	// ErrNotFound reports a missing pool for a mint.
	ErrNotFound = errors.New("pool not found")
	// ErrExists reports that a mint already has a pool.
	ErrExists = errors.New("pool already exists")
)

// Manager creates mock liquidity pools and executes the buy/sell primitives
// against them. Pool and vault addresses are fabricated keypairs; in on-chain
// mode a buy still moves real devnet SOL so the flow produces a genuine
// transaction signature.
type Manager struct {
	client      *chain.Client
	wallets     *wallet.Manager
	tokens      *token.Minter
	simulate    bool
	slippagePct float64
	logger      *zap.Logger

	mu    sync.RWMutex
	pools map[string]model.Pool
}

// NewManager builds a pool manager with its dependencies.
func NewManager(client *chain.Client, wallets *wallet.Manager, tokens *token.Minter, simulate bool, slippagePct float64, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client:      client,
		wallets:     wallets,
		tokens:      tokens,
		simulate:    simulate,
		slippagePct: slippagePct,
		logger:      logger,
		pools:       make(map[string]model.Pool),
	}
}

// Create sets up a mock pool for a mint, seeding it with initialSOL and the
// matching token amount from wallet 1. At most one pool exists per mint.
func (m *Manager) Create(ctx context.Context, mint string, initialSOL decimal.Decimal) (model.Pool, error) {
	authority, err := m.wallets.Get(wallet.AuthorityID)
	if err != nil {
		return model.Pool{}, err
	}
	if _, err := m.tokens.Get(mint); err != nil {
		return model.Pool{}, err
	}
	if m.Has(mint) {
		return model.Pool{}, fmt.Errorf("mint %s: %w", mint, ErrExists)
	}
	if initialSOL.Sign() <= 0 {
		return model.Pool{}, fmt.Errorf("initial SOL amount must be positive")
	}

	tokenAmount := initialSOL.Mul(decimal.NewFromInt(TokensPerSOL))
	held, err := m.tokens.Balance(ctx, mint, wallet.AuthorityID)
	if err != nil {
		return model.Pool{}, err
	}
	if held.LessThan(tokenAmount) {
		return model.Pool{}, fmt.Errorf("insufficient token balance: need %s, have %s", tokenAmount, held)
	}

	if err := m.tokens.DebitTokens(mint, wallet.AuthorityID, tokenAmount); err != nil {
		return model.Pool{}, err
	}
	if err := m.wallets.Debit(wallet.AuthorityID, solToLamports(initialSOL)); err != nil {
		return model.Pool{}, err
	}

	if m.simulate && creationDelay > 0 {
		select {
		case <-ctx.Done():
			return model.Pool{}, ctx.Err()
		case <-time.After(creationDelay):
		}
	}

	record := model.Pool{
		PoolID:      solana.NewWallet().PublicKey().String(),
		TokenMint:   mint,
		LPMint:      solana.NewWallet().PublicKey().String(),
		Authority:   solana.NewWallet().PublicKey().String(),
		BaseVault:   solana.NewWallet().PublicKey().String(),
		QuoteVault:  solana.NewWallet().PublicKey().String(),
		SolAmount:   initialSOL,
		TokenAmount: tokenAmount,
		Signature:   solana.NewWallet().PublicKey().String(),
		CreatedAt:   time.Now().UTC(),
		Creator:     authority.PublicKey().String(),
	}

	m.mu.Lock()
	m.pools[mint] = record
	m.mu.Unlock()

	m.logger.Info("pool created",
		zap.String("pool_id", record.PoolID),
		zap.String("mint", mint),
		zap.String("sol", initialSOL.String()),
		zap.String("tokens", tokenAmount.String()),
	)
	return record, nil
}

// Get returns the pool record for a mint.
func (m *Manager) Get(mint string) (model.Pool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.pools[mint]
	if !ok {
		return model.Pool{}, fmt.Errorf("mint %s: %w", mint, ErrNotFound)
	}
	return record, nil
}

// Has reports whether a pool exists for a mint.
func (m *Manager) Has(mint string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pools[mint]
	return ok
}

// All returns every live pool.
func (m *Manager) All() []model.Pool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Pool, 0, len(m.pools))
	for _, record := range m.pools {
		out = append(out, record)
	}
	return out
}

// Buy swaps SOL for tokens at the fixed buy price minus slippage.
func (m *Manager) Buy(ctx context.Context, mint string, solAmount decimal.Decimal, walletID int) (model.TradeResult, error) {
	w, err := m.wallets.Get(walletID)
	if err != nil {
		return model.TradeResult{}, err
	}
	if _, err := m.Get(mint); err != nil {
		return model.TradeResult{}, err
	}
	if solAmount.Sign() <= 0 {
		return model.TradeResult{}, fmt.Errorf("buy amount must be positive")
	}

	tokensReceived := solAmount.Div(buyPrice).Mul(m.slippageFactor())

	var sig string
	if m.simulate {
		if err := m.wallets.Debit(walletID, solToLamports(solAmount)); err != nil {
			return model.TradeResult{}, err
		}
		sig = solana.NewWallet().PublicKey().String()
	} else {
		sig, err = m.transferOnChain(ctx, w, solAmount)
		if err != nil {
			return model.TradeResult{}, err
		}
	}
	m.tokens.CreditTokens(mint, walletID, tokensReceived)

	result := model.TradeResult{
		Side:        model.TradeBuy,
		WalletID:    walletID,
		TokenMint:   mint,
		SolAmount:   solAmount,
		TokenAmount: tokensReceived,
		Price:       buyPrice,
		SlippagePct: m.slippagePct,
		Signature:   sig,
		At:          time.Now().UTC(),
	}
	m.logger.Info("buy executed",
		zap.Int("wallet", walletID),
		zap.String("sol", solAmount.String()),
		zap.String("tokens", tokensReceived.String()),
		zap.String("signature", sig),
	)
	return result, nil
}

// Sell swaps tokens for SOL at the fixed sell price minus slippage. The
// seller must actually hold the tokens.
func (m *Manager) Sell(ctx context.Context, mint string, tokenAmount decimal.Decimal, walletID int) (model.TradeResult, error) {
	if _, err := m.wallets.Get(walletID); err != nil {
		return model.TradeResult{}, err
	}
	if _, err := m.Get(mint); err != nil {
		return model.TradeResult{}, err
	}
	if tokenAmount.Sign() <= 0 {
		return model.TradeResult{}, fmt.Errorf("sell amount must be positive")
	}

	held, err := m.tokens.Balance(ctx, mint, walletID)
	if err != nil {
		return model.TradeResult{}, err
	}
	if held.LessThan(tokenAmount) {
		return model.TradeResult{}, fmt.Errorf("insufficient token balance: need %s, have %s", tokenAmount, held)
	}
	if err := m.tokens.DebitTokens(mint, walletID, tokenAmount); err != nil {
		return model.TradeResult{}, err
	}

	solReceived := tokenAmount.Mul(sellPrice).Mul(m.slippageFactor())
	m.wallets.Credit(walletID, solToLamports(solReceived))

	result := model.TradeResult{
		Side:        model.TradeSell,
		WalletID:    walletID,
		TokenMint:   mint,
		SolAmount:   solReceived,
		TokenAmount: tokenAmount,
		Price:       sellPrice,
		SlippagePct: m.slippagePct,
		Signature:   solana.NewWallet().PublicKey().String(),
		At:          time.Now().UTC(),
	}
	m.logger.Info("sell executed",
		zap.Int("wallet", walletID),
		zap.String("tokens", tokenAmount.String()),
		zap.String("sol", solReceived.String()),
	)
	return result, nil
}

// Rugpull sells down every participant wallet's holding of the mint, pulls
// the pool's liquidity back to wallet 1, and deletes the pool record. The
// operation is one-shot; a second call fails with ErrNotFound.
func (m *Manager) Rugpull(ctx context.Context, mint string) (model.RugpullResult, error) {
	record, err := m.Get(mint)
	if err != nil {
		return model.RugpullResult{}, err
	}

	tokensSold := decimal.Zero
	solFromSales := decimal.Zero
	walletsSold := 0
	for _, id := range m.wallets.Participants() {
		held, err := m.tokens.Balance(ctx, mint, id)
		if err != nil {
			m.logger.Warn("rugpull balance lookup failed", zap.Int("wallet", id), zap.Error(err))
			continue
		}
		if held.Sign() <= 0 {
			continue
		}
		result, err := m.Sell(ctx, mint, held, id)
		if err != nil {
			m.logger.Warn("rugpull sell failed", zap.Int("wallet", id), zap.Error(err))
			continue
		}
		tokensSold = tokensSold.Add(result.TokenAmount)
		solFromSales = solFromSales.Add(result.SolAmount)
		walletsSold++
	}

	recoveredSOL := record.SolAmount.Mul(rugpullRecovery)
	m.wallets.Credit(wallet.AuthorityID, solToLamports(recoveredSOL))
	recoveredTokens := record.TokenAmount.Mul(rugpullRecovery)
	m.tokens.CreditTokens(mint, wallet.AuthorityID, recoveredTokens)

	m.mu.Lock()
	delete(m.pools, mint)
	m.mu.Unlock()

	result := model.RugpullResult{
		TokenMint:    mint,
		RecoveredSOL: recoveredSOL.Add(solFromSales),
		TokensSold:   tokensSold,
		WalletsSold:  walletsSold,
		Signature:    solana.NewWallet().PublicKey().String(),
		PoolRemoved:  true,
		CompletedAt:  time.Now().UTC(),
	}
	m.logger.Info("rugpull complete",
		zap.String("mint", mint),
		zap.String("recovered_sol", result.RecoveredSOL.String()),
		zap.String("tokens_sold", result.TokensSold.String()),
	)
	return result, nil
}

// transferOnChain moves the buy's SOL to a throwaway account on devnet so the
// trade carries a real confirmed signature.
func (m *Manager) transferOnChain(ctx context.Context, w *wallet.Wallet, solAmount decimal.Decimal) (string, error) {
	lamports, err := m.client.Balance(ctx, w.PublicKey())
	if err != nil {
		return "", err
	}
	needed := solToLamports(solAmount)
	if lamports < needed {
		return "", fmt.Errorf("insufficient SOL balance: need %s, have %s",
			solAmount, decimal.NewFromUint64(lamports).Div(decimal.NewFromUint64(solana.LAMPORTS_PER_SOL)))
	}

	sink := solana.NewWallet()
	transferIx := system.NewTransferInstruction(needed, w.PublicKey(), sink.PublicKey()).Build()
	sig, err := m.client.SendInstructions(ctx, []solana.Instruction{transferIx}, w.PublicKey(),
		func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(w.PublicKey()) {
				return &w.Key.PrivateKey
			}
			return nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("swap transaction: %w", err)
	}
	return sig.String(), nil
}

func (m *Manager) slippageFactor() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(decimal.NewFromFloat(m.slippagePct / 100))
}

func solToLamports(sol decimal.Decimal) uint64 {
	return uint64(sol.Mul(decimal.NewFromUint64(solana.LAMPORTS_PER_SOL)).IntPart())
}
