package token

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	tokenprog "github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"memeforge/internal/chain"
	"memeforge/internal/model"
	"memeforge/internal/wallet"
)

// Decimals is the fixed decimal count for every mint the bot creates.
const Decimals = 9

// ErrNotFound reports an unknown mint address.
var ErrNotFound = errors.New("token not found")

// Minter creates SPL mints and keeps the registry of created tokens. It also
// answers per-wallet token balance queries; in simulated mode it maintains an
// in-memory holdings ledger that the swap layer credits and debits.
type Minter struct {
	client   *chain.Client
	wallets  *wallet.Manager
	simulate bool
	logger   *zap.Logger

	mu       sync.RWMutex
	tokens   map[string]model.Token
	holdings map[string]map[int]decimal.Decimal
}

// NewMinter builds a Minter with its dependencies.
func NewMinter(client *chain.Client, wallets *wallet.Manager, simulate bool, logger *zap.Logger) *Minter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Minter{
		client:   client,
		wallets:  wallets,
		simulate: simulate,
		logger:   logger,
		tokens:   make(map[string]model.Token),
		holdings: make(map[string]map[int]decimal.Decimal),
	}
}

// Create mints a new token: the mint account is created with wallet 1 as
// authority and the full supply lands in wallet 1's associated token account.
func (m *Minter) Create(ctx context.Context, draft model.TokenDraft, createdBy int64) (model.Token, error) {
	authority, err := m.wallets.Get(wallet.AuthorityID)
	if err != nil {
		return model.Token{}, err
	}

	mintWallet := solana.NewWallet()
	ata, _, err := solana.FindAssociatedTokenAddress(authority.PublicKey(), mintWallet.PublicKey())
	if err != nil {
		return model.Token{}, fmt.Errorf("derive token account: %w", err)
	}

	var sig string
	if m.simulate {
		sig = solana.NewWallet().PublicKey().String()
	} else {
		sig, err = m.mintOnChain(ctx, authority, mintWallet, ata, draft.Supply)
		if err != nil {
			return model.Token{}, err
		}
	}

	record := model.Token{
		Name:          draft.Name,
		Symbol:        draft.Symbol,
		Mint:          mintWallet.PublicKey().String(),
		TotalSupply:   draft.Supply,
		Decimals:      Decimals,
		MintAuthority: authority.PublicKey().String(),
		TokenAccount:  ata.String(),
		Signature:     sig,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     createdBy,
	}

	m.mu.Lock()
	m.tokens[record.Mint] = record
	if m.simulate {
		m.holdings[record.Mint] = map[int]decimal.Decimal{
			wallet.AuthorityID: decimal.NewFromUint64(draft.Supply),
		}
	}
	m.mu.Unlock()

	m.logger.Info("token created",
		zap.String("mint", record.Mint),
		zap.String("symbol", record.Symbol),
		zap.Uint64("supply", record.TotalSupply),
		zap.Bool("simulated", m.simulate),
	)
	return record, nil
}

func (m *Minter) mintOnChain(ctx context.Context, authority *wallet.Wallet, mintWallet *solana.Wallet, ata solana.PublicKey, supply uint64) (string, error) {
	if supply > math.MaxUint64/uint64(math.Pow10(Decimals)) {
		return "", fmt.Errorf("supply %d too large to mint on-chain", supply)
	}
	baseUnits := supply * uint64(math.Pow10(Decimals))

	rent, err := m.client.MinimumRentForMint(ctx, uint64(tokenprog.MINT_SIZE))
	if err != nil {
		return "", err
	}

	createIx := system.NewCreateAccountInstruction(
		rent,
		uint64(tokenprog.MINT_SIZE),
		solana.TokenProgramID,
		authority.PublicKey(),
		mintWallet.PublicKey(),
	).Build()

	initIx := tokenprog.NewInitializeMint2InstructionBuilder().
		SetDecimals(Decimals).
		SetMintAuthority(authority.PublicKey()).
		SetMintAccount(mintWallet.PublicKey()).
		Build()

	ataIx := associatedtokenaccount.NewCreateInstruction(
		authority.PublicKey(), authority.PublicKey(), mintWallet.PublicKey(),
	).Build()

	mintIx := tokenprog.NewMintToInstruction(
		baseUnits,
		mintWallet.PublicKey(),
		ata,
		authority.PublicKey(),
		nil,
	).Build()

	sig, err := m.client.SendInstructions(ctx,
		[]solana.Instruction{createIx, initIx, ataIx, mintIx},
		authority.PublicKey(),
		func(key solana.PublicKey) *solana.PrivateKey {
			switch {
			case key.Equals(authority.PublicKey()):
				return &authority.Key.PrivateKey
			case key.Equals(mintWallet.PublicKey()):
				return &mintWallet.PrivateKey
			default:
				return nil
			}
		},
	)
	if err != nil {
		return "", fmt.Errorf("mint transaction: %w", err)
	}
	return sig.String(), nil
}

// Get returns the record for a mint address.
func (m *Minter) Get(mint string) (model.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.tokens[mint]
	if !ok {
		return model.Token{}, fmt.Errorf("mint %s: %w", mint, ErrNotFound)
	}
	return record, nil
}

// All returns every created token; ordering is not guaranteed.
func (m *Minter) All() []model.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Token, 0, len(m.tokens))
	for _, record := range m.tokens {
		out = append(out, record)
	}
	return out
}

// Balance returns a wallet's holding of a mint in whole tokens.
func (m *Minter) Balance(ctx context.Context, mint string, walletID int) (decimal.Decimal, error) {
	record, err := m.Get(mint)
	if err != nil {
		return decimal.Zero, err
	}
	w, err := m.wallets.Get(walletID)
	if err != nil {
		return decimal.Zero, err
	}

	if m.simulate {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.holdings[mint][walletID], nil
	}

	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse mint address: %w", err)
	}
	holding, err := m.client.Holding(ctx, w.PublicKey(), mintKey)
	if err != nil {
		return decimal.Zero, err
	}
	scale := decimal.New(1, int32(record.Decimals))
	return decimal.NewFromUint64(holding.Amount).Div(scale), nil
}

// CreditTokens adds whole tokens to a simulated holding. No-op on-chain,
// where the ledger is the chain itself.
func (m *Minter) CreditTokens(mint string, walletID int, amount decimal.Decimal) {
	if !m.simulate {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holdings[mint] == nil {
		m.holdings[mint] = make(map[int]decimal.Decimal)
	}
	m.holdings[mint][walletID] = m.holdings[mint][walletID].Add(amount)
}

// DebitTokens removes whole tokens from a simulated holding.
func (m *Minter) DebitTokens(mint string, walletID int, amount decimal.Decimal) error {
	if !m.simulate {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.holdings[mint][walletID]
	if held.LessThan(amount) {
		return fmt.Errorf("insufficient token balance: need %s, have %s", amount, held)
	}
	m.holdings[mint][walletID] = held.Sub(amount)
	return nil
}

// WalletBalance is one row of a token's distribution summary.
type WalletBalance struct {
	WalletID int
	Tokens   decimal.Decimal
}

// Summary reports a token's balance in each wallet.
func (m *Minter) Summary(ctx context.Context, mint string) ([]WalletBalance, error) {
	if _, err := m.Get(mint); err != nil {
		return nil, err
	}
	rows := make([]WalletBalance, 0, wallet.MaxID)
	for id := wallet.MinID; id <= wallet.MaxID; id++ {
		balance, err := m.Balance(ctx, mint, id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, WalletBalance{WalletID: id, Tokens: balance})
	}
	return rows, nil
}
