package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"memeforge/internal/chain"
	"memeforge/internal/model"
)

// Wallet ids are fixed: wallet 1 funds mints and pools, wallets 2-5 trade.
const (
	MinID = 1
	MaxID = 5

	AuthorityID = 1
)

// ErrNotFound reports a wallet id outside the configured range.
var ErrNotFound = errors.New("wallet not found")

// Wallet pairs a numeric id with its keypair.
type Wallet struct {
	ID        int
	Key       *solana.Wallet
	Generated bool
}

// PublicKey returns the wallet's public key.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.Key.PublicKey()
}

// Manager owns the five bot wallets and their balances. In simulated mode
// balances are tracked in memory; otherwise they are read from the chain.
type Manager struct {
	client   *chain.Client
	simulate bool
	logger   *zap.Logger

	mu       sync.RWMutex
	wallets  map[int]*Wallet
	lamports map[int]uint64
}

// simSeedLamports is the starting balance per wallet in simulated mode,
// standing in for a previously funded devnet stash.
const simSeedLamports = 10 * solana.LAMPORTS_PER_SOL

// NewManager loads wallets from base58 private keys in id order and generates
// fresh keypairs for any ids the key list does not cover.
func NewManager(client *chain.Client, keys []string, simulate bool, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(keys) > MaxID {
		return nil, fmt.Errorf("too many wallet keys: got %d, max %d", len(keys), MaxID)
	}

	m := &Manager{
		client:   client,
		simulate: simulate,
		logger:   logger,
		wallets:  make(map[int]*Wallet, MaxID),
		lamports: make(map[int]uint64, MaxID),
	}

	for id := MinID; id <= MaxID; id++ {
		if id-1 < len(keys) {
			pk, err := solana.PrivateKeyFromBase58(keys[id-1])
			if err != nil {
				return nil, fmt.Errorf("parse wallet %d key: %w", id, err)
			}
			m.wallets[id] = &Wallet{ID: id, Key: &solana.Wallet{PrivateKey: pk}}
		} else {
			m.wallets[id] = &Wallet{ID: id, Key: solana.NewWallet(), Generated: true}
		}
		if simulate {
			m.lamports[id] = simSeedLamports
		}
		m.logger.Info("wallet ready",
			zap.Int("id", id),
			zap.String("pubkey", m.wallets[id].PublicKey().String()),
			zap.Bool("generated", m.wallets[id].Generated),
		)
	}

	return m, nil
}

// Get returns the wallet for an id in [MinID, MaxID].
func (m *Manager) Get(id int) (*Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wallets[id]
	if !ok {
		return nil, fmt.Errorf("wallet %d: %w", id, ErrNotFound)
	}
	return w, nil
}

// Participants lists the trading wallet ids (everything but the authority).
func (m *Manager) Participants() []int {
	ids := make([]int, 0, MaxID-MinID)
	for id := MinID; id <= MaxID; id++ {
		if id != AuthorityID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Balance returns the wallet's SOL balance.
func (m *Manager) Balance(ctx context.Context, id int) (float64, error) {
	w, err := m.Get(id)
	if err != nil {
		return 0, err
	}

	if m.simulate {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return lamportsToSOL(m.lamports[id]), nil
	}

	lamports, err := m.client.Balance(ctx, w.PublicKey())
	if err != nil {
		return 0, fmt.Errorf("wallet %d balance: %w", id, err)
	}
	m.mu.Lock()
	m.lamports[id] = lamports
	m.mu.Unlock()
	return lamportsToSOL(lamports), nil
}

// Airdrop requests devnet SOL for a wallet and returns the new balance plus
// the faucet transaction signature.
func (m *Manager) Airdrop(ctx context.Context, id int, sol float64) (float64, string, error) {
	w, err := m.Get(id)
	if err != nil {
		return 0, "", err
	}
	if sol <= 0 || sol > 2 {
		return 0, "", fmt.Errorf("airdrop amount %.2f out of range (0, 2]", sol)
	}
	lamports := solToLamports(sol)

	if m.simulate {
		m.mu.Lock()
		m.lamports[id] += lamports
		balance := m.lamports[id]
		m.mu.Unlock()
		return lamportsToSOL(balance), solana.NewWallet().PublicKey().String(), nil
	}

	sig, err := m.client.RequestAirdrop(ctx, w.PublicKey(), lamports)
	if err != nil {
		return 0, "", fmt.Errorf("wallet %d airdrop: %w", id, err)
	}
	balance, err := m.Balance(ctx, id)
	if err != nil {
		return 0, sig.String(), nil
	}
	return balance, sig.String(), nil
}

// Debit removes lamports from a simulated balance. In on-chain mode the
// transfer itself moves funds and Debit is a no-op.
func (m *Manager) Debit(id int, lamports uint64) error {
	if !m.simulate {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lamports[id] < lamports {
		return fmt.Errorf("insufficient SOL balance: need %.4f, have %.4f",
			lamportsToSOL(lamports), lamportsToSOL(m.lamports[id]))
	}
	m.lamports[id] -= lamports
	return nil
}

// Credit adds lamports to a simulated balance.
func (m *Manager) Credit(id int, lamports uint64) {
	if !m.simulate {
		return
	}
	m.mu.Lock()
	m.lamports[id] += lamports
	m.mu.Unlock()
}

// Snapshot refreshes and returns display info for all wallets in id order.
func (m *Manager) Snapshot(ctx context.Context) ([]model.WalletInfo, error) {
	infos := make([]model.WalletInfo, 0, MaxID)
	for id := MinID; id <= MaxID; id++ {
		w, err := m.Get(id)
		if err != nil {
			return nil, err
		}
		balance, err := m.Balance(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, model.WalletInfo{
			ID:        id,
			PublicKey: w.PublicKey().String(),
			SOL:       balance,
			Generated: w.Generated,
		})
	}
	return infos, nil
}

func lamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(solana.LAMPORTS_PER_SOL)
}

func solToLamports(sol float64) uint64 {
	return uint64(sol * float64(solana.LAMPORTS_PER_SOL))
}
