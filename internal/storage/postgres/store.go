package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memeforge/internal/model"
)

// Store provides Postgres persistence for the trade journal.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertTrades appends trade records. Each record's id is globally unique so
// replays are deduplicated by the conflict clause.
func (s *Store) InsertTrades(ctx context.Context, trades []model.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(`
			INSERT INTO trades (
				id, side, wallet_id, token_mint, sol_amount, token_amount,
				price, slippage_pct, signature, error, executed_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
			ON CONFLICT (id) DO NOTHING
		`,
			t.ID,
			string(t.Side),
			t.WalletID,
			t.TokenMint,
			t.SolAmount,
			t.TokenAmount,
			t.Price,
			t.SlippagePct,
			t.Signature,
			t.Err,
			t.At,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range trades {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutTradeBatch satisfies the journal interface with a background-friendly
// timeout left to the caller's context at construction time.
func (s *Store) PutTradeBatch(trades []model.TradeRecord) error {
	return s.InsertTrades(context.Background(), trades)
}

// PutLaunch satisfies the launch journal capability.
func (s *Store) PutLaunch(t model.Token) error {
	return s.InsertLaunch(context.Background(), t)
}

// InsertLaunch records a token launch.
func (s *Store) InsertLaunch(ctx context.Context, t model.Token) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO launches (
			mint, name, symbol, total_supply, decimals, mint_authority,
			token_account, signature, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (mint) DO NOTHING
	`,
		t.Mint,
		t.Name,
		t.Symbol,
		int64(t.TotalSupply),
		int16(t.Decimals),
		t.MintAuthority,
		t.TokenAccount,
		t.Signature,
		t.CreatedBy,
		t.CreatedAt,
	)
	return err
}
