package chain

import (
	"context"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TokenHolding is the decoded state of an SPL token account.
type TokenHolding struct {
	Address solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
}

// tokenAccountLayout mirrors the on-chain SPL token account layout.
type tokenAccountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             *solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             *uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       *solana.PublicKey
}

// Holding resolves the associated token account of owner for mint and decodes
// its balance. A missing account is reported as a zero holding, not an error.
func (c *Client) Holding(ctx context.Context, owner, mint solana.PublicKey) (TokenHolding, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return TokenHolding{}, fmt.Errorf("derive associated token address: %w", err)
	}

	info, err := c.rpcClient.GetAccountInfoWithOpts(ctx, ata, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentFinalized,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if err == rpc.ErrNotFound {
			return TokenHolding{Address: ata, Mint: mint, Owner: owner}, nil
		}
		return TokenHolding{}, fmt.Errorf("get account info: %w", err)
	}
	if info == nil || info.Value == nil {
		return TokenHolding{Address: ata, Mint: mint, Owner: owner}, nil
	}

	raw := &tokenAccountLayout{}
	if err := binary.NewBinDecoder(info.Value.Data.GetBinary()).Decode(raw); err != nil {
		return TokenHolding{}, fmt.Errorf("decode token account: %w", err)
	}

	return TokenHolding{
		Address: ata,
		Mint:    raw.Mint,
		Owner:   raw.Owner,
		Amount:  raw.Amount,
	}, nil
}
