package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"memeforge/internal/model"
	"memeforge/internal/token"
	"memeforge/internal/trading"
)

func explorerAddressURL(address string) string {
	return fmt.Sprintf("https://explorer.solana.com/address/%s?cluster=devnet", address)
}

func explorerTxURL(signature string) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=devnet", signature)
}

// groupThousands renders n with comma separators.
func groupThousands(n uint64) string {
	raw := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, digit := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return b.String()
}

func formatWelcome() string {
	return `🚀 *Solana Meme Coin Bot*

Available commands:
💰 /wallets - Show wallet status
🚀 /launch - Launch new meme coin
🏊 /create\_pool - Create liquidity pool
📈 /start\_trading - Start automated trading
⏸️ /stop\_trading - Stop automated trading
🔴 /rugpull - Sell everything and pull liquidity
💧 /airdrop [wallet] - Request devnet SOL
📊 /status - Bot status

Send /help for details.`
}

func formatHelp() string {
	return `📖 *Command Reference*

/wallets - SOL and token balances for all 5 wallets
/airdrop [1-5] - Request 1 SOL of devnet airdrop for a wallet
/launch - Guided token launch (name, symbol, supply)
/create\_pool - Create a liquidity pool for the latest token
/start\_trading - Randomized buy/sell loop across wallets 2-5
/stop\_trading - Stop the loop and report statistics
/rugpull - Sell all holdings and remove the pool
/cancel - Abandon an in-progress launch
/status - Connection and trading status`
}

func formatStatus(network string, simulate bool, walletCount int, tokenCount int, poolCount int, stats trading.Stats, active bool) string {
	mode := "on-chain"
	if simulate {
		mode = "simulated"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Bot Status*\n\n")
	fmt.Fprintf(&b, "🤖 Bot: Online ✅\n")
	fmt.Fprintf(&b, "🌐 Network: %s ✅\n", network)
	fmt.Fprintf(&b, "⚙️ Trading mode: %s\n", mode)
	fmt.Fprintf(&b, "💰 Wallets: %d loaded\n", walletCount)
	fmt.Fprintf(&b, "🪙 Tokens launched: %d\n", tokenCount)
	fmt.Fprintf(&b, "🏊 Pools live: %d\n", poolCount)
	if active {
		fmt.Fprintf(&b, "\n📈 *Trading active*\n")
		fmt.Fprintf(&b, "Trades: %d (🟢 %d buys / 🔴 %d sells / ❌ %d failed)\n",
			stats.Trades, stats.Buys, stats.Sells, stats.Failures)
	} else {
		fmt.Fprintf(&b, "\n📈 Trading: idle\n")
	}
	return b.String()
}

func formatWallets(wallets []model.WalletInfo) string {
	var b strings.Builder
	b.WriteString("💰 *Wallet Status*\n\n")
	for _, w := range wallets {
		origin := "loaded"
		if w.Generated {
			origin = "generated"
		}
		fmt.Fprintf(&b, "*Wallet %d* (%s)\n`%s`\n%.4f SOL\n\n", w.ID, origin, w.PublicKey, w.SOL)
	}
	b.WriteString("Use /airdrop [1-5] to top up on devnet.")
	return b.String()
}

func formatTokenDistribution(created model.Token, rows []token.WalletBalance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n🪙 *%s Holdings*\n", created.Symbol)
	for _, row := range rows {
		fmt.Fprintf(&b, "Wallet %d: %s %s\n", row.WalletID, row.Tokens.StringFixed(2), created.Symbol)
	}
	return b.String()
}

func formatToken(token model.Token) string {
	return fmt.Sprintf(`🪙 *Token Created Successfully!*

📛 *Name:* %s
🏷️ *Symbol:* %s
🪙 *Total Supply:* %s %s
🔢 *Decimals:* %d

🏦 *Mint Address:*
`+"`%s`"+`

💰 *Token Account:*
`+"`%s`"+`

🔗 *Transaction:*
`+"`%s`"+`

🌐 *View on Solana Explorer:*
[Click Here](%s) (Devnet)

✅ *All tokens minted to Wallet 1*`,
		token.Name, token.Symbol,
		groupThousands(token.TotalSupply), token.Symbol,
		token.Decimals, token.Mint, token.TokenAccount, token.Signature,
		explorerAddressURL(token.Mint),
	)
}

func formatLaunchSummary(draft model.TokenDraft) string {
	return fmt.Sprintf(`🚀 *Confirm Token Launch*

📛 *Name:* %s
🏷️ *Symbol:* %s
🪙 *Total Supply:* %s
🔢 *Decimals:* 9

All tokens will be minted to Wallet 1. Proceed?`,
		draft.Name, draft.Symbol, groupThousands(draft.Supply))
}

func formatPool(pool model.Pool, token model.Token) string {
	return fmt.Sprintf(`🏊 *Pool Created Successfully!*

🪙 *Token:* %s (%s)
🏊 *Pool ID:*
`+"`%s`"+`

💰 *Initial Liquidity:*
• %s SOL
• %s %s

🔗 *Transaction:*
`+"`%s`"+`

🌐 *View Pool on Explorer:*
[Click Here](%s) (Devnet)

✅ *Pool is ready for trading!*
Use /start\_trading to begin automated swaps.`,
		token.Name, token.Symbol, pool.PoolID,
		pool.SolAmount.String(),
		groupDecimal(pool.TokenAmount), token.Symbol,
		pool.Signature, explorerAddressURL(pool.PoolID),
	)
}

func formatTrade(result model.TradeResult) string {
	if !result.Success() {
		return fmt.Sprintf("❌ Trade failed (wallet %d, %s): %s", result.WalletID, result.Side, result.Err)
	}
	if result.Side == model.TradeBuy {
		return fmt.Sprintf(`🟢 *BUY EXECUTED*

💰 Wallet: %d
💸 SOL Spent: %s SOL
🪙 Tokens Received: %s
📊 Price: %s SOL per token
📉 Slippage: %.1f%%

🔗 [View Transaction](%s)`,
			result.WalletID,
			result.SolAmount.StringFixed(4),
			result.TokenAmount.StringFixed(2),
			result.Price.StringFixed(6),
			result.SlippagePct,
			explorerTxURL(result.Signature),
		)
	}
	return fmt.Sprintf(`🔴 *SELL EXECUTED*

💰 Wallet: %d
🪙 Tokens Sold: %s
💸 SOL Received: %s SOL
📊 Price: %s SOL per token
📉 Slippage: %.1f%%

🔗 [View Transaction](%s)`,
		result.WalletID,
		result.TokenAmount.StringFixed(2),
		result.SolAmount.StringFixed(4),
		result.Price.StringFixed(6),
		result.SlippagePct,
		explorerTxURL(result.Signature),
	)
}

func formatTradingStarted(token model.Token, opts trading.Options) string {
	return fmt.Sprintf(`📈 *Automated Trading Started*

🪙 Token: %s (%s)
💰 Wallets: 2-5 in rotation
🟢 Buy probability: %.0f%%
⏱️ Interval: %s - %s

Send /stop\_trading to halt.`,
		token.Name, token.Symbol,
		opts.BuyProb*100,
		opts.IntervalMin, opts.IntervalMax,
	)
}

func formatTradingStopped(stats trading.Stats) string {
	return fmt.Sprintf(`⏸️ *Trading Stopped*

📊 Trades: %d
🟢 Buys: %d
🔴 Sells: %d
✅ Successful: %d
❌ Failed: %d
💸 SOL spent: %s
💰 SOL received: %s`,
		stats.Trades, stats.Buys, stats.Sells, stats.Successes, stats.Failures,
		stats.SOLSpent.StringFixed(4), stats.SOLReceived.StringFixed(4),
	)
}

func formatRugpull(result model.RugpullResult) string {
	return fmt.Sprintf(`🔴 *RUGPULL COMPLETE*

🪙 Token: `+"`%s`"+`
💰 SOL Recovered: %s SOL
🪙 Tokens Sold: %s
👛 Wallets Sold: %d
🏊 Pool Removed: ✅

🔗 [View Transaction](%s)

All recovered funds are in Wallet 1.`,
		result.TokenMint,
		result.RecoveredSOL.StringFixed(4),
		result.TokensSold.StringFixed(2),
		result.WalletsSold,
		explorerTxURL(result.Signature),
	)
}

// groupDecimal renders a whole-valued decimal with comma separators, falling
// back to the plain string when it carries a fraction.
func groupDecimal(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(0)) || d.Sign() < 0 {
		return d.String()
	}
	return groupThousands(uint64(d.IntPart()))
}
