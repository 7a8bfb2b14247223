package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"memeforge/internal/config"
	"memeforge/internal/model"
	"memeforge/internal/pool"
	"memeforge/internal/session"
	"memeforge/internal/storage"
	"memeforge/internal/token"
	"memeforge/internal/trading"
	"memeforge/internal/wallet"
)

const (
	callbackConfirmLaunch = "confirm_launch"
	callbackCancelLaunch  = "cancel_launch"
)

// Bot wires the Telegram transport to the wallet, token, pool and trading
// components and drives the conversation.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	wallets  *wallet.Manager
	tokens   *token.Minter
	pools    *pool.Manager
	sessions *session.Store
	engine   *trading.Engine
	journal  storage.Journal
	logger   *zap.Logger

	mu sync.Mutex
	// currentMint tracks the most recently launched token; pool creation and
	// trading commands target it.
	currentMint string
	// notifyChat is the chat that started the trading loop and receives its
	// trade notifications.
	notifyChat int64
}

// New builds a bot over an authorized Telegram API client.
func New(api *tgbotapi.BotAPI, cfg *config.Config, wallets *wallet.Manager, tokens *token.Minter,
	pools *pool.Manager, sessions *session.Store, engine *trading.Engine,
	journal storage.Journal, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		api:      api,
		cfg:      cfg,
		wallets:  wallets,
		tokens:   tokens,
		pools:    pools,
		sessions: sessions,
		engine:   engine,
		journal:  journal,
		logger:   logger,
	}
	engine.OnTrade(b.onTrade)
	return b
}

// Run polls Telegram for updates until ctx is cancelled. If a trading loop is
// still live on shutdown it is stopped so in-flight trades complete.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot online", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			if b.engine.Active() {
				if _, err := b.engine.Stop(); err != nil && !errors.Is(err, trading.ErrNotActive) {
					b.logger.Warn("stop trading on shutdown", zap.Error(err))
				}
			}
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Channel posts carry no sender and cannot drive the conversation.
	if msg.From == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	// Free-form text is only meaningful inside a launch wizard.
	if b.sessions.Active(msg.Chat.ID) {
		b.handleWizardInput(msg)
		return
	}
	b.reply(msg.Chat.ID, "Send /help to see available commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	command := msg.Command()
	b.logger.Debug("command received", zap.String("command", command), zap.Int64("chat_id", chatID))

	switch command {
	case "start":
		b.reply(chatID, formatWelcome())
	case "help":
		b.reply(chatID, formatHelp())
	case "status":
		b.handleStatus(chatID)
	case "wallets":
		b.handleWallets(ctx, chatID)
	case "airdrop":
		b.handleAirdrop(ctx, chatID, msg.CommandArguments())
	case "launch":
		b.handleLaunch(chatID, msg.From.ID)
	case "create_pool":
		b.handleCreatePool(ctx, chatID)
	case "start_trading":
		b.handleStartTrading(ctx, chatID)
	case "stop_trading":
		b.handleStopTrading(chatID)
	case "rugpull":
		b.handleRugpull(ctx, chatID)
	case "cancel":
		if b.sessions.Cancel(chatID) {
			b.reply(chatID, "✅ Launch cancelled.")
		} else {
			b.reply(chatID, "Nothing to cancel.")
		}
	default:
		b.reply(chatID, fmt.Sprintf("Unknown command /%s. Send /help for the list.", command))
	}
}

func (b *Bot) handleStatus(chatID int64) {
	stats, active := b.engine.Status()
	text := formatStatus(
		networkName(b.cfg.RPCURL),
		b.cfg.Simulate,
		wallet.MaxID,
		len(b.tokens.All()),
		len(b.pools.All()),
		stats,
		active,
	)
	b.reply(chatID, text)
}

func (b *Bot) handleWallets(ctx context.Context, chatID int64) {
	infos, err := b.wallets.Snapshot(ctx)
	if err != nil {
		b.replyError(chatID, "fetch wallet balances", err)
		return
	}
	text := formatWallets(infos)

	// Append the current token's distribution once one exists.
	if mint, ok := b.latestMint(); ok {
		created, err := b.tokens.Get(mint)
		if err == nil {
			rows, err := b.tokens.Summary(ctx, mint)
			if err != nil {
				b.logger.Warn("token summary", zap.Error(err))
			} else {
				text += formatTokenDistribution(created, rows)
			}
		}
	}
	b.reply(chatID, text)
}

func (b *Bot) handleAirdrop(ctx context.Context, chatID int64, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		b.reply(chatID, "Usage: /airdrop [1-5]")
		return
	}
	id, err := strconv.Atoi(args)
	if err != nil || id < wallet.MinID || id > wallet.MaxID {
		b.reply(chatID, fmt.Sprintf("Wallet id must be between %d and %d. Usage: /airdrop [1-5]", wallet.MinID, wallet.MaxID))
		return
	}

	b.reply(chatID, fmt.Sprintf("💧 Requesting 1 SOL airdrop for wallet %d...", id))
	balance, sig, err := b.wallets.Airdrop(ctx, id, 1)
	if err != nil {
		b.replyError(chatID, "airdrop", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ *Airdrop complete*\n\n💰 Wallet %d balance: %.4f SOL\n🔗 [View Transaction](%s)",
		id, balance, explorerTxURL(sig)))
}

func (b *Bot) handleLaunch(chatID, userID int64) {
	b.sessions.Start(chatID, userID)
	b.reply(chatID, "🚀 *Token Launch*\n\n📛 What should your token be called?\n(up to 32 characters)")
}

func (b *Bot) handleWizardInput(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	w, err := b.sessions.Advance(chatID, msg.From.ID, msg.Text)
	if err != nil {
		if errors.Is(err, session.ErrNotOwner) {
			// Group chat chatter from other members is not wizard input.
			return
		}
		if errors.Is(err, session.ErrNoSession) {
			b.reply(chatID, "Send /launch to start a token launch.")
			return
		}
		// Invalid input keeps the wizard on the same step.
		b.reply(chatID, fmt.Sprintf("❌ %s\n\nPlease try again.", err))
		return
	}

	switch w.Step {
	case session.StepSymbol:
		b.reply(chatID, fmt.Sprintf("📛 Name: *%s*\n\n🏷️ Now send the ticker symbol.\n(up to 10 letters or digits)", w.Draft.Name))
	case session.StepSupply:
		b.reply(chatID, fmt.Sprintf("🏷️ Symbol: *%s*\n\n🪙 How many tokens should exist?\n(up to 1,000,000,000,000)", w.Draft.Symbol))
	case session.StepConfirmation:
		b.sendLaunchConfirmation(chatID, w.Draft)
	}
}

func (b *Bot) sendLaunchConfirmation(chatID int64, draft model.TokenDraft) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm Launch", callbackConfirmLaunch),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancelLaunch),
		),
	)
	out := tgbotapi.NewMessage(chatID, formatLaunchSummary(draft))
	out.ParseMode = tgbotapi.ModeMarkdown
	out.ReplyMarkup = keyboard
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("send confirmation", zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("ack callback", zap.Error(err))
	}
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	switch callback.Data {
	case callbackConfirmLaunch:
		b.confirmLaunch(ctx, chatID, callback.From.ID)
	case callbackCancelLaunch:
		if b.sessions.Cancel(chatID) {
			b.reply(chatID, "✅ Launch cancelled.")
		}
	default:
		b.logger.Debug("unknown callback", zap.String("data", callback.Data))
	}
}

func (b *Bot) confirmLaunch(ctx context.Context, chatID int64, userID int64) {
	draft, err := b.sessions.Complete(chatID, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotOwner) {
			return
		}
		b.replyError(chatID, "confirm launch", err)
		return
	}

	b.reply(chatID, fmt.Sprintf("🚀 Creating *%s* (%s)...", draft.Name, draft.Symbol))
	created, err := b.launchToken(ctx, draft, userID)
	if err != nil {
		b.replyError(chatID, "create token", err)
		return
	}
	b.reply(chatID, formatToken(created))
}

// launchToken mints the drafted token, makes it the current target for pool
// and trading commands, and records it with any launch-capable journal.
func (b *Bot) launchToken(ctx context.Context, draft model.TokenDraft, userID int64) (model.Token, error) {
	created, err := b.tokens.Create(ctx, draft, userID)
	if err != nil {
		return model.Token{}, err
	}

	b.mu.Lock()
	b.currentMint = created.Mint
	b.mu.Unlock()

	if lj, ok := b.journal.(storage.LaunchJournal); ok {
		if err := lj.PutLaunch(created); err != nil {
			b.logger.Warn("journal launch", zap.Error(err))
		}
	}
	return created, nil
}

func (b *Bot) handleCreatePool(ctx context.Context, chatID int64) {
	mint, ok := b.latestMint()
	if !ok {
		b.reply(chatID, "🪙 Launch a token first with /launch.")
		return
	}
	created, err := b.tokens.Get(mint)
	if err != nil {
		b.replyError(chatID, "look up token", err)
		return
	}
	if b.pools.Has(mint) {
		b.reply(chatID, "🏊 A pool already exists for this token. Use /start\\_trading.")
		return
	}

	initialSOL := decimal.NewFromFloat(b.cfg.InitialPoolSOL)
	b.reply(chatID, fmt.Sprintf("🏊 Creating pool with %s SOL and %s %s...",
		initialSOL, groupDecimal(initialSOL.Mul(decimal.NewFromInt(pool.TokensPerSOL))), created.Symbol))

	record, err := b.pools.Create(ctx, mint, initialSOL)
	if err != nil {
		b.replyError(chatID, "create pool", err)
		return
	}
	b.reply(chatID, formatPool(record, created))
}

func (b *Bot) handleStartTrading(ctx context.Context, chatID int64) {
	mint, ok := b.latestMint()
	if !ok {
		b.reply(chatID, "🪙 Launch a token first with /launch.")
		return
	}
	if !b.pools.Has(mint) {
		b.reply(chatID, "🏊 Create a pool first with /create\\_pool.")
		return
	}
	created, err := b.tokens.Get(mint)
	if err != nil {
		b.replyError(chatID, "look up token", err)
		return
	}

	if err := b.startTrading(ctx, chatID, mint); err != nil {
		if errors.Is(err, trading.ErrAlreadyActive) {
			b.reply(chatID, "📈 Trading is already running. Use /stop\\_trading first.")
			return
		}
		b.replyError(chatID, "start trading", err)
		return
	}
	b.reply(chatID, formatTradingStarted(created, b.tradingOptions()))
}

// startTrading launches the loop and, only once the start is accepted, points
// trade notifications at the requesting chat. A rejected start leaves the
// running loop and its notification target untouched.
func (b *Bot) startTrading(ctx context.Context, chatID int64, mint string) error {
	if err := b.engine.Start(ctx, mint); err != nil {
		return err
	}
	b.mu.Lock()
	b.notifyChat = chatID
	b.mu.Unlock()
	return nil
}

func (b *Bot) handleStopTrading(chatID int64) {
	stats, err := b.engine.Stop()
	if err != nil {
		if errors.Is(err, trading.ErrNotActive) {
			b.reply(chatID, "📈 Trading is not running.")
			return
		}
		b.replyError(chatID, "stop trading", err)
		return
	}
	b.reply(chatID, formatTradingStopped(stats))
}

func (b *Bot) handleRugpull(ctx context.Context, chatID int64) {
	mint, ok := b.latestMint()
	if !ok || !b.pools.Has(mint) {
		b.reply(chatID, "🏊 No pool to pull. Launch a token and create a pool first.")
		return
	}

	b.reply(chatID, "🔴 *Executing rugpull...*\nStopping trading and selling all holdings.")
	result, stats, err := trading.ExecuteRugpull(ctx, b.engine, b.pools, mint, b.logger)
	if err != nil {
		b.replyError(chatID, "rugpull", err)
		return
	}
	if stats.Trades > 0 {
		b.reply(chatID, formatTradingStopped(stats))
	}
	b.reply(chatID, formatRugpull(result))

	if b.journal != nil {
		record := model.NewTradeRecord(model.TradeResult{
			Side:        model.TradeSell,
			WalletID:    wallet.AuthorityID,
			TokenMint:   result.TokenMint,
			SolAmount:   result.RecoveredSOL,
			TokenAmount: result.TokensSold,
			Signature:   result.Signature,
			At:          result.CompletedAt,
		})
		if err := b.journal.PutTradeBatch([]model.TradeRecord{record}); err != nil {
			b.logger.Warn("journal rugpull", zap.Error(err))
		}
	}
}

// onTrade relays every trade outcome to the chat that started the loop and
// appends it to the journal.
func (b *Bot) onTrade(result model.TradeResult) {
	b.mu.Lock()
	chatID := b.notifyChat
	b.mu.Unlock()

	if chatID != 0 {
		b.reply(chatID, formatTrade(result))
	}
	if b.journal != nil {
		record := model.NewTradeRecord(result)
		if err := b.journal.PutTradeBatch([]model.TradeRecord{record}); err != nil {
			b.logger.Warn("journal trade", zap.Error(err))
		}
	}
}

func (b *Bot) tradingOptions() trading.Options {
	return trading.Options{
		IntervalMin: b.cfg.TradeIntervalMin,
		IntervalMax: b.cfg.TradeIntervalMax,
		BuyProb:     b.cfg.BuyProbability,
	}
}

func (b *Bot) latestMint() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentMint, b.currentMint != ""
}

func (b *Bot) reply(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	out.DisableWebPagePreview = true
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) replyError(chatID int64, action string, err error) {
	b.logger.Error(action, zap.Error(err))
	b.reply(chatID, fmt.Sprintf("❌ Failed to %s: %s", action, err))
}

func networkName(rpcURL string) string {
	switch {
	case strings.Contains(rpcURL, "devnet"):
		return "devnet"
	case strings.Contains(rpcURL, "testnet"):
		return "testnet"
	case strings.Contains(rpcURL, "mainnet"):
		return "mainnet-beta"
	default:
		return rpcURL
	}
}
