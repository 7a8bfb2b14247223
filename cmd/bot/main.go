package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"memeforge/internal/bot"
	"memeforge/internal/chain"
	"memeforge/internal/config"
	"memeforge/internal/pool"
	"memeforge/internal/session"
	"memeforge/internal/storage"
	"memeforge/internal/storage/postgres"
	"memeforge/internal/token"
	"memeforge/internal/trading"
	"memeforge/internal/wallet"
)

func main() {
	root := &cobra.Command{
		Use:          "memeforge",
		Short:        "Solana devnet meme coin Telegram bot",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot",
		RunE:  runBot,
	}

	runCmd.Flags().String("bot-token", "", "Telegram bot token")
	runCmd.Flags().String("rpc", "https://api.devnet.solana.com", "Solana RPC URL")
	runCmd.Flags().StringSlice("wallet-keys", nil, "base58 wallet private keys (comma-separated, up to 5)")
	runCmd.Flags().Bool("simulate", true, "simulate trades instead of sending transactions")
	runCmd.Flags().Duration("trade-interval-min", 45*time.Second, "minimum delay between trades")
	runCmd.Flags().Duration("trade-interval-max", 120*time.Second, "maximum delay between trades")
	runCmd.Flags().Duration("warmup-min", 5*time.Second, "minimum warm-up before the first trade")
	runCmd.Flags().Duration("warmup-max", 15*time.Second, "maximum warm-up before the first trade")
	runCmd.Flags().Float64("buy-probability", 0.7, "probability a trade is a buy")
	runCmd.Flags().Float64("buy-sol", 0.1, "SOL spent per buy")
	runCmd.Flags().Float64("sell-tokens", 50, "tokens sold per sell")
	runCmd.Flags().Float64("slippage-pct", 5, "slippage percentage applied to swaps")
	runCmd.Flags().Float64("initial-pool-sol", 0.5, "SOL side of initial pool liquidity")
	runCmd.Flags().String("journal", "./data/trades.jsonl", "trade journal JSONL path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the trade journal")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	// Local development keeps secrets in .env; absence is not an error.
	_ = godotenv.Load()

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient := chain.NewClient(cfg.RPCURL)
	version, err := chainClient.Version(ctx)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}

	wallets, err := wallet.NewManager(chainClient, cfg.WalletKeys, cfg.Simulate, logger)
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}

	tokens := token.NewMinter(chainClient, wallets, cfg.Simulate, logger)
	pools := pool.NewManager(chainClient, wallets, tokens, cfg.Simulate, cfg.SlippagePct, logger)
	sessions := session.NewStore()

	engine := trading.NewEngine(pools, trading.Options{
		IntervalMin: cfg.TradeIntervalMin,
		IntervalMax: cfg.TradeIntervalMax,
		WarmupMin:   cfg.WarmupMin,
		WarmupMax:   cfg.WarmupMax,
		BuyProb:     cfg.BuyProbability,
		BuySOL:      decimal.NewFromFloat(cfg.BuySOL),
		SellTokens:  decimal.NewFromFloat(cfg.SellTokens),
		Wallets:     wallets.Participants(),
	}, logger)

	var journal storage.Journal
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		journal = store
	} else {
		journal = storage.NewJsonlJournal(cfg.Journal)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}

	logger.Info("bot start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("solana_version", version),
		zap.Bool("simulate", cfg.Simulate),
		zap.Duration("trade_interval_min", cfg.TradeIntervalMin),
		zap.Duration("trade_interval_max", cfg.TradeIntervalMax),
		zap.Float64("buy_probability", cfg.BuyProbability),
		zap.String("journal", cfg.Journal),
	)

	b := bot.New(api, &cfg, wallets, tokens, pools, sessions, engine, journal, logger)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
