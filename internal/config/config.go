package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	BotToken         string
	RPCURL           string
	WalletKeys       []string
	Simulate         bool
	TradeIntervalMin time.Duration
	TradeIntervalMax time.Duration
	WarmupMin        time.Duration
	WarmupMax        time.Duration
	BuyProbability   float64
	BuySOL           float64
	SellTokens       float64
	SlippagePct      float64
	InitialPoolSOL   float64
	Journal          string
	PGDSN            string
	LogLevel         string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEMEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// TELEGRAM_BOT_TOKEN is the name most hosting guides use; accept it as a
	// fallback alongside the prefixed form.
	if err := v.BindEnv("bot-token", "MEMEFORGE_BOT_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("rpc", "https://api.devnet.solana.com")
	v.SetDefault("simulate", true)
	v.SetDefault("trade-interval-min", 45*time.Second)
	v.SetDefault("trade-interval-max", 120*time.Second)
	v.SetDefault("warmup-min", 5*time.Second)
	v.SetDefault("warmup-max", 15*time.Second)
	v.SetDefault("buy-probability", 0.7)
	v.SetDefault("buy-sol", 0.1)
	v.SetDefault("sell-tokens", 50.0)
	v.SetDefault("slippage-pct", 5.0)
	v.SetDefault("initial-pool-sol", 0.5)
	v.SetDefault("journal", "./data/trades.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		BotToken:         v.GetString("bot-token"),
		RPCURL:           v.GetString("rpc"),
		WalletKeys:       getStringSlice(v, "wallet-keys"),
		Simulate:         v.GetBool("simulate"),
		TradeIntervalMin: v.GetDuration("trade-interval-min"),
		TradeIntervalMax: v.GetDuration("trade-interval-max"),
		WarmupMin:        v.GetDuration("warmup-min"),
		WarmupMax:        v.GetDuration("warmup-max"),
		BuyProbability:   v.GetFloat64("buy-probability"),
		BuySOL:           v.GetFloat64("buy-sol"),
		SellTokens:       v.GetFloat64("sell-tokens"),
		SlippagePct:      v.GetFloat64("slippage-pct"),
		InitialPoolSOL:   v.GetFloat64("initial-pool-sol"),
		Journal:          v.GetString("journal"),
		PGDSN:            v.GetString("pg-dsn"),
		LogLevel:         v.GetString("log-level"),
	}

	// The on-chain trade loop paces itself tighter than the simulated one;
	// only override when the user left the interval flags untouched.
	if !cfg.Simulate {
		if !v.IsSet("trade-interval-min") {
			cfg.TradeIntervalMin = 30 * time.Second
		}
		if !v.IsSet("trade-interval-max") {
			cfg.TradeIntervalMax = 90 * time.Second
		}
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
