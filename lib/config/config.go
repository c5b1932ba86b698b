package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds scenario-runner configuration loaded from flags, env, or a
// config file.
type Config struct {
	Token0        string
	Token1        string
	Fee           int
	TickLower     int
	TickUpper     int
	StartTick     int
	MintLiquidity string
	Swaps         int
	SwapAmount    string
	Out           string
	PgDSN         string
	LogLevel      string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("fee", 3000)
	v.SetDefault("tick-lower", -60)
	v.SetDefault("tick-upper", 60)
	v.SetDefault("start-tick", 0)
	v.SetDefault("mint-liquidity", "1000000000")
	v.SetDefault("swaps", 4)
	v.SetDefault("swap-amount", "1000000")
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
		Token0:        v.GetString("token0"),
		Token1:        v.GetString("token1"),
		Fee:           v.GetInt("fee"),
		TickLower:     v.GetInt("tick-lower"),
		TickUpper:     v.GetInt("tick-upper"),
		StartTick:     v.GetInt("start-tick"),
		MintLiquidity: v.GetString("mint-liquidity"),
		Swaps:         v.GetInt("swaps"),
		SwapAmount:    v.GetString("swap-amount"),
		Out:           v.GetString("out"),
		PgDSN:         v.GetString("pg-dsn"),
		LogLevel:      v.GetString("log-level"),
	}
	return cfg, nil
}
