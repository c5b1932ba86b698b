package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rangepool/lib/config"
	"rangepool/lib/events"
	"rangepool/lib/pool"
	"rangepool/lib/registry"
	"rangepool/lib/storage"
	"rangepool/lib/storage/postgres"
	"rangepool/lib/tickmath"
	"rangepool/lib/token"
)

func main() {
	root := &cobra.Command{
		Use:          "poolsim",
		Short:        "Single-range AMM pool scenario runner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scripted mint/swap/burn/collect scenario",
		RunE:  runScenario,
	}

	runCmd.Flags().String("token0", "0x1000000000000000000000000000000000000001", "token0 address")
	runCmd.Flags().String("token1", "0x2000000000000000000000000000000000000002", "token1 address")
	runCmd.Flags().Int("fee", 3000, "fee tier (ppm)")
	runCmd.Flags().Int("tick-lower", -60, "range lower tick")
	runCmd.Flags().Int("tick-upper", 60, "range upper tick")
	runCmd.Flags().Int("start-tick", 0, "initial price tick")
	runCmd.Flags().String("mint-liquidity", "1000000000", "liquidity to mint")
	runCmd.Flags().Int("swaps", 4, "number of swaps (alternating direction)")
	runCmd.Flags().String("swap-amount", "1000000", "exact input per swap")
	runCmd.Flags().String("out", "", "optional JSONL event output path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for event persistence")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// autoFunder mints whatever the pool asks for straight into its ledger
// account. A stand-in for a real settlement layer.
type autoFunder struct {
	book *token.Book
	p    *pool.Pool
}

func (f *autoFunder) PayForMint(amount0, amount1 *ui.Int, _ []byte) error {
	f.book.Mint(f.p.Token0(), f.p.Account(), amount0)
	f.book.Mint(f.p.Token1(), f.p.Account(), amount1)
	return nil
}

func (f *autoFunder) PayForSwap(amount0, amount1 *ui.Int, _ []byte) error {
	if amount0.Sign() > 0 {
		f.book.Mint(f.p.Token0(), f.p.Account(), amount0)
	}
	if amount1.Sign() > 0 {
		f.book.Mint(f.p.Token1(), f.p.Account(), amount1)
	}
	return nil
}

func runScenario(cmd *cobra.Command, _ []string) error {
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

	token0 := common.HexToAddress(cfg.Token0)
	token1 := common.HexToAddress(cfg.Token1)

	mintLiquidity, err := ui.FromDecimal(cfg.MintLiquidity)
	if err != nil {
		return fmt.Errorf("mint-liquidity: %w", err)
	}
	swapAmount, err := ui.FromDecimal(cfg.SwapAmount)
	if err != nil {
		return fmt.Errorf("swap-amount: %w", err)
	}

	book := token.NewBook()
	memory := &events.MemorySink{}
	sink := events.MultiSink{events.NewZapSink(logger), memory}

	reg := registry.New(book, sink)
	p, err := reg.CreatePool(token0, token1, cfg.TickLower, cfg.TickUpper, cfg.Fee)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}

	startPrice, err := tickmath.SqrtRatioAtTick(cfg.StartTick)
	if err != nil {
		return fmt.Errorf("start tick: %w", err)
	}
	if err := p.Initialize(startPrice); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	provider := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	trader := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	funder := &autoFunder{book: book, p: p}

	if _, _, err := p.Mint(provider, provider, mintLiquidity, funder, nil); err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	for i := 0; i < cfg.Swaps; i++ {
		zeroForOne := i%2 == 0
		if _, _, err := p.Swap(trader, trader, zeroForOne, swapAmount.Clone(), nil, funder, nil); err != nil {
			return fmt.Errorf("swap %d: %w", i, err)
		}
	}

	if _, _, err := p.Burn(provider, mintLiquidity); err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	huge := new(ui.Int).Lsh(ui.NewInt(1), 128)
	if _, _, err := p.Collect(provider, provider, huge, huge.Clone()); err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	recs := memory.Records()
	if cfg.Out != "" {
		if err := storage.NewJsonlStorage(cfg.Out).PutEventBatch(recs); err != nil {
			return fmt.Errorf("write events: %w", err)
		}
		logger.Info("events written", zap.String("path", cfg.Out), zap.Int("count", len(recs)))
	}
	if cfg.PgDSN != "" {
		ctx := context.Background()
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.InsertEvents(ctx, recs); err != nil {
			return fmt.Errorf("persist events: %w", err)
		}
		logger.Info("events persisted", zap.Int("count", len(recs)))
	}

	snap := p.Snapshot()
	logger.Info("scenario complete",
		zap.String("sqrt_price_x96", snap.SqrtRatioX96.Dec()),
		zap.Int("tick", snap.Tick),
		zap.String("pool_liquidity", snap.Liquidity.Dec()),
		zap.String("fee_growth0_x128", snap.FeeGrowthGlobal0X128.Dec()),
		zap.String("fee_growth1_x128", snap.FeeGrowthGlobal1X128.Dec()),
	)
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
