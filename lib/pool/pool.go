// Package pool implements a concentrated-liquidity AMM pool whose entire
// liquidity shares one fixed price range chosen at creation. Providers mint
// and burn liquidity against that range, traders swap inside it, and fees
// accrue to providers through a global per-liquidity accumulator settled
// lazily per position.
package pool

import (
	"fmt"

	cons "rangepool/lib/constants"
	"rangepool/lib/events"
	fm "rangepool/lib/fullmath"
	"rangepool/lib/liqmath"
	"rangepool/lib/position"
	"rangepool/lib/swapmath"
	"rangepool/lib/tickmath"
	"rangepool/lib/token"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
)

// Parameters is a pool's immutable identity. It is pulled from the
// registry right after allocation, never passed through a constructor, so
// pool construction stays identical for every instance.
type Parameters struct {
	Token0    common.Address
	Token1    common.Address
	Fee       int // parts per million
	TickLower int
	TickUpper int
	Account   common.Address // the pool's account in the token ledger
}

// ParameterSource hands a freshly allocated pool its identity.
type ParameterSource interface {
	Parameters() Parameters
}

// MintFunder must raise the pool's ledger balance of each token by at
// least the passed amount before returning. The pool verifies the effect
// by re-reading its balance; the return value alone is never trusted.
type MintFunder interface {
	PayForMint(amount0, amount1 *ui.Int, data []byte) error
}

// SwapFunder receives the swap's signed amounts (positive = owed to the
// pool) and must fund the positive side before returning.
type SwapFunder interface {
	PayForSwap(amount0, amount1 *ui.Int, data []byte) error
}

// Snapshot is a read-only view of the pool's mutable state.
type Snapshot struct {
	SqrtRatioX96         *ui.Int
	Tick                 int
	Liquidity            *ui.Int
	FeeGrowthGlobal0X128 *ui.Int
	FeeGrowthGlobal1X128 *ui.Int
}

type Pool struct {
	params            Parameters
	sqrtRatioLowerX96 *ui.Int
	sqrtRatioUpperX96 *ui.Int
	ledger            token.Ledger
	sink              events.Sink

	initialized          bool
	SqrtRatioX96         *ui.Int
	TickCurrent          int
	Liquidity            *ui.Int
	FeeGrowthGlobal0X128 *ui.Int
	FeeGrowthGlobal1X128 *ui.Int
	positions            map[common.Address]*position.Info
}

// New allocates a pool and immediately pulls its identity from src.
func New(src ParameterSource, ledger token.Ledger, sink events.Sink) (*Pool, error) {
	params := src.Parameters()
	if params.TickLower >= params.TickUpper {
		return nil, fmt.Errorf("pool parameters: %w", tickmath.ErrTickRange)
	}
	lower, err := tickmath.SqrtRatioAtTick(params.TickLower)
	if err != nil {
		return nil, fmt.Errorf("pool parameters: %w", err)
	}
	upper, err := tickmath.SqrtRatioAtTick(params.TickUpper)
	if err != nil {
		return nil, fmt.Errorf("pool parameters: %w", err)
	}
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Pool{
		params:               params,
		sqrtRatioLowerX96:    lower,
		sqrtRatioUpperX96:    upper,
		ledger:               ledger,
		sink:                 sink,
		SqrtRatioX96:         ui.NewInt(0),
		Liquidity:            ui.NewInt(0),
		FeeGrowthGlobal0X128: ui.NewInt(0),
		FeeGrowthGlobal1X128: ui.NewInt(0),
		positions:            make(map[common.Address]*position.Info),
	}, nil
}

func (p *Pool) Token0() common.Address  { return p.params.Token0 }
func (p *Pool) Token1() common.Address  { return p.params.Token1 }
func (p *Pool) Fee() int                { return p.params.Fee }
func (p *Pool) TickLower() int          { return p.params.TickLower }
func (p *Pool) TickUpper() int          { return p.params.TickUpper }
func (p *Pool) Account() common.Address { return p.params.Account }

func (p *Pool) SqrtRatioLowerX96() *ui.Int { return p.sqrtRatioLowerX96.Clone() }
func (p *Pool) SqrtRatioUpperX96() *ui.Int { return p.sqrtRatioUpperX96.Clone() }

func (p *Pool) Snapshot() Snapshot {
	return Snapshot{
		SqrtRatioX96:         p.SqrtRatioX96.Clone(),
		Tick:                 p.TickCurrent,
		Liquidity:            p.Liquidity.Clone(),
		FeeGrowthGlobal0X128: p.FeeGrowthGlobal0X128.Clone(),
		FeeGrowthGlobal1X128: p.FeeGrowthGlobal1X128.Clone(),
	}
}

// Position returns a copy of the owner's position. A never-touched owner
// reads as an empty position.
func (p *Pool) Position(owner common.Address) *position.Info {
	if pos, ok := p.positions[owner]; ok {
		return pos.Clone()
	}
	return position.New()
}

// Initialize sets the starting price, once. The price must map to a tick
// inside the pool's fixed range.
func (p *Pool) Initialize(sqrtPriceX96 *ui.Int) error {
	if p.initialized {
		return ErrAlreadyInitialized
	}
	tick, err := tickmath.TickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return err
	}
	if tick < p.params.TickLower || tick >= p.params.TickUpper {
		return ErrPriceOutOfRange
	}
	if sqrtPriceX96.Cmp(p.sqrtRatioLowerX96) < 0 || sqrtPriceX96.Cmp(p.sqrtRatioUpperX96) >= 0 {
		return ErrPriceOutOfRange
	}
	p.SqrtRatioX96 = sqrtPriceX96.Clone()
	p.TickCurrent = tick
	p.initialized = true
	p.sink.Emit(events.Stamp(events.Record{
		Type:         events.TypeInitialize,
		Pool:         p.params.Account.Hex(),
		Amount0:      "0",
		Amount1:      "0",
		SqrtPriceX96: p.SqrtRatioX96.Dec(),
		Tick:         p.TickCurrent,
		PoolLiq:      p.Liquidity.Dec(),
	}))
	return nil
}

// Mint adds liquidity to the recipient's position. The required token
// amounts are computed against the current price, rounded up, and must be
// funded through the callback before any state changes.
func (p *Pool) Mint(sender, recipient common.Address, liquidityAmount *ui.Int, funder MintFunder, data []byte) (amount0, amount1 *ui.Int, err error) {
	if !p.initialized {
		return nil, nil, ErrNotInitialized
	}
	if liquidityAmount == nil || liquidityAmount.IsZero() {
		return nil, nil, ErrZeroAmount
	}

	amount0, amount1 = liqmath.GetAmountsForLiquidity(p.SqrtRatioX96, p.sqrtRatioLowerX96, p.sqrtRatioUpperX96, liquidityAmount, true)

	balance0Before := p.ledger.BalanceOf(p.params.Token0, p.params.Account)
	balance1Before := p.ledger.BalanceOf(p.params.Token1, p.params.Account)
	if funder != nil {
		if err := funder.PayForMint(amount0.Clone(), amount1.Clone(), data); err != nil {
			return nil, nil, fmt.Errorf("mint funding: %w", err)
		}
	}
	if err := p.verifyFunded(balance0Before, balance1Before, amount0, amount1); err != nil {
		return nil, nil, err
	}

	pos := p.positionFor(recipient)
	pos.Update(liquidityAmount.Clone(), p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)
	// price never leaves the fixed range, so minted liquidity is always active
	p.Liquidity.Add(p.Liquidity, liquidityAmount)

	p.sink.Emit(events.Stamp(events.Record{
		Type:      events.TypeMint,
		Pool:      p.params.Account.Hex(),
		Sender:    sender.Hex(),
		Owner:     recipient.Hex(),
		Liquidity: liquidityAmount.Dec(),
		Amount0:   amount0.Dec(),
		Amount1:   amount1.Dec(),
	}))
	return amount0, amount1, nil
}

// Burn converts position liquidity back into owed token balances. Nothing
// is paid out; the amounts wait for Collect.
func (p *Pool) Burn(owner common.Address, liquidityAmount *ui.Int) (amount0, amount1 *ui.Int, err error) {
	if !p.initialized {
		return nil, nil, ErrNotInitialized
	}
	if liquidityAmount == nil || liquidityAmount.IsZero() {
		return nil, nil, ErrZeroAmount
	}
	pos, ok := p.positions[owner]
	if !ok || pos.Liquidity.Cmp(liquidityAmount) < 0 {
		return nil, nil, ErrInsufficientPosition
	}

	amount0, amount1 = liqmath.GetAmountsForLiquidity(p.SqrtRatioX96, p.sqrtRatioLowerX96, p.sqrtRatioUpperX96, liquidityAmount, false)

	pos.Update(new(ui.Int).Neg(liquidityAmount), p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)
	pos.TokensOwed0.Add(pos.TokensOwed0, amount0)
	pos.TokensOwed1.Add(pos.TokensOwed1, amount1)
	p.Liquidity.Sub(p.Liquidity, liquidityAmount)

	p.sink.Emit(events.Stamp(events.Record{
		Type:      events.TypeBurn,
		Pool:      p.params.Account.Hex(),
		Owner:     owner.Hex(),
		Liquidity: liquidityAmount.Dec(),
		Amount0:   amount0.Dec(),
		Amount1:   amount1.Dec(),
	}))
	return amount0, amount1, nil
}

// Collect pays min(requested, owed) of each token to the recipient and
// decrements the owed balances. Collecting with nothing owed pays nothing
// and is not an error.
func (p *Pool) Collect(owner, recipient common.Address, amount0Requested, amount1Requested *ui.Int) (amount0, amount1 *ui.Int, err error) {
	amount0, amount1 = ui.NewInt(0), ui.NewInt(0)
	pos, ok := p.positions[owner]
	if !ok {
		return amount0, amount1, nil
	}

	if amount0Requested != nil {
		amount0 = minInt(amount0Requested, pos.TokensOwed0)
	}
	if amount1Requested != nil {
		amount1 = minInt(amount1Requested, pos.TokensOwed1)
	}

	if !amount0.IsZero() {
		if err := p.ledger.Transfer(p.params.Token0, p.params.Account, recipient, amount0); err != nil {
			return nil, nil, fmt.Errorf("collect token0: %w", err)
		}
		pos.TokensOwed0.Sub(pos.TokensOwed0, amount0)
	}
	if !amount1.IsZero() {
		if err := p.ledger.Transfer(p.params.Token1, p.params.Account, recipient, amount1); err != nil {
			return nil, nil, fmt.Errorf("collect token1: %w", err)
		}
		pos.TokensOwed1.Sub(pos.TokensOwed1, amount1)
	}

	p.sink.Emit(events.Stamp(events.Record{
		Type:      events.TypeCollect,
		Pool:      p.params.Account.Hex(),
		Owner:     owner.Hex(),
		Recipient: recipient.Hex(),
		Amount0:   amount0.Dec(),
		Amount1:   amount1.Dec(),
	}))
	return amount0, amount1, nil
}

// Swap trades against the pooled liquidity. amountSpecified is signed
// two's complement: non-negative means exact input, negative exact output.
// A nil or zero sqrtPriceLimitX96 defaults to the range bound in the swap
// direction. Returned amounts are signed, positive paid into the pool.
func (p *Pool) Swap(sender, recipient common.Address, zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *ui.Int, funder SwapFunder, data []byte) (amount0, amount1 *ui.Int, err error) {
	if !p.initialized {
		return nil, nil, ErrNotInitialized
	}
	if amountSpecified == nil || amountSpecified.IsZero() {
		return nil, nil, ErrZeroAmount
	}

	limit, err := p.swapLimit(zeroForOne, sqrtPriceLimitX96)
	if err != nil {
		return nil, nil, err
	}

	sqrtRatioNextX96, amountIn, amountOut, feeAmount := swapmath.ComputeSwapStep(p.SqrtRatioX96, limit, p.Liquidity, amountSpecified, p.params.Fee)

	totalIn := new(ui.Int).Add(amountIn, feeAmount)
	if zeroForOne {
		amount0 = totalIn
		amount1 = new(ui.Int).Neg(amountOut)
	} else {
		amount0 = new(ui.Int).Neg(amountOut)
		amount1 = totalIn
	}

	tokenIn, tokenOut := p.params.Token0, p.params.Token1
	if !zeroForOne {
		tokenIn, tokenOut = tokenOut, tokenIn
	}

	// the output leaves pool-held balance; make sure it is there before
	// any funding moves
	if p.ledger.BalanceOf(tokenOut, p.params.Account).Cmp(amountOut) < 0 {
		return nil, nil, fmt.Errorf("swap payout: %w", token.ErrInsufficientBalance)
	}

	balanceInBefore := p.ledger.BalanceOf(tokenIn, p.params.Account)
	if funder != nil {
		if err := funder.PayForSwap(amount0.Clone(), amount1.Clone(), data); err != nil {
			return nil, nil, fmt.Errorf("swap funding: %w", err)
		}
	}
	balanceInAfter := p.ledger.BalanceOf(tokenIn, p.params.Account)
	if new(ui.Int).Sub(balanceInAfter, balanceInBefore).Cmp(totalIn) < 0 {
		return nil, nil, ErrInsufficientFunding
	}

	if !amountOut.IsZero() {
		if err := p.ledger.Transfer(tokenOut, p.params.Account, recipient, amountOut); err != nil {
			return nil, nil, fmt.Errorf("swap payout: %w", err)
		}
	}

	if p.SqrtRatioX96.Cmp(sqrtRatioNextX96) != 0 {
		tick, err := tickmath.TickAtSqrtRatio(sqrtRatioNextX96)
		if err != nil {
			return nil, nil, err
		}
		p.SqrtRatioX96 = sqrtRatioNextX96
		p.TickCurrent = tick
	}
	if !feeAmount.IsZero() && p.Liquidity.Sign() > 0 {
		growth := fm.MulDiv(feeAmount, cons.Q128, p.Liquidity)
		if zeroForOne {
			p.FeeGrowthGlobal0X128.Add(p.FeeGrowthGlobal0X128, growth)
		} else {
			p.FeeGrowthGlobal1X128.Add(p.FeeGrowthGlobal1X128, growth)
		}
	}

	p.sink.Emit(events.Stamp(events.Record{
		Type:         events.TypeSwap,
		Pool:         p.params.Account.Hex(),
		Sender:       sender.Hex(),
		Recipient:    recipient.Hex(),
		Amount0:      signedDec(amount0),
		Amount1:      signedDec(amount1),
		SqrtPriceX96: p.SqrtRatioX96.Dec(),
		Tick:         p.TickCurrent,
		PoolLiq:      p.Liquidity.Dec(),
	}))
	return amount0, amount1, nil
}

// swapLimit validates the caller's price limit against the swap direction
// and the fixed range, defaulting to the range bound when none is given.
func (p *Pool) swapLimit(zeroForOne bool, sqrtPriceLimitX96 *ui.Int) (*ui.Int, error) {
	if zeroForOne {
		if sqrtPriceLimitX96 == nil || sqrtPriceLimitX96.IsZero() {
			return p.sqrtRatioLowerX96.Clone(), nil
		}
		if sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) >= 0 || sqrtPriceLimitX96.Cmp(p.sqrtRatioLowerX96) < 0 {
			return nil, ErrPriceLimit
		}
		return sqrtPriceLimitX96.Clone(), nil
	}
	if sqrtPriceLimitX96 == nil || sqrtPriceLimitX96.IsZero() {
		return new(ui.Int).Sub(p.sqrtRatioUpperX96, cons.One), nil
	}
	if sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) <= 0 || sqrtPriceLimitX96.Cmp(p.sqrtRatioUpperX96) >= 0 {
		return nil, ErrPriceLimit
	}
	return sqrtPriceLimitX96.Clone(), nil
}

// verifyFunded re-reads the pool's balances and checks each non-zero owed
// amount arrived. The callback's own result is not evidence.
func (p *Pool) verifyFunded(balance0Before, balance1Before, amount0, amount1 *ui.Int) error {
	if !amount0.IsZero() {
		balance0 := p.ledger.BalanceOf(p.params.Token0, p.params.Account)
		if new(ui.Int).Sub(balance0, balance0Before).Cmp(amount0) < 0 {
			return ErrInsufficientFunding
		}
	}
	if !amount1.IsZero() {
		balance1 := p.ledger.BalanceOf(p.params.Token1, p.params.Account)
		if new(ui.Int).Sub(balance1, balance1Before).Cmp(amount1) < 0 {
			return ErrInsufficientFunding
		}
	}
	return nil
}

func (p *Pool) positionFor(owner common.Address) *position.Info {
	pos, ok := p.positions[owner]
	if !ok {
		pos = position.New()
		p.positions[owner] = pos
	}
	return pos
}

func minInt(a, b *ui.Int) *ui.Int {
	if a.Cmp(b) < 0 {
		return a.Clone()
	}
	return b.Clone()
}

// signedDec renders a two's-complement value as a signed decimal string.
func signedDec(x *ui.Int) string {
	if x.Sign() < 0 {
		return "-" + new(ui.Int).Neg(x).Dec()
	}
	return x.Dec()
}
