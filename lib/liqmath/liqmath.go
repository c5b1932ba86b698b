package liqmath

import (
	cons "rangepool/lib/constants"
	fm "rangepool/lib/fullmath"
	"rangepool/lib/sqrtmath"

	ui "github.com/holiman/uint256"
)

// GetAmountsForLiquidity returns the token amounts spanned by liquidity in
// [sqrtRatioAX96, sqrtRatioBX96) given the current price. roundUp is true
// when computing what a provider owes (mint) and false when computing what
// a provider receives (burn); the asymmetry keeps the pool collateralized.
func GetAmountsForLiquidity(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *ui.Int, roundUp bool) (amount0, amount1 *ui.Int) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	if sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0 {
		amount0 = sqrtmath.GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, roundUp)
		amount1 = ui.NewInt(0)
	} else if sqrtRatioX96.Cmp(sqrtRatioBX96) < 0 {
		amount0 = sqrtmath.GetAmount0Delta(sqrtRatioX96, sqrtRatioBX96, liquidity, roundUp)
		amount1 = sqrtmath.GetAmount1Delta(sqrtRatioAX96, sqrtRatioX96, liquidity, roundUp)
	} else {
		amount0 = ui.NewInt(0)
		amount1 = sqrtmath.GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, roundUp)
	}
	return
}

func GetLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	intermediate := fm.MulDiv(sqrtRatioAX96, sqrtRatioBX96, cons.Q96)
	return fm.MulDiv(amount0, intermediate, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

func GetLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *ui.Int) *ui.Int {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	return fm.MulDiv(amount1, cons.Q96, new(ui.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// GetLiquidityForAmounts returns the largest liquidity fundable with the
// given token budgets at the current price.
func GetLiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *ui.Int) (liquidity *ui.Int) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioX96.Cmp(sqrtRatioAX96) <= 0 {
		liquidity = GetLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0)
	} else if sqrtRatioX96.Cmp(sqrtRatioBX96) < 0 {
		liquidity0 := GetLiquidityForAmount0(sqrtRatioX96, sqrtRatioBX96, amount0)
		liquidity1 := GetLiquidityForAmount1(sqrtRatioAX96, sqrtRatioX96, amount1)
		if liquidity0.Cmp(liquidity1) < 0 {
			liquidity = liquidity0
		} else {
			liquidity = liquidity1
		}
	} else {
		liquidity = GetLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
	}
	return liquidity
}
