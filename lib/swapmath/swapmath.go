package swapmath

import (
	cons "rangepool/lib/constants"
	fm "rangepool/lib/fullmath"
	"rangepool/lib/sqrtmath"

	ui "github.com/holiman/uint256"
)

var maxFee = ui.NewInt(cons.MaxFee)

// ComputeSwapStep fills as much of amountRemaining as possible without the
// price passing sqrtRatioTargetX96. amountRemaining is a two's-complement
// signed value: non-negative means exact input (fee comes out of it),
// negative means exact output. Invoked once per swap, since all liquidity
// in a pool shares one fixed range.
func ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *ui.Int, feePips int) (sqrtRatioNextX96, amountIn, amountOut, feeAmount *ui.Int) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0
	fee := ui.NewInt(uint64(feePips))

	if exactIn {
		amountRemainingLessFee := new(ui.Int).Div(new(ui.Int).Mul(amountRemaining, new(ui.Int).Sub(maxFee, fee)), maxFee)
		if zeroForOne {
			amountIn = sqrtmath.GetAmount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			amountIn = sqrtmath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			sqrtRatioNextX96 = sqrtRatioTargetX96.Clone()
		} else {
			sqrtRatioNextX96 = sqrtmath.GetNextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
		}
	} else {
		if zeroForOne {
			amountOut = sqrtmath.GetAmount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			amountOut = sqrtmath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		if new(ui.Int).Neg(amountRemaining).Cmp(amountOut) >= 0 {
			sqrtRatioNextX96 = sqrtRatioTargetX96.Clone()
		} else {
			sqrtRatioNextX96 = sqrtmath.GetNextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, new(ui.Int).Neg(amountRemaining), zeroForOne)
		}
	}

	max := sqrtRatioTargetX96.Cmp(sqrtRatioNextX96) == 0

	if zeroForOne {
		if !(max && exactIn) {
			amountIn = sqrtmath.GetAmount0Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
		}
		if !(max && !exactIn) {
			amountOut = sqrtmath.GetAmount1Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
		}
	} else {
		if !(max && exactIn) {
			amountIn = sqrtmath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, true)
		}
		if !(max && !exactIn) {
			amountOut = sqrtmath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, false)
		}
	}

	// cap the output so exact-output swaps never pay out more than asked
	if !exactIn && amountOut.Cmp(new(ui.Int).Neg(amountRemaining)) > 0 {
		amountOut = new(ui.Int).Neg(amountRemaining)
	}

	if exactIn && sqrtRatioNextX96.Cmp(sqrtRatioTargetX96) != 0 {
		// the target wasn't reached, so the remainder of the input is the fee
		feeAmount = new(ui.Int).Sub(amountRemaining, amountIn)
	} else {
		feeAmount = fm.MulDivRoundingUp(amountIn, fee, new(ui.Int).Sub(maxFee, fee))
	}

	return
}
