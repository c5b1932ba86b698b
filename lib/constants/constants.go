package constants

import (
	ui "github.com/holiman/uint256"
)

var (
	Zero          = new(ui.Int)
	One           = new(ui.Int).SetOne()
	MaxUint256, _ = ui.FromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	// used in fee growth and liquidity amount math
	Q128, _ = ui.FromHex("0x100000000000000000000000000000000")
	Q96     = new(ui.Int).Exp(ui.NewInt(2), ui.NewInt(96))
	Q192    = new(ui.Int).Exp(Q96, ui.NewInt(2))
	E6      = new(ui.Int).Exp(ui.NewInt(10), ui.NewInt(6))
)

// MaxFee is the fee denominator; fee tiers are expressed in parts per million.
const MaxFee = 1_000_000

// TickSpaces maps a fee tier (ppm) to its tick spacing.
var TickSpaces = map[int]int{
	500:   10,
	3000:  60,
	10000: 200,
}
