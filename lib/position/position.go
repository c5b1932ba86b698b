package position

import (
	cons "rangepool/lib/constants"
	"rangepool/lib/fullmath"

	ui "github.com/holiman/uint256"
)

// Info is one owner's stake in a pool. Fees settle lazily: the delta
// between the pool's global fee-growth accumulator and the snapshot taken
// at the position's last touch, scaled by the liquidity held over that
// span, is credited on the next touch.
type Info struct {
	Liquidity                *ui.Int
	FeeGrowthInside0LastX128 *ui.Int
	FeeGrowthInside1LastX128 *ui.Int
	TokensOwed0              *ui.Int
	TokensOwed1              *ui.Int
}

func New() *Info {
	return &Info{
		Liquidity:                ui.NewInt(0),
		FeeGrowthInside0LastX128: ui.NewInt(0),
		FeeGrowthInside1LastX128: ui.NewInt(0),
		TokensOwed0:              ui.NewInt(0),
		TokensOwed1:              ui.NewInt(0),
	}
}

func (i *Info) Clone() *Info {
	return &Info{
		Liquidity:                i.Liquidity.Clone(),
		FeeGrowthInside0LastX128: i.FeeGrowthInside0LastX128.Clone(),
		FeeGrowthInside1LastX128: i.FeeGrowthInside1LastX128.Clone(),
		TokensOwed0:              i.TokensOwed0.Clone(),
		TokensOwed1:              i.TokensOwed1.Clone(),
	}
}

// Update settles fees accrued since the last snapshot, then applies the
// signed liquidity delta and refreshes the snapshot.
func (i *Info) Update(liquidityDelta, feeGrowthInside0X128, feeGrowthInside1X128 *ui.Int) {
	liquidityNext := new(ui.Int).Add(i.Liquidity, liquidityDelta)
	delta0 := new(ui.Int).Sub(feeGrowthInside0X128, i.FeeGrowthInside0LastX128)
	delta1 := new(ui.Int).Sub(feeGrowthInside1X128, i.FeeGrowthInside1LastX128)
	owed0 := fullmath.MulDiv(delta0, i.Liquidity, cons.Q128)
	owed1 := fullmath.MulDiv(delta1, i.Liquidity, cons.Q128)
	i.Liquidity = liquidityNext
	i.FeeGrowthInside0LastX128 = feeGrowthInside0X128.Clone()
	i.FeeGrowthInside1LastX128 = feeGrowthInside1X128.Clone()
	i.TokensOwed0.Add(i.TokensOwed0, owed0)
	i.TokensOwed1.Add(i.TokensOwed1, owed1)
}
