package position

import (
	"testing"

	cons "rangepool/lib/constants"

	ui "github.com/holiman/uint256"
)

func TestUpdateSettlesFees(t *testing.T) {
	pos := New()
	pos.Update(ui.NewInt(1000), ui.NewInt(0), ui.NewInt(0))
	if !pos.Liquidity.Eq(ui.NewInt(1000)) {
		t.Fatalf("liquidity = %d, want 1000", pos.Liquidity)
	}
	if !pos.TokensOwed0.IsZero() || !pos.TokensOwed1.IsZero() {
		t.Fatal("fresh position should owe nothing")
	}

	// one full Q128 of growth per unit of liquidity = 1 token per unit
	growth0 := cons.Q128.Clone()
	growth1 := new(ui.Int).Lsh(cons.Q128, 1)
	pos.Update(ui.NewInt(0), growth0, growth1)

	if !pos.TokensOwed0.Eq(ui.NewInt(1000)) {
		t.Fatalf("owed0 = %d, want 1000", pos.TokensOwed0)
	}
	if !pos.TokensOwed1.Eq(ui.NewInt(2000)) {
		t.Fatalf("owed1 = %d, want 2000", pos.TokensOwed1)
	}
	if !pos.FeeGrowthInside0LastX128.Eq(growth0) {
		t.Fatal("snapshot0 not refreshed")
	}

	// no growth since the snapshot: another touch settles nothing
	pos.Update(ui.NewInt(0), growth0, growth1)
	if !pos.TokensOwed0.Eq(ui.NewInt(1000)) {
		t.Fatalf("owed0 changed without growth: %d", pos.TokensOwed0)
	}
}

func TestUpdateNegativeDelta(t *testing.T) {
	pos := New()
	pos.Update(ui.NewInt(500), ui.NewInt(0), ui.NewInt(0))
	pos.Update(new(ui.Int).Neg(ui.NewInt(200)), ui.NewInt(0), ui.NewInt(0))
	if !pos.Liquidity.Eq(ui.NewInt(300)) {
		t.Fatalf("liquidity = %d, want 300", pos.Liquidity)
	}
}

func TestCloneIsDeep(t *testing.T) {
	pos := New()
	pos.Update(ui.NewInt(7), ui.NewInt(0), ui.NewInt(0))
	clone := pos.Clone()
	clone.Liquidity.SetUint64(99)
	if !pos.Liquidity.Eq(ui.NewInt(7)) {
		t.Fatal("clone shares storage with original")
	}
}
