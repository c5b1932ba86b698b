package tickmath

import (
	"math/big"
	"testing"

	cons "rangepool/lib/constants"

	ui "github.com/holiman/uint256"
)

func fromDec(t *testing.T, s string) *ui.Int {
	t.Helper()
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad decimal %q", s)
	}
	v, overflow := ui.FromBig(b)
	if overflow {
		t.Fatalf("overflow %q", s)
	}
	return v
}

func TestSqrtRatioAtTickBoundaries(t *testing.T) {
	tests := []struct {
		name string
		tick int
		want string
	}{
		{"min tick", MinTick, "4295128739"},
		{"max tick", MaxTick, "1461446703485210103287273052203988822378723970342"},
		{"tick zero", 0, "79228162514264337593543950336"}, // 2^96
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SqrtRatioAtTick(tt.tick)
			if err != nil {
				t.Fatalf("SqrtRatioAtTick(%d): %v", tt.tick, err)
			}
			if want := fromDec(t, tt.want); !got.Eq(want) {
				t.Fatalf("SqrtRatioAtTick(%d) = %d, want %d", tt.tick, got, want)
			}
		})
	}
}

func TestSqrtRatioAtTickOutOfRange(t *testing.T) {
	for _, tick := range []int{MaxTick + 1, MinTick - 1} {
		if _, err := SqrtRatioAtTick(tick); err == nil {
			t.Fatalf("SqrtRatioAtTick(%d) should fail", tick)
		}
	}
}

func TestTickAtSqrtRatioBoundaries(t *testing.T) {
	got, err := TickAtSqrtRatio(MinSqrtRatio)
	if err != nil {
		t.Fatalf("TickAtSqrtRatio(min): %v", err)
	}
	if got != MinTick {
		t.Fatalf("TickAtSqrtRatio(min) = %d, want %d", got, MinTick)
	}

	justBelowMax := new(ui.Int).Sub(MaxSqrtRatio, cons.One)
	got, err = TickAtSqrtRatio(justBelowMax)
	if err != nil {
		t.Fatalf("TickAtSqrtRatio(max-1): %v", err)
	}
	if got != MaxTick-1 {
		t.Fatalf("TickAtSqrtRatio(max-1) = %d, want %d", got, MaxTick-1)
	}

	if _, err := TickAtSqrtRatio(MaxSqrtRatio); err == nil {
		t.Fatal("TickAtSqrtRatio(max) should fail")
	}
	if _, err := TickAtSqrtRatio(new(ui.Int).Sub(MinSqrtRatio, cons.One)); err == nil {
		t.Fatal("TickAtSqrtRatio(min-1) should fail")
	}
}

var sampleTicks = []int{
	MinTick, MinTick + 1, -500000, -100000, -22222, -1000, -60, -1,
	0, 1, 60, 1000, 22222, 100000, 500000, MaxTick - 1, MaxTick,
}

func TestRoundTrip(t *testing.T) {
	for _, tick := range sampleTicks {
		ratio, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("SqrtRatioAtTick(%d): %v", tick, err)
		}
		if tick == MaxTick {
			// MaxSqrtRatio itself is outside the accepted half-open range
			continue
		}
		back, err := TickAtSqrtRatio(ratio)
		if err != nil {
			t.Fatalf("TickAtSqrtRatio(ratio(%d)): %v", tick, err)
		}
		if back != tick {
			t.Fatalf("round trip %d -> %d", tick, back)
		}
	}
}

func TestTickAtSqrtRatioRoundsDown(t *testing.T) {
	// a price one below the next tick's ratio still belongs to this tick
	for _, tick := range []int{-1000, -1, 0, 1, 1000, 100000} {
		next, err := SqrtRatioAtTick(tick + 1)
		if err != nil {
			t.Fatalf("SqrtRatioAtTick(%d): %v", tick+1, err)
		}
		got, err := TickAtSqrtRatio(new(ui.Int).Sub(next, cons.One))
		if err != nil {
			t.Fatalf("TickAtSqrtRatio: %v", err)
		}
		if got != tick {
			t.Fatalf("TickAtSqrtRatio(ratio(%d)-1) = %d, want %d", tick+1, got, tick)
		}
	}
}

func TestSqrtRatioMonotonic(t *testing.T) {
	prev, err := SqrtRatioAtTick(sampleTicks[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, tick := range sampleTicks[1:] {
		ratio, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("SqrtRatioAtTick(%d): %v", tick, err)
		}
		if ratio.Cmp(prev) <= 0 {
			t.Fatalf("ratio not increasing at tick %d", tick)
		}
		prev = ratio
	}
}
