package registry

import (
	"testing"

	"rangepool/lib/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	tokenA = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokenC = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func newRegistry() *Registry {
	return New(token.NewBook(), nil)
}

func TestCreatePoolIdempotent(t *testing.T) {
	r := newRegistry()

	p1, err := r.CreatePool(tokenA, tokenB, -600, 600, 3000)
	require.NoError(t, err)
	p2, err := r.CreatePool(tokenA, tokenB, -600, 600, 3000)
	require.NoError(t, err)
	require.Same(t, p1, p2, "same tuple must return the same pool")

	// reversed token order names the same tuple
	p3, err := r.CreatePool(tokenB, tokenA, -600, 600, 3000)
	require.NoError(t, err)
	require.Same(t, p1, p3)
}

func TestCreatePoolCanonicalOrder(t *testing.T) {
	r := newRegistry()
	p, err := r.CreatePool(tokenB, tokenA, -600, 600, 3000)
	require.NoError(t, err)
	require.Equal(t, tokenA, p.Token0())
	require.Equal(t, tokenB, p.Token1())
}

func TestCreatePoolValidation(t *testing.T) {
	r := newRegistry()

	_, err := r.CreatePool(tokenA, tokenA, -600, 600, 3000)
	require.ErrorIs(t, err, ErrIdenticalTokens)

	_, err = r.CreatePool(tokenA, tokenB, -600, 600, 1234)
	require.ErrorIs(t, err, ErrInvalidFee)

	// lower >= upper
	_, err = r.CreatePool(tokenA, tokenB, 600, -600, 3000)
	require.ErrorIs(t, err, ErrInvalidTicks)

	// not multiples of the tier's spacing (3000 -> 60)
	_, err = r.CreatePool(tokenA, tokenB, -61, 60, 3000)
	require.ErrorIs(t, err, ErrInvalidTicks)

	// outside global tick bounds
	_, err = r.CreatePool(tokenA, tokenB, -887280, 600, 3000)
	require.ErrorIs(t, err, ErrInvalidTicks)
}

func TestDistinctTuplesDistinctPools(t *testing.T) {
	r := newRegistry()

	p1, err := r.CreatePool(tokenA, tokenB, -600, 600, 3000)
	require.NoError(t, err)
	p2, err := r.CreatePool(tokenA, tokenB, -1200, 1200, 3000)
	require.NoError(t, err)
	p3, err := r.CreatePool(tokenA, tokenB, -600, 600, 500)
	require.NoError(t, err)

	require.NotSame(t, p1, p2)
	require.NotSame(t, p1, p3)
	require.NotEqual(t, p1.Account(), p2.Account())
	require.NotEqual(t, p1.Account(), p3.Account())
}

func TestGetPoolEnumeration(t *testing.T) {
	r := newRegistry()

	p1, err := r.CreatePool(tokenA, tokenB, -600, 600, 3000)
	require.NoError(t, err)
	p2, err := r.CreatePool(tokenA, tokenB, -1200, 1200, 3000)
	require.NoError(t, err)

	got, err := r.GetPool(tokenB, tokenA, 0)
	require.NoError(t, err)
	require.Same(t, p1, got)

	got, err = r.GetPool(tokenA, tokenB, 1)
	require.NoError(t, err)
	require.Same(t, p2, got)

	_, err = r.GetPool(tokenA, tokenB, 2)
	require.ErrorIs(t, err, ErrPoolNotFound)
	_, err = r.GetPool(tokenA, tokenC, 0)
	require.ErrorIs(t, err, ErrPoolNotFound)
}

func TestDeriveAddressDeterministic(t *testing.T) {
	a1 := DeriveAddress(tokenA, tokenB, -600, 600, 3000)
	a2 := DeriveAddress(tokenA, tokenB, -600, 600, 3000)
	require.Equal(t, a1, a2)
	require.NotEqual(t, a1, DeriveAddress(tokenA, tokenB, -600, 660, 3000))
	require.NotEqual(t, a1, DeriveAddress(tokenA, tokenC, -600, 600, 3000))

	r := newRegistry()
	p, err := r.CreatePool(tokenA, tokenB, -600, 600, 3000)
	require.NoError(t, err)
	require.Equal(t, a1, p.Account())

	byAddr, err := r.PoolByAddress(a1)
	require.NoError(t, err)
	require.Same(t, p, byAddr)
}
