package poshandle

import (
	"testing"

	"rangepool/lib/pool"
	"rangepool/lib/registry"
	"rangepool/lib/tickmath"
	"rangepool/lib/token"

	"github.com/ethereum/go-ethereum/common"
	ui "github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	tokenA     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB     = common.HexToAddress("0x2000000000000000000000000000000000000002")
	issuerAddr = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	holderOne  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	holderTwo  = common.HexToAddress("0x00000000000000000000000000000000000000bb")

	hugeAmount = new(ui.Int).Lsh(ui.NewInt(1), 128)
)

// mintAnything funds whatever the pool asks for.
type mintAnything struct {
	book *token.Book
	p    *pool.Pool
}

func (f *mintAnything) PayForMint(amount0, amount1 *ui.Int, _ []byte) error {
	f.book.Mint(f.p.Token0(), f.p.Account(), amount0)
	f.book.Mint(f.p.Token1(), f.p.Account(), amount1)
	return nil
}

func newTestPool(t *testing.T) (*pool.Pool, *token.Book) {
	t.Helper()
	book := token.NewBook()
	reg := registry.New(book, nil)
	p, err := reg.CreatePool(tokenA, tokenB, -600, 600, 3000)
	require.NoError(t, err)
	start, err := tickmath.SqrtRatioAtTick(0)
	require.NoError(t, err)
	require.NoError(t, p.Initialize(start))
	return p, book
}

func TestIssueMirrorsPoolPosition(t *testing.T) {
	p, book := newTestPool(t)
	is := NewIssuer(issuerAddr)
	funder := &mintAnything{book: book, p: p}

	liquidity := ui.NewInt(1_000_000)
	id, amount0, amount1, err := is.Issue(p, holderOne, liquidity, funder, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.Positive(t, amount0.Sign())
	require.Positive(t, amount1.Sign())

	rec, err := is.Get(id)
	require.NoError(t, err)
	require.Equal(t, holderOne, rec.Holder)
	require.Equal(t, p.Account(), rec.Pool)
	require.True(t, rec.Liquidity.Eq(liquidity))
	require.True(t, rec.TokensOwed0.IsZero())

	// the derived owner holds the actual pool position
	require.True(t, p.Position(rec.PositionOwner).Liquidity.Eq(liquidity))
	require.True(t, p.Position(holderOne).Liquidity.IsZero())
}

func TestHandlesAreIndependentPositions(t *testing.T) {
	p, book := newTestPool(t)
	is := NewIssuer(issuerAddr)
	funder := &mintAnything{book: book, p: p}

	id1, _, _, err := is.Issue(p, holderOne, ui.NewInt(1000), funder, nil)
	require.NoError(t, err)
	id2, _, _, err := is.Issue(p, holderOne, ui.NewInt(2000), funder, nil)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	rec1, err := is.Get(id1)
	require.NoError(t, err)
	rec2, err := is.Get(id2)
	require.NoError(t, err)
	require.NotEqual(t, rec1.PositionOwner, rec2.PositionOwner)
	require.True(t, p.Liquidity.Eq(ui.NewInt(3000)))
}

func TestAuthorizationForwarding(t *testing.T) {
	p, book := newTestPool(t)
	is := NewIssuer(issuerAddr)
	funder := &mintAnything{book: book, p: p}

	id, _, _, err := is.Issue(p, holderOne, ui.NewInt(1000), funder, nil)
	require.NoError(t, err)

	_, _, err = is.DecreaseLiquidity(id, holderTwo, ui.NewInt(100))
	require.ErrorIs(t, err, ErrNotHolder)
	_, _, err = is.Collect(id, holderTwo, holderTwo, hugeAmount, hugeAmount)
	require.ErrorIs(t, err, ErrNotHolder)
	require.ErrorIs(t, is.Transfer(id, holderTwo, holderTwo), ErrNotHolder)

	_, _, err = is.DecreaseLiquidity(99, holderOne, ui.NewInt(100))
	require.ErrorIs(t, err, ErrUnknownHandle)
}

func TestTransferMovesControl(t *testing.T) {
	p, book := newTestPool(t)
	is := NewIssuer(issuerAddr)
	funder := &mintAnything{book: book, p: p}

	id, _, _, err := is.Issue(p, holderOne, ui.NewInt(1000), funder, nil)
	require.NoError(t, err)
	require.NoError(t, is.Transfer(id, holderOne, holderTwo))

	// old holder lost control, new holder gained it
	_, _, err = is.DecreaseLiquidity(id, holderOne, ui.NewInt(100))
	require.ErrorIs(t, err, ErrNotHolder)
	_, _, err = is.DecreaseLiquidity(id, holderTwo, ui.NewInt(100))
	require.NoError(t, err)

	rec, err := is.Get(id)
	require.NoError(t, err)
	require.True(t, rec.Liquidity.Eq(ui.NewInt(900)))
	require.Positive(t, rec.TokensOwed0.Sign())
}

func TestRetireRequiresExhaustedPosition(t *testing.T) {
	p, book := newTestPool(t)
	is := NewIssuer(issuerAddr)
	funder := &mintAnything{book: book, p: p}

	id, _, _, err := is.Issue(p, holderOne, ui.NewInt(1000), funder, nil)
	require.NoError(t, err)

	require.ErrorIs(t, is.Retire(id, holderOne), ErrHandleActive)

	_, _, err = is.DecreaseLiquidity(id, holderOne, ui.NewInt(1000))
	require.NoError(t, err)
	require.ErrorIs(t, is.Retire(id, holderOne), ErrHandleActive)

	_, _, err = is.Collect(id, holderOne, holderOne, hugeAmount, hugeAmount)
	require.NoError(t, err)
	require.NoError(t, is.Retire(id, holderOne))

	_, err = is.Get(id)
	require.ErrorIs(t, err, ErrUnknownHandle)
}

func TestIncreaseLiquidity(t *testing.T) {
	p, book := newTestPool(t)
	is := NewIssuer(issuerAddr)
	funder := &mintAnything{book: book, p: p}

	id, _, _, err := is.Issue(p, holderOne, ui.NewInt(1000), funder, nil)
	require.NoError(t, err)
	_, _, err = is.IncreaseLiquidity(id, holderOne, ui.NewInt(500), funder, nil)
	require.NoError(t, err)

	rec, err := is.Get(id)
	require.NoError(t, err)
	require.True(t, rec.Liquidity.Eq(ui.NewInt(1500)))
}
