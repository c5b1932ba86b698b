// Package poshandle wraps pool positions in transferable integer handles.
// Each handle owns a derived ledger sub-account that keys its own pool
// position, so the pool keeps one position per owner while holders trade
// handles freely. The issuer mirrors the pool's accounting for external
// reads and forwards every state change after checking the caller is the
// current holder.
package poshandle

import (
	"encoding/binary"
	"errors"

	"rangepool/lib/pool"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	ui "github.com/holiman/uint256"
)

var (
	ErrUnknownHandle = errors.New("unknown handle id")
	ErrNotHolder     = errors.New("caller does not hold the handle")
	ErrHandleActive  = errors.New("handle still holds liquidity or owed tokens")
)

// Record mirrors a handle's pool position for external queries. It is
// refreshed from the pool after every forwarded call.
type Record struct {
	Pool                     common.Address
	Holder                   common.Address
	PositionOwner            common.Address
	TickLower                int
	TickUpper                int
	Fee                      int
	Liquidity                *ui.Int
	TokensOwed0              *ui.Int
	TokensOwed1              *ui.Int
	FeeGrowthInside0LastX128 *ui.Int
	FeeGrowthInside1LastX128 *ui.Int
}

type entry struct {
	rec  Record
	pool *pool.Pool
}

type Issuer struct {
	account common.Address // salts the derived per-handle accounts
	nextID  uint64
	entries map[uint64]*entry
}

func NewIssuer(account common.Address) *Issuer {
	return &Issuer{
		account: account,
		nextID:  1,
		entries: make(map[uint64]*entry),
	}
}

// Issue mints liquidity into a fresh derived account and returns the new
// handle id alongside the amounts the funder paid.
func (is *Issuer) Issue(p *pool.Pool, holder common.Address, liquidity *ui.Int, funder pool.MintFunder, data []byte) (id uint64, amount0, amount1 *ui.Int, err error) {
	id = is.nextID
	owner := is.deriveOwner(id)
	amount0, amount1, err = p.Mint(is.account, owner, liquidity, funder, data)
	if err != nil {
		return 0, nil, nil, err
	}
	is.nextID++
	e := &entry{
		rec: Record{
			Pool:          p.Account(),
			Holder:        holder,
			PositionOwner: owner,
			TickLower:     p.TickLower(),
			TickUpper:     p.TickUpper(),
			Fee:           p.Fee(),
		},
		pool: p,
	}
	is.entries[id] = e
	is.refresh(e)
	return id, amount0, amount1, nil
}

func (is *Issuer) IncreaseLiquidity(id uint64, caller common.Address, liquidity *ui.Int, funder pool.MintFunder, data []byte) (amount0, amount1 *ui.Int, err error) {
	e, err := is.authorized(id, caller)
	if err != nil {
		return nil, nil, err
	}
	amount0, amount1, err = e.pool.Mint(is.account, e.rec.PositionOwner, liquidity, funder, data)
	if err != nil {
		return nil, nil, err
	}
	is.refresh(e)
	return amount0, amount1, nil
}

func (is *Issuer) DecreaseLiquidity(id uint64, caller common.Address, liquidity *ui.Int) (amount0, amount1 *ui.Int, err error) {
	e, err := is.authorized(id, caller)
	if err != nil {
		return nil, nil, err
	}
	amount0, amount1, err = e.pool.Burn(e.rec.PositionOwner, liquidity)
	if err != nil {
		return nil, nil, err
	}
	is.refresh(e)
	return amount0, amount1, nil
}

func (is *Issuer) Collect(id uint64, caller, recipient common.Address, amount0Requested, amount1Requested *ui.Int) (amount0, amount1 *ui.Int, err error) {
	e, err := is.authorized(id, caller)
	if err != nil {
		return nil, nil, err
	}
	amount0, amount1, err = e.pool.Collect(e.rec.PositionOwner, recipient, amount0Requested, amount1Requested)
	if err != nil {
		return nil, nil, err
	}
	is.refresh(e)
	return amount0, amount1, nil
}

// Transfer hands the handle to a new holder.
func (is *Issuer) Transfer(id uint64, caller, to common.Address) error {
	e, err := is.authorized(id, caller)
	if err != nil {
		return err
	}
	e.rec.Holder = to
	return nil
}

// Retire removes an exhausted handle. The underlying pool position must be
// fully withdrawn and collected first.
func (is *Issuer) Retire(id uint64, caller common.Address) error {
	e, err := is.authorized(id, caller)
	if err != nil {
		return err
	}
	if !e.rec.Liquidity.IsZero() || !e.rec.TokensOwed0.IsZero() || !e.rec.TokensOwed1.IsZero() {
		return ErrHandleActive
	}
	delete(is.entries, id)
	return nil
}

// Get returns a copy of the handle's mirror record.
func (is *Issuer) Get(id uint64) (Record, error) {
	e, ok := is.entries[id]
	if !ok {
		return Record{}, ErrUnknownHandle
	}
	rec := e.rec
	rec.Liquidity = e.rec.Liquidity.Clone()
	rec.TokensOwed0 = e.rec.TokensOwed0.Clone()
	rec.TokensOwed1 = e.rec.TokensOwed1.Clone()
	rec.FeeGrowthInside0LastX128 = e.rec.FeeGrowthInside0LastX128.Clone()
	rec.FeeGrowthInside1LastX128 = e.rec.FeeGrowthInside1LastX128.Clone()
	return rec, nil
}

func (is *Issuer) authorized(id uint64, caller common.Address) (*entry, error) {
	e, ok := is.entries[id]
	if !ok {
		return nil, ErrUnknownHandle
	}
	if e.rec.Holder != caller {
		return nil, ErrNotHolder
	}
	return e, nil
}

func (is *Issuer) refresh(e *entry) {
	pos := e.pool.Position(e.rec.PositionOwner)
	e.rec.Liquidity = pos.Liquidity
	e.rec.TokensOwed0 = pos.TokensOwed0
	e.rec.TokensOwed1 = pos.TokensOwed1
	e.rec.FeeGrowthInside0LastX128 = pos.FeeGrowthInside0LastX128
	e.rec.FeeGrowthInside1LastX128 = pos.FeeGrowthInside1LastX128
}

func (is *Issuer) deriveOwner(id uint64) common.Address {
	buf := make([]byte, 0, common.AddressLength+8)
	buf = append(buf, is.account.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, id)
	return common.BytesToAddress(crypto.Keccak256(buf)[12:])
}
