// Package registry derives exactly one pool per (token pair, price range,
// fee tier) tuple. Pool identity travels through a staged parameter
// handoff the pool pulls right after allocation, which keeps pool
// construction uniform and the derived account address deterministic.
package registry

import (
	"bytes"
	"encoding/binary"
	"errors"

	cons "rangepool/lib/constants"
	"rangepool/lib/events"
	"rangepool/lib/pool"
	"rangepool/lib/tickmath"
	"rangepool/lib/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrIdenticalTokens = errors.New("token pair must be distinct")
	ErrInvalidFee      = errors.New("unknown fee tier")
	ErrInvalidTicks    = errors.New("invalid tick range")
	ErrPoolNotFound    = errors.New("pool not found")
)

type tuple struct {
	token0    common.Address
	token1    common.Address
	tickLower int
	tickUpper int
	fee       int
}

type pairKey struct {
	token0 common.Address
	token1 common.Address
}

type Registry struct {
	ledger token.Ledger
	sink   events.Sink

	pools   map[common.Address]*pool.Pool
	byTuple map[tuple]common.Address
	byPair  map[pairKey][]common.Address

	// pending holds the parameters of the pool currently under
	// construction; Parameters() hands them over.
	pending pool.Parameters
}

func New(ledger token.Ledger, sink events.Sink) *Registry {
	return &Registry{
		ledger:  ledger,
		sink:    sink,
		pools:   make(map[common.Address]*pool.Pool),
		byTuple: make(map[tuple]common.Address),
		byPair:  make(map[pairKey][]common.Address),
	}
}

// Parameters implements pool.ParameterSource for the pool being built.
func (r *Registry) Parameters() pool.Parameters {
	return r.pending
}

// CreatePool returns the pool for the tuple, constructing it on first use.
// Token order is canonicalized, so (A,B) and (B,A) name the same pool.
func (r *Registry) CreatePool(tokenA, tokenB common.Address, tickLower, tickUpper, fee int) (*pool.Pool, error) {
	token0, token1, err := sortTokens(tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	spacing, ok := cons.TickSpaces[fee]
	if !ok {
		return nil, ErrInvalidFee
	}
	if tickLower >= tickUpper ||
		tickLower < tickmath.MinTick || tickUpper > tickmath.MaxTick ||
		tickLower%spacing != 0 || tickUpper%spacing != 0 {
		return nil, ErrInvalidTicks
	}

	key := tuple{token0, token1, tickLower, tickUpper, fee}
	if addr, ok := r.byTuple[key]; ok {
		return r.pools[addr], nil
	}

	addr := DeriveAddress(token0, token1, tickLower, tickUpper, fee)
	r.pending = pool.Parameters{
		Token0:    token0,
		Token1:    token1,
		Fee:       fee,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Account:   addr,
	}
	p, err := pool.New(r, r.ledger, r.sink)
	if err != nil {
		return nil, err
	}
	r.pools[addr] = p
	r.byTuple[key] = addr
	pk := pairKey{token0, token1}
	r.byPair[pk] = append(r.byPair[pk], addr)
	return p, nil
}

// GetPool enumerates the pools registered for a pair, in creation order.
func (r *Registry) GetPool(tokenA, tokenB common.Address, index int) (*pool.Pool, error) {
	token0, token1, err := sortTokens(tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	addrs := r.byPair[pairKey{token0, token1}]
	if index < 0 || index >= len(addrs) {
		return nil, ErrPoolNotFound
	}
	return r.pools[addrs[index]], nil
}

// PoolByAddress resolves a derived pool account address.
func (r *Registry) PoolByAddress(addr common.Address) (*pool.Pool, error) {
	p, ok := r.pools[addr]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return p, nil
}

// DeriveAddress computes the pool's account address from its identity
// tuple, content-addressed so every party derives the same value.
func DeriveAddress(token0, token1 common.Address, tickLower, tickUpper, fee int) common.Address {
	buf := make([]byte, 0, 2*common.AddressLength+20)
	buf = append(buf, token0.Bytes()...)
	buf = append(buf, token1.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(int64(tickLower)))
	buf = binary.BigEndian.AppendUint64(buf, uint64(int64(tickUpper)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(fee))
	return common.BytesToAddress(crypto.Keccak256(buf)[12:])
}

func sortTokens(tokenA, tokenB common.Address) (common.Address, common.Address, error) {
	switch bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) {
	case 0:
		return common.Address{}, common.Address{}, ErrIdenticalTokens
	case -1:
		return tokenA, tokenB, nil
	default:
		return tokenB, tokenA, nil
	}
}
