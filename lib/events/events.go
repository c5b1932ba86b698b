// Package events carries the pool's emitted notifications to pluggable
// sinks. Emission is an observability boundary, not a queue: sinks run
// synchronously after a successful state commit and their errors are not
// surfaced to the pool caller.
package events

import (
	"sync"
	"time"
)

type Type string

const (
	TypeInitialize Type = "initialize"
	TypeMint       Type = "mint"
	TypeBurn       Type = "burn"
	TypeCollect    Type = "collect"
	TypeSwap       Type = "swap"
)

// Record is a flat, storage-ready notification. Amounts are decimal
// strings; swap amounts are signed (positive paid into the pool).
type Record struct {
	Type         Type   `json:"type"`
	Pool         string `json:"pool"`
	Sender       string `json:"sender,omitempty"`
	Owner        string `json:"owner,omitempty"`
	Recipient    string `json:"recipient,omitempty"`
	Liquidity    string `json:"liquidity,omitempty"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96,omitempty"`
	Tick         int    `json:"tick,omitempty"`
	PoolLiq      string `json:"pool_liquidity,omitempty"`
	EmittedAt    string `json:"emitted_at"`
}

// Sink receives pool notifications.
type Sink interface {
	Emit(rec Record)
}

// Stamp fills the emission timestamp if the producer left it empty.
func Stamp(rec Record) Record {
	if rec.EmittedAt == "" {
		rec.EmittedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	return rec
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Emit(Record) {}

// MemorySink retains records in order, for tests.
type MemorySink struct {
	mu   sync.Mutex
	recs []Record
}

func (s *MemorySink) Emit(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.recs))
	copy(out, s.recs)
	return out
}

// MultiSink fans out to several sinks.
type MultiSink []Sink

func (m MultiSink) Emit(rec Record) {
	for _, s := range m {
		s.Emit(rec)
	}
}
