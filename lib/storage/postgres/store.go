package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rangepool/lib/events"
)

// Store provides Postgres persistence for pool events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutEventBatch inserts a batch of pool events.
func (s *Store) PutEventBatch(recs []events.Record) error {
	return s.InsertEvents(context.Background(), recs)
}

// InsertEvents inserts pool events in one round trip.
func (s *Store) InsertEvents(ctx context.Context, recs []events.Record) error {
	if len(recs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(`
			INSERT INTO pool_events (
				event_type, pool_address, sender, owner, recipient,
				liquidity, amount0, amount1, sqrt_price_x96, tick,
				pool_liquidity, emitted_at, ingested_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		`,
			string(rec.Type),
			rec.Pool,
			rec.Sender,
			rec.Owner,
			rec.Recipient,
			rec.Liquidity,
			rec.Amount0,
			rec.Amount1,
			rec.SqrtPriceX96,
			rec.Tick,
			rec.PoolLiq,
			rec.EmittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range recs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
