package analytics

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
	"github.com/abdalwely/online-store/internal/events"
	"github.com/abdalwely/online-store/internal/order"
)

const (
	orderCreatedConsumerName  = "analytics-order-created"
	statusChangedConsumerName = "analytics-order-status-changed"
)

// Projector folds order events into store_stats. Each event commits together
// with its dedup checkpoint, so redeliveries are skipped.
type Projector struct {
	pool   db.DBPool
	dedup  *events.DedupRepository
	logger *log.Logger
}

func NewProjector(pool db.DBPool, logger *log.Logger) *Projector {
	return &Projector{pool: pool, dedup: events.NewDedupRepository(pool), logger: logger}
}

func (p *Projector) HandleOrderCreated(ctx context.Context, body []byte) error {
	env, err := events.Decode[events.OrderCreated](body, events.OrderCreatedEvent, 1)
	if err != nil {
		return err
	}
	if env.Payload.StoreID == "" {
		return fmt.Errorf("%w: missing storeId", events.ErrMalformed)
	}
	return p.apply(ctx, orderCreatedConsumerName, env.PartitionKey, env.SequenceValue(), func(exec db.Executor) error {
		return recordCreated(ctx, exec, env.Payload.StoreID, env.Payload.Total)
	})
}

func (p *Projector) HandleStatusChanged(ctx context.Context, body []byte) error {
	env, err := events.Decode[events.OrderStatusChanged](body, events.OrderStatusChangedEvent, 1)
	if err != nil {
		return err
	}
	if env.Payload.StoreID == "" {
		return fmt.Errorf("%w: missing storeId", events.ErrMalformed)
	}
	return p.apply(ctx, statusChangedConsumerName, env.PartitionKey, env.SequenceValue(), func(exec db.Executor) error {
		if env.Payload.To != order.StatusCancelled || env.Payload.From == order.StatusCancelled {
			return nil
		}
		return recordCancelled(ctx, exec, env.Payload.StoreID, env.Payload.Total)
	})
}

func (p *Projector) apply(ctx context.Context, consumer, partitionKey string, seq int64, fn func(db.Executor) error) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	local := p.dedup.WithExecutor(tx)
	if seq != 0 {
		last, ok, err := local.GetLastSequence(ctx, consumer, partitionKey)
		if err != nil {
			return err
		}
		if ok && seq <= last {
			p.logger.Printf("skip duplicate consumer=%s partition=%s seq=%d last=%d", consumer, partitionKey, seq, last)
			return nil
		}
	}

	if err := fn(tx); err != nil {
		return err
	}

	if seq != 0 {
		if err := local.UpsertLastSequence(ctx, consumer, partitionKey, seq); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit projection: %w", err)
	}
	return nil
}
