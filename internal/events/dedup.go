package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
)

// DedupRepository keeps consumer-side checkpoints. Bind it to a transaction
// with WithExecutor so the checkpoint commits together with the projection.
type DedupRepository struct {
	db db.Executor
}

func NewDedupRepository(exec db.Executor) *DedupRepository {
	return &DedupRepository{db: exec}
}

func (r *DedupRepository) WithExecutor(exec db.Executor) *DedupRepository {
	return &DedupRepository{db: exec}
}

func (r *DedupRepository) GetLastSequence(ctx context.Context, consumerName, partitionKey string) (int64, bool, error) {
	var last int64
	err := r.db.QueryRow(ctx, `
		SELECT last_sequence
		FROM event_dedup_checkpoint
		WHERE consumer_name = $1 AND partition_key = $2
		FOR UPDATE
	`, consumerName, partitionKey).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select last_sequence: %w", err)
	}
	return last, true, nil
}

func (r *DedupRepository) UpsertLastSequence(ctx context.Context, consumerName, partitionKey string, newSeq int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_dedup_checkpoint (consumer_name, partition_key, last_sequence, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (consumer_name, partition_key)
		DO UPDATE SET
			last_sequence = GREATEST(event_dedup_checkpoint.last_sequence, EXCLUDED.last_sequence),
			updated_at = NOW()
	`, consumerName, partitionKey, newSeq)
	if err != nil {
		return fmt.Errorf("upsert last_sequence: %w", err)
	}
	return nil
}
