package events

import (
	"context"
	"fmt"

	"github.com/abdalwely/online-store/internal/db"
)

// SequenceRepository hands out producer-side sequences per partition.
type SequenceRepository struct {
	db db.Executor
}

func NewSequenceRepository(exec db.Executor) *SequenceRepository {
	return &SequenceRepository{db: exec}
}

func (r *SequenceRepository) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `
		INSERT INTO event_sequence (partition_key, last_sequence, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (partition_key)
		DO UPDATE SET last_sequence = event_sequence.last_sequence + 1, updated_at = NOW()
		RETURNING last_sequence
	`, partitionKey).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
