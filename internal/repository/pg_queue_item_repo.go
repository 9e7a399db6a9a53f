package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/sender-queue/internal/domain"
)

type pgQueueItemRepository struct {
	pool *pgxpool.Pool
}

// NewPgQueueItemRepository returns a QueueItemRepository backed by PostgreSQL.
func NewPgQueueItemRepository(pool *pgxpool.Pool) QueueItemRepository {
	return &pgQueueItemRepository{pool: pool}
}

func (r *pgQueueItemRepository) CountBySender(ctx context.Context, senderID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(id) FROM dtp_sender_queue_item WHERE id_sender = $1`, senderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count queue items: %w", err)
	}
	return count, nil
}

func (r *pgQueueItemRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('dtp_sender_queue_item_seq')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("next queue item id: %w", err)
	}
	return id, nil
}

// Insert runs in its own transaction so every row is committed on its own.
func (r *pgQueueItemRepository) Insert(ctx context.Context, item domain.QueueItem) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO dtp_sender_queue_item (id, id_metadata, id_data, id_sender, record_created)
		VALUES ($1,$2,$3,$4,$5)`,
		item.ID, item.MetadataID, item.DataID, item.SenderID, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert queue item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit queue item: %w", err)
	}
	return nil
}

func (r *pgQueueItemRepository) Exists(ctx context.Context, senderID int64, w domain.WorkItem) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM dtp_sender_queue_item
			WHERE id_sender = $1 AND id_metadata = $2 AND id_data = $3)`,
		senderID, w.MetadataID, w.DataID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check queue item: %w", err)
	}
	return exists, nil
}
