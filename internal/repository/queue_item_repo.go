package repository

import (
	"context"

	"github.com/ricirt/sender-queue/internal/domain"
)

// QueueItemRepository defines the persistence operations on the sender queue.
// The pgx implementation is in pg_queue_item_repo.go.
// Tests use a hand-written mock (mock_repo.go).
type QueueItemRepository interface {
	// CountBySender returns the number of queue rows tagged with senderID.
	CountBySender(ctx context.Context, senderID int64) (int64, error)
	// NextID draws the next value of the shared queue id sequence.
	NextID(ctx context.Context) (int64, error)
	// Insert writes one queue row and commits it before returning.
	Insert(ctx context.Context, item domain.QueueItem) error
	// Exists reports whether senderID already has a row for the work item.
	Exists(ctx context.Context, senderID int64, w domain.WorkItem) (bool, error)
}

// MetadataRepository reads the metadata view.
type MetadataRepository interface {
	// StreamMatching runs the filtered query and calls fn for every row in
	// order. An error from fn stops the scan and is returned as is.
	StreamMatching(ctx context.Context, f domain.MetadataFilter, fn func(domain.WorkItem) error) error
}
