package repository

import (
	"context"
	"sync"

	"github.com/ricirt/sender-queue/internal/domain"
)

// MockQueueItemRepository is a hand-written, in-memory implementation of
// QueueItemRepository used in unit tests.
type MockQueueItemRepository struct {
	mu    sync.Mutex
	items []domain.QueueItem
	seq   int64

	// Backlog is added to the count of every sender, standing in for rows
	// inserted by earlier runs and not yet consumed downstream.
	Backlog int64

	// Optional error overrides, set in tests to simulate failure paths.
	CountErr  error
	NextIDErr error
	ExistsErr error
	// InsertErr is returned by every Insert; InsertHook, when set, decides per item.
	InsertErr  error
	InsertHook func(domain.QueueItem) error
}

func NewMockQueueItemRepository() *MockQueueItemRepository {
	return &MockQueueItemRepository{}
}

func (m *MockQueueItemRepository) CountBySender(_ context.Context, senderID int64) (int64, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := m.Backlog
	for _, it := range m.items {
		if it.SenderID == senderID {
			count++
		}
	}
	return count, nil
}

func (m *MockQueueItemRepository) NextID(_ context.Context) (int64, error) {
	if m.NextIDErr != nil {
		return 0, m.NextIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *MockQueueItemRepository) Insert(_ context.Context, item domain.QueueItem) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if m.InsertHook != nil {
		if err := m.InsertHook(item); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *MockQueueItemRepository) Exists(_ context.Context, senderID int64, w domain.WorkItem) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.SenderID == senderID && it.MetadataID == w.MetadataID && it.DataID == w.DataID {
			return true, nil
		}
	}
	return false, nil
}

// Items returns a copy of every inserted row in insertion order.
func (m *MockQueueItemRepository) Items() []domain.QueueItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.QueueItem, len(m.items))
	copy(out, m.items)
	return out
}

// Seed adds rows as if a previous run had inserted them.
func (m *MockQueueItemRepository) Seed(items ...domain.QueueItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, items...)
}

// MockMetadataRepository serves a fixed set of rows.
type MockMetadataRepository struct {
	Rows []domain.WorkItem

	// QueryErr fails the query before any row is produced.
	QueryErr error
	// FailAfter, when positive, fails the scan with ScanErr after that many rows.
	FailAfter int
	ScanErr   error

	mu      sync.Mutex
	calls   int
	filters []domain.MetadataFilter
}

func (m *MockMetadataRepository) StreamMatching(_ context.Context, f domain.MetadataFilter, fn func(domain.WorkItem) error) error {
	m.mu.Lock()
	m.calls++
	m.filters = append(m.filters, f)
	m.mu.Unlock()

	if m.QueryErr != nil {
		return m.QueryErr
	}
	for i, row := range m.Rows {
		if m.FailAfter > 0 && i == m.FailAfter {
			return m.ScanErr
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// Calls returns how many times the view was queried.
func (m *MockMetadataRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastFilter returns the filter of the most recent query.
func (m *MockMetadataRepository) LastFilter() domain.MetadataFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.filters) == 0 {
		return domain.MetadataFilter{}
	}
	return m.filters[len(m.filters)-1]
}
