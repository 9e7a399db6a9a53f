package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ricirt/sender-queue/internal/domain"
	"github.com/ricirt/sender-queue/internal/repository"
)

// ListWriter is the producing side of the list file.
type ListWriter interface {
	Append(line string) error
	Create() error
}

// MetadataImporter materialises the metadata view into the list file.
type MetadataImporter struct {
	repo   repository.MetadataRepository
	list   ListWriter
	filter domain.MetadataFilter
	logger *zap.Logger
}

func NewMetadataImporter(
	repo repository.MetadataRepository,
	list ListWriter,
	filter domain.MetadataFilter,
	logger *zap.Logger,
) *MetadataImporter {
	return &MetadataImporter{repo: repo, list: list, filter: filter, logger: logger}
}

// Generate runs the metadata query once and appends one line per row.
//
// The first row creates the file; a query that completes without rows creates
// it empty. A query that fails before any row leaves no file behind, so a
// connectivity problem is never mistaken for an empty backlog. Rows written
// before a failure stay on disk. Returns the number of rows written.
func (m *MetadataImporter) Generate(ctx context.Context) (int, error) {
	m.logger.Info("querying metadata",
		zap.Time("from", m.filter.From),
		zap.Time("to", m.filter.To),
		zap.String("tester_type", m.filter.TesterType),
		zap.String("data_type", m.filter.DataType),
	)

	written := 0
	err := m.repo.StreamMatching(ctx, m.filter, func(w domain.WorkItem) error {
		if err := m.list.Append(w.String()); err != nil {
			return fmt.Errorf("append list entry: %w", err)
		}
		written++
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("generate list file: %w", err)
	}

	if err := m.list.Create(); err != nil {
		return written, fmt.Errorf("generate list file: %w", err)
	}

	m.logger.Info("list file generated", zap.Int("rows", written))
	return written, nil
}
