package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/sender-queue/internal/domain"
)

type pgMetadataRepository struct {
	pool *pgxpool.Pool
}

// NewPgMetadataRepository returns a MetadataRepository reading all_metadata_view.
func NewPgMetadataRepository(pool *pgxpool.Pool) MetadataRepository {
	return &pgMetadataRepository{pool: pool}
}

func (r *pgMetadataRepository) StreamMatching(ctx context.Context, f domain.MetadataFilter, fn func(domain.WorkItem) error) error {
	rows, err := r.pool.Query(ctx, `
		SELECT lot, id, id_data
		FROM all_metadata_view
		WHERE end_time BETWEEN $1 AND $2
		  AND tester_type = $3
		  AND data_type = $4
		ORDER BY id`,
		f.From, f.To, f.TesterType, f.DataType)
	if err != nil {
		return fmt.Errorf("query metadata view: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			lot pgtype.Text
			w   domain.WorkItem
		)
		if err := rows.Scan(&lot, &w.MetadataID, &w.DataID); err != nil {
			return fmt.Errorf("scan metadata row: %w", err)
		}
		if err := fn(w); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read metadata view: %w", err)
	}
	return nil
}
