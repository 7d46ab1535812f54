package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// MediaRepository implements repository.MediaRepository using PostgreSQL.
type MediaRepository struct {
	db DBTX
}

// NewMediaRepository creates a new MediaRepository instance.
func NewMediaRepository(db DBTX) *MediaRepository {
	return &MediaRepository{db: db}
}

const mediaColumns = `id, item_id, filename, filetype, created_at, modified_at`

// Create persists a new media record and sets its generated ID.
func (r *MediaRepository) Create(ctx context.Context, media *model.ItemMedia) error {
	const query = `
		INSERT INTO item_media (item_id, filename, filetype, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	countQuery(metrics.DBQueryInsert, metrics.TableItemMedia)
	err := r.db.QueryRow(ctx, query,
		media.ItemID,
		media.Filename,
		media.Kind.String(),
		media.CreatedAt,
		media.ModifiedAt,
	).Scan(&media.ID)
	if err != nil {
		return fmt.Errorf("failed to create media: %w", err)
	}

	return nil
}

// GetByIDForItem retrieves a media record only if it belongs to itemID.
func (r *MediaRepository) GetByIDForItem(ctx context.Context, id, itemID int64) (*model.ItemMedia, error) {
	const query = `SELECT ` + mediaColumns + ` FROM item_media WHERE id = $1 AND item_id = $2`

	countQuery(metrics.DBQuerySelect, metrics.TableItemMedia)
	media, err := scanMedia(r.db.QueryRow(ctx, query, id, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	return media, nil
}

// ListByItem retrieves all media attached to an item.
func (r *MediaRepository) ListByItem(ctx context.Context, itemID int64) ([]model.ItemMedia, error) {
	const query = `SELECT ` + mediaColumns + ` FROM item_media WHERE item_id = $1 ORDER BY id`

	countQuery(metrics.DBQuerySelect, metrics.TableItemMedia)
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media by item: %w", err)
	}
	defer rows.Close()

	media := make([]model.ItemMedia, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		media = append(media, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}

	return media, nil
}

// ListByItems retrieves media for several items in one query, grouped by item ID.
func (r *MediaRepository) ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]model.ItemMedia, error) {
	result := make(map[int64][]model.ItemMedia, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	const query = `SELECT ` + mediaColumns + ` FROM item_media WHERE item_id = ANY($1) ORDER BY id`

	countQuery(metrics.DBQuerySelect, metrics.TableItemMedia)
	rows, err := r.db.Query(ctx, query, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query media by items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		result[m.ItemID] = append(result[m.ItemID], *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}

	return result, nil
}

// Delete removes a media record only if it belongs to itemID.
func (r *MediaRepository) Delete(ctx context.Context, id, itemID int64) error {
	const query = `DELETE FROM item_media WHERE id = $1 AND item_id = $2`

	countQuery(metrics.DBQueryDelete, metrics.TableItemMedia)
	tag, err := r.db.Exec(ctx, query, id, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrMediaNotFound
	}

	return nil
}

// ExistingIDs reports which of ids still have a media record.
func (r *MediaRepository) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	const query = `SELECT id FROM item_media WHERE id = ANY($1)`

	countQuery(metrics.DBQuerySelect, metrics.TableItemMedia)
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query media ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan media id: %w", err)
		}
		existing[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media ids: %w", err)
	}

	return existing, nil
}

func scanMedia(row pgx.Row) (*model.ItemMedia, error) {
	var (
		m    model.ItemMedia
		kind string
	)

	err := row.Scan(
		&m.ID,
		&m.ItemID,
		&m.Filename,
		&kind,
		&m.CreatedAt,
		&m.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Kind = model.MediaKind(kind)
	return &m, nil
}

// Compile-time verification that MediaRepository implements repository.MediaRepository.
var _ repository.MediaRepository = (*MediaRepository)(nil)
