package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hszk-dev/gocatalog/internal/domain/model"
	"github.com/hszk-dev/gocatalog/internal/domain/repository"
	"github.com/hszk-dev/gocatalog/internal/infrastructure/metrics"
)

// ItemRepository implements repository.ItemRepository using PostgreSQL.
type ItemRepository struct {
	db DBTX
}

// NewItemRepository creates a new ItemRepository instance.
func NewItemRepository(db DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create persists a new item and sets its generated ID.
func (r *ItemRepository) Create(ctx context.Context, item *model.Item) error {
	const query = `
		INSERT INTO items (name, description, price, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	countQuery(metrics.DBQueryInsert, metrics.TableItems)
	err := r.db.QueryRow(ctx, query,
		item.Name,
		item.Description,
		item.Price,
		item.CreatedAt,
		item.ModifiedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by its identifier.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	const query = `
		SELECT id, name, description, price, created_at, modified_at
		FROM items
		WHERE id = $1
	`

	countQuery(metrics.DBQuerySelect, metrics.TableItems)
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item by ID: %w", err)
	}

	return item, nil
}

// List retrieves all items ordered by ID.
func (r *ItemRepository) List(ctx context.Context) ([]*model.Item, error) {
	const query = `
		SELECT id, name, description, price, created_at, modified_at
		FROM items
		ORDER BY id
	`

	countQuery(metrics.DBQuerySelect, metrics.TableItems)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]*model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// Update persists changes to an existing item.
func (r *ItemRepository) Update(ctx context.Context, item *model.Item) error {
	const query = `
		UPDATE items
		SET name = $2, description = $3, price = $4, modified_at = $5
		WHERE id = $1
	`

	item.ModifiedAt = time.Now()

	countQuery(metrics.DBQueryUpdate, metrics.TableItems)
	tag, err := r.db.Exec(ctx, query,
		item.ID,
		item.Name,
		item.Description,
		item.Price,
		item.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrItemNotFound
	}

	return nil
}

// Delete removes an item; item_media rows go with it through ON DELETE CASCADE.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM items WHERE id = $1`

	countQuery(metrics.DBQueryDelete, metrics.TableItems)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrItemNotFound
	}

	return nil
}

// scanItem scans a single row into an Item model.
// pgx.Rows satisfies pgx.Row, so this serves both QueryRow and Query.
func scanItem(row pgx.Row) (*model.Item, error) {
	var item model.Item

	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.CreatedAt,
		&item.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Compile-time verification that ItemRepository implements repository.ItemRepository.
var _ repository.ItemRepository = (*ItemRepository)(nil)
