package itemrepo

import (
	"context"

	"clothesrental/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	// GetForUpdate locks the item row for the duration of tx. Checkout uses
	// this so two concurrent cash orders cannot both see AVAILABLE.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Item, error)

	// SetStatus is the availability ledger write: an unconditional overwrite,
	// only ever called inside the transaction that moves the order status.
	SetStatus(ctx context.Context, tx pgx.Tx, id int64, status model.ItemStatus) error

	// SyncStatus recomputes the availability flag from the orders that still
	// hold the item, so releasing one of several orders on the same item
	// never frees it early.
	SyncStatus(ctx context.Context, tx pgx.Tx, id int64) error

	GetByID(ctx context.Context, id int64) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, it *model.Item) (int64, error)
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) Repo { return &repo{db} }

const itemCols = `id, name, owner_name, rental_price, status, description, image_url, category_id, created_at`

func scanItem(row pgx.Row) (*model.Item, error) {
	var it model.Item
	err := row.Scan(&it.ID, &it.Name, &it.OwnerName, &it.RentalPrice, &it.Status,
		&it.Description, &it.ImageURL, &it.CategoryID, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		WHERE id = $1
		FOR UPDATE`
	return scanItem(tx.QueryRow(ctx, q, id))
}

func (r *repo) SetStatus(ctx context.Context, tx pgx.Tx, id int64, status model.ItemStatus) error {
	const q = `
		UPDATE items
		SET status = $2
		WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, status)
	return err
}

func (r *repo) SyncStatus(ctx context.Context, tx pgx.Tx, id int64) error {
	// PENDING_PAYMENT is deliberately absent: an unpaid transfer order does
	// not hold the item.
	const q = `
		UPDATE items
		SET status = CASE WHEN EXISTS (
				SELECT 1
				FROM orders
				WHERE item_id = items.id
				AND status IN ('PENDING', 'APPROVED')
			) THEN 'RENTED' ELSE 'AVAILABLE' END
		WHERE id = $1`
	_, err := tx.Exec(ctx, q, id)
	return err
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		WHERE id = $1`
	return scanItem(r.db.QueryRow(ctx, q, id))
}

func (r *repo) List(ctx context.Context) ([]model.Item, error) {
	const q = `
		SELECT ` + itemCols + `
		FROM items
		ORDER BY id DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *repo) Create(ctx context.Context, it *model.Item) (int64, error) {
	const q = `
		INSERT INTO items (name, owner_name, rental_price, status, description, image_url, category_id)
		VALUES ($1, $2, $3, 'AVAILABLE', $4, $5, $6)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, q, it.Name, it.OwnerName, it.RentalPrice,
		it.Description, it.ImageURL, it.CategoryID).Scan(&id)
	return id, err
}

func (r *repo) Update(ctx context.Context, it *model.Item) error {
	const q = `
		UPDATE items
		SET name = $2,
			owner_name = $3,
			rental_price = $4,
			description = $5,
			image_url = COALESCE($6, image_url),
			category_id = $7
		WHERE id = $1`
	_, err := r.db.Exec(ctx, q, it.ID, it.Name, it.OwnerName, it.RentalPrice,
		it.Description, it.ImageURL, it.CategoryID)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM items WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}
