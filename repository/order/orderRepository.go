package orderrepo

import (
	"context"
	"time"

	"clothesrental/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	Insert(ctx context.Context, tx pgx.Tx, o *model.Order) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	FindByCode(ctx context.Context, code string) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)

	// TransitionCAS moves order id from `from` to `to` and stamps the matching
	// timestamp column, guarded by the current status at write time. It
	// reports false when the row was no longer in `from` (stale transition).
	TransitionCAS(ctx context.Context, tx pgx.Tx, id int64, from, to model.OrderStatus, at time.Time) (bool, error)

	// HasOtherHold reports whether any order besides excludeID currently
	// holds the item. PENDING_PAYMENT is not a hold: transfer orders claim
	// the item only on approval.
	HasOtherHold(ctx context.Context, tx pgx.Tx, itemID, excludeID int64) (bool, error)

	// Delete removes an order unless it has reached APPROVED; the status
	// guard in the statement closes the race against a concurrent approval.
	// Reports false when no deletable row matched.
	Delete(ctx context.Context, tx pgx.Tx, id int64) (bool, error)

	// ListExpired returns orders in status whose hold deadline passed before
	// the given instant. Sweeper input.
	ListExpired(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error)

	// ListHeldRanges projects the booked date spans of an item over its
	// active-hold orders. Read-only; no locking discipline required.
	ListHeldRanges(ctx context.Context, itemID int64) ([]model.HeldRange, error)

	InsertFeedback(ctx context.Context, f *model.Feedback) error
	FindFeedback(ctx context.Context, orderID int64) (*model.Feedback, error)
}

type repo struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) Repo { return &repo{db} }

const orderCols = `id, code, user_id, item_id, customer_name, customer_phone,
	rent_date, return_date, total_amount, payment_method, status,
	identity_doc, pickup_time, payment_link, hold_expires_at,
	created_at, approved_at, completed_at, rejected_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Code, &o.UserID, &o.ItemID, &o.CustomerName, &o.CustomerPhone,
		&o.RentDate, &o.ReturnDate, &o.TotalAmount, &o.PaymentMethod, &o.Status,
		&o.IdentityDoc, &o.PickupTime, &o.PaymentLink, &o.HoldExpiresAt,
		&o.CreatedAt, &o.ApprovedAt, &o.CompletedAt, &o.RejectedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repo) Insert(ctx context.Context, tx pgx.Tx, o *model.Order) (int64, error) {
	const q = `
		INSERT INTO orders (code, user_id, item_id, customer_name, customer_phone,
			rent_date, return_date, total_amount, payment_method, status,
			identity_doc, pickup_time, payment_link, hold_expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id`
	var id int64
	err := tx.QueryRow(ctx, q, o.Code, o.UserID, o.ItemID, o.CustomerName, o.CustomerPhone,
		o.RentDate, o.ReturnDate, o.TotalAmount, o.PaymentMethod, o.Status,
		o.IdentityDoc, o.PickupTime, o.PaymentLink, o.HoldExpiresAt).Scan(&id)
	return id, err
}

func (r *repo) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(ctx, q, id))
}

func (r *repo) FindByCode(ctx context.Context, code string) (*model.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders WHERE code = $1`
	return scanOrder(r.db.QueryRow(ctx, q, code))
}

func (r *repo) List(ctx context.Context) ([]model.Order, error) {
	const q = `SELECT ` + orderCols + ` FROM orders ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// stampCol maps a destination status to the timestamp column it sets. A
// CANCELLED order records rejected_at, same as REJECTED.
func stampCol(to model.OrderStatus) string {
	switch to {
	case model.OrderApproved:
		return "approved_at"
	case model.OrderCompleted:
		return "completed_at"
	default:
		return "rejected_at"
	}
}

func (r *repo) TransitionCAS(ctx context.Context, tx pgx.Tx, id int64, from, to model.OrderStatus, at time.Time) (bool, error) {
	q := `
		UPDATE orders
		SET status = $3, ` + stampCol(to) + ` = $4
		WHERE id = $1
		AND status = $2`
	tag, err := tx.Exec(ctx, q, id, from, to, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) HasOtherHold(ctx context.Context, tx pgx.Tx, itemID, excludeID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM orders
			WHERE item_id = $1
			AND id <> $2
			AND status IN ('PENDING', 'APPROVED'))`
	var held bool
	err := tx.QueryRow(ctx, q, itemID, excludeID).Scan(&held)
	return held, err
}

func (r *repo) Delete(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	const q = `DELETE FROM orders WHERE id = $1 AND status <> 'APPROVED'`
	tag, err := tx.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) ListExpired(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
	const q = `
		SELECT ` + orderCols + `
		FROM orders
		WHERE status = $1
		AND hold_expires_at < $2
		ORDER BY hold_expires_at`
	rows, err := r.db.Query(ctx, q, status, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *repo) ListHeldRanges(ctx context.Context, itemID int64) ([]model.HeldRange, error) {
	const q = `
		SELECT rent_date, return_date, status
		FROM orders
		WHERE item_id = $1
		AND status IN ('PENDING', 'PENDING_PAYMENT', 'APPROVED')
		ORDER BY rent_date`
	rows, err := r.db.Query(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HeldRange
	for rows.Next() {
		var h model.HeldRange
		if err := rows.Scan(&h.Start, &h.End, &h.Status); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repo) InsertFeedback(ctx context.Context, f *model.Feedback) error {
	// One feedback per order; resubmission is absorbed by the conflict target.
	const q = `
		INSERT INTO order_feedback (order_id, rating, message, images, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING`
	_, err := r.db.Exec(ctx, q, f.OrderID, f.Rating, f.Message, f.Images, f.SubmittedAt)
	return err
}

func (r *repo) FindFeedback(ctx context.Context, orderID int64) (*model.Feedback, error) {
	const q = `
		SELECT id, order_id, rating, message, images, submitted_at
		FROM order_feedback
		WHERE order_id = $1`
	var f model.Feedback
	err := r.db.QueryRow(ctx, q, orderID).Scan(&f.ID, &f.OrderID, &f.Rating, &f.Message, &f.Images, &f.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
