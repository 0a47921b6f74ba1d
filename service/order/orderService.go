package ordersvc

import (
	"context"
	"errors"
	"time"

	"clothesrental/model"
	itemrepo "clothesrental/repository/item"
	orderrepo "clothesrental/repository/order"
	payosrepo "clothesrental/repository/payos"
	"clothesrental/util/ordercode"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// errors used by controllers

type ErrCode string

const (
	ErrItemNotFound    ErrCode = "ITEM_NOT_FOUND"
	ErrItemUnavailable ErrCode = "ITEM_UNAVAILABLE"
	ErrOrderNotFound   ErrCode = "ORDER_NOT_FOUND"
	ErrBadDates        ErrCode = "BAD_DATES"
	ErrStaleTransition ErrCode = "STALE_TRANSITION"
	ErrRentingConflict ErrCode = "RENTING_CONFLICT"
	ErrProviderFailure ErrCode = "PROVIDER_FAILURE"
	ErrNotCompleted    ErrCode = "NOT_COMPLETED"
)

type codedError struct {
	code ErrCode
	err  error
}

func (e codedError) Error() string {
	if e.err != nil {
		return string(e.code) + ": " + e.err.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.err }

func makeErr(c ErrCode) error            { return codedError{code: c} }
func wrapErr(c ErrCode, err error) error { return codedError{code: c, err: err} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

type CreateReq struct {
	UserID        int64
	ItemID        int64
	CustomerName  string
	CustomerPhone string
	RentDate      time.Time
	ReturnDate    time.Time
	PaymentMethod model.PaymentMethod
	IdentityDoc   *string
	PickupTime    *time.Time
}

type Created struct {
	OrderID     int64
	OrderCode   string
	Status      model.OrderStatus
	TotalAmount int64
	PaymentURL  string
	HoldExpires time.Time
}

// DB is the subset of pgxpool.Pool the engine needs; every transition runs
// inside one transaction so the status write and the availability write
// cannot be torn apart.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service interface {
	// Create books an item for a date range. Transfer orders obtain a
	// provider checkout link before anything is persisted; cash orders hold
	// the item immediately.
	Create(ctx context.Context, req CreateReq) (*Created, error)

	// Admin transitions.
	Approve(ctx context.Context, orderID int64) error
	Reject(ctx context.Context, orderID int64) error
	Complete(ctx context.Context, orderID int64) error

	// Delete removes an order; refused while the item is out with the
	// customer (APPROVED). The guard is enforced at write time, not just on
	// the preceding read.
	Delete(ctx context.Context, orderID int64) error

	// Cancel aborts a customer's own order before approval.
	Cancel(ctx context.Context, code string, userID int64) error

	StatusByCode(ctx context.Context, code string) (model.OrderStatus, error)
	ByCode(ctx context.Context, code string) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	HeldRanges(ctx context.Context, itemID int64) ([]model.HeldRange, error)
	AddFeedback(ctx context.Context, code string, rating int, message string, images []string) error

	// Transition drives o from its current status to `to` atomically with the
	// item availability write. A concurrent writer that got there first makes
	// this return ErrStaleTransition; callers handling at-least-once signals
	// absorb that. An approval returns ErrItemUnavailable when another order
	// already holds the item.
	Transition(ctx context.Context, o *model.Order, to model.OrderStatus) error
}

type service struct {
	db              DB
	orders          orderrepo.Repo
	items           itemrepo.Repo
	payos           payosrepo.Repo
	cashHoldTTL     time.Duration
	transferHoldTTL time.Duration
	now             func() time.Time
	newCode         func() string
	log             zerolog.Logger
}

func New(db DB, orders orderrepo.Repo, items itemrepo.Repo, px payosrepo.Repo,
	cashTTL, transferTTL time.Duration, logger zerolog.Logger) Service {
	return &service{
		db:              db,
		orders:          orders,
		items:           items,
		payos:           px,
		cashHoldTTL:     cashTTL,
		transferHoldTTL: transferTTL,
		now:             time.Now,
		newCode:         ordercode.New,
		log:             logger.With().Str("service", "order").Logger(),
	}
}

// rentalDays is the inclusive day span: same-day rental counts as one day.
func rentalDays(rent, ret time.Time) int {
	return int(ret.Sub(rent).Hours()/24) + 1
}

func (s *service) Create(ctx context.Context, req CreateReq) (created *Created, err error) {
	if req.ReturnDate.Before(req.RentDate) {
		return nil, makeErr(ErrBadDates)
	}

	it, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if it.Status != model.ItemAvailable {
		return nil, makeErr(ErrItemUnavailable)
	}

	// The total is fixed here and never recomputed; client-supplied amounts
	// are ignored.
	total := it.RentalPrice * int64(rentalDays(req.RentDate, req.ReturnDate))
	code := s.newCode()

	now := s.now().UTC()
	o := &model.Order{
		Code:          code,
		UserID:        req.UserID,
		ItemID:        req.ItemID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		RentDate:      req.RentDate,
		ReturnDate:    req.ReturnDate,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		IdentityDoc:   req.IdentityDoc,
		PickupTime:    req.PickupTime,
	}

	var paymentURL string
	switch req.PaymentMethod {
	case model.PayTransfer:
		o.Status = model.OrderPendingPayment
		o.HoldExpiresAt = now.Add(s.transferHoldTTL)

		// Checkout is requested before the order exists so a provider outage
		// leaves nothing behind. The order code rides along as the payment
		// description and comes back in the webhook.
		resp, perr := s.payos.CreateCheckout(ctx, payosrepo.CreateCheckoutReq{
			OrderCode:   code,
			Amount:      total,
			Description: code,
			ItemName:    it.Name,
			ExpirySec:   int(s.transferHoldTTL.Seconds()),
		})
		if perr != nil {
			return nil, wrapErr(ErrProviderFailure, perr)
		}
		paymentURL = resp.CheckoutURL
		o.PaymentLink = &paymentURL
	default:
		o.Status = model.OrderPending
		o.HoldExpiresAt = now.Add(s.cashHoldTTL)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if req.PaymentMethod == model.PayCash {
		// Cash holds the item pessimistically from creation. Re-check under a
		// row lock so two simultaneous cash checkouts cannot both win.
		locked, lerr := s.items.GetForUpdate(ctx, tx, req.ItemID)
		if lerr != nil {
			err = lerr
			return nil, err
		}
		if locked.Status != model.ItemAvailable {
			err = makeErr(ErrItemUnavailable)
			return nil, err
		}
		if err = s.items.SetStatus(ctx, tx, req.ItemID, model.ItemRented); err != nil {
			return nil, err
		}
	}

	id, err := s.orders.Insert(ctx, tx, o)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info().Str("code", code).Int64("item_id", req.ItemID).
		Str("method", string(req.PaymentMethod)).Int64("total", total).
		Msg("order created")

	return &Created{
		OrderID:     id,
		OrderCode:   code,
		Status:      o.Status,
		TotalAmount: total,
		PaymentURL:  paymentURL,
		HoldExpires: o.HoldExpiresAt,
	}, nil
}

func (s *service) Transition(ctx context.Context, o *model.Order, to model.OrderStatus) (err error) {
	if !canTransition(o.Status, to) {
		return makeErr(ErrStaleTransition)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Serialize transitions per item: concurrent writers for different
	// orders on the same item must observe each other's holds.
	if _, err = s.items.GetForUpdate(ctx, tx, o.ItemID); err != nil {
		return err
	}

	if to == model.OrderApproved {
		held, herr := s.orders.HasOtherHold(ctx, tx, o.ItemID, o.ID)
		if herr != nil {
			err = herr
			return err
		}
		if held {
			// Another order claimed the item; this approval cannot be honored.
			err = makeErr(ErrItemUnavailable)
			return err
		}
	}

	ok, err := s.orders.TransitionCAS(ctx, tx, o.ID, o.Status, to, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		// Another writer moved the order first; the loser reports stale.
		err = makeErr(ErrStaleTransition)
		return err
	}
	if to == model.OrderApproved {
		err = s.items.SetStatus(ctx, tx, o.ItemID, model.ItemRented)
	} else {
		// Releasing this order frees the item only when no other order still
		// holds it.
		err = s.items.SyncStatus(ctx, tx, o.ItemID)
	}
	if err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}

	s.log.Info().Str("code", o.Code).
		Str("from", string(o.Status)).Str("to", string(to)).
		Msg("order transitioned")
	return nil
}

func (s *service) adminTransition(ctx context.Context, orderID int64, to model.OrderStatus) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return makeErr(ErrOrderNotFound)
		}
		return err
	}
	return s.Transition(ctx, o, to)
}

func (s *service) Approve(ctx context.Context, orderID int64) error {
	return s.adminTransition(ctx, orderID, model.OrderApproved)
}

func (s *service) Reject(ctx context.Context, orderID int64) error {
	return s.adminTransition(ctx, orderID, model.OrderRejected)
}

func (s *service) Complete(ctx context.Context, orderID int64) error {
	return s.adminTransition(ctx, orderID, model.OrderCompleted)
}

func (s *service) Delete(ctx context.Context, orderID int64) (err error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return makeErr(ErrOrderNotFound)
		}
		return err
	}
	if o.Status == model.OrderApproved {
		return makeErr(ErrRentingConflict)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = s.items.GetForUpdate(ctx, tx, o.ItemID); err != nil {
		return err
	}
	ok, err := s.orders.Delete(ctx, tx, o.ID)
	if err != nil {
		return err
	}
	if !ok {
		// The order reached APPROVED between the read above and the delete.
		err = makeErr(ErrRentingConflict)
		return err
	}
	// A pending cash order holds the item; the recompute releases it unless
	// another order still does.
	if err = s.items.SyncStatus(ctx, tx, o.ItemID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *service) Cancel(ctx context.Context, code string, userID int64) error {
	o, err := s.ByCode(ctx, code)
	if err != nil {
		return err
	}
	if o.UserID != userID {
		// Do not reveal other customers' orders.
		return makeErr(ErrOrderNotFound)
	}
	return s.Transition(ctx, o, model.OrderCancelled)
}

func (s *service) ByCode(ctx context.Context, code string) (*model.Order, error) {
	o, err := s.orders.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrOrderNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (s *service) StatusByCode(ctx context.Context, code string) (model.OrderStatus, error) {
	o, err := s.ByCode(ctx, code)
	if err != nil {
		return "", err
	}
	return o.Status, nil
}

func (s *service) List(ctx context.Context) ([]model.Order, error) {
	return s.orders.List(ctx)
}

func (s *service) HeldRanges(ctx context.Context, itemID int64) ([]model.HeldRange, error) {
	return s.orders.ListHeldRanges(ctx, itemID)
}

func (s *service) AddFeedback(ctx context.Context, code string, rating int, message string, images []string) error {
	o, err := s.ByCode(ctx, code)
	if err != nil {
		return err
	}
	if o.Status != model.OrderCompleted {
		return makeErr(ErrNotCompleted)
	}
	return s.orders.InsertFeedback(ctx, &model.Feedback{
		OrderID:     o.ID,
		Rating:      rating,
		Message:     message,
		Images:      images,
		SubmittedAt: s.now().UTC(),
	})
}
