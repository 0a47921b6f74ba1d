package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clothesrental/model"
	payosrepo "clothesrental/repository/payos"
	ordersvc "clothesrental/service/order"
	"clothesrental/util/ordercode"

	"github.com/rs/zerolog"
)

// Outcome is the normalized terminal payment signal. Three sources produce
// it for the same order (provider webhook, client poll, expiry sweep); all
// funnel through Reconcile so they converge without double side effects.
type Outcome string

const (
	OutcomePaid   Outcome = "paid"
	OutcomeFailed Outcome = "failed"
)

type Service interface {
	// HandleWebhook verifies and parses a provider callback and reconciles
	// the referenced order. Duplicate or late deliveries succeed as no-ops.
	HandleWebhook(ctx context.Context, sigHeader string, raw []byte) error

	// PollStatus asks the provider for the current payment state of an
	// unresolved transfer order, reconciles if the provider reports a
	// terminal outcome, and returns the (possibly updated) order status.
	PollStatus(ctx context.Context, code string) (model.OrderStatus, error)

	// Reconcile applies one payment outcome to one order, idempotently.
	Reconcile(ctx context.Context, code string, outcome Outcome) error
}

type service struct {
	engine ordersvc.Service
	payos  payosrepo.Repo
	now    func() time.Time
	log    zerolog.Logger
}

func New(engine ordersvc.Service, px payosrepo.Repo, logger zerolog.Logger) Service {
	return &service{
		engine: engine,
		payos:  px,
		now:    time.Now,
		log:    logger.With().Str("service", "payment").Logger(),
	}
}

// outcomeOf maps provider statuses onto outcomes. Unknown or in-flight
// statuses map to "", meaning nothing to reconcile yet.
func outcomeOf(providerStatus string) Outcome {
	switch providerStatus {
	case payosrepo.StatusPaid, payosrepo.StatusCompleted:
		return OutcomePaid
	case payosrepo.StatusCancelled, payosrepo.StatusExpired:
		return OutcomeFailed
	default:
		return ""
	}
}

// lookup finds the order behind a provider-echoed code, tolerating
// prefix truncation on the provider side.
func (s *service) lookup(ctx context.Context, code string) (*model.Order, error) {
	o, err := s.engine.ByCode(ctx, code)
	if err == nil {
		return o, nil
	}
	if ordersvc.Code(err) != ordersvc.ErrOrderNotFound {
		return nil, err
	}
	return s.engine.ByCode(ctx, ordercode.Prefix+ordercode.Normalize(code))
}

func (s *service) Reconcile(ctx context.Context, code string, outcome Outcome) error {
	o, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}

	if o.Status != model.OrderPendingPayment {
		// Stale signal: webhook redelivery, a poll racing a webhook, or a
		// sweep that already expired the order. Expected traffic, not a fault.
		s.log.Info().Str("code", o.Code).Str("status", string(o.Status)).
			Str("outcome", string(outcome)).Msg("stale payment signal ignored")
		return nil
	}

	target := model.OrderRejected
	if outcome == OutcomePaid {
		if s.now().UTC().After(o.HoldExpiresAt) {
			// The reservation window closed before the money arrived; expiry
			// wins over a late success so a reallocated item is never
			// double-held.
			s.log.Warn().Str("code", o.Code).Time("deadline", o.HoldExpiresAt).
				Msg("late PAID signal after hold expiry, rejecting")
		} else {
			target = model.OrderApproved
		}
	}

	err = s.engine.Transition(ctx, o, target)
	switch {
	case ordersvc.Code(err) == ordersvc.ErrStaleTransition:
		s.log.Info().Str("code", o.Code).Msg("lost transition race, signal absorbed")
		return nil
	case target == model.OrderApproved && ordersvc.Code(err) == ordersvc.ErrItemUnavailable:
		// Another order claimed the item before this payment landed; the
		// paid order is rejected rather than double-booking the item.
		s.log.Warn().Str("code", o.Code).Msg("paid order lost the item, rejecting")
		if rerr := s.engine.Transition(ctx, o, model.OrderRejected); rerr != nil &&
			ordersvc.Code(rerr) != ordersvc.ErrStaleTransition {
			return rerr
		}
		return nil
	}
	return err
}

func (s *service) HandleWebhook(ctx context.Context, sigHeader string, raw []byte) error {
	if err := s.payos.VerifyWebhookSignature(sigHeader, raw); err != nil {
		return err
	}

	var ev payosrepo.WebhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	code := ev.OrderCode
	if code == "" {
		code = ev.Description
	}
	if code == "" || ev.Status == "" {
		return errors.New("webhook missing order code or status")
	}

	outcome := outcomeOf(ev.Status)
	if outcome == "" {
		s.log.Debug().Str("code", code).Str("status", ev.Status).Msg("non-terminal webhook ignored")
		return nil
	}
	return s.Reconcile(ctx, code, outcome)
}

func (s *service) PollStatus(ctx context.Context, code string) (model.OrderStatus, error) {
	o, err := s.lookup(ctx, code)
	if err != nil {
		return "", err
	}
	if o.Status != model.OrderPendingPayment {
		return o.Status, nil
	}

	providerStatus, err := s.payos.GetPaymentStatus(ctx, o.Code)
	if err != nil {
		return "", err
	}
	outcome := outcomeOf(providerStatus)
	if outcome == "" {
		return o.Status, nil
	}
	if err := s.Reconcile(ctx, o.Code, outcome); err != nil {
		return "", err
	}
	return s.engine.StatusByCode(ctx, o.Code)
}
