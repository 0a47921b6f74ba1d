package ordersvc

import (
	"context"
	"time"

	"clothesrental/model"
	orderrepo "clothesrental/repository/order"

	"github.com/rs/zerolog"
)

// Sweeper periodically rejects orders nobody confirmed before their hold
// deadline: cash orders stuck in PENDING and transfer orders stuck in
// PENDING_PAYMENT. It is safe to run alongside the reconciliation path and
// alongside itself; whoever loses the race gets a stale transition and moves
// on.
type Sweeper struct {
	orders   orderrepo.Repo
	engine   Service
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewSweeper(orders orderrepo.Repo, engine Service, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		orders:   orders,
		engine:   engine,
		interval: interval,
		now:      time.Now,
		log:      logger.With().Str("service", "sweeper").Logger(),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sweeper stopped")
			return
		case <-t.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("sweep failed")
			} else if n > 0 {
				s.log.Info().Int("expired", n).Msg("sweep done")
			}
		}
	}
}

// SweepOnce expires every overdue hold it can see and returns how many
// orders it rejected.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().UTC()
	n := 0
	for _, st := range []model.OrderStatus{model.OrderPending, model.OrderPendingPayment} {
		stale, err := s.orders.ListExpired(ctx, st, cutoff)
		if err != nil {
			return n, err
		}
		for i := range stale {
			o := &stale[i]
			err := s.engine.Transition(ctx, o, model.OrderRejected)
			switch {
			case err == nil:
				n++
				s.log.Info().Str("code", o.Code).Str("was", string(st)).Msg("expired order rejected")
			case Code(err) == ErrStaleTransition:
				// Someone (webhook, admin, another sweep) already resolved it.
				s.log.Debug().Str("code", o.Code).Msg("expired order already resolved")
			default:
				return n, err
			}
		}
	}
	return n, nil
}
