package ordersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"clothesrental/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// engineStub records transitions without touching a database.
type engineStub struct {
	Service
	transitions []string
	errByCode   map[string]error
}

func (e *engineStub) Transition(ctx context.Context, o *model.Order, to model.OrderStatus) error {
	if err, ok := e.errByCode[o.Code]; ok {
		return err
	}
	e.transitions = append(e.transitions, o.Code+"->"+string(to))
	return nil
}

func newSweeperFixture(orders *ordersMock, engine *engineStub) *Sweeper {
	sw := NewSweeper(orders, engine, time.Minute, zerolog.Nop())
	sw.now = func() time.Time { return testNow }
	return sw
}

func TestSweepOnce_RejectsOverdueHolds(t *testing.T) {
	orders := &ordersMock{
		listExpiredFn: func(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
			require.Equal(t, testNow, before)
			switch status {
			case model.OrderPending:
				return []model.Order{{ID: 1, Code: "PAAAAAAAA1", Status: status}}, nil
			case model.OrderPendingPayment:
				return []model.Order{
					{ID: 2, Code: "PABBBBBBB2", Status: status},
					{ID: 3, Code: "PACCCCCCC3", Status: status},
				}, nil
			}
			t.Fatalf("unexpected status %s", status)
			return nil, nil
		},
	}
	engine := &engineStub{}

	n, err := newSweeperFixture(orders, engine).SweepOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []string{
		"PAAAAAAAA1->REJECTED",
		"PABBBBBBB2->REJECTED",
		"PACCCCCCC3->REJECTED",
	}, engine.transitions)
}

func TestSweepOnce_StaleLosersAreAbsorbed(t *testing.T) {
	// A webhook approved the middle order between the listing and the sweep;
	// the sweeper must skip it and still reject the rest.
	orders := &ordersMock{
		listExpiredFn: func(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
			if status != model.OrderPendingPayment {
				return nil, nil
			}
			return []model.Order{
				{ID: 1, Code: "PAAAAAAAA1", Status: status},
				{ID: 2, Code: "PABBBBBBB2", Status: status},
				{ID: 3, Code: "PACCCCCCC3", Status: status},
			}, nil
		},
	}
	engine := &engineStub{errByCode: map[string]error{
		"PABBBBBBB2": makeErr(ErrStaleTransition),
	}}

	n, err := newSweeperFixture(orders, engine).SweepOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []string{
		"PAAAAAAAA1->REJECTED",
		"PACCCCCCC3->REJECTED",
	}, engine.transitions)
}

func TestSweepOnce_StopsOnHardError(t *testing.T) {
	boom := errors.New("connection reset")
	orders := &ordersMock{
		listExpiredFn: func(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
			return []model.Order{{ID: 1, Code: "PAAAAAAAA1", Status: status}}, nil
		},
	}
	engine := &engineStub{errByCode: map[string]error{"PAAAAAAAA1": boom}}

	_, err := newSweeperFixture(orders, engine).SweepOnce(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRun_StopsOnCancel(t *testing.T) {
	orders := &ordersMock{
		listExpiredFn: func(ctx context.Context, status model.OrderStatus, before time.Time) ([]model.Order, error) {
			return nil, nil
		},
	}
	sw := NewSweeper(orders, &engineStub{}, time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { sw.Run(ctx); close(done) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
