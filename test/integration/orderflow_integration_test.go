package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"clothesrental/model"
	itemrepo "clothesrental/repository/item"
	orderrepo "clothesrental/repository/order"
	payosrepo "clothesrental/repository/payos"
	ordersvc "clothesrental/service/order"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider stands in for the payment gateway; integration tests exercise
// the database paths, not HTTP.
type fakeProvider struct{}

func (fakeProvider) CreateCheckout(ctx context.Context, req payosrepo.CreateCheckoutReq) (*payosrepo.CreateCheckoutResp, error) {
	return &payosrepo.CreateCheckoutResp{CheckoutURL: "https://pay.test/" + req.OrderCode}, nil
}
func (fakeProvider) GetPaymentStatus(ctx context.Context, code string) (string, error) {
	return payosrepo.StatusPending, nil
}
func (fakeProvider) VerifyWebhookSignature(sig string, raw []byte) error { return nil }

func itemStatus(t *testing.T, db *TestDB, id int64) model.ItemStatus {
	t.Helper()
	var st model.ItemStatus
	err := db.Pool.QueryRow(context.Background(), "SELECT status FROM items WHERE id = $1", id).Scan(&st)
	require.NoError(t, err)
	return st
}

func TestOrderLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := SetupTestDB(t)
	logger := zerolog.Nop()
	orders := orderrepo.New(db.Pool)
	items := itemrepo.New(db.Pool)
	engine := ordersvc.New(db.Pool, orders, items, fakeProvider{}, 24*time.Hour, 15*time.Minute, logger)

	ctx := context.Background()
	rent := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("cash order holds and releases the item", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		itemID := SeedItem(t, db.Pool, "ao dai do", 200000)

		out, err := engine.Create(ctx, ordersvc.CreateReq{
			ItemID: itemID, CustomerName: "Linh", CustomerPhone: "0900000001",
			RentDate: rent, ReturnDate: rent.AddDate(0, 0, 1),
			PaymentMethod: model.PayCash,
		})
		require.NoError(t, err)
		assert.Equal(t, model.OrderPending, out.Status)
		assert.Equal(t, int64(400000), out.TotalAmount)
		assert.Equal(t, model.ItemRented, itemStatus(t, db, itemID))

		// second checkout for the same item must bounce off the hold
		_, err = engine.Create(ctx, ordersvc.CreateReq{
			ItemID: itemID, CustomerName: "Mai", CustomerPhone: "0900000002",
			RentDate: rent, ReturnDate: rent,
			PaymentMethod: model.PayCash,
		})
		assert.Equal(t, ordersvc.ErrItemUnavailable, ordersvc.Code(err))

		require.NoError(t, engine.Approve(ctx, out.OrderID))
		require.NoError(t, engine.Complete(ctx, out.OrderID))
		assert.Equal(t, model.ItemAvailable, itemStatus(t, db, itemID))

		o, err := orders.FindByID(ctx, out.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderCompleted, o.Status)
		assert.NotNil(t, o.ApprovedAt)
		assert.NotNil(t, o.CompletedAt)

		// resubmitted feedback is absorbed, not duplicated
		require.NoError(t, engine.AddFeedback(ctx, out.OrderCode, 5, "rat dep", nil))
		require.NoError(t, engine.AddFeedback(ctx, out.OrderCode, 1, "doi y", nil))
		fb, err := orders.FindFeedback(ctx, out.OrderID)
		require.NoError(t, err)
		assert.Equal(t, 5, fb.Rating)
	})

	t.Run("transfer order leaves the item free until approval", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		itemID := SeedItem(t, db.Pool, "vay cuoi", 500000)

		out, err := engine.Create(ctx, ordersvc.CreateReq{
			ItemID: itemID, CustomerName: "Hoa", CustomerPhone: "0900000003",
			RentDate: rent, ReturnDate: rent.AddDate(0, 0, 2),
			PaymentMethod: model.PayTransfer,
		})
		require.NoError(t, err)
		assert.Equal(t, model.OrderPendingPayment, out.Status)
		assert.NotEmpty(t, out.PaymentURL)
		assert.Equal(t, model.ItemAvailable, itemStatus(t, db, itemID))

		require.NoError(t, engine.Approve(ctx, out.OrderID))
		assert.Equal(t, model.ItemRented, itemStatus(t, db, itemID))
	})

	t.Run("availability reflects the union of holds", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		itemID := SeedItem(t, db.Pool, "ao khoac", 150000)

		// two unpaid transfer orders may coexist on one item
		a, err := engine.Create(ctx, ordersvc.CreateReq{
			ItemID: itemID, CustomerName: "An", CustomerPhone: "0900000006",
			RentDate: rent, ReturnDate: rent,
			PaymentMethod: model.PayTransfer,
		})
		require.NoError(t, err)
		b, err := engine.Create(ctx, ordersvc.CreateReq{
			ItemID: itemID, CustomerName: "Binh", CustomerPhone: "0900000007",
			RentDate: rent, ReturnDate: rent,
			PaymentMethod: model.PayTransfer,
		})
		require.NoError(t, err)

		require.NoError(t, engine.Approve(ctx, a.OrderID))
		assert.Equal(t, model.ItemRented, itemStatus(t, db, itemID))

		// the second order cannot be approved onto a held item
		err = engine.Approve(ctx, b.OrderID)
		assert.Equal(t, ordersvc.ErrItemUnavailable, ordersvc.Code(err))

		// rejecting the loser must not release the winner's hold
		require.NoError(t, engine.Reject(ctx, b.OrderID))
		assert.Equal(t, model.ItemRented, itemStatus(t, db, itemID))

		require.NoError(t, engine.Complete(ctx, a.OrderID))
		assert.Equal(t, model.ItemAvailable, itemStatus(t, db, itemID))
	})

	t.Run("concurrent resolvers produce exactly one winner", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		itemID := SeedItem(t, db.Pool, "ao so mi", 100000)

		out, err := engine.Create(ctx, ordersvc.CreateReq{
			ItemID: itemID, CustomerName: "Tu", CustomerPhone: "0900000004",
			RentDate: rent, ReturnDate: rent,
			PaymentMethod: model.PayTransfer,
		})
		require.NoError(t, err)

		// webhook approval races expiry rejection, several times over
		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					errs[i] = engine.Approve(ctx, out.OrderID)
				} else {
					errs[i] = engine.Reject(ctx, out.OrderID)
				}
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			switch {
			case err == nil:
				winners++
			case ordersvc.Code(err) == ordersvc.ErrStaleTransition:
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		require.Equal(t, 1, winners)

		// item availability must agree with whoever won
		o, err := orders.FindByID(ctx, out.OrderID)
		require.NoError(t, err)
		switch o.Status {
		case model.OrderApproved:
			assert.Equal(t, model.ItemRented, itemStatus(t, db, itemID))
		case model.OrderRejected:
			assert.Equal(t, model.ItemAvailable, itemStatus(t, db, itemID))
		default:
			t.Fatalf("order ended in %s", o.Status)
		}
	})

	t.Run("sweeper rejects an overdue transfer hold", func(t *testing.T) {
		CleanupDB(t, db.Pool)
		itemID := SeedItem(t, db.Pool, "dam da hoi", 300000)

		// a dedicated engine whose transfer hold is already in the past
		expired := ordersvc.New(db.Pool, orders, items, fakeProvider{}, 24*time.Hour, -time.Minute, logger)
		out, err := expired.Create(ctx, ordersvc.CreateReq{
			ItemID: itemID, CustomerName: "Ngan", CustomerPhone: "0900000005",
			RentDate: rent, ReturnDate: rent,
			PaymentMethod: model.PayTransfer,
		})
		require.NoError(t, err)

		sw := ordersvc.NewSweeper(orders, engine, time.Minute, logger)
		n, err := sw.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		o, err := orders.FindByID(ctx, out.OrderID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderRejected, o.Status)
		assert.Equal(t, model.ItemAvailable, itemStatus(t, db, itemID))

		// a second sweep finds nothing left to do
		n, err = sw.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
