package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/service/order"
	"github.com/vladislavdragonenkov/ecom/internal/storage/memory"
)

const (
	testUserID     = "2b7a4f6e-0000-4000-8000-000000000001"
	testCategoryID = "2b7a4f6e-0000-4000-8000-000000000002"
	testProductA   = "2b7a4f6e-0000-4000-8000-00000000000a"
	testProductB   = "2b7a4f6e-0000-4000-8000-00000000000b"
)

func newTestService(t *testing.T) (*order.Service, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		if err := tx.Users().Create(domain.User{
			ID:    testUserID,
			Name:  "Ivan",
			Email: "ivan@example.com",
		}); err != nil {
			return err
		}
		if err := tx.Categories().Create(domain.Category{
			ID:   testCategoryID,
			Name: "electronics",
		}); err != nil {
			return err
		}
		if err := tx.Products().Create(domain.Product{
			ID:           testProductA,
			Name:         "keyboard",
			Price:        decimal.RequireFromString("10.00"),
			CategoryID:   testCategoryID,
			CountInStock: 5,
			DateCreated:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		return tx.Products().Create(domain.Product{
			ID:           testProductB,
			Name:         "mouse",
			Price:        decimal.RequireFromString("2.50"),
			CategoryID:   testCategoryID,
			CountInStock: 100,
			DateCreated:  time.Now().UTC(),
		})
	})
	require.NoError(t, err)

	return order.NewServiceWithoutMetrics(store, nil), store
}

func productStock(t *testing.T, store *memory.Store, productID string) int32 {
	t.Helper()

	var stock int32
	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		product, err := tx.Products().Get(productID)
		if err != nil {
			return err
		}
		stock = product.CountInStock
		return nil
	})
	require.NoError(t, err)
	return stock
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)

	created, err := svc.Create(context.Background(), order.CreateInput{
		UserID: testUserID,
		Items: []order.ItemInput{
			{ProductID: testProductA, Quantity: 2},
			{ProductID: testProductB, Quantity: 4},
		},
		ShippingAddress1: "Lenina 1",
		City:             "Moscow",
		Zip:              "101000",
		Country:          "RU",
		Phone:            "+79990000000",
	})
	require.NoError(t, err)

	require.NotEmpty(t, created.ID)
	require.Equal(t, domain.OrderStatusPending, created.Status)
	require.True(t, created.TotalPrice.Equal(decimal.RequireFromString("30.00")),
		"unexpected total: %s", created.TotalPrice)
	require.Len(t, created.Items, 2)
	require.False(t, created.DateOrdered.IsZero())

	require.Equal(t, int32(3), productStock(t, store, testProductA))
	require.Equal(t, int32(96), productStock(t, store, testProductB))

	details, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, testUserID, details.User.ID)
	require.Len(t, details.History, 1)
	require.Equal(t, domain.OrderStatusPending, details.History[0].To)
}

func TestService_Create_SequentialDecrementSeesOwnReservation(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)

	// Сток 5: две позиции по 3 того же товара должны упасть на второй.
	_, err := svc.Create(context.Background(), order.CreateInput{
		UserID: testUserID,
		Items: []order.ItemInput{
			{ProductID: testProductA, Quantity: 3},
			{ProductID: testProductA, Quantity: 3},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Откат: ни одна из позиций не должна остаться списанной.
	require.Equal(t, int32(5), productStock(t, store, testProductA))

	// 3+2 укладывается ровно в остаток.
	created, err := svc.Create(context.Background(), order.CreateInput{
		UserID: testUserID,
		Items: []order.ItemInput{
			{ProductID: testProductA, Quantity: 3},
			{ProductID: testProductA, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.True(t, created.TotalPrice.Equal(decimal.RequireFromString("50.00")))
	require.Equal(t, int32(0), productStock(t, store, testProductA))
}

func TestService_Create_RollsBackEarlierItemsOnFailure(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)

	_, err := svc.Create(context.Background(), order.CreateInput{
		UserID: testUserID,
		Items: []order.ItemInput{
			{ProductID: testProductB, Quantity: 10},
			{ProductID: testProductA, Quantity: 6},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	require.Equal(t, int32(100), productStock(t, store, testProductB))
	require.Equal(t, int32(5), productStock(t, store, testProductA))
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, order.CreateInput{UserID: testUserID})
	require.ErrorIs(t, err, domain.ErrItemsRequired)

	_, err = svc.Create(ctx, order.CreateInput{
		Items: []order.ItemInput{{ProductID: testProductA, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrUserRequired)

	_, err = svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 0}},
	})
	require.ErrorIs(t, err, domain.ErrItemQuantityInvalid)

	_, err = svc.Create(ctx, order.CreateInput{
		UserID: "missing-user",
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownUser)
	require.True(t, domain.IsBadRequest(err))

	_, err = svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: "missing-product", Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrUnknownProduct)
	require.True(t, domain.IsBadRequest(err))
}

func TestService_UpdateStatus_CaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, created.ID, "completed")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCompleted, updated.Status)

	_, err = svc.UpdateStatus(ctx, created.ID, "shipped")
	require.ErrorIs(t, err, domain.ErrUnknownOrderStatus)

	_, err = svc.UpdateStatus(ctx, "missing-order", "Pending")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestService_UpdateStatus_CancelRestoresStockOnce(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), productStock(t, store, testProductA))

	cancelled, err := svc.UpdateStatus(ctx, created.ID, "CANCELLED")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	require.Equal(t, int32(5), productStock(t, store, testProductA))

	// Повторная отмена не кредитует сток второй раз.
	_, err = svc.UpdateStatus(ctx, created.ID, "Cancelled")
	require.NoError(t, err)
	require.Equal(t, int32(5), productStock(t, store, testProductA))

	details, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, details.History, 2, "no-op transition must not append history")
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, int32(2), productStock(t, store, testProductA))

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Equal(t, int32(5), productStock(t, store, testProductA))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrOrderNotFound)
}

func TestService_Delete_CancelledOrderDoesNotRestoreAgain(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, created.ID, "Cancelled")
	require.NoError(t, err)
	require.Equal(t, int32(5), productStock(t, store, testProductA))

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Equal(t, int32(5), productStock(t, store, testProductA))
}

func TestService_Statistics(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.TotalOrders)
	require.True(t, stats.TotalRevenue.IsZero())
	require.True(t, stats.AverageOrderValue.IsZero())

	// Completed на 50.00 и Pending на 10.00: выручка считается только по
	// Completed, но средний чек делит её на общее число заказов.
	first, err := svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 5}},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, "Completed")
	require.NoError(t, err)

	_, err = svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductB, Quantity: 4}},
	})
	require.NoError(t, err)

	stats, err = svc.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalOrders)
	require.Equal(t, int64(1), stats.CompletedOrders)
	require.Equal(t, int64(1), stats.PendingOrders)
	require.Equal(t, int64(0), stats.CancelledOrders)
	require.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("50.00")),
		"unexpected revenue: %s", stats.TotalRevenue)
	require.Equal(t, "25.00", stats.AverageOrderValue.StringFixed(2))
}

func TestService_Statistics_CancelledExcludedFromRevenue(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, order.CreateInput{
		UserID: testUserID,
		Items:  []order.ItemInput{{ProductID: testProductA, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, created.ID, "Cancelled")
	require.NoError(t, err)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.TotalOrders)
	require.Equal(t, int64(1), stats.CancelledOrders)
	require.True(t, stats.TotalRevenue.IsZero())
	require.True(t, stats.AverageOrderValue.IsZero())
}

func TestService_List(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, order.CreateInput{
			UserID: testUserID,
			Items:  []order.ItemInput{{ProductID: testProductB, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	orders, total, err := svc.List(ctx, "", 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, orders, 2)

	orders, total, err = svc.List(ctx, testUserID, 2, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, orders, 1)

	orders, total, err = svc.List(ctx, "other-user", 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(0), total)
	require.Empty(t, orders)
}
