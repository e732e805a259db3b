package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

func TestHistoryRepository_PostgresAppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()

	order := sampleOrder("7e6a0000-0000-4000-8000-000000000010", time.Now().UTC().Add(-time.Minute))
	occurred := time.Now().UTC().Add(-30 * time.Second).Round(time.Microsecond)

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		if err := tx.Orders().Create(order); err != nil {
			return err
		}
		// Нулевое время заполняется автоматически.
		if err := tx.History().Append(domain.StatusChange{
			OrderID: order.ID,
			To:      domain.OrderStatusPending,
		}); err != nil {
			return err
		}
		return tx.History().Append(domain.StatusChange{
			OrderID:    order.ID,
			From:       domain.OrderStatusPending,
			To:         domain.OrderStatusCancelled,
			OccurredAt: occurred,
		})
	})
	if err != nil {
		t.Fatalf("seed history: %v", err)
	}

	err = store.WithinTx(ctx, func(tx domain.Tx) error {
		changes, err := tx.History().List(order.ID)
		if err != nil {
			return err
		}
		if len(changes) != 2 {
			t.Fatalf("expected 2 history records, got %d", len(changes))
		}
		if changes[0].OccurredAt.After(changes[1].OccurredAt) {
			t.Fatalf("history must be sorted by occurred_at asc: %+v", changes)
		}
		for _, change := range changes {
			if change.OccurredAt.IsZero() {
				t.Fatal("occurred_at must be auto-filled")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
}

func TestHistoryRepository_PostgresSurvivesOrderDeletion(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	ctx := context.Background()

	order := sampleOrder("7e6a0000-0000-4000-8000-000000000011", time.Now().UTC())

	err := store.WithinTx(ctx, func(tx domain.Tx) error {
		if err := tx.Orders().Create(order); err != nil {
			return err
		}
		return tx.History().Append(domain.StatusChange{
			OrderID: order.ID,
			To:      domain.OrderStatusPending,
		})
	})
	if err != nil {
		t.Fatalf("seed order with history: %v", err)
	}

	err = store.WithinTx(ctx, func(tx domain.Tx) error {
		return tx.Orders().Delete(order.ID)
	})
	if err != nil {
		t.Fatalf("delete order: %v", err)
	}

	err = store.WithinTx(ctx, func(tx domain.Tx) error {
		changes, err := tx.History().List(order.ID)
		if err != nil {
			return err
		}
		if len(changes) != 1 {
			t.Fatalf("history must survive order deletion, got %d records", len(changes))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("list history after deletion: %v", err)
	}
}
