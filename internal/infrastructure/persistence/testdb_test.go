package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/catalog"
	"github.com/kellertobias/servobill-sub000/internal/domain/finance"
	"github.com/kellertobias/servobill-sub000/internal/domain/partner"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/event"
)

// setupTestDB opens an in-memory SQLite database with all tables migrated.
// A single connection is forced so every query sees the same memory store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&billing.Invoice{},
		&billing.BillingSettings{},
		&billing.DeferredJob{},
		&partner.Customer{},
		&catalog.Product{},
		&finance.Expense{},
		&finance.ExpenseCategory{},
		&shared.OutboxEntry{},
	))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// newTestOutboxSaver builds a real outbox publisher with all events registered
func newTestOutboxSaver(t *testing.T) shared.OutboxEventSaver {
	t.Helper()
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	return event.NewOutboxPublisher(serializer)
}

// outboxEventTypes returns the event types currently stored in the outbox
func outboxEventTypes(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var entries []shared.OutboxEntry
	require.NoError(t, db.WithContext(context.Background()).
		Order("created_at ASC").
		Find(&entries).Error)

	types := make([]string, len(entries))
	for i, e := range entries {
		types[i] = e.EventType
	}
	return types
}
