package event

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kellertobias/servobill-sub000/internal/domain/billing"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

type mockOutboxRepo struct {
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newMockOutboxRepo() *mockOutboxRepo {
	return &mockOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *mockOutboxRepo) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepo) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *mockOutboxRepo) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *mockOutboxRepo) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})
	total := int64(len(result))

	start := (page - 1) * pageSize
	if start >= len(result) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *mockOutboxRepo) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	if e, ok := r.entries[id]; ok {
		return e, nil
	}
	return nil, nil
}

func (r *mockOutboxRepo) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *mockOutboxRepo) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *mockOutboxRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (r *mockOutboxRepo) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func newTestEntry(t *testing.T, repo *mockOutboxRepo) *shared.OutboxEntry {
	t.Helper()
	tenantID := uuid.New()
	evt := billing.NewInvoicePaidEvent(tenantID, uuid.New(), 10000)
	entry := shared.NewOutboxEntry(tenantID, evt, []byte(`{}`))
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func killEntry(entry *shared.OutboxEntry) {
	for !entry.IsDead() {
		entry.MarkFailed("boom")
	}
}

func TestOutboxServiceRetryResetsDeadEntry(t *testing.T) {
	repo := newMockOutboxRepo()
	service := NewOutboxService(repo, zap.NewNop())

	entry := newTestEntry(t, repo)
	killEntry(entry)

	dto, err := service.Retry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, string(shared.OutboxStatusPending), dto.Status)
	assert.Equal(t, 0, dto.RetryCount)
	assert.Empty(t, dto.LastError)
}

func TestOutboxServiceRetryRejectsLiveEntry(t *testing.T) {
	repo := newMockOutboxRepo()
	service := NewOutboxService(repo, zap.NewNop())

	entry := newTestEntry(t, repo)

	_, err := service.Retry(context.Background(), entry.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_OUTBOX_STATUS", domainErr.Code)
}

func TestOutboxServiceRetryUnknownEntry(t *testing.T) {
	repo := newMockOutboxRepo()
	service := NewOutboxService(repo, zap.NewNop())

	_, err := service.Retry(context.Background(), uuid.New())
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ENTRY_NOT_FOUND", domainErr.Code)
}

func TestOutboxServiceRetryAll(t *testing.T) {
	repo := newMockOutboxRepo()
	service := NewOutboxService(repo, zap.NewNop())

	for i := 0; i < 3; i++ {
		killEntry(newTestEntry(t, repo))
	}
	alive := newTestEntry(t, repo)

	count, err := service.RetryAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, shared.OutboxStatusPending, alive.Status)

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Pending)
	assert.Equal(t, int64(0), stats.Dead)
	assert.Equal(t, int64(4), stats.Total)
}

func TestOutboxServiceListDeadLettersPaginates(t *testing.T) {
	repo := newMockOutboxRepo()
	service := NewOutboxService(repo, zap.NewNop())

	for i := 0; i < 5; i++ {
		killEntry(newTestEntry(t, repo))
	}

	page, err := service.ListDeadLetters(context.Background(), DeadLetterQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Entries, 2)
	assert.Equal(t, 3, page.TotalPages)
	for _, entry := range page.Entries {
		assert.Equal(t, string(shared.OutboxStatusDead), entry.Status)
		assert.Equal(t, billing.EventTypeInvoicePaid, entry.EventType)
	}
}
