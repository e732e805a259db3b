package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg        domain.OutboxMessage
	status     string
	seq        int64
	attemptCnt int
	createdAt  time.Time
	updatedAt  time.Time
}

// outboxRepositoryInMemory — представление outbox поверх dataset. Enqueue
// происходит внутри бизнес-транзакции и откатывается вместе с ней.
type outboxRepositoryInMemory struct {
	data *dataset
}

// Enqueue сохраняет событие со статусом `pending` и возвращает его идентификатор.
func (r *outboxRepositoryInMemory) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.data.outboxSeq++
	r.data.outbox[msg.ID] = &outboxRecord{
		msg:       msg,
		status:    outboxStatusPending,
		seq:       r.data.outboxSeq,
		createdAt: now,
		updatedAt: now,
	}
	return msg, nil
}

// PullPending возвращает до limit сообщений со статусом `pending` в порядке постановки.
func (r *outboxRepositoryInMemory) PullPending(limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	pending := make([]*outboxRecord, 0, len(r.data.outbox))
	for _, rec := range r.data.outbox {
		if rec.status == outboxStatusPending {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })

	result := make([]domain.OutboxMessage, 0, limit)
	for _, rec := range pending {
		result = append(result, rec.msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Stats возвращает размер и возраст backlog.
func (r *outboxRepositoryInMemory) Stats() (domain.OutboxStats, error) {
	stats := domain.OutboxStats{}
	for _, rec := range r.data.outbox {
		if rec.status != outboxStatusPending {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || rec.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = rec.createdAt
		}
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (r *outboxRepositoryInMemory) MarkSent(id string) error {
	return r.markStatus(id, outboxStatusSent)
}

// MarkFailed фиксирует ошибку публикации.
func (r *outboxRepositoryInMemory) MarkFailed(id string) error {
	return r.markStatus(id, outboxStatusFailed)
}

func (r *outboxRepositoryInMemory) markStatus(id, status string) error {
	record, ok := r.data.outbox[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	record.status = status
	record.attemptCnt++
	record.updatedAt = time.Now().UTC()
	return nil
}

// OutboxRepository возвращает потокобезопасный доступ к outbox для
// фонового воркера, работающего вне бизнес-транзакций.
func (s *Store) OutboxRepository() domain.OutboxRepository {
	return &lockedOutboxRepository{store: s}
}

type lockedOutboxRepository struct {
	store *Store
}

func (r *lockedOutboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&outboxRepositoryInMemory{data: r.store.data}).Enqueue(msg)
}

func (r *lockedOutboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&outboxRepositoryInMemory{data: r.store.data}).PullPending(limit)
}

func (r *lockedOutboxRepository) Stats() (domain.OutboxStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&outboxRepositoryInMemory{data: r.store.data}).Stats()
}

func (r *lockedOutboxRepository) MarkSent(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&outboxRepositoryInMemory{data: r.store.data}).MarkSent(id)
}

func (r *lockedOutboxRepository) MarkFailed(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return (&outboxRepositoryInMemory{data: r.store.data}).MarkFailed(id)
}

var (
	_ domain.OutboxRepository = (*outboxRepositoryInMemory)(nil)
	_ domain.OutboxRepository = (*lockedOutboxRepository)(nil)
)
