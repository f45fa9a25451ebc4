package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/outbox"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type txManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

// ディスパッチャはOutboxしか触らない
type txReposMock struct {
	outbox repo.OutboxRepository
}

func (r *txReposMock) Orders() repo.OrderRepository         { return nil }
func (r *txReposMock) OrderItems() repo.OrderItemRepository { return nil }
func (r *txReposMock) Inventory() repo.InventoryRepository  { return nil }
func (r *txReposMock) Holds() repo.HoldRepository           { return nil }
func (r *txReposMock) Outbox() repo.OutboxRepository        { return r.outbox }
func (r *txReposMock) AuditLogs() repo.AuditLogRepository   { return nil }

type outboxRepoMock struct{ mock.Mock }

func (m *outboxRepoMock) Create(ctx context.Context, ev model.OutboxEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *outboxRepoMock) ClaimPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	evs, _ := args.Get(0).([]model.OutboxEvent)
	return evs, args.Error(1)
}

func (m *outboxRepoMock) MarkDispatched(ctx context.Context, ids []int64, at time.Time) error {
	args := m.Called(ctx, ids, at)
	return args.Error(0)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, string(key), string(value))
	return args.Error(0)
}

type fanOutMock struct{ mock.Mock }

func (m *fanOutMock) Publish(ctx context.Context, channel string, payload string) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

func newDispatcher(tx repo.TransactionManager, pub outbox.Publisher, fanout outbox.FanOut) *outbox.Dispatcher {
	return outbox.NewDispatcher(tx, pub, fanout, zap.NewNop(), 10*time.Millisecond, 100)
}

func pendingEvent(id int64, eventType, topic, key, payload string) model.OutboxEvent {
	return model.OutboxEvent{
		ID:        id,
		EventID:   "ev-" + key,
		EventType: eventType,
		Topic:     topic,
		Key:       key,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	}
}

func TestDispatchOnce_Empty(t *testing.T) {
	tx := new(txManagerMock)
	ob := new(outboxRepoMock)
	pub := new(publisherMock)

	tx.Repos = &txReposMock{outbox: ob}
	tx.On("WithinTx", mock.Anything).Return(nil)
	ob.On("ClaimPending", mock.Anything, 100).Return([]model.OutboxEvent{}, nil)

	d := newDispatcher(tx, pub, nil)

	n, err := d.DispatchOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ob.AssertNotCalled(t, "MarkDispatched", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchOnce_PublishesAndMarks(t *testing.T) {
	tx := new(txManagerMock)
	ob := new(outboxRepoMock)
	pub := new(publisherMock)
	fan := new(fanOutMock)

	tx.Repos = &txReposMock{outbox: ob}
	tx.On("WithinTx", mock.Anything).Return(nil)

	evs := []model.OutboxEvent{
		pendingEvent(1, model.EventTypeStockUpdate, model.TopicStockUpdate, "100", `{"product_id":100,"stock_quantity":8}`),
		pendingEvent(2, model.EventTypeInvoiceUpdate, model.TopicInvoiceUpdate, "12", `{"invoice_id":7,"order_id":12,"status":"SHIPPED"}`),
	}
	ob.On("ClaimPending", mock.Anything, 100).Return(evs, nil)

	pub.On("Publish", mock.Anything, model.TopicStockUpdate, "100", evs[0].Payload).Return(nil).Once()
	pub.On("Publish", mock.Anything, model.TopicInvoiceUpdate, "12", evs[1].Payload).Return(nil).Once()

	fan.On("Publish", mock.Anything, "events:stock_update", evs[0].Payload).Return(nil).Once()
	fan.On("Publish", mock.Anything, "events:invoice_update", evs[1].Payload).Return(nil).Once()

	ob.On("MarkDispatched", mock.Anything, []int64{1, 2}, mock.Anything).Return(nil).Once()

	d := newDispatcher(tx, pub, fan)

	n, err := d.DispatchOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	pub.AssertExpectations(t)
	fan.AssertExpectations(t)
	ob.AssertExpectations(t)
}

// Kafka送信失敗：トランザクションごと失敗してPENDINGのまま残す
func TestDispatchOnce_PublishFailure_LeavesPending(t *testing.T) {
	tx := new(txManagerMock)
	ob := new(outboxRepoMock)
	pub := new(publisherMock)

	tx.Repos = &txReposMock{outbox: ob}
	tx.On("WithinTx", mock.Anything).Return(nil)

	evs := []model.OutboxEvent{
		pendingEvent(1, model.EventTypeStockUpdate, model.TopicStockUpdate, "100", `{}`),
	}
	ob.On("ClaimPending", mock.Anything, 100).Return(evs, nil)
	pub.On("Publish", mock.Anything, model.TopicStockUpdate, "100", "{}").Return(errors.New("broker down"))

	d := newDispatcher(tx, pub, nil)

	n, err := d.DispatchOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, n)

	ob.AssertNotCalled(t, "MarkDispatched", mock.Anything, mock.Anything, mock.Anything)
}

// Redisの失敗は警告のみ。配送済みにはする
func TestDispatchOnce_FanOutFailure_StillMarks(t *testing.T) {
	tx := new(txManagerMock)
	ob := new(outboxRepoMock)
	pub := new(publisherMock)
	fan := new(fanOutMock)

	tx.Repos = &txReposMock{outbox: ob}
	tx.On("WithinTx", mock.Anything).Return(nil)

	evs := []model.OutboxEvent{
		pendingEvent(1, model.EventTypeStockUpdate, model.TopicStockUpdate, "100", `{}`),
	}
	ob.On("ClaimPending", mock.Anything, 100).Return(evs, nil)
	pub.On("Publish", mock.Anything, model.TopicStockUpdate, "100", "{}").Return(nil)
	fan.On("Publish", mock.Anything, "events:stock_update", "{}").Return(errors.New("redis down"))
	ob.On("MarkDispatched", mock.Anything, []int64{1}, mock.Anything).Return(nil).Once()

	d := newDispatcher(tx, pub, fan)

	n, err := d.DispatchOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	ob.AssertExpectations(t)
}
