package model_test

import (
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestStatusRank_Order(t *testing.T) {
	p, ok := model.StatusRank(model.OrderStatusPending)
	assert.True(t, ok)
	d, ok := model.StatusRank(model.OrderStatusDelivered)
	assert.True(t, ok)
	assert.Less(t, p, d)

	//CANCELLEDはランク外
	_, ok = model.StatusRank(model.OrderStatusCancelled)
	assert.False(t, ok)

	_, ok = model.StatusRank(model.OrderStatus("RETURNED"))
	assert.False(t, ok)
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, model.CanAdvance(model.OrderStatusPending, model.OrderStatusProcessing))
	assert.True(t, model.CanAdvance(model.OrderStatusPending, model.OrderStatusDelivered))

	//同じステータスは許可（冪等な再送）
	assert.True(t, model.CanAdvance(model.OrderStatusShipped, model.OrderStatusShipped))

	//後退は不可
	assert.False(t, model.CanAdvance(model.OrderStatusShipped, model.OrderStatusProcessing))

	//ランク外が絡むと常に不可
	assert.False(t, model.CanAdvance(model.OrderStatusCancelled, model.OrderStatusPending))
	assert.False(t, model.CanAdvance(model.OrderStatusPending, model.OrderStatusCancelled))
}

func TestIsDispatched(t *testing.T) {
	assert.False(t, model.IsDispatched(model.OrderStatusPending))
	assert.False(t, model.IsDispatched(model.OrderStatusTesting))
	assert.True(t, model.IsDispatched(model.OrderStatusShipped))
	assert.True(t, model.IsDispatched(model.OrderStatusDelivered))
	assert.False(t, model.IsDispatched(model.OrderStatusCancelled))
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, model.ValidPaymentStatus(model.PaymentStatusPending))
	assert.True(t, model.ValidPaymentStatus(model.PaymentStatusPaid))
	assert.True(t, model.ValidPaymentStatus(model.PaymentStatusRefunded))
	assert.False(t, model.ValidPaymentStatus(model.PaymentStatus("VOID")))
}
