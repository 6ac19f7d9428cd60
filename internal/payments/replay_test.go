package payments

import (
	"context"
	"errors"
	"testing"

	"engracedsmile/internal/bookings"
	"engracedsmile/internal/shared/constants"
	"engracedsmile/pkg/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayGuard_SkipsRepeatedDelivery(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	h := newHarness()
	guard := NewReplayGuard(cache.NewService(client), 0)
	h.svc = NewService(&memRepo{s: h.store}, h.store, h.gateway, guard, h.inval, h.events, "")

	tripID := h.store.addTrip(3, 14)
	b := h.store.addBooking(tripID, bookings.StateAwaitingPayment, fare)
	body := h.webhookBody("charge.success", b.BookingReference, fare)
	key := constants.BuildWebhookSeenKey(digest(body))

	redisMock.ExpectSetNX(key, "1", constants.TTL_WEBHOOK_REPLAY).SetVal(true)
	redisMock.ExpectSetNX(key, "1", constants.TTL_WEBHOOK_REPLAY).SetVal(false)

	first, err := h.svc.HandleWebhook(context.Background(), body, h.gateway.Sign(body))
	require.NoError(t, err)
	second, err := h.svc.HandleWebhook(context.Background(), body, h.gateway.Sign(body))
	require.NoError(t, err)

	assert.Equal(t, ResultConfirmed, first.Result)
	assert.Equal(t, ResultIgnored, second.Result)
	assert.Equal(t, 2, h.store.available(tripID))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestReplayGuard_RedisDownStillProcesses(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	h := newHarness()
	h.svc = NewService(&memRepo{s: h.store}, h.store, h.gateway, NewReplayGuard(cache.NewService(client), 0), h.inval, h.events, "")

	tripID := h.store.addTrip(3, 14)
	b := h.store.addBooking(tripID, bookings.StateAwaitingPayment, fare)
	body := h.webhookBody("charge.failed", b.BookingReference, fare)
	redisMock.ExpectSetNX(constants.BuildWebhookSeenKey(digest(body)), "1", constants.TTL_WEBHOOK_REPLAY).SetErr(errors.New("connection refused"))

	outcome, err := h.svc.HandleWebhook(context.Background(), body, h.gateway.Sign(body))

	require.NoError(t, err)
	assert.Equal(t, ResultFailed, outcome.Result)
}

func TestReplayGuard_ReleasesOnProcessingError(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	h := newHarness()
	h.svc = NewService(&memRepo{s: h.store}, h.store, h.gateway, NewReplayGuard(cache.NewService(client), 0), h.inval, h.events, "")

	body := []byte(`{"event":"charge.success","data":`)
	key := constants.BuildWebhookSeenKey(digest(body))
	redisMock.ExpectSetNX(key, "1", constants.TTL_WEBHOOK_REPLAY).SetVal(true)
	redisMock.ExpectDel(key).SetVal(1)

	_, err := h.svc.HandleWebhook(context.Background(), body, h.gateway.Sign(body))

	require.Error(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestReplayGuard_NilIsOpen(t *testing.T) {
	var guard *ReplayGuard
	assert.True(t, guard.FirstDelivery(context.Background(), []byte("{}")))
	guard.Release(context.Background(), []byte("{}"))
}
