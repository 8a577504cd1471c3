package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listsync/internal/delivery/http/middleware"
	"listsync/internal/domain"
	"listsync/internal/realtime"
)

// fakePermissionLedger implements domain.PermissionLedger for handler tests.
type fakePermissionLedger struct {
	allowed bool
	err     error
}

func (f *fakePermissionLedger) Get(ctx context.Context, userID, listID string) (*domain.Permission, error) {
	return nil, nil
}

func (f *fakePermissionLedger) HasAny(ctx context.Context, userID, listID string) (bool, error) {
	return f.allowed, f.err
}

func (f *fakePermissionLedger) HasAtLeast(ctx context.Context, userID, listID string, tier domain.PermissionTier) (bool, error) {
	return f.allowed, f.err
}

func (f *fakePermissionLedger) ListByListID(ctx context.Context, listID string) ([]*domain.Permission, error) {
	return nil, nil
}

func (f *fakePermissionLedger) UpsertMaxTier(ctx context.Context, userID, listID string, tier domain.PermissionTier) (*domain.Permission, error) {
	return nil, nil
}

func (f *fakePermissionLedger) Revoke(ctx context.Context, userID, listID string) error { return nil }

func (f *fakePermissionLedger) RevokeAll(ctx context.Context, listID string) (int64, error) {
	return 0, nil
}

func newTestSyncController(hasPermission bool) (*SyncController, *realtime.Gateway) {
	gateway := realtime.NewGateway(testLogger, time.Hour, time.Second)
	ctrl := NewSyncController(testLogger, gateway, &fakePermissionLedger{allowed: hasPermission})
	return ctrl, gateway
}

func TestSyncController_StreamSSE(t *testing.T) {
	ctrl, gateway := newTestSyncController(true)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/lists/list-1/events", nil).WithContext(
		middleware.SetUserID(ctx, "user-123"))
	req.SetPathValue("listID", "list-1")
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		ctrl.StreamSSE(rr, req)
		close(done)
	}()

	// Wait for the subscription, publish one event, then disconnect.
	require.Eventually(t, func() bool {
		return gateway.SubscriberCount("list-1") == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, gateway.Publish(&domain.SyncEvent{
		ListID:    "list-1",
		Type:      domain.EventItemMarked,
		ActorID:   "user-456",
		Timestamp: time.Now(),
	}))
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after client disconnect")
	}

	require.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

	frames := strings.Split(strings.TrimSuffix(rr.Body.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 2)

	var first, second domain.SyncEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &first))
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[1], "data: ")), &second))
	assert.Equal(t, domain.SyncEventConnection, first.Type)
	assert.Equal(t, domain.EventItemMarked, second.Type)
	assert.Equal(t, "user-456", second.ActorID)

	require.Equal(t, 0, gateway.SubscriberCount("list-1"))
}

func TestSyncController_StreamSSEForbidden(t *testing.T) {
	ctrl, gateway := newTestSyncController(false)

	req := httptest.NewRequest(http.MethodGet, "/lists/list-1/events", nil).WithContext(
		middleware.SetUserID(context.Background(), "user-123"))
	req.SetPathValue("listID", "list-1")
	rr := httptest.NewRecorder()

	ctrl.StreamSSE(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, 0, gateway.SubscriberCount("list-1"))
}

func TestSyncController_StreamSSEUnauthenticated(t *testing.T) {
	ctrl, _ := newTestSyncController(true)

	req := httptest.NewRequest(http.MethodGet, "/lists/list-1/events", nil)
	req.SetPathValue("listID", "list-1")
	rr := httptest.NewRecorder()

	ctrl.StreamSSE(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
