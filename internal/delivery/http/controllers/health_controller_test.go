package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listsync/internal/delivery/http/helpers"
	"listsync/internal/domain"
)

// fakeOutboxService implements domain.OutboxService for handler tests.
type fakeOutboxService struct {
	health     *domain.OutboxHealth
	healthErr  error
	resetCount int64
	resetErr   error
}

func (f *fakeOutboxService) Append(ctx context.Context, event *domain.OutboxEvent) error { return nil }

func (f *fakeOutboxService) AppendBatch(ctx context.Context, events []*domain.OutboxEvent) error {
	return nil
}

func (f *fakeOutboxService) Pending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxService) MarkProcessed(ctx context.Context, eventID string) error { return nil }

func (f *fakeOutboxService) RecordAttemptFailure(ctx context.Context, eventID, errorDetail string) error {
	return nil
}

func (f *fakeOutboxService) ResetFailed(ctx context.Context) (int64, error) {
	return f.resetCount, f.resetErr
}

func (f *fakeOutboxService) Cleanup(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeOutboxService) HealthCheck(ctx context.Context) (*domain.OutboxHealth, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return f.health, nil
}

func TestHealthController_OutboxHealth(t *testing.T) {
	tests := []struct {
		name       string
		health     *domain.OutboxHealth
		healthErr  error
		wantStatus int
		wantState  domain.OutboxHealthStatus
	}{
		{
			name:       "healthy",
			health:     &domain.OutboxHealth{Status: domain.OutboxHealthy},
			wantStatus: http.StatusOK,
			wantState:  domain.OutboxHealthy,
		},
		{
			name: "stalled relay reports error",
			health: &domain.OutboxHealth{
				Status:           domain.OutboxError,
				PendingCount:     10000,
				OldestPendingAge: 30 * time.Minute,
			},
			wantStatus: http.StatusOK,
			wantState:  domain.OutboxError,
		},
		{
			name:       "stats query fails",
			healthErr:  errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewHealthController(testLogger, &fakeOutboxService{health: tt.health, healthErr: tt.healthErr})
			req := httptest.NewRequest(http.MethodGet, "/health/outbox", nil)
			rr := httptest.NewRecorder()

			ctrl.OutboxHealth(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var health domain.OutboxHealth
				require.NoError(t, json.Unmarshal(dataBytes, &health))
				assert.Equal(t, tt.wantState, health.Status)
			} else {
				require.NotNil(t, envelope.Error)
			}
		})
	}
}

func TestHealthController_ResetOutbox(t *testing.T) {
	t.Run("reports re-queued count", func(t *testing.T) {
		ctrl := NewHealthController(testLogger, &fakeOutboxService{resetCount: 7})
		req := httptest.NewRequest(http.MethodPost, "/health/outbox/reset", nil)
		rr := httptest.NewRecorder()

		ctrl.ResetOutbox(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var envelope struct {
			Data map[string]int64 `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		assert.Equal(t, int64(7), envelope.Data["reset"])
	})

	t.Run("reset failure", func(t *testing.T) {
		ctrl := NewHealthController(testLogger, &fakeOutboxService{resetErr: errors.New("connection refused")})
		req := httptest.NewRequest(http.MethodPost, "/health/outbox/reset", nil)
		rr := httptest.NewRecorder()

		ctrl.ResetOutbox(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestHealthController_Live(t *testing.T) {
	ctrl := NewHealthController(testLogger, &fakeOutboxService{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	ctrl.Live(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}
