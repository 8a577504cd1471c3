package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listsync/internal/delivery/http/helpers"
	"listsync/internal/delivery/http/middleware"
	"listsync/internal/domain"
)

// fakeItemService implements domain.ItemService for handler tests.
type fakeItemService struct {
	addErr         error
	addResult      *domain.Item
	lastAddListID  string
	lastAddItem    *domain.Item
	listErr        error
	listResult     []*domain.Item
	updateErr      error
	updateResult   *domain.Item
	lastUpdateItem *domain.Item
	markErr        error
	markResult     *domain.Item
	lastMarked     bool
	removeErr      error
	lastRemoveID   string
}

func (f *fakeItemService) AddItem(ctx context.Context, listID, userID string, item *domain.Item) (*domain.Item, error) {
	f.lastAddListID = listID
	f.lastAddItem = item
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.addResult, nil
}

func (f *fakeItemService) ListItems(ctx context.Context, listID, userID string) ([]*domain.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeItemService) UpdateItem(ctx context.Context, itemID, userID string, item *domain.Item) (*domain.Item, error) {
	f.lastUpdateItem = item
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResult, nil
}

func (f *fakeItemService) MarkItem(ctx context.Context, itemID, userID string, marked bool) (*domain.Item, error) {
	f.lastMarked = marked
	if f.markErr != nil {
		return nil, f.markErr
	}
	return f.markResult, nil
}

func (f *fakeItemService) RemoveItem(ctx context.Context, itemID, userID string) error {
	f.lastRemoveID = itemID
	return f.removeErr
}

func itemFixture() *domain.Item {
	now := time.Now()
	return &domain.Item{ID: "item-1", ListID: "list-1", Name: "Milk", Quantity: 2, CreatedAt: now, UpdatedAt: now}
}

func TestItemController_Add(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{name: "success", body: `{"name":"Milk","quantity":2}`, wantStatus: http.StatusCreated},
		{name: "missing name", body: `{"quantity":1}`, wantStatus: http.StatusBadRequest, wantBodySubstr: "name is required"},
		{name: "negative quantity", body: `{"name":"Milk","quantity":-1}`, wantStatus: http.StatusBadRequest, wantBodySubstr: "quantity must not be negative"},
		{name: "read-only member", body: `{"name":"Milk"}`, fakeErr: domain.ErrPermissionDenied, wantStatus: http.StatusForbidden},
		{name: "unknown list", body: `{"name":"Milk"}`, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeItemService{addErr: tt.fakeErr, addResult: itemFixture()}
			ctrl := NewItemController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/lists/list-1/items", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("listID", "list-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.Add(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "list-1", fake.lastAddListID)
				require.NotNil(t, fake.lastAddItem)
				assert.Equal(t, "Milk", fake.lastAddItem.Name)
			} else if tt.wantBodySubstr != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestItemController_List(t *testing.T) {
	fake := &fakeItemService{listResult: []*domain.Item{itemFixture()}}
	ctrl := NewItemController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/lists/list-1/items", nil)
	req.SetPathValue("listID", "list-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
}

func TestItemController_Update(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		checkPatch func(t *testing.T, patch *domain.Item)
	}{
		{
			name:       "partial update only name",
			body:       `{"name":"Oat milk"}`,
			wantStatus: http.StatusOK,
			checkPatch: func(t *testing.T, patch *domain.Item) {
				assert.Equal(t, "Oat milk", patch.Name)
				assert.Zero(t, patch.Quantity)
			},
		},
		{
			name:       "update quantity and store",
			body:       `{"quantity":3,"store_id":"store-1"}`,
			wantStatus: http.StatusOK,
			checkPatch: func(t *testing.T, patch *domain.Item) {
				assert.Equal(t, 3, patch.Quantity)
				assert.Equal(t, "store-1", patch.StoreID)
			},
		},
		{name: "empty name rejected", body: `{"name":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "read-only member", body: `{"name":"Oat milk"}`, fakeErr: domain.ErrPermissionDenied, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeItemService{updateErr: tt.fakeErr, updateResult: itemFixture()}
			ctrl := NewItemController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPatch, "/items/item-1", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("itemID", "item-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.Update(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.checkPatch != nil && tt.wantStatus == http.StatusOK {
				require.NotNil(t, fake.lastUpdateItem)
				tt.checkPatch(t, fake.lastUpdateItem)
			}
		})
	}
}

func TestItemController_Mark(t *testing.T) {
	for _, marked := range []bool{true, false} {
		fake := &fakeItemService{markResult: itemFixture()}
		ctrl := NewItemController(testLogger, fake)
		body, err := json.Marshal(MarkItemRequest{Marked: marked})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/items/item-1/mark", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.SetPathValue("itemID", "item-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.Mark(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, marked, fake.lastMarked)
	}
}

func TestItemController_Remove(t *testing.T) {
	fake := &fakeItemService{}
	ctrl := NewItemController(testLogger, fake)
	req := httptest.NewRequest(http.MethodDelete, "/items/item-1", nil)
	req.SetPathValue("itemID", "item-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	ctrl.Remove(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "item-1", fake.lastRemoveID)
}
