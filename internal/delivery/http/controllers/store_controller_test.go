package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listsync/internal/delivery/http/helpers"
	"listsync/internal/delivery/http/middleware"
	"listsync/internal/domain"
)

// fakeStoreService implements domain.StoreService for handler tests.
type fakeStoreService struct {
	createErr          error
	createResult       *domain.Store
	lastCreateUserID   string
	lastCreateName     string
	getErr             error
	getResult          *domain.Store
	listErr            error
	listResult         []*domain.Store
	ensureErr          error
	ensureResult       *domain.Category
	categoriesErr      error
	categoriesResult   []*domain.Category
	categoriesTotal    int
	lastCategoriesPage domain.PaginationParams
}

func (f *fakeStoreService) CreateStore(ctx context.Context, userID, name string) (*domain.Store, error) {
	f.lastCreateUserID = userID
	f.lastCreateName = name
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeStoreService) GetStore(ctx context.Context, storeID, userID string) (*domain.Store, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResult, nil
}

func (f *fakeStoreService) ListMyStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeStoreService) EnsureCategory(ctx context.Context, name string) (*domain.Category, error) {
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	return f.ensureResult, nil
}

func (f *fakeStoreService) ListCategories(ctx context.Context, p domain.PaginationParams) ([]*domain.Category, int, error) {
	f.lastCategoriesPage = p
	if f.categoriesErr != nil {
		return nil, 0, f.categoriesErr
	}
	return f.categoriesResult, f.categoriesTotal, nil
}

func storeFixture() *domain.Store {
	return &domain.Store{ID: "store-1", Name: "Rewe", OwnerUserID: "user-123"}
}

func TestStoreController_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		noUserContext  bool
		wantStatus     int
		wantBodySubstr string
	}{
		{name: "success", body: `{"name":"Rewe"}`, wantStatus: http.StatusCreated},
		{name: "missing name", body: `{}`, wantStatus: http.StatusBadRequest, wantBodySubstr: "name is required"},
		{name: "no user context", body: `{"name":"Rewe"}`, noUserContext: true, wantStatus: http.StatusUnauthorized},
		{name: "service error", body: `{"name":"Rewe"}`, fakeErr: errors.New("db error"), wantStatus: http.StatusInternalServerError, wantBodySubstr: "db error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeStoreService{createErr: tt.fakeErr, createResult: storeFixture()}
			ctrl := NewStoreController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/stores", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()

			ctrl.Create(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "user-123", fake.lastCreateUserID)
				assert.Equal(t, "Rewe", fake.lastCreateName)
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestStoreController_Get(t *testing.T) {
	tests := []struct {
		name        string
		fakeErr     error
		wantStatus  int
		wantErrCode string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not found", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantErrCode: helpers.ErrCodeNotFound},
		{name: "other owner", fakeErr: domain.ErrPermissionDenied, wantStatus: http.StatusForbidden, wantErrCode: helpers.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeStoreService{getErr: tt.fakeErr, getResult: storeFixture()}
			ctrl := NewStoreController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/stores/store-1", nil)
			req.SetPathValue("storeID", "store-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.Get(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantErrCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
			}
		})
	}
}

func TestStoreController_ListMine(t *testing.T) {
	fake := &fakeStoreService{listResult: []*domain.Store{storeFixture()}}
	ctrl := NewStoreController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/stores", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	ctrl.ListMine(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope struct {
		Data []*domain.Store `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Rewe", envelope.Data[0].Name)
}

func TestStoreController_EnsureCategory(t *testing.T) {
	fake := &fakeStoreService{ensureResult: &domain.Category{ID: "cat-1", Name: "Dairy"}}
	ctrl := NewStoreController(testLogger, fake)
	req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString(`{"name":"Dairy"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	ctrl.EnsureCategory(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope struct {
		Data domain.Category `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	assert.Equal(t, "cat-1", envelope.Data.ID)
}

func TestStoreController_ListCategories_Pagination(t *testing.T) {
	fake := &fakeStoreService{
		categoriesResult: []*domain.Category{{ID: "cat-3", Name: "Dairy"}},
		categoriesTotal:  41,
	}
	ctrl := NewStoreController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/categories?page=3&page_size=10", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	ctrl.ListCategories(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PaginationParams{Page: 3, PageSize: 10}, fake.lastCategoriesPage)
	var envelope struct {
		Data CategoryPage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Len(t, envelope.Data.Categories, 1)
	assert.Equal(t, 3, envelope.Data.Pagination.Page)
	assert.Equal(t, 41, envelope.Data.Pagination.Total)
	assert.Equal(t, 5, envelope.Data.Pagination.TotalPages)
}
