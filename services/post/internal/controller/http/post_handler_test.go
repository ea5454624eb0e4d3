package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"snappoint/pkg/logger"
	"snappoint/services/post/internal/entity"
	"snappoint/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostUseCase is a mock implementation of PostUseCase
type MockPostUseCase struct {
	mock.Mock
}

func (m *MockPostUseCase) FindPost(ctx context.Context, postID string, detail bool) (*entity.PostView, error) {
	args := m.Called(ctx, postID, detail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PostView), args.Error(1)
}

func (m *MockPostUseCase) FindNearbyPosts(ctx context.Context, area entity.BBox) ([]entity.PostView, error) {
	args := m.Called(ctx, area)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PostView), args.Error(1)
}

func (m *MockPostUseCase) WritePost(ctx context.Context, input entity.WritePostInput, userID string) (*entity.PostView, error) {
	args := m.Called(ctx, input, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PostView), args.Error(1)
}

func (m *MockPostUseCase) ModifyPost(ctx context.Context, postID string, input entity.WritePostInput, userID string) (*entity.PostView, error) {
	args := m.Called(ctx, postID, input, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PostView), args.Error(1)
}

func (m *MockPostUseCase) DeletePost(ctx context.Context, postID, userID string) (*entity.PostView, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PostView), args.Error(1)
}

func (m *MockPostUseCase) FindEntireBlocksWithPost(ctx context.Context, postIDs []string) ([][]entity.Block, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]entity.Block), args.Error(1)
}

func (m *MockPostUseCase) FindEntireFilesWithBlocks(ctx context.Context, blockIDs []string) ([][]entity.File, error) {
	args := m.Called(ctx, blockIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]entity.File), args.Error(1)
}

var _ usecase.PostUseCase = (*MockPostUseCase)(nil)

const (
	testPostID = "3f9a1c52-6d1e-4b8a-9c4e-2a7b5d1e0f33"
	testUserID = "user-123"
)

func setupTestRouter(uc usecase.PostUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewPostHandler(uc, logger.NewNop())

	api := router.Group("/api/v1")
	authed := api.Group("")
	authed.Use(func(c *gin.Context) {
		c.Set("user_id", testUserID)
		c.Next()
	})
	handler.RegisterRoutes(api, authed)
	return router
}

func samplePost() *entity.PostView {
	return &entity.PostView{
		Post:   entity.Post{ID: testPostID, UserID: testUserID, Title: "Hongdae"},
		Author: entity.Author{ID: testUserID, Nickname: "walker"},
	}
}

func TestFindPost_DefaultsToDetail(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("FindPost", mock.Anything, testPostID, true).Return(samplePost(), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/posts/"+testPostID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Hongdae", response["title"])
	mockUseCase.AssertExpectations(t)
}

func TestFindPost_Flat(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("FindPost", mock.Anything, testPostID, false).Return(samplePost(), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/posts/"+testPostID+"?detail=false", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestFindPost_BadRequest(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	for _, path := range []string{"/api/v1/posts/not-a-uuid", "/api/v1/posts/" + testPostID + "?detail=maybe"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	mockUseCase.AssertNotCalled(t, "FindPost", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindNearbyPosts(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	area := entity.BBox{LatitudeMin: 0, LatitudeMax: 0.01, LongitudeMin: 127.0, LongitudeMax: 127.01}
	mockUseCase.On("FindNearbyPosts", mock.Anything, area).Return([]entity.PostView{*samplePost()}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/posts?latitudeMin=0&latitudeMax=0.01&longitudeMin=127.0&longitudeMax=127.01", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
	mockUseCase.AssertExpectations(t)
}

func TestFindNearbyPosts_MissingBound(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/posts?latitudeMin=37.5&latitudeMax=37.51&longitudeMin=127.0", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFindNearbyPosts_AreaTooLarge(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("FindNearbyPosts", mock.Anything, mock.Anything).
		Return(nil, &entity.RangeError{Field: "area", Limit: 10, Actual: 22.2})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/posts?latitudeMin=37.0&latitudeMax=37.2&longitudeMin=127.0&longitudeMax=127.0", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestWritePost_Created(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	input := entity.WritePostInput{
		Title:  "Hongdae",
		Blocks: []entity.BlockInput{{Type: entity.BlockTypeText, Content: "street music"}},
	}
	mockUseCase.On("WritePost", mock.Anything, input, testUserID).Return(samplePost(), nil)

	body, _ := json.Marshal(input)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/posts/publish", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestWritePost_InvalidJSON(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/posts/publish", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModifyPost_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", entity.NewValidationError("title", "is required"), http.StatusBadRequest},
		{"not found", &entity.NotFoundError{Resource: "post", ID: testPostID}, http.StatusNotFound},
		{"forbidden", &entity.ForbiddenError{Resource: "post", ID: testPostID}, http.StatusForbidden},
		{"internal", entity.NewInternalError("modify post", errors.New("connection reset")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := new(MockPostUseCase)
			router := setupTestRouter(mockUseCase)

			mockUseCase.On("ModifyPost", mock.Anything, testPostID, mock.Anything, testUserID).Return(nil, tt.err)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("PUT", "/api/v1/posts/"+testPostID, bytes.NewBufferString(`{"title":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestDeletePost_Success(t *testing.T) {
	mockUseCase := new(MockPostUseCase)
	router := setupTestRouter(mockUseCase)

	deleted := samplePost()
	deleted.IsDeleted = true
	mockUseCase.On("DeletePost", mock.Anything, testPostID, testUserID).Return(deleted, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/v1/posts/"+testPostID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["is_deleted"])
	mockUseCase.AssertExpectations(t)
}
