package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postfeed/app/apperr"
	"postfeed/app/middleware"
	"postfeed/app/models"
)

type routeStub struct {
	deleted []int
}

func (s *routeStub) ListMergedPosts(ctx context.Context) ([]models.MergedPost, error) {
	return []models.MergedPost{{ID: 1, AuthorID: 1, Title: "t", Body: "b", Comments: []models.Comment{}}}, nil
}

func (s *routeStub) DeletePost(ctx context.Context, id int) error {
	if id == 404 {
		return apperr.NewNotFound(apperr.ResourcePost, id)
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func setupTestRouter(t *testing.T) (http.Handler, *routeStub) {
	t.Helper()
	stub := &routeStub{}
	router, err := SetupRoutes(stub, nil)
	require.NoError(t, err)
	return router, stub
}

func TestRoutes(t *testing.T) {
	router, stub := setupTestRouter(t)

	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		contentType string
	}{
		{"list posts", "GET", "/api/posts", http.StatusOK, "application/json"},
		{"list posts at root", "GET", "/posts", http.StatusOK, "application/json"},
		{"delete post", "DELETE", "/api/posts/7", http.StatusNoContent, "application/json"},
		{"delete post at root", "DELETE", "/posts/8", http.StatusNoContent, ""},
		{"delete absent post", "DELETE", "/api/posts/404", http.StatusNotFound, "application/json"},
		{"delete non-numeric id", "DELETE", "/api/posts/abc", http.StatusBadRequest, "application/json"},
		{"delete zero id", "DELETE", "/posts/0", http.StatusBadRequest, "application/json"},
		{"health", "GET", "/healthz", http.StatusOK, "application/json"},
		{"openapi json", "GET", "/api/openapi.json", http.StatusOK, "application/json"},
		{"openapi yaml", "GET", "/api/openapi.yaml", http.StatusOK, "application/yaml"},
		{"unknown route", "GET", "/api/nope", http.StatusNotFound, "application/json"},
		{"wrong method", "PUT", "/api/posts/1", http.StatusMethodNotAllowed, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			}
		})
	}

	assert.Equal(t, []int{7, 8}, stub.deleted)
}

func TestRoutesRequestID(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-1", w.Header().Get(middleware.RequestIDHeader))
}

func TestRoutesErrorBody(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/posts/404", nil))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.EqualValues(t, 404, body["status"])
	assert.Equal(t, "POST_NOT_FOUND", body["error"])
	assert.Equal(t, "post not found with id: 404", body["message"])
	assert.NotEmpty(t, body["timestamp"])
}
