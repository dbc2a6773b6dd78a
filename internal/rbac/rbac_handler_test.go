package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	Service
}

func (m *mockService) Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error) {
	return req.Resource == "leave" && req.Action == "read", nil
}

func TestHandler_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewHandler(&mockService{})
	router := gin.New()
	router.POST("/rbac/enforce", handler.Enforce)

	send := func(body any) *httptest.ResponseRecorder {
		jsonBody, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send(domain.EnforceRequest{UserID: "user-1", Resource: "leave", Action: "read"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data domain.EnforceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Allowed)

	w = send(map[string]string{"resource": "leave"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
