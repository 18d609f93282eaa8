package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleError_DomainErrorStatusMapping(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found",
			err:            shared.NewDomainError("NOT_FOUND", "Receipt not found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "concurrency conflict",
			err:            shared.NewDomainError("CONCURRENCY_CONFLICT", "Modified by another user"),
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONCURRENCY_CONFLICT",
		},
		{
			name:           "exceeds unallocated",
			err:            shared.NewDomainError("EXCEEDS_UNALLOCATED", "Allocation exceeds unallocated balance"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "EXCEEDS_UNALLOCATED",
		},
		{
			name:           "invalid amount",
			err:            shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_AMOUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext()
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestHandleError_UnknownErrorBecomesInternal(t *testing.T) {
	h := &BaseHandler{}
	c, w := testContext()

	h.HandleError(c, errors.New("driver: bad connection"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "driver")
}

func TestHandleError_NilErrorNoResponse(t *testing.T) {
	h := &BaseHandler{}
	c, w := testContext()

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

func TestHandleError_IncludesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := testContext()
	c.Set("request_id", "req-456")

	h.HandleError(c, shared.NewDomainError("NOT_FOUND", "Booking not found"))

	resp := decodeResponse(t, w)
	assert.Equal(t, "req-456", resp.Error.RequestID)
}

type failingPinger struct{}

func (failingPinger) Ping() error { return errors.New("connection refused") }

type okPinger struct{}

func (okPinger) Ping() error { return nil }

func TestSystemHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("healthy", func(t *testing.T) {
		r := gin.New()
		NewSystemHandler(okPinger{}).RegisterRoutes(r.Group("/api/v1"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database down", func(t *testing.T) {
		r := gin.New()
		NewSystemHandler(failingPinger{}).RegisterRoutes(r.Group("/api/v1"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
