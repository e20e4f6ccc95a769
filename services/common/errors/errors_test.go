package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapDoesNotMutatePreset(t *testing.T) {
	cause := stderrors.New("db exploded")
	wrapped := ErrInternalServer.Wrap(cause)

	assert.Nil(t, ErrInternalServer.Err)
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, ErrInternalServer)
}

func TestFrom(t *testing.T) {
	nf := NotFound("Order not found")
	assert.Same(t, nf, From(fmt.Errorf("lookup: %w", nf)))

	plain := From(stderrors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"app error", Forbidden("Access denied"), http.StatusForbidden, "Access denied"},
		{"upstream", Upstream("Product service unavailable", stderrors.New("dial tcp")), http.StatusBadGateway, "Product service unavailable"},
		{"unknown hides cause", stderrors.New("secret stack trace"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Respond(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.NotContains(t, w.Body.String(), "secret stack trace")
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestRespondValidationFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	Respond(c, Validation("Validation failed", map[string]string{"quantity": "must be at least 1"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Validation failed","errors":{"quantity":"must be at least 1"}}`, w.Body.String())
}
