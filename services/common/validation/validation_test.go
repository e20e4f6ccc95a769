package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yashrajoria/shopswift/services/common/errors"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Passw0rd!":  true,
		"Ab1@xy":     true,
		"password":   false,
		"Password1":  false,
		"PASSWORD1!": false,
		"Ab1@":       false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, IsStrongPassword(pw), pw)
	}
}

type signup struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,strongpassword"`
	Quantity int    `json:"quantity" binding:"gte=1"`
}

func TestBindError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterCustomValidators()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a!","password":"weak","quantity":0}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req signup
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)

	appErr := BindError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Contains(t, appErr.Fields, "username")
	assert.Contains(t, appErr.Fields, "password")
	assert.Contains(t, appErr.Fields, "quantity")
}

func TestBindErrorMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req signup
	appErr := BindError(c.ShouldBindJSON(&req))
	assert.Equal(t, "Invalid request body", appErr.Message)
	assert.Empty(t, appErr.Fields)
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{"", 1, DefaultPageSize, false},
		{"page=3&limit=2", 3, 2, false},
		{"limit=1000", 1, MaxPageSize, false},
		{"page=0", 0, 0, true},
		{"limit=abc", 0, 0, true},
		{"page=100000&limit=100", MaxPage, MaxPageSize, false},
		{"page=100001", 0, 0, true},
		{"page=9223372036854775807&limit=100", 0, 0, true},
		{"page=99999999999999999999", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			page, limit, err := ParsePagination(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, apperrors.From(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(5, 2))
	assert.Equal(t, 1, TotalPages(2, 2))
	assert.Equal(t, 0, TotalPages(0, 10))
}
