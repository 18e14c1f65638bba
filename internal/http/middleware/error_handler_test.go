package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

func serveWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		c.Error(err)
	})

	req, _ := http.NewRequest("GET", "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_MapsAppErrorStatus(t *testing.T) {
	w := serveWithError(t, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "сумма")
}

func TestErrorHandler_MapsRepositorySentinels(t *testing.T) {
	w := serveWithError(t, repository.ErrListingNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorHandler_MasksUnknownErrors(t *testing.T) {
	// Произвольная ошибка не должна утекать клиенту, даже если текст
	// похож на сообщение валидации
	w := serveWithError(t, errors.New("пароль должен содержать цифру: sql: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "sql")
}
