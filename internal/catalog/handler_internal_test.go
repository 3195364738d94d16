package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func Test_writeError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "plain", err: ErrNotFound("book not found"), wantCode: http.StatusNotFound, wantBody: `{"error":{"code":"NOT_FOUND","message":"book not found"}}`},
		{name: "wrapped", err: fmt.Errorf("get book: %w", ErrConflict("duplicate")), wantCode: http.StatusConflict, wantBody: `{"error":{"code":"CONFLICT","message":"duplicate"}}`},
		{name: "unknown", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError, wantBody: `{"error":{"code":"INTERNAL","message":"operation failed, try again"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/books/x", nil)

			writeError(c, tc.err)
			assert.Equal(t, tc.wantCode, w.Code)
			assert.JSONEq(t, tc.wantBody, w.Body.String())
		})
	}
}
