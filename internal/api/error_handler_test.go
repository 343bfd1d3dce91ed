package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/booking"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/redis"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/spotify"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"枚数が不正", booking.ErrInvalidQuantity, http.StatusBadRequest},
		{"ユーザーID必須", booking.ErrUserIDRequired, http.StatusBadRequest},
		{"イベントが存在しない", event.ErrEventNotFound, http.StatusNotFound},
		{"予約が存在しない", booking.ErrBookingNotFound, http.StatusNotFound},
		{"ユーザーが存在しない", user.ErrUserNotFound, http.StatusNotFound},
		{"在庫不足", &booking.InsufficientInventoryError{EventID: "e1", Requested: 3, Available: 1}, http.StatusConflict},
		{"プロバイダー認証失敗", spotify.ErrUnauthorized, http.StatusUnauthorized},
		{"ストレージ利用不可", booking.ErrStorageUnavailable, http.StatusInternalServerError},
		{"上流プロバイダー障害", spotify.ErrUpstream, http.StatusServiceUnavailable},
		{"ロック競合", redisinfra.ErrLockNotAcquired, http.StatusServiceUnavailable},
		{"未知のエラー", errors.New("something broke"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromError(tt.err))
		})
	}
}

func TestStatusFromError_WrappedError(t *testing.T) {
	// ラップされていても分類が保たれる
	err := fmt.Errorf("コミットに失敗: %w", booking.ErrStorageUnavailable)
	assert.Equal(t, http.StatusInternalServerError, StatusFromError(err))
}

func TestResponseFromError_InsufficientInventoryCarriesAvailable(t *testing.T) {
	err := &booking.InsufficientInventoryError{EventID: "e1", Requested: 5, Available: 2}

	code, resp := ResponseFromError(err)

	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, resp.AvailableTickets)
	assert.Equal(t, 2, *resp.AvailableTickets)
}

func TestResponseFromError_OtherErrorsOmitAvailable(t *testing.T) {
	code, resp := ResponseFromError(event.ErrEventNotFound)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Nil(t, resp.AvailableTickets)
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	CustomHTTPErrorHandler(echo.NewHTTPError(http.StatusNotFound, "見つかりません"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "見つかりません", resp.Message)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCustomHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// すでにレスポンスが書かれていれば何もしない
	require.NoError(t, c.String(http.StatusOK, "ok"))
	CustomHTTPErrorHandler(errors.New("boom"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
