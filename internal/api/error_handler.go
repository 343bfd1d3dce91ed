package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/booking"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/redis"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/spotify"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	// AvailableTickets は在庫不足（409）のときのみ設定され、
	// クライアントが枚数を調整して再試行できるようにする
	AvailableTickets *int `json:"availableTickets,omitempty"`
}

// StatusFromError はドメインエラーをHTTPステータスに対応付ける
//
// エラー分類:
//   - 入力不正（枚数が不正など）→ 400: 呼び出し側の誤り、再試行しない
//   - 未知のイベント・ユーザー → 404
//   - 在庫不足 → 409: 業務ルールによる拒否。残枚数を添えて返す
//   - ストレージ障害 → 500: コミット失敗・タイムアウト
//   - 上流プロバイダー障害・ロック競合 → 503: 一時的。呼び出し側の判断で再試行可
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, booking.ErrInvalidQuantity),
		errors.Is(err, booking.ErrUserIDRequired),
		errors.Is(err, booking.ErrEventIDRequired):
		return http.StatusBadRequest
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case isInsufficientInventory(err):
		return http.StatusConflict
	case errors.Is(err, spotify.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrStorageUnavailable):
		return http.StatusInternalServerError
	case errors.Is(err, spotify.ErrUpstream),
		errors.Is(err, redisinfra.ErrLockNotAcquired):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ResponseFromError はドメインエラーをレスポンスボディに変換する
func ResponseFromError(err error) (int, ErrorResponse) {
	code := StatusFromError(err)
	resp := ErrorResponse{Message: err.Error(), Code: code}
	if inv, ok := booking.AsInsufficientInventory(err); ok {
		available := inv.Available
		resp.AvailableTickets = &available
	}
	return code, resp
}

func isInsufficientInventory(err error) bool {
	_, ok := booking.AsInsufficientInventory(err)
	return ok
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	// JSONレスポンスを返す
	if err := c.JSON(code, ErrorResponse{
		Message: message,
		Code:    code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
