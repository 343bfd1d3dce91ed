package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/api"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/application"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type BookTicketRequest struct {
	EventID string `json:"eventId" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Tickets int    `json:"tickets" example:"2"`
}

type BookTicketResponse struct {
	Success          bool   `json:"success" example:"true"`
	BookingID        string `json:"bookingId" example:"9b2f1c04-7f3a-4f89-b1d2-0a5c33f7e210"`
	AvailableTickets int    `json:"availableTickets" example:"48211"`
}

type BookingResponse struct {
	BookingID string    `json:"bookingId"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		BookingID: b.ID,
		EventID:   b.EventID,
		UserID:    b.UserID,
		Quantity:  b.Quantity,
		CreatedAt: b.CreatedAt,
	}
}

// Book godoc
// @Summary チケットを予約
// @Description 指定イベントのチケットを予約します。在庫不足時は409と現在の残枚数を返します
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body BookTicketRequest true "予約情報"
// @Success 200 {object} BookTicketResponse
// @Failure 400 {object} api.ErrorResponse "枚数が不正"
// @Failure 404 {object} api.ErrorResponse "イベントが存在しない"
// @Failure 409 {object} api.ErrorResponse "在庫不足（残枚数付き）"
// @Failure 500 {object} api.ErrorResponse "ストレージ障害"
// @Failure 503 {object} api.ErrorResponse "ロック競合"
// @Router /book-ticket [post]
func (h *BookingHandler) Book(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	var req BookTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Reserve(c.Request().Context(), application.ReserveInput{
		EventID:  req.EventID,
		UserID:   userID,
		Quantity: req.Tickets,
	})
	if err != nil {
		code, resp := api.ResponseFromError(err)
		return c.JSON(code, resp)
	}

	return c.JSON(http.StatusOK, BookTicketResponse{
		Success:          true,
		BookingID:        result.Booking.ID,
		AvailableTickets: result.NewAvailable,
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Description 指定IDの予約を取得します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	b, err := h.service.GetBooking(c.Request().Context(), id)
	if err != nil {
		code, resp := api.ResponseFromError(err)
		return c.JSON(code, resp)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetUserBookings godoc
// @Summary ユーザーの予約一覧を取得
// @Description ログインユーザーの予約一覧を取得します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) GetUserBookings(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	bookings, err := h.service.GetUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}
