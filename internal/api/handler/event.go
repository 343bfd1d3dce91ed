package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/api"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/application"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	EventName    string  `json:"eventName" validate:"required" example:"Neon Nights Tour 2026"`
	ArtistName   string  `json:"artistName" validate:"required" example:"The Midnight"`
	Venue        string  `json:"venue" example:"東京ドーム"`
	Date         string  `json:"date" validate:"required" example:"2026-12-31T18:00:00+09:00"`
	TicketPrice  float64 `json:"ticketPrice" validate:"gte=0" example:"7500"`
	TotalTickets int     `json:"totalTickets" validate:"required,gt=0" example:"50000"`
	ImageURL     string  `json:"imageUrl" example:"https://example.com/poster.jpg"`
}

type EventResponse struct {
	EventID          string  `json:"eventId" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventName        string  `json:"eventName" example:"Neon Nights Tour 2026"`
	ArtistName       string  `json:"artistName" example:"The Midnight"`
	Date             string  `json:"date" example:"2026-12-31T18:00:00+09:00"`
	Venue            string  `json:"venue" example:"東京ドーム"`
	TicketPrice      float64 `json:"ticketPrice" example:"7500"`
	AvailableTickets int     `json:"availableTickets" example:"48213"`
	TotalTickets     int     `json:"totalTickets" example:"50000"`
	ImageURL         string  `json:"imageUrl,omitempty" example:"https://example.com/poster.jpg"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		EventID:          e.ID,
		EventName:        e.Name,
		ArtistName:       e.ArtistName,
		Date:             e.Date.Format(time.RFC3339),
		Venue:            e.Venue,
		TicketPrice:      e.TicketPrice,
		AvailableTickets: e.AvailableTickets,
		TotalTickets:     e.TotalTickets,
		ImageURL:         e.ImageURL,
	}
}

// Create godoc
// @Summary イベントを作成
// @Description 新しいイベントを作成します（管理・シード用）
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開催日時の形式が不正です")
	}

	input := application.CreateEventInput{
		Name:         req.EventName,
		ArtistName:   req.ArtistName,
		Venue:        req.Venue,
		Date:         date,
		TicketPrice:  req.TicketPrice,
		TotalTickets: req.TotalTickets,
		ImageURL:     req.ImageURL,
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), input)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントを取得します
// @Tags events
// @Produce json
// @Param eventId path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{eventId} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id := c.Param("eventId")
	e, err := h.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "イベントが見つかりません")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary イベント一覧を取得
// @Description イベントの一覧を登録順で取得します
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.eventService.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetAvailability godoc
// @Summary 残チケット数を取得
// @Description 指定イベントの残チケット数を取得します（キャッシュ利用）
// @Tags events
// @Produce json
// @Param eventId path string true "イベントID"
// @Success 200 {object} map[string]int
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{eventId}/availability [get]
func (h *EventHandler) GetAvailability(c echo.Context) error {
	id := c.Param("eventId")
	count, err := h.eventService.GetAvailableTickets(c.Request().Context(), id)
	if err != nil {
		code, resp := api.ResponseFromError(err)
		return c.JSON(code, resp)
	}
	return c.JSON(http.StatusOK, map[string]int{"availableTickets": count})
}
