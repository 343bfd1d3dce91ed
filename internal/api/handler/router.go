package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	custommw "github.com/sanosuguru/go-concert-ticket-platform/internal/api/middleware"
)

// Handlers はルーティングに必要なハンドラー一式
type Handlers struct {
	Health  *HealthHandler
	Event   *EventHandler
	Booking *BookingHandler
	Spotify *SpotifyHandler
}

// RegisterRoutes はルーティングを設定する
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	e.GET("/api/v1/health", h.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	g := e.Group("/api")

	// イベント（クエリファサード + 管理作成）
	g.GET("/events", h.Event.List)
	g.GET("/events/:eventId", h.Event.GetByID)
	g.GET("/events/:eventId/availability", h.Event.GetAvailability)
	g.POST("/events", h.Event.Create, custommw.AdminBasicAuth())

	// 予約
	g.POST("/book-ticket", h.Booking.Book)
	g.GET("/bookings", h.Booking.GetUserBookings)
	g.GET("/bookings/:id", h.Booking.GetByID)

	// Spotify ランキング / プロファイル
	g.GET("/spotify/top-artists", h.Spotify.TopArtists)
	g.GET("/spotify/top-tracks", h.Spotify.TopTracks)
	g.GET("/me", h.Spotify.Me)
}
