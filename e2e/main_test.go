package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/api"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/api/handler"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/api/middleware"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/application"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/config"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/redis"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/spotify"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo    *echo.Echo
	Cleanup func()
}

// NewTestServer はテスト用サーバーを作成
// DB・Redisが起動していない環境ではスキップする
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	cfg := config.Load()

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}

	redisClient := redisinfra.NewClient(&cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
		db.Close()
		t.Skipf("Redis接続エラー: %v", err)
	}

	if err := postgres.RunMigrations(db.DB, "../migrations"); err != nil {
		redisClient.Close()
		db.Close()
		t.Skipf("マイグレーションエラー: %v", err)
	}

	lockManager := redisinfra.NewLockManager(redisClient)
	ticketCache := redisinfra.NewTicketCache(redisClient)

	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db)

	eventService := application.NewEventService(eventRepo, ticketCache)
	bookingService := application.NewBookingService(txManager, bookingRepo, eventRepo, lockManager, ticketCache, nil, cfg.Database.CommitTimeout)
	fanScoreService := application.NewFanScoreService(userRepo, spotify.NewClient(&cfg.Spotify), nil)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	handler.RegisterRoutes(e, &handler.Handlers{
		Health:  handler.NewHealthHandler(),
		Event:   handler.NewEventHandler(eventService),
		Booking: handler.NewBookingHandler(bookingService),
		Spotify: handler.NewSpotifyHandler(fanScoreService),
	})

	cleanup := func() {
		db.Exec("DELETE FROM bookings")
		db.Exec("DELETE FROM events")
		db.Exec("DELETE FROM users")
		redisClient.FlushDB(context.Background())
		redisClient.Close()
		db.Close()
	}

	return &TestServer{Echo: e, Cleanup: cleanup}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}
