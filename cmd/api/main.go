package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/api"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/api/handler"
	custommw "github.com/sanosuguru/go-concert-ticket-platform/internal/api/middleware"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/application"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/config"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/redis"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/spotify"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/pkg/logger"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/pkg/metrics"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer logger.Sync()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		logger.Fatal("Redis接続エラー", zap.Error(err))
	}
	lockManager := redisinfra.NewLockManager(redisClient)
	ticketCache := redisinfra.NewTicketCache(redisClient)

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ
	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	userRepo := postgres.NewUserRepository(db)
	txManager := postgres.NewTxManager(db)

	// 外部プロバイダー
	spotifyClient := spotify.NewClient(&cfg.Spotify)

	// サービス
	eventService := application.NewEventService(eventRepo, ticketCache)
	bookingService := application.NewBookingService(txManager, bookingRepo, eventRepo, lockManager, ticketCache, m, cfg.Database.CommitTimeout)
	fanScoreService := application.NewFanScoreService(userRepo, spotifyClient, m)

	// ファンスコア定期リフレッシャー
	refreshCtx, cancelRefresh := context.WithCancel(context.Background())
	refresher := worker.NewFanScoreRefresher(fanScoreService, cfg.Worker.Interval, cfg.Worker.RefreshAfter, cfg.Worker.BatchSize)
	go refresher.Start(refreshCtx)

	// Echo インスタンス作成
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	// ミドルウェア設定
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ルーティング
	handler.RegisterRoutes(e, &handler.Handlers{
		Health:  handler.NewHealthHandler(),
		Event:   handler.NewEventHandler(eventService),
		Booking: handler.NewBookingHandler(bookingService),
		Spotify: handler.NewSpotifyHandler(fanScoreService),
	})

	// サーバー起動
	go func() {
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	// 実行中の再計算バッチを中断し、ワーカーループの終了を待つ
	cancelRefresh()
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
