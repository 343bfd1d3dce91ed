package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/config"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/redis"
)

// TestBenchmark_ConcurrentBookings は実際のDB・Redisを使った並行予約の
// スループットと整合性を計測する。インフラ未起動時はスキップ
func TestBenchmark_ConcurrentBookings(t *testing.T) {
	if testing.Short() {
		t.Skip("ベンチマークテストはshortモードではスキップ")
	}

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

	if err := postgres.RunMigrations(db.DB, "../../migrations"); err != nil {
		t.Skipf("マイグレーションエラー: %v", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	txManager := postgres.NewTxManager(db)
	lockManager := redisinfra.NewLockManager(redisClient)

	eventService := NewEventService(eventRepo, nil)
	bookingService := NewBookingService(txManager, bookingRepo, eventRepo, lockManager, nil, nil, cfg.Database.CommitTimeout)

	cleanup := func() {
		db.Exec("DELETE FROM bookings")
		db.Exec("DELETE FROM events")
		redisClient.Close()
		db.Close()
	}
	defer cleanup()

	ctx := context.Background()

	const (
		totalTickets = 1000
		workers      = 100
		perRequest   = 5
	)

	ev, err := eventService.CreateEvent(ctx, CreateEventInput{
		Name:         "ベンチマークイベント",
		ArtistName:   "Bench Artist",
		Date:         time.Now().Add(30 * 24 * time.Hour),
		TicketPrice:  5000,
		TotalTickets: totalTickets,
	})
	require.NoError(t, err)

	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int64
		insufficient atomic.Int64
		lockFailed   atomic.Int64
	)

	start := time.Now()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := bookingService.Reserve(ctx, ReserveInput{
				EventID:  ev.ID,
				UserID:   fmt.Sprintf("bench-user-%d", idx),
				Quantity: perRequest,
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case isInsufficient(err):
				insufficient.Add(1)
			default:
				lockFailed.Add(1)
			}
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	t.Logf("並行予約 %d 件: 成功=%d 在庫不足=%d ロック失敗=%d 所要=%v",
		workers, succeeded.Load(), insufficient.Load(), lockFailed.Load(), elapsed)

	// 整合性: 最終残枚数 = 初期在庫 - 成功枚数、かつ負にならない
	final, err := eventService.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.Equal(t, totalTickets-int(succeeded.Load())*perRequest, final.AvailableTickets)
	require.GreaterOrEqual(t, final.AvailableTickets, 0)

	// 成功した予約レコードの枚数合計も一致する
	bookings, err := bookingRepo.GetByEventID(ctx, ev.ID)
	require.NoError(t, err)
	total := 0
	for _, b := range bookings {
		total += b.Quantity
	}
	require.Equal(t, int(succeeded.Load())*perRequest, total)
}
