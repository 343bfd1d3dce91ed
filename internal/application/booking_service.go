package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/booking"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/redis"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/pkg/metrics"
)

const (
	lockTTL        = 10 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
	cacheTTL       = 30 * time.Second

	defaultCommitTimeout = 5 * time.Second
)

// BookingService はチケット予約のユースケースを提供する
type BookingService struct {
	txManager     transaction.Manager
	bookingRepo   booking.Repository
	eventRepo     event.Repository
	lockManager   *redisinfra.LockManager
	ticketCache   *redisinfra.TicketCache
	metrics       *metrics.Metrics
	commitTimeout time.Duration
}

func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	er event.Repository,
	lm *redisinfra.LockManager,
	tc *redisinfra.TicketCache,
	m *metrics.Metrics,
	commitTimeout time.Duration,
) *BookingService {
	if commitTimeout <= 0 {
		commitTimeout = defaultCommitTimeout
	}
	return &BookingService{
		txManager:     tm,
		bookingRepo:   br,
		eventRepo:     er,
		lockManager:   lm,
		ticketCache:   tc,
		metrics:       m,
		commitTimeout: commitTimeout,
	}
}

// ReserveInput は予約リクエストの入力
type ReserveInput struct {
	EventID  string
	UserID   string
	Quantity int
}

// ReserveResult は予約成功時の結果
type ReserveResult struct {
	Booking      *booking.Booking
	NewAvailable int
}

// Reserve はチケットを予約する
//
// 残枚数の読み取り・在庫判定・減算・予約レコード作成を、同一イベントに対する
// 他の予約と直列化された単一トランザクションとして実行する。直列化は
// 二段構えで保証する:
//  1. イベント単位のRedis分散ロック（アプリ側の直列化・DB負荷の抑制）
//  2. FOR UPDATE 行ロック + 条件付きUPDATE（ロックが取れなかった場合や
//     Redis障害時でも負の在庫を許さない最終防壁）
//
// 在庫不足時は現在の残枚数を含む InsufficientInventoryError を返し、
// 呼び出し側が枚数を調整して再試行できるようにする。自動リトライは行わない。
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*ReserveResult, error) {
	if input.Quantity <= 0 {
		s.countBooking("invalid")
		return nil, booking.ErrInvalidQuantity
	}
	if input.UserID == "" {
		s.countBooking("invalid")
		return nil, booking.ErrUserIDRequired
	}

	// イベント単位の分散ロックを取得（イベントが異なれば完全に並行）
	if s.lockManager != nil {
		lockStart := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, "event:"+input.EventID, lockTTL, lockMaxRetries, lockRetryDelay)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.observeLock("acquire", "failed", lockStart)
				s.countBooking("lock_failed")
				return nil, fmt.Errorf("このイベントは他のリクエストを処理中です: %w", err)
			}
			s.observeLock("acquire", "failed", lockStart)
			s.countBooking("error")
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		s.observeLock("acquire", "success", lockStart)
		defer func() {
			releaseStart := time.Now()
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.observeLock("release", "failed", releaseStart)
				return
			}
			s.observeLock("release", "success", releaseStart)
		}()
	}

	// コミットが規定時間内に完了しない場合はロールバックして
	// ストレージ利用不可として返す（呼び出し側を無期限に待たせない）
	commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	result, err := s.reserveTx(commitCtx, input)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrEventNotFound):
			s.countBooking("not_found")
		case isInsufficient(err):
			s.countBooking("insufficient")
		case errors.Is(err, booking.ErrStorageUnavailable):
			s.countBooking("error")
		default:
			s.countBooking("error")
		}
		return nil, err
	}

	s.countBooking("success")
	if s.metrics != nil {
		s.metrics.TicketsBookedTotal.Add(float64(input.Quantity))
		if result.NewAvailable == 0 {
			s.metrics.SoldOutEvents.Inc()
		}
	}

	// キャッシュは削除ではなく確定値で更新する（ベストエフォート）
	if s.ticketCache != nil {
		_ = s.ticketCache.SetAvailableCount(context.WithoutCancel(ctx), input.EventID, result.NewAvailable, cacheTTL)
	}

	return result, nil
}

// reserveTx は予約のトランザクション本体
func (s *BookingService) reserveTx(ctx context.Context, input ReserveInput) (*ReserveResult, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: トランザクション開始に失敗: %v", booking.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	// 行ロック付きで現在の残枚数を読む
	ev, err := s.eventRepo.GetByIDForUpdate(ctx, tx, input.EventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: イベント取得に失敗: %v", booking.ErrStorageUnavailable, err)
	}

	// 在庫判定。拒否時は現在の残枚数を添えて返す
	if !ev.CanAdmit(input.Quantity) {
		return nil, &booking.InsufficientInventoryError{
			EventID:   input.EventID,
			Requested: input.Quantity,
			Available: ev.AvailableTickets,
		}
	}

	// 条件付き減算。行ロック下では在庫不足になり得ないが、
	// 万一条件を満たさなければここでも拒否される
	newAvailable, err := s.eventRepo.DecrementAvailable(ctx, tx, input.EventID, input.Quantity)
	if err != nil {
		if errors.Is(err, event.ErrInsufficientTickets) {
			return nil, &booking.InsufficientInventoryError{
				EventID:   input.EventID,
				Requested: input.Quantity,
				Available: ev.AvailableTickets,
			}
		}
		return nil, fmt.Errorf("%w: 残チケット数の更新に失敗: %v", booking.ErrStorageUnavailable, err)
	}

	b := booking.NewBooking(input.EventID, input.UserID, input.Quantity)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("%w: 予約作成に失敗: %v", booking.ErrStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: コミットに失敗: %v", booking.ErrStorageUnavailable, err)
	}

	return &ReserveResult{Booking: b, NewAvailable: newAvailable}, nil
}

// GetBooking はIDから予約を取得する
func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// GetUserBookings はユーザーの予約一覧を取得する
func (s *BookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

func (s *BookingService) countBooking(status string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) observeLock(operation, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}
}

func isInsufficient(err error) bool {
	_, ok := booking.AsInsufficientInventory(err)
	return ok
}
