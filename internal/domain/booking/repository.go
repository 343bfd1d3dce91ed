package booking

import (
	"context"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	// イベントの残枚数減算と同一トランザクションで実行すること
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByEventID はイベントIDから予約一覧を取得する
	GetByEventID(ctx context.Context, eventID string) ([]*Booking, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)
}
