package event

import (
	"context"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する（管理・シード用）
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByIDForUpdate はIDからイベントを行ロック付きで取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// List はイベント一覧を登録順で取得する
	List(ctx context.Context, limit, offset int) ([]*Event, error)

	// DecrementAvailable は残チケット数を条件付きで減算する（トランザクション必須）
	// available_tickets >= quantity の場合のみ更新し、
	// 条件を満たさない場合は ErrInsufficientTickets を返す。
	// 予約サービス以外から呼び出してはならない。
	DecrementAvailable(ctx context.Context, tx transaction.Tx, id string, quantity int) (newAvailable int, err error)
}
