package booking

import (
	"errors"
	"fmt"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound    = errors.New("予約が見つかりません")
	ErrEventIDRequired    = errors.New("イベントIDは必須です")
	ErrUserIDRequired     = errors.New("ユーザーIDは必須です")
	ErrInvalidQuantity    = errors.New("チケット枚数は1以上である必要があります")
	ErrStorageUnavailable = errors.New("ストレージが利用できません")
)

// InsufficientInventoryError は在庫不足による予約拒否を表す
// 呼び出し側が枚数を減らして再試行できるよう、現在の残枚数を保持する
type InsufficientInventoryError struct {
	EventID   string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("在庫不足: 要求 %d 枚に対し残り %d 枚", e.Requested, e.Available)
}

// AsInsufficientInventory は err が在庫不足エラーかを判定する
func AsInsufficientInventory(err error) (*InsufficientInventoryError, bool) {
	var target *InsufficientInventoryError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
