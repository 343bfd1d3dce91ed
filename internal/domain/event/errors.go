package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound           = errors.New("イベントが見つかりません")
	ErrEventNameRequired       = errors.New("イベント名は必須です")
	ErrArtistNameRequired      = errors.New("アーティスト名は必須です")
	ErrInvalidTotalTickets     = errors.New("チケット総数は1以上である必要があります")
	ErrInvalidAvailableTickets = errors.New("残チケット数は0以上かつ総数以下である必要があります")
	ErrInvalidTicketPrice      = errors.New("チケット価格は0以上である必要があります")
	ErrInsufficientTickets     = errors.New("残チケット数が不足しています")
)
