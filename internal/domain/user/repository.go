package user

import (
	"context"
	"time"
)

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// Upsert は初回ログイン時にユーザーを作成し、既存なら表示名・メールを更新する
	Upsert(ctx context.Context, user *User) error

	// GetByID はIDからユーザーを取得する
	GetByID(ctx context.Context, id string) (*User, error)

	// UpdateTopLists はランキングとファンスコアを単一ステートメントで更新する
	// スコアとリストの組が常に整合するよう、分割して書き込んではならない
	UpdateTopLists(ctx context.Context, id string, topArtists, topTracks []RankedItem, fanScore int) error

	// ListStale は最終更新が olderThan より古いユーザーIDを取得する（定期リフレッシュ用）
	ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
}
