package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// TicketCache はイベントの残チケット数キャッシュを管理する
// 一覧・詳細の読み取りパスで使用し、予約コミット時に無効化する
type TicketCache struct {
	client *redis.Client
}

// NewTicketCache は新しいTicketCacheインスタンスを作成する
func NewTicketCache(client *redis.Client) *TicketCache {
	return &TicketCache{client: client}
}

// GetAvailableCount はイベントの残チケット数をキャッシュから取得する
func (c *TicketCache) GetAvailableCount(ctx context.Context, eventID string) (int, error) {
	key := c.availableCountKey(eventID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount はイベントの残チケット数をキャッシュに保存する
func (c *TicketCache) SetAvailableCount(ctx context.Context, eventID string, count int, ttl time.Duration) error {
	key := c.availableCountKey(eventID)
	err := c.client.Set(ctx, key, count, ttl).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
func (c *TicketCache) Invalidate(ctx context.Context, eventID string) error {
	key := c.availableCountKey(eventID)
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *TicketCache) availableCountKey(eventID string) string {
	return fmt.Sprintf("tickets:available:%s", eventID)
}
