package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
	redisinfra "github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/redis"
)

// EventService はイベントの読み取り（クエリファサード）と管理作成を提供する
// 読み取りはEventStoreへの素通しで、エラーはそのまま伝播する
type EventService struct {
	eventRepo   event.Repository
	ticketCache *redisinfra.TicketCache
}

func NewEventService(eventRepo event.Repository, tc *redisinfra.TicketCache) *EventService {
	return &EventService{eventRepo: eventRepo, ticketCache: tc}
}

// CreateEventInput はイベント作成の入力（管理・シード用）
type CreateEventInput struct {
	Name         string
	ArtistName   string
	Venue        string
	Date         time.Time
	TicketPrice  float64
	TotalTickets int
	ImageURL     string
}

// CreateEvent は新しいイベントを作成する
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(input.Name, input.ArtistName, input.Venue, input.Date, input.TicketPrice, input.TotalTickets, input.ImageURL)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return e, nil
}

// GetEvent はIDからイベントを取得する
func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// ListEvents はイベント一覧を登録順で取得する
func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.List(ctx, limit, offset)
}

// GetAvailableTickets はイベントの残チケット数を取得する
// キャッシュヒット時はDBを参照しない。ミス時はDBから読んでキャッシュを温める
func (s *EventService) GetAvailableTickets(ctx context.Context, eventID string) (int, error) {
	if s.ticketCache != nil {
		// キャッシュミス・キャッシュ障害のどちらでもDBへフォールバックする
		if count, err := s.ticketCache.GetAvailableCount(ctx, eventID); err == nil {
			return count, nil
		}
	}

	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if s.ticketCache != nil {
		_ = s.ticketCache.SetAvailableCount(ctx, eventID, e.AvailableTickets, cacheTTL)
	}
	return e.AvailableTickets, nil
}
