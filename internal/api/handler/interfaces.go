package handler

import (
	"context"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/application"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/booking"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	GetAvailableTickets(ctx context.Context, eventID string) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	Reserve(ctx context.Context, input application.ReserveInput) (*application.ReserveResult, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
}

// FanScoreServiceInterface はファンスコアサービスのインターフェース
// ユーザー登録は Refresh が内部で行うため、ハンドラーからは参照・再取得のみ
type FanScoreServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*user.User, error)
	Refresh(ctx context.Context, au application.AuthenticatedUser, accessToken string) (*user.User, error)
}

var (
	_ EventServiceInterface    = (*application.EventService)(nil)
	_ BookingServiceInterface  = (*application.BookingService)(nil)
	_ FanScoreServiceInterface = (*application.FanScoreService)(nil)
)
