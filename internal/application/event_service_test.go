package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
)

func validCreateInput() CreateEventInput {
	return CreateEventInput{
		Name:         "夏フェス2026",
		ArtistName:   "Sample Artist",
		Venue:        "東京ドーム",
		Date:         time.Now().Add(30 * 24 * time.Hour),
		TicketPrice:  8500,
		TotalTickets: 100,
	}
}

func TestEventService_CreateEvent_Success(t *testing.T) {
	er := new(MockEventRepository)
	er.On("Create", mock.Anything, mock.AnythingOfType("*event.Event")).Return(nil)

	service := NewEventService(er, nil)

	e, err := service.CreateEvent(context.Background(), validCreateInput())

	require.NoError(t, err)
	// 作成直後は全席が販売可能
	assert.Equal(t, 100, e.TotalTickets)
	assert.Equal(t, 100, e.AvailableTickets)
	er.AssertExpectations(t)
}

func TestEventService_CreateEvent_ValidationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateEventInput)
	}{
		{"イベント名が空", func(in *CreateEventInput) { in.Name = "" }},
		{"総チケット数が0", func(in *CreateEventInput) { in.TotalTickets = 0 }},
		{"価格が負", func(in *CreateEventInput) { in.TicketPrice = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er := new(MockEventRepository)
			service := NewEventService(er, nil)

			input := validCreateInput()
			tt.mutate(&input)

			_, err := service.CreateEvent(context.Background(), input)

			assert.Error(t, err)
			er.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestEventService_GetEvent_NotFound(t *testing.T) {
	er := new(MockEventRepository)
	er.On("GetByID", mock.Anything, "unknown").Return(nil, event.ErrEventNotFound)

	service := NewEventService(er, nil)

	_, err := service.GetEvent(context.Background(), "unknown")

	assert.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestEventService_ListEvents_LimitClamp(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantOff   int
	}{
		{"未指定はデフォルト20", 0, 0, 20, 0},
		{"上限100でクランプ", 500, 0, 100, 0},
		{"負のオフセットは0", 10, -5, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er := new(MockEventRepository)
			er.On("List", mock.Anything, tt.wantLimit, tt.wantOff).Return([]*event.Event{}, nil)

			service := NewEventService(er, nil)

			_, err := service.ListEvents(context.Background(), tt.limit, tt.offset)

			require.NoError(t, err)
			er.AssertExpectations(t)
		})
	}
}

func TestEventService_GetAvailableTickets_FallsBackToDB(t *testing.T) {
	// キャッシュなし構成ではDBの値をそのまま返す
	er := new(MockEventRepository)
	er.On("GetByID", mock.Anything, "event-1").Return(&event.Event{
		ID: "event-1", AvailableTickets: 42, TotalTickets: 100,
	}, nil)

	service := NewEventService(er, nil)

	count, err := service.GetAvailableTickets(context.Background(), "event-1")

	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
