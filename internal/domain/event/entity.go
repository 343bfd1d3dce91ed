package event

import "time"

// Event はチケット販売対象のイベントエンティティを表す
type Event struct {
	ID               string
	Name             string
	ArtistName       string
	Venue            string
	Date             time.Time
	TicketPrice      float64
	TotalTickets     int // 作成時に固定、以後不変
	AvailableTickets int
	ImageURL         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewEvent は新しいイベントを作成する（残枚数は総枚数で初期化）
func NewEvent(name, artistName, venue string, date time.Time, ticketPrice float64, totalTickets int, imageURL string) *Event {
	now := time.Now()
	return &Event{
		Name:             name,
		ArtistName:       artistName,
		Venue:            venue,
		Date:             date,
		TicketPrice:      ticketPrice,
		TotalTickets:     totalTickets,
		AvailableTickets: totalTickets,
		ImageURL:         imageURL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.ArtistName == "" {
		return ErrArtistNameRequired
	}
	if e.TotalTickets <= 0 {
		return ErrInvalidTotalTickets
	}
	if e.AvailableTickets < 0 || e.AvailableTickets > e.TotalTickets {
		return ErrInvalidAvailableTickets
	}
	if e.TicketPrice < 0 {
		return ErrInvalidTicketPrice
	}
	return nil
}

// IsSoldOut は完売しているかを返す
func (e *Event) IsSoldOut() bool {
	return e.AvailableTickets == 0
}

// CanAdmit は要求枚数分の在庫があるかを返す
func (e *Event) CanAdmit(quantity int) bool {
	return quantity > 0 && e.AvailableTickets >= quantity
}
