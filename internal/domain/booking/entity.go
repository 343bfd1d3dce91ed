package booking

import "time"

// Booking は予約エンティティを表す
// 作成後は不変であり、キャンセル・変更のフローは持たない
type Booking struct {
	ID        string
	EventID   string
	UserID    string
	Quantity  int
	CreatedAt time.Time
}

// NewBooking は新しい予約を作成する
func NewBooking(eventID, userID string, quantity int) *Booking {
	return &Booking{
		EventID:   eventID,
		UserID:    userID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
