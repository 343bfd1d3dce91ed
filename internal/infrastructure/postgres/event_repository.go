package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/event"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	ArtistName       string    `db:"artist_name"`
	Venue            *string   `db:"venue"`
	Date             time.Time `db:"date"`
	TicketPrice      float64   `db:"ticket_price"`
	TotalTickets     int       `db:"total_tickets"`
	AvailableTickets int       `db:"available_tickets"`
	ImageURL         *string   `db:"image_url"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	var venue, imageURL string
	if r.Venue != nil {
		venue = *r.Venue
	}
	if r.ImageURL != nil {
		imageURL = *r.ImageURL
	}
	return &event.Event{
		ID:               r.ID,
		Name:             r.Name,
		ArtistName:       r.ArtistName,
		Venue:            venue,
		Date:             r.Date,
		TicketPrice:      r.TicketPrice,
		TotalTickets:     r.TotalTickets,
		AvailableTickets: r.AvailableTickets,
		ImageURL:         imageURL,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

const eventColumns = `id, name, artist_name, venue, date, ticket_price, total_tickets, available_tickets, image_url, created_at, updated_at`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (name, artist_name, venue, date, ticket_price, total_tickets, available_tickets, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var venue, imageURL *string
	if e.Venue != "" {
		venue = &e.Venue
	}
	if e.ImageURL != "" {
		imageURL = &e.ImageURL
	}

	err := r.db.QueryRowContext(ctx, query,
		e.Name, e.ArtistName, venue, e.Date, e.TicketPrice, e.TotalTickets, e.AvailableTickets, imageURL, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate はIDからイベントを行ロック付きで取得する
// 同一イベントへの並行予約を直列化するため FOR UPDATE を使用する
func (r *EventRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, fmt.Errorf("トランザクションの型が不正です")
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`

	var row eventRow
	err := sqlxTx.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧を登録順で取得する
// created_at が同一の場合でも順序が安定するよう id をタイブレークに使う
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// DecrementAvailable は残チケット数を条件付きで減算する
// available_tickets >= quantity の行だけを更新し、更新行数が0なら在庫不足を返す。
// 読み取り時点と更新時点の間に他トランザクションが割り込んでも、
// この条件により残数が負になることはない。
func (r *EventRepository) DecrementAvailable(ctx context.Context, tx transaction.Tx, id string, quantity int) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, fmt.Errorf("トランザクションの型が不正です")
	}

	query := `
		UPDATE events
		SET available_tickets = available_tickets - $1, updated_at = NOW()
		WHERE id = $2 AND available_tickets >= $1
		RETURNING available_tickets
	`

	var newAvailable int
	err := sqlxTx.QueryRowContext(ctx, query, quantity, id).Scan(&newAvailable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, event.ErrInsufficientTickets
		}
		return 0, fmt.Errorf("残チケット数の更新に失敗しました: %w", err)
	}
	return newAvailable, nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
