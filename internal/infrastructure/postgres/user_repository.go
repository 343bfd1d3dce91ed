package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
)

type userRow struct {
	ID          string          `db:"id"`
	DisplayName string          `db:"display_name"`
	Email       string          `db:"email"`
	TopArtists  json.RawMessage `db:"top_artists"`
	TopTracks   json.RawMessage `db:"top_tracks"`
	FanScore    int             `db:"fan_score"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r *userRow) toEntity() (*user.User, error) {
	u := &user.User{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		FanScore:    r.FanScore,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.TopArtists) > 0 {
		if err := json.Unmarshal(r.TopArtists, &u.TopArtists); err != nil {
			return nil, fmt.Errorf("トップアーティストの復元に失敗: %w", err)
		}
	}
	if len(r.TopTracks) > 0 {
		if err := json.Unmarshal(r.TopTracks, &u.TopTracks); err != nil {
			return nil, fmt.Errorf("トップトラックの復元に失敗: %w", err)
		}
	}
	return u, nil
}

const userColumns = `id, display_name, email, top_artists, top_tracks, fan_score, created_at, updated_at`

// UserRepository はユーザーリポジトリのPostgreSQL実装
// ランキングはJSONBカラムに保存する
type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert は初回ログイン時にユーザーを作成し、既存なら表示名・メールを更新する
// 一意キーはプロバイダーのサブジェクトIDのみ（メールの一意性は保証しない）
func (r *UserRepository) Upsert(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, display_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, email = EXCLUDED.email, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.DisplayName, u.Email, u.CreatedAt, u.UpdatedAt); err != nil {
		return fmt.Errorf("ユーザー保存に失敗: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	return row.toEntity()
}

// UpdateTopLists はランキングとファンスコアを単一ステートメントで更新する
// 1つのUPDATEで書き込むため、観測されるのは常に整合した（リスト, スコア）の組になる
func (r *UserRepository) UpdateTopLists(ctx context.Context, id string, topArtists, topTracks []user.RankedItem, fanScore int) error {
	artistsJSON, err := json.Marshal(topArtists)
	if err != nil {
		return fmt.Errorf("トップアーティストの変換に失敗: %w", err)
	}
	tracksJSON, err := json.Marshal(topTracks)
	if err != nil {
		return fmt.Errorf("トップトラックの変換に失敗: %w", err)
	}

	query := `
		UPDATE users
		SET top_artists = $1, top_tracks = $2, fan_score = $3, updated_at = NOW()
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, artistsJSON, tracksJSON, fanScore, id)
	if err != nil {
		return fmt.Errorf("ランキング更新に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗: %w", err)
	}
	if rows == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListStale は最終更新が olderThan より古いユーザーIDを取得する
func (r *UserRepository) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]string, error) {
	var ids []string
	query := `SELECT id FROM users WHERE updated_at < NOW() - $1::interval ORDER BY updated_at LIMIT $2`
	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	if err := r.db.SelectContext(ctx, &ids, query, interval, limit); err != nil {
		return nil, fmt.Errorf("更新対象ユーザー取得に失敗: %w", err)
	}
	return ids, nil
}

var _ user.Repository = (*UserRepository)(nil)
