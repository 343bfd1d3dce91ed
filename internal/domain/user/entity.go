package user

import "time"

// RankedItem は外部プロバイダーから取得したランキング要素を表す
// 先頭（ランク0）が最も重要な項目
type RankedItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"` // 0〜100
}

// User はユーザーエンティティを表す
// IDはプロバイダーのサブジェクトID（Spotify ID）で、唯一の一意キー
// メールアドレスの一意性は保証しない
type User struct {
	ID          string
	DisplayName string
	Email       string
	TopArtists  []RankedItem
	TopTracks   []RankedItem
	FanScore    int // TopArtists/TopTracks から導出。単独では更新しない
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser は初回ログイン時のユーザーを作成する
func NewUser(id, displayName, email string) *User {
	now := time.Now()
	if email == "" {
		email = "N/A"
	}
	return &User{
		ID:          id,
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.ID == "" {
		return ErrUserIDRequired
	}
	return nil
}
