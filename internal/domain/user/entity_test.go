package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u := NewUser("spotify-123", "山田太郎", "yamada@example.com")

	assert.Equal(t, "spotify-123", u.ID)
	assert.Equal(t, "山田太郎", u.DisplayName)
	assert.Equal(t, "yamada@example.com", u.Email)
	assert.Zero(t, u.FanScore)
	assert.Empty(t, u.TopArtists)
	assert.Empty(t, u.TopTracks)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestNewUser_EmailPlaceholder(t *testing.T) {
	// メール未公開のユーザーはプレースホルダで保存する
	u := NewUser("spotify-123", "名無し", "")

	assert.Equal(t, "N/A", u.Email)
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name        string
		user        *User
		expectedErr error
	}{
		{
			name:        "正常なユーザー",
			user:        NewUser("spotify-123", "山田太郎", "yamada@example.com"),
			expectedErr: nil,
		},
		{
			name:        "表示名なしでも有効",
			user:        NewUser("spotify-123", "", ""),
			expectedErr: nil,
		},
		{
			name:        "IDが空",
			user:        NewUser("", "山田太郎", ""),
			expectedErr: ErrUserIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
