// Package spotify はSpotify Web APIのランキング取得クライアントを提供する
// OAuthハンドシェイクは上位のコラボレーターの責務であり、
// ここではアクセストークンを受け取って呼び出すだけに留める
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/config"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
)

var (
	ErrUnauthorized = errors.New("Spotifyの認証に失敗しました")
	ErrUpstream     = errors.New("Spotify APIの呼び出しに失敗しました")
)

// Client はSpotify Web APIクライアント
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
}

// NewClient はClientを作成する
func NewClient(cfg *config.SpotifyConfig) *Client {
	limit := cfg.Limit
	// プロバイダーの取得上限は20件。超える指定はスコア計算の重みが
	// 0以下になるため上限に丸める
	if limit <= 0 || limit > 20 {
		limit = 20
	}
	return &Client{
		baseURL: cfg.BaseURL,
		limit:   limit,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

type topItemsResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Popularity *int   `json:"popularity"`
	} `json:"items"`
}

// GetTopArtists はユーザーのトップアーティストをランキング順で取得する
func (c *Client) GetTopArtists(ctx context.Context, accessToken string) ([]user.RankedItem, error) {
	return c.getTopItems(ctx, accessToken, "artists")
}

// GetTopTracks はユーザーのトップトラックをランキング順で取得する
func (c *Client) GetTopTracks(ctx context.Context, accessToken string) ([]user.RankedItem, error) {
	return c.getTopItems(ctx, accessToken, "tracks")
}

func (c *Client) getTopItems(ctx context.Context, accessToken, kind string) ([]user.RankedItem, error) {
	endpoint := fmt.Sprintf("%s/me/top/%s?%s", c.baseURL, kind, url.Values{
		"limit":      {strconv.Itoa(c.limit)},
		"time_range": {"medium_term"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	var body topItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("レスポンスの解析に失敗: %w", err)
	}

	items := make([]user.RankedItem, len(body.Items))
	for i, it := range body.Items {
		// popularity 未設定は0として扱う
		popularity := 0
		if it.Popularity != nil {
			popularity = clampPopularity(*it.Popularity)
		}
		items[i] = user.RankedItem{ID: it.ID, Name: it.Name, Popularity: popularity}
	}
	return items, nil
}

// clampPopularity はプロバイダー仕様の範囲 [0,100] に丸める
func clampPopularity(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
