package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/api"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/application"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
)

// SpotifyHandler はランキング取得とファンスコアのエンドポイントを提供する
// OAuthハンドシェイク自体はコラボレーターの責務で、ここでは
// 認証済みユーザーIDとアクセストークンがヘッダーで渡される前提
type SpotifyHandler struct {
	service FanScoreServiceInterface
}

func NewSpotifyHandler(s FanScoreServiceInterface) *SpotifyHandler {
	return &SpotifyHandler{service: s}
}

type RankedItemResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
}

type TopListResponse struct {
	Items    []RankedItemResponse `json:"items"`
	FanScore int                  `json:"fanScore"`
}

type ProfileResponse struct {
	UserID      string               `json:"userId"`
	DisplayName string               `json:"displayName"`
	Email       string               `json:"email"`
	TopArtists  []RankedItemResponse `json:"topArtists"`
	TopTracks   []RankedItemResponse `json:"topTracks"`
	FanScore    int                  `json:"fanScore"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func toRankedItems(items []user.RankedItem) []RankedItemResponse {
	resp := make([]RankedItemResponse, len(items))
	for i, it := range items {
		resp[i] = RankedItemResponse(it)
	}
	return resp
}

// authenticatedUser はヘッダーから認証済みユーザーとトークンを取り出す
func authenticatedUser(c echo.Context) (application.AuthenticatedUser, string, error) {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return application.AuthenticatedUser{}, "", echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	if token == "" {
		return application.AuthenticatedUser{}, "", echo.NewHTTPError(http.StatusUnauthorized, "アクセストークンが必要です")
	}
	return application.AuthenticatedUser{
		ID:          userID,
		DisplayName: c.Request().Header.Get("X-User-Name"),
		Email:       c.Request().Header.Get("X-User-Email"),
	}, token, nil
}

// TopArtists godoc
// @Summary トップアーティストを取得
// @Description Spotifyからランキングを取得し直し、ファンスコアを更新して返します
// @Tags spotify
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param Authorization header string true "Bearer アクセストークン"
// @Success 200 {object} TopListResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 503 {object} api.ErrorResponse
// @Router /spotify/top-artists [get]
func (h *SpotifyHandler) TopArtists(c echo.Context) error {
	au, token, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	u, err := h.service.Refresh(c.Request().Context(), au, token)
	if err != nil {
		code, resp := api.ResponseFromError(err)
		return c.JSON(code, resp)
	}

	return c.JSON(http.StatusOK, TopListResponse{
		Items:    toRankedItems(u.TopArtists),
		FanScore: u.FanScore,
	})
}

// TopTracks godoc
// @Summary トップトラックを取得
// @Description Spotifyからランキングを取得し直し、ファンスコアを更新して返します
// @Tags spotify
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param Authorization header string true "Bearer アクセストークン"
// @Success 200 {object} TopListResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 503 {object} api.ErrorResponse
// @Router /spotify/top-tracks [get]
func (h *SpotifyHandler) TopTracks(c echo.Context) error {
	au, token, err := authenticatedUser(c)
	if err != nil {
		return err
	}

	u, err := h.service.Refresh(c.Request().Context(), au, token)
	if err != nil {
		code, resp := api.ResponseFromError(err)
		return c.JSON(code, resp)
	}

	return c.JSON(http.StatusOK, TopListResponse{
		Items:    toRankedItems(u.TopTracks),
		FanScore: u.FanScore,
	})
}

// Me godoc
// @Summary 自分のプロファイルを取得
// @Description 保存済みのプロファイルとファンスコアを返します（再取得はしない）
// @Tags spotify
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /me [get]
func (h *SpotifyHandler) Me(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}

	u, err := h.service.GetProfile(c.Request().Context(), userID)
	if err != nil {
		code, resp := api.ResponseFromError(err)
		return c.JSON(code, resp)
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		TopArtists:  toRankedItems(u.TopArtists),
		TopTracks:   toRankedItems(u.TopTracks),
		FanScore:    u.FanScore,
		CreatedAt:   u.CreatedAt,
	})
}
