package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/fanscore"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/infrastructure/spotify"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/pkg/logger"
	"github.com/sanosuguru/go-concert-ticket-platform/internal/pkg/metrics"
)

// AuthenticatedUser は認証済みユーザーを表す値
// セッションオブジェクトを暗黙に引き回す代わりに、明示的に各ユースケースへ渡す
type AuthenticatedUser struct {
	ID          string
	DisplayName string
	Email       string
}

// TopListsProvider は外部プロバイダーのランキング取得インターフェース
type TopListsProvider interface {
	GetTopArtists(ctx context.Context, accessToken string) ([]user.RankedItem, error)
	GetTopTracks(ctx context.Context, accessToken string) ([]user.RankedItem, error)
}

// FanScoreService はランキング取得とファンスコア更新のユースケースを提供する
type FanScoreService struct {
	userRepo user.Repository
	provider TopListsProvider
	metrics  *metrics.Metrics
}

func NewFanScoreService(ur user.Repository, provider TopListsProvider, m *metrics.Metrics) *FanScoreService {
	return &FanScoreService{userRepo: ur, provider: provider, metrics: m}
}

// EnsureUser は初回ログイン時にユーザーを作成する（既存なら属性を更新）
func (s *FanScoreService) EnsureUser(ctx context.Context, au AuthenticatedUser) (*user.User, error) {
	u := user.NewUser(au.ID, au.DisplayName, au.Email)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("ユーザー登録に失敗: %w", err)
	}
	return s.userRepo.GetByID(ctx, au.ID)
}

// GetProfile はユーザープロファイル（ファンスコア含む）を取得する
func (s *FanScoreService) GetProfile(ctx context.Context, userID string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// Refresh は両ランキングをプロバイダーから取得し直し、ファンスコアを再計算して
// リストとスコアを1回の書き込みで保存する
//
// アーティストのみ・トラックのみの更新は行わない。片方だけ差し替えると
// 保存済みスコアとリストの組が食い違うため、常に両方まとめて取得・保存する。
// 2つのリフレッシュが競合した場合は後勝ちだが、どちらの結果も
// 整合した（リスト, スコア）の組である。
func (s *FanScoreService) Refresh(ctx context.Context, au AuthenticatedUser, accessToken string) (*user.User, error) {
	if au.ID == "" {
		return nil, user.ErrUserIDRequired
	}

	topArtists, err := s.provider.GetTopArtists(ctx, accessToken)
	if err != nil {
		s.countRefresh(err)
		return nil, fmt.Errorf("トップアーティスト取得に失敗: %w", err)
	}
	topTracks, err := s.provider.GetTopTracks(ctx, accessToken)
	if err != nil {
		s.countRefresh(err)
		return nil, fmt.Errorf("トップトラック取得に失敗: %w", err)
	}

	score := fanscore.Compute(topArtists, topTracks)

	// 未登録ユーザーのリフレッシュは先に登録してから更新する
	if err := s.userRepo.UpdateTopLists(ctx, au.ID, topArtists, topTracks, score); err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			s.countRefresh(err)
			return nil, err
		}
		if _, err := s.EnsureUser(ctx, au); err != nil {
			s.countRefresh(err)
			return nil, err
		}
		if err := s.userRepo.UpdateTopLists(ctx, au.ID, topArtists, topTracks, score); err != nil {
			s.countRefresh(err)
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.FanScoreRefreshesTotal.WithLabelValues("success").Inc()
	}
	return s.userRepo.GetByID(ctx, au.ID)
}

// RecomputeStoredScores は保存済みリストからファンスコアを再計算する
// トークン不要で実行できるため、定期ワーカーからの整合性の修復に使う
// （スコア計算式の変更後など、保存値が古い計算によるものでも追従できる）
func (s *FanScoreService) RecomputeStoredScores(ctx context.Context, olderThan time.Duration, batchSize int) (int, error) {
	ids, err := s.userRepo.ListStale(ctx, olderThan, batchSize)
	if err != nil {
		return 0, fmt.Errorf("対象ユーザー取得に失敗: %w", err)
	}

	updated := 0
	for _, id := range ids {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			logger.Warn("スコア再計算対象の取得に失敗", zap.String("user_id", id), zap.Error(err))
			continue
		}
		score := fanscore.Compute(u.TopArtists, u.TopTracks)
		if err := s.userRepo.UpdateTopLists(ctx, id, u.TopArtists, u.TopTracks, score); err != nil {
			logger.Warn("スコア再計算の保存に失敗", zap.String("user_id", id), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *FanScoreService) countRefresh(err error) {
	if s.metrics == nil {
		return
	}
	status := "error"
	if errors.Is(err, spotify.ErrUnauthorized) {
		status = "unauthorized"
	}
	s.metrics.FanScoreRefreshesTotal.WithLabelValues(status).Inc()
}
