package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/pkg/logger"
)

// ScoreRecomputer は保存済みランキングからファンスコアを再計算するインターフェース
type ScoreRecomputer interface {
	RecomputeStoredScores(ctx context.Context, olderThan time.Duration, batchSize int) (int, error)
}

// FanScoreRefresher はファンスコアを定期的に再計算するワーカー
// 計算式の変更や過去の不整合があっても、保存値が徐々に追従する
type FanScoreRefresher struct {
	service      ScoreRecomputer
	interval     time.Duration
	refreshAfter time.Duration
	batchSize    int
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewFanScoreRefresher は新しいリフレッシャーを作成
func NewFanScoreRefresher(
	service ScoreRecomputer,
	interval time.Duration,
	refreshAfter time.Duration,
	batchSize int,
) *FanScoreRefresher {
	return &FanScoreRefresher{
		service:      service,
		interval:     interval,
		refreshAfter: refreshAfter,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *FanScoreRefresher) Start(ctx context.Context) {
	logger.Info("ファンスコアリフレッシャー開始",
		zap.Duration("interval", r.interval),
		zap.Duration("refresh_after", r.refreshAfter),
		zap.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("ファンスコアリフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("ファンスコアリフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *FanScoreRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh は1バッチ分のスコアを再計算
func (r *FanScoreRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("ファンスコア再計算開始")

	count, err := r.service.RecomputeStoredScores(ctx, r.refreshAfter, r.batchSize)
	if err != nil {
		log.Error("ファンスコア再計算失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("ファンスコアを再計算", zap.Int("count", count))
	} else {
		log.Debug("再計算対象なし")
	}
}
