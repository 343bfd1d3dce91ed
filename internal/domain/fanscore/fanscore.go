// Package fanscore はランキング済みのアーティスト・トラックリストから
// ファンスコアを算出する
package fanscore

import (
	"math"

	"github.com/sanosuguru/go-concert-ticket-platform/internal/domain/user"
)

// 順位重みの基準。プロバイダーの取得上限（20件）に合わせてあり、
// 重みはランク0で最大、ランク20で0まで線形に減衰する。
// ランク20以降は0以下の重みになるが、互換性のため式は変更しない。
const rankCeiling = 20

// Compute はアーティストとトラックのランキングからファンスコアを算出する
// ランクi のアーティストは popularity*(20-i)/10、トラックは popularity*(20-i)/20 を
// 加算し、合計を四捨五入した整数を返す。popularity 未設定は0として扱う。
// 同一の順序・内容の入力に対して常に同じ値を返す。
func Compute(topArtists, topTracks []user.RankedItem) int {
	var score float64
	for i, a := range topArtists {
		score += float64(a.Popularity) * float64(rankCeiling-i) / 10
	}
	for i, t := range topTracks {
		score += float64(t.Popularity) * float64(rankCeiling-i) / 20
	}
	// Math.round 互換（0.5は正の無限大方向へ丸める）
	return int(math.Floor(score + 0.5))
}
