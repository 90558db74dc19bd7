// Package ratelimiter は外部API呼び出しの頻度をプロセス全体で制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter は interval あたり limit 回までの呼び出しを許可します。
// 複数のゴルーチンから同時に使用できます。
type RateLimiter struct {
	limiter *rate.Limiter
	name    string
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// 枠は interval/limit ごとに1つ補充され、最大 limit 回まで連続で呼び出せます。
func NewRateLimiter(name string, limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
		name:    name,
	}
}

// Wait は枠が空くまで待機します。ctx が先に終了した場合はそのエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Allow() {
		return nil
	}
	slog.Warn("rate limit hit, waiting", "limiter", rl.name)
	return rl.limiter.Wait(ctx)
}
