package usecase

import (
	"context"
	"fmt"
)

// Limiter は呼び出し頻度を制限します。
type Limiter interface {
	Wait(ctx context.Context) error
}

// rateLimitedExtractor は外部AIの呼び出し前にプロセス全体の枠を確保します。
type rateLimitedExtractor struct {
	next    ReceiptExtractor
	limiter Limiter
}

// WithRateLimit は extractor を limiter で包みます。
func WithRateLimit(extractor ReceiptExtractor, limiter Limiter) ReceiptExtractor {
	return &rateLimitedExtractor{next: extractor, limiter: limiter}
}

func (r *rateLimitedExtractor) Extract(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.next.Extract(ctx, image, mimeType, prompt)
}
