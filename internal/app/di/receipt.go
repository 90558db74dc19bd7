package di

import (
	"context"
	"log/slog"
	"time"

	"purchase_backend/internal/config"
	"purchase_backend/internal/feature/receipt/adapters/gemini"
	"purchase_backend/internal/feature/receipt/adapters/vision"
	receipthandler "purchase_backend/internal/feature/receipt/transport/handler"
	"purchase_backend/internal/feature/receipt/usecase"
	platformhttp "purchase_backend/internal/platform/http"
	"purchase_backend/internal/shared/ratelimiter"
)

// unavailableExtractor は Gemini クライアントを初期化できなかった場合の代替です。
// 起動は継続し、解析リクエストのみ502になります。
type unavailableExtractor struct {
	err error
}

func (u unavailableExtractor) Extract(context.Context, []byte, string, string) (string, error) {
	return "", u.err
}

// NewReceiptUsecase はレシート解析usecaseを組み立てます。
// Gemini 呼び出しはプロセス共通のレートリミッターとタイムアウト付きHTTPクライアントを通ります。
// 戻り値の close は Vision クライアントを閉じます（未使用なら何もしません）。
func NewReceiptUsecase(ctx context.Context, cfg config.ReceiptConfig) (receipthandler.ReceiptUsecase, func() error) {
	var extractor usecase.ReceiptExtractor
	g, err := gemini.NewGeminiExtractor(ctx, cfg.Model, platformhttp.NewHTTPClient(cfg.Timeout))
	if err != nil {
		slog.Warn("Gemini client unavailable; receipt analysis disabled", "error", err)
		extractor = unavailableExtractor{err: err}
	} else {
		extractor = g
	}
	limiter := ratelimiter.NewRateLimiter("gemini", cfg.RateLimitPerMinute, time.Minute)
	extractor = usecase.WithRateLimit(extractor, limiter)

	closeFn := func() error { return nil }
	// nil の *VisionTextDetector をインターフェースに入れないよう分岐する
	if !cfg.OCREnabled {
		return usecase.NewReceiptUsecase(extractor, nil), closeFn
	}
	ocr, err := vision.NewVisionTextDetector(ctx)
	if err != nil {
		slog.Warn("Vision client unavailable; OCR hint disabled", "error", err)
		return usecase.NewReceiptUsecase(extractor, nil), closeFn
	}
	slog.Info("receipt OCR hint enabled")
	return usecase.NewReceiptUsecase(extractor, ocr), ocr.Close
}
