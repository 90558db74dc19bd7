// Package usecase はreceiptフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"purchase_backend/internal/feature/receipt/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MiB）です。
	MaxImageSize = 10 * 1024 * 1024
	// maxHintRunes はプロンプトに含めるOCRテキストの最大文字数です。
	maxHintRunes = 4000
)

// ExtractionPrompt はレシートから請求書項目を抽出させるプロンプトです。
const ExtractionPrompt = `You are reading a photo of a purchase receipt or invoice.
Return a single JSON object with exactly these keys:
"product_name", "store_name", "purchase_date" (YYYY-MM-DD), "price" (number, total paid),
"category", "warranty_period", "customer_care_number".
Use null for anything that is not visible on the receipt. Do not add commentary.`

// 拡張子からしか判別できない形式。DetectContentTypeでは検出されない。
var declaredOnlyImageTypes = map[string]bool{
	"image/heic": true,
	"image/heif": true,
}

// ReceiptExtractor は画像とプロンプトから構造化テキスト（JSON）を生成します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}

// TextDetector は画像から文字列を読み取ります。抽出精度を上げるヒントとして使います。
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// receiptUsecase はレシート解析のビジネスロジックを提供します。
type receiptUsecase struct {
	extractor ReceiptExtractor
	ocr       TextDetector // nilの場合はOCRヒントなし
}

// NewReceiptUsecase はreceiptUsecaseの新しいインスタンスを生成します。ocr は nil でも構いません。
func NewReceiptUsecase(extractor ReceiptExtractor, ocr TextDetector) *receiptUsecase {
	return &receiptUsecase{extractor: extractor, ocr: ocr}
}

// Analyze は画像を検証してAIサービスに送り、応答から請求書項目を取り出します。
// declaredMIME はアップロード時のContent-Typeで、バイト列から判別できない形式の場合のみ使います。
func (u *receiptUsecase) Analyze(ctx context.Context, image []byte, declaredMIME string) (*entity.ReceiptFields, error) {
	mimeType, err := validateImage(image, declaredMIME)
	if err != nil {
		return nil, err
	}

	prompt := ExtractionPrompt
	if u.ocr != nil {
		text, err := u.ocr.DetectText(ctx, image)
		if err != nil {
			// OCRはヒントにすぎないので失敗しても解析を続ける
			slog.Warn("receipt OCR hint unavailable", "error", err)
		} else if hint := strings.TrimSpace(text); hint != "" {
			prompt = withOCRHint(prompt, hint)
		}
	}

	reply, err := u.extractor.Extract(ctx, image, mimeType, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return ParseReceiptFields(reply)
}

// validateImage はサイズと形式を検証し、AIサービスに渡すMIMEタイプを返します。
func validateImage(image []byte, declaredMIME string) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyImage
	}
	if len(image) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	sniffed := http.DetectContentType(image)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(declaredMIME, ";")[0]))
	if declaredOnlyImageTypes[declared] {
		return declared, nil
	}
	return "", ErrUnsupportedImage
}

func withOCRHint(prompt, hint string) string {
	if utf8.RuneCountInString(hint) > maxHintRunes {
		hint = string([]rune(hint)[:maxHintRunes])
	}
	return prompt + "\n\nText recognized on the receipt by OCR (may contain errors):\n" + hint
}
