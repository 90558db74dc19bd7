// Package gemini はGoogle Gemini APIを使用したレシート解析クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"purchase_backend/internal/feature/receipt/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// GeminiExtractor はGoogle Gemini APIのマルチモーダル入力でレシートを解析します。
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// GeminiExtractorがReceiptExtractorを実装していることをコンパイル時に検証します。
var _ usecase.ReceiptExtractor = (*GeminiExtractor)(nil)

// NewGeminiExtractor はGeminiExtractorの新しいインスタンスを生成します。
// 認証情報はSDKの環境変数（GOOGLE_API_KEY、またはGOOGLE_GENAI_USE_VERTEXAI / GOOGLE_CLOUD_PROJECT / GOOGLE_CLOUD_LOCATION）から読み込まれます。
// httpClient にはタイムアウト付きのクライアントを渡します。
func NewGeminiExtractor(ctx context.Context, model string, httpClient *http.Client) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{HTTPClient: httpClient})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract は画像をインラインパートとして送り、JSON形式の応答テキストを返します。
func (g *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return resp.Text(), nil
}
