// Package vision はGoogle Cloud Vision APIを使用したレシート文字認識クライアントを提供します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"purchase_backend/internal/feature/receipt/usecase"
)

// VisionTextDetector はDOCUMENT_TEXT_DETECTIONでレシートの文字列を読み取ります。
type VisionTextDetector struct {
	client *gvision.ImageAnnotatorClient
}

var _ usecase.TextDetector = (*VisionTextDetector)(nil)

// NewVisionTextDetector はADCを使用してVisionTextDetectorの新しいインスタンスを生成します。
func NewVisionTextDetector(ctx context.Context) (*VisionTextDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionTextDetector{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionTextDetector) Close() error {
	return v.client.Close()
}

// DetectText は画像から読み取った全文を返します。文字がない場合は空文字です。
func (v *VisionTextDetector) DetectText(ctx context.Context, image []byte) (string, error) {
	resp, err := v.client.BatchAnnotateImages(ctx, documentTextRequest(image))
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}
	return fullText(resp)
}

func documentTextRequest(image []byte) *visionpb.BatchAnnotateImagesRequest {
	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			},
		},
	}
}

func fullText(resp *visionpb.BatchAnnotateImagesResponse) (string, error) {
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}
	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return "", fmt.Errorf("vision API error: %s", r.GetError().GetMessage())
	}
	if text := r.GetFullTextAnnotation().GetText(); text != "" {
		return text, nil
	}
	// DOCUMENT_TEXT_DETECTIONでも先頭のTextAnnotationに全文が入る場合がある
	if anns := r.GetTextAnnotations(); len(anns) > 0 {
		return anns[0].GetDescription(), nil
	}
	return "", nil
}
