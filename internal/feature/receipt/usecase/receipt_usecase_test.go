package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase_backend/internal/shared/apperr"
)

// mockExtractor はReceiptExtractorインターフェースのモック実装です。
type mockExtractor struct {
	ExtractFunc func(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
	calls       int
}

func (m *mockExtractor) Extract(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	m.calls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, image, mimeType, prompt)
	}
	return `{}`, nil
}

// mockTextDetector はTextDetectorインターフェースのモック実装です。
type mockTextDetector struct {
	DetectTextFunc func(ctx context.Context, image []byte) (string, error)
}

func (m *mockTextDetector) DetectText(ctx context.Context, image []byte) (string, error) {
	return m.DetectTextFunc(ctx, image)
}

// pngHeader はDetectContentTypeがimage/pngと判定する最小のバイト列です。
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestReceiptUsecase_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts fields", func(t *testing.T) {
		ext := &mockExtractor{
			ExtractFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
				assert.Equal(t, "image/png", mimeType)
				assert.Equal(t, ExtractionPrompt, prompt)
				return "```json\n{\"product_name\":\"Kettle\",\"store_name\":\"Muji\",\"purchase_date\":\"2024/05/01\",\"price\":2990,\"category\":\"Kitchen\",\"warranty_period\":null,\"customer_care_number\":\"0120-14-6404\"}\n```", nil
			},
		}
		got, err := NewReceiptUsecase(ext, nil).Analyze(ctx, pngHeader, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "Kettle", got.ProductName)
		assert.Equal(t, "Muji", got.StoreName)
		assert.Equal(t, "2024-05-01", got.PurchaseDate)
		require.NotNil(t, got.Price)
		assert.Equal(t, 2990.0, *got.Price)
		assert.Empty(t, got.WarrantyPeriod)
	})

	t.Run("rejects bad images before calling the service", func(t *testing.T) {
		tests := []struct {
			name  string
			image []byte
			mime  string
			want  error
		}{
			{"empty", nil, "image/png", ErrEmptyImage},
			{"too large", append(append([]byte{}, pngHeader...), make([]byte, MaxImageSize)...), "image/png", ErrImageTooLarge},
			{"text file", []byte("hello, this is not an image"), "image/png", ErrUnsupportedImage},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ext := &mockExtractor{}
				_, err := NewReceiptUsecase(ext, nil).Analyze(ctx, tt.image, tt.mime)
				assert.ErrorIs(t, err, tt.want)
				assert.Equal(t, 400, apperr.Status(err))
				assert.Zero(t, ext.calls)
			})
		}
	})

	t.Run("declared heic is accepted", func(t *testing.T) {
		ext := &mockExtractor{
			ExtractFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
				assert.Equal(t, "image/heic", mimeType)
				return `{"product_name":"Phone"}`, nil
			},
		}
		_, err := NewReceiptUsecase(ext, nil).Analyze(ctx, []byte("\x00\x00\x00\x18ftypheic"), "image/HEIC")
		require.NoError(t, err)
	})

	t.Run("ocr hint is appended", func(t *testing.T) {
		ocr := &mockTextDetector{
			DetectTextFunc: func(ctx context.Context, image []byte) (string, error) {
				return "MUJI Ginza\nTOTAL 2,990", nil
			},
		}
		ext := &mockExtractor{
			ExtractFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
				assert.True(t, strings.HasPrefix(prompt, ExtractionPrompt))
				assert.Contains(t, prompt, "TOTAL 2,990")
				return `{}`, nil
			},
		}
		_, err := NewReceiptUsecase(ext, ocr).Analyze(ctx, pngHeader, "")
		require.NoError(t, err)
	})

	t.Run("ocr failure does not stop analysis", func(t *testing.T) {
		ocr := &mockTextDetector{
			DetectTextFunc: func(ctx context.Context, image []byte) (string, error) {
				return "", errors.New("vision quota exceeded")
			},
		}
		ext := &mockExtractor{
			ExtractFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
				assert.Equal(t, ExtractionPrompt, prompt)
				return `{"store_name":"Lawson"}`, nil
			},
		}
		got, err := NewReceiptUsecase(ext, ocr).Analyze(ctx, pngHeader, "")
		require.NoError(t, err)
		assert.Equal(t, "Lawson", got.StoreName)
	})

	t.Run("service failure is upstream", func(t *testing.T) {
		ext := &mockExtractor{
			ExtractFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
				return "", errors.New("503 from model")
			},
		}
		_, err := NewReceiptUsecase(ext, nil).Analyze(ctx, pngHeader, "")
		assert.ErrorIs(t, err, ErrExtractionFailed)
		assert.Equal(t, 502, apperr.Status(err))
		assert.Equal(t, "receipt analysis service unavailable", apperr.Message(err))
	})

	t.Run("malformed reply is upstream", func(t *testing.T) {
		ext := &mockExtractor{
			ExtractFunc: func(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
				return "Sorry, I cannot read this receipt.", nil
			},
		}
		_, err := NewReceiptUsecase(ext, nil).Analyze(ctx, pngHeader, "")
		assert.ErrorIs(t, err, ErrUnparseableResponse)
		assert.Equal(t, 502, apperr.Status(err))
	})
}

func TestParseReceiptFields(t *testing.T) {
	t.Run("plain object with extra keys", func(t *testing.T) {
		got, err := ParseReceiptFields(`{"product_name":"TV","price":"¥49,800","currency":"JPY"}`)
		require.NoError(t, err)
		assert.Equal(t, "TV", got.ProductName)
		require.NotNil(t, got.Price)
		assert.Equal(t, 49800.0, *got.Price)
	})

	t.Run("surrounding prose", func(t *testing.T) {
		got, err := ParseReceiptFields("Here you go:\n{\"store_name\": \"Aeon\"}\nThanks")
		require.NoError(t, err)
		assert.Equal(t, "Aeon", got.StoreName)
	})

	t.Run("numeric customer care number", func(t *testing.T) {
		got, err := ParseReceiptFields(`{"customer_care_number": 12345}`)
		require.NoError(t, err)
		assert.Equal(t, "12345", got.CustomerCareNumber)
	})

	t.Run("unparseable price becomes nil", func(t *testing.T) {
		got, err := ParseReceiptFields(`{"price":"unknown"}`)
		require.NoError(t, err)
		assert.Nil(t, got.Price)

		got, err = ParseReceiptFields(`{"price":-5}`)
		require.NoError(t, err)
		assert.Nil(t, got.Price)
	})

	t.Run("string prices", func(t *testing.T) {
		tests := []struct {
			raw  string
			want *float64
		}{
			{`"1,234.56"`, ptrFloat(1234.56)},
			{`"$12.50"`, ptrFloat(12.5)},
			{`"¥ 980"`, ptrFloat(980)},
			{`"-5"`, nil},
			{`"¥-1,200"`, nil},
			{`"1.234,56"`, nil},
			{`"12,5"`, nil},
			{`"1.2.3"`, nil},
			{`"NaN"`, nil},
		}
		for _, tt := range tests {
			got, err := ParseReceiptFields(`{"price":` + tt.raw + `}`)
			require.NoError(t, err, tt.raw)
			if tt.want == nil {
				assert.Nil(t, got.Price, tt.raw)
				continue
			}
			require.NotNil(t, got.Price, tt.raw)
			assert.InDelta(t, *tt.want, *got.Price, 1e-9, tt.raw)
		}
	})

	t.Run("unknown date format is kept", func(t *testing.T) {
		got, err := ParseReceiptFields(`{"purchase_date":"May 1st"}`)
		require.NoError(t, err)
		assert.Equal(t, "May 1st", got.PurchaseDate)
	})

	t.Run("not an object", func(t *testing.T) {
		for _, reply := range []string{"", "[]", "null", `{"product_name": }`, "__import__('os').system('id')"} {
			_, err := ParseReceiptFields(reply)
			assert.ErrorIs(t, err, ErrUnparseableResponse, reply)
		}
	})
}

type countingLimiter struct {
	err   error
	waits int
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits++
	return l.err
}

func TestWithRateLimit(t *testing.T) {
	ctx := context.Background()

	limiter := &countingLimiter{}
	ext := &mockExtractor{}
	wrapped := WithRateLimit(ext, limiter)

	_, err := wrapped.Extract(ctx, pngHeader, "image/png", "p")
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.waits)
	assert.Equal(t, 1, ext.calls)

	limiter.err = context.DeadlineExceeded
	_, err = wrapped.Extract(ctx, pngHeader, "image/png", "p")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, ext.calls, "extractor must not be called when the limiter refuses")

	// the usecase reports a limiter refusal as an upstream failure
	uc := NewReceiptUsecase(wrapped, nil)
	_, err = uc.Analyze(ctx, bytes.Clone(pngHeader), "")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func ptrFloat(f float64) *float64 { return &f }
