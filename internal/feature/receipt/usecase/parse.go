package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"purchase_backend/internal/feature/receipt/domain/entity"
)

// receiptLayouts はAIが返しがちな日付書式です。解釈できたものは YYYY-MM-DD に揃えます。
var receiptLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339, "2006-01-02T15:04:05"}

type rawReceipt struct {
	ProductName        json.RawMessage `json:"product_name"`
	StoreName          json.RawMessage `json:"store_name"`
	PurchaseDate       json.RawMessage `json:"purchase_date"`
	Price              json.RawMessage `json:"price"`
	Category           json.RawMessage `json:"category"`
	WarrantyPeriod     json.RawMessage `json:"warranty_period"`
	CustomerCareNumber json.RawMessage `json:"customer_care_number"`
}

// ParseReceiptFields はAIの応答をJSONオブジェクトとして解釈します。
// Markdownのコードフェンスは取り除き、未知のキーは無視します。応答をコードとして評価することはありません。
func ParseReceiptFields(reply string) (*entity.ReceiptFields, error) {
	body := extractJSONObject(reply)
	if body == "" {
		return nil, ErrUnparseableResponse
	}

	var raw rawReceipt
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}

	fields := &entity.ReceiptFields{
		ProductName:        asString(raw.ProductName),
		StoreName:          asString(raw.StoreName),
		PurchaseDate:       normalizeDate(asString(raw.PurchaseDate)),
		Price:              asPrice(raw.Price),
		Category:           asString(raw.Category),
		WarrantyPeriod:     asString(raw.WarrantyPeriod),
		CustomerCareNumber: asString(raw.CustomerCareNumber),
	}
	return fields, nil
}

// extractJSONObject はコードフェンスや前後の文章を除いた最初の '{' から最後の '}' までを返します。
func extractJSONObject(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// asString は文字列・数値・nullのいずれかを文字列にします。それ以外は空文字です。
func asString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// asPrice は数値または "¥1,200" のような文字列を価格にします。負数や解釈できない値はnilです。
func asPrice(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		p, ok := parsePriceString(asString(raw))
		if !ok {
			return nil
		}
		f = p
	}
	if f < 0 {
		return nil
	}
	return &f
}

// parsePriceString は通貨記号や桁区切りを含む文字列を数値にします。
// カンマは3桁区切りとしてのみ扱い、"1.234,56" のように区切りの解釈が曖昧な場合は失敗とします。
func parsePriceString(s string) (float64, bool) {
	var (
		b        strings.Builder
		negative bool
		seenNum  bool
	)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenNum = true
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteRune(r)
		case r == '-' && !seenNum:
			negative = true
		}
	}
	num := b.String()
	if !seenNum {
		return 0, false
	}

	// 小数点より後にカンマがある、またはカンマ区切りが3桁でない場合は曖昧
	intPart, _, _ := strings.Cut(num, ".")
	if strings.Contains(num[len(intPart):], ",") {
		return 0, false
	}
	groups := strings.Split(intPart, ",")
	for i, g := range groups {
		if (i > 0 && len(g) != 3) || (i == 0 && g == "" && len(groups) > 1) {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

func normalizeDate(s string) string {
	for _, layout := range receiptLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
