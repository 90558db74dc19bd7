// Package http は外部サービス呼び出し用のHTTPクライアントを提供します。
package http

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API（Gemini等）の呼び出し用に設定されたHTTPクライアントを作成します。
//
// http.DefaultClient にはタイムアウトがないため使用しません。timeout はリクエスト全体
// （接続・送信・応答本文の読み取り）の上限です。接続確立とTLSハンドシェイクは短く打ち切ります。
// 各呼び出しの所要時間はDebugレベルで記録されます。
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout, Transport: &loggingTransport{next: newTransport()}}
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// loggingTransport は上流呼び出しの結果と所要時間を記録します。URLのクエリ（APIキーを含み得る）は出力しません。
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		slog.Warn("upstream request failed", "host", req.URL.Host, "path", req.URL.Path, "elapsed", elapsed, "error", err)
		return nil, err
	}
	slog.Debug("upstream request", "host", req.URL.Host, "path", req.URL.Path, "status", resp.StatusCode, "elapsed", elapsed)
	return resp, nil
}
