// Package openai はOpenAI互換のChat Completions APIを使用した補完クライアントを提供します。
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/usecase"
)

const (
	// DefaultBaseURL はOpenAI APIの既定のベースURLです。
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel は既定のモデルです。
	DefaultModel = "gpt-4o-mini"
	// maxErrorBody はエラー応答から読み取る最大バイト数です。
	maxErrorBody = 4096
)

// Config はOpenAI互換クライアントの設定です。
type Config struct {
	APIKey      string
	BaseURL     string // 例: "https://api.openai.com/v1"。末尾の /chat/completions は省略可
	Model       string
	Temperature *float32
}

// ChatClient はChat Completions APIで1回だけ補完を行います。リトライはしません。
type ChatClient struct {
	cfg    Config
	url    string
	client *http.Client
}

// ChatClientがCompletionClientを実装していることをコンパイル時に検証します。
var _ usecase.CompletionClient = (*ChatClient)(nil)

// NewChatClient は指定された設定とHTTPクライアントでChatClientを生成します。
// タイムアウトはHTTPクライアント側で設定します。
func NewChatClient(cfg Config, client *http.Client) *ChatClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimSuffix(base, "/chat/completions")
	return &ChatClient{cfg: cfg, url: base + "/chat/completions", client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

// Complete はプロンプトをユーザーメッセージとして送信し、choices[0].message.contentを返します。
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamRequest, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		msg := strings.TrimSpace(gjson.GetBytes(b, "error.message").String())
		if msg == "" {
			msg = res.Status
		}
		return "", fmt.Errorf("%w: status=%d: %s", domain.ErrUpstreamStatus, res.StatusCode, msg)
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrUpstreamRequest, err)
	}
	slog.Debug("chat completion received", "model", c.cfg.Model, "bytes", len(b), "elapsed", time.Since(start))

	return messageContent(b)
}

// messageContent はレスポンスからchoices[0].message.contentを取り出します。
func messageContent(b []byte) (string, error) {
	if !gjson.ValidBytes(b) {
		return "", fmt.Errorf("%w: body is not JSON", domain.ErrMalformedEnvelope)
	}
	doc := gjson.ParseBytes(b)
	choices := doc.Get("choices")
	if !choices.IsArray() || len(choices.Array()) == 0 {
		return "", fmt.Errorf("%w: missing choices", domain.ErrMalformedEnvelope)
	}
	msg := choices.Get("0.message")
	if !msg.IsObject() {
		return "", fmt.Errorf("%w: missing message", domain.ErrMalformedEnvelope)
	}
	content := msg.Get("content")
	if content.Type != gjson.String || strings.TrimSpace(content.String()) == "" {
		return "", fmt.Errorf("%w: missing content", domain.ErrMalformedEnvelope)
	}
	return content.String(), nil
}
