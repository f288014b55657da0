// Package gemini はGoogle Gemini APIを使用した補完クライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout は1回の補完呼び出しのデフォルトタイムアウトです。
	DefaultTimeout = 60 * time.Second
)

// Config はGeminiクライアントの設定です。
type Config struct {
	APIKey      string        // 空の場合はADC（Vertex AI）を使用
	Model       string        // 空の場合はDefaultModel
	BaseURL     string        // テストやプロキシ用。空の場合はSDKの既定値
	Timeout     time.Duration // 1回の呼び出しのタイムアウト
	Temperature *float32      // nilの場合はモデルの既定値
}

// GeminiClient はGoogle Gemini APIで1回だけ補完を行います。リトライはしません。
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	config  *genai.GenerateContentConfig
}

// GeminiClientがCompletionClientを実装していることをコンパイル時に検証します。
var _ usecase.CompletionClient = (*GeminiClient)(nil)

// NewGeminiClient はGeminiClientの新しいインスタンスを生成します。
// APIKeyが空の場合は環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT,
// GOOGLE_CLOUD_LOCATION によるADC認証を使用します。
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" || cfg.BaseURL != "" {
		cc = &genai.ClientConfig{
			APIKey:      cfg.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var gc *genai.GenerateContentConfig
	if cfg.Temperature != nil {
		gc = &genai.GenerateContentConfig{Temperature: cfg.Temperature}
	}
	return &GeminiClient{client: client, model: model, timeout: timeout, config: gc}, nil
}

// Complete はプロンプトを送信し、最初の候補のテキストを返します。
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", domain.ErrUpstreamRequest, err)
	}
	return firstCandidateText(resp)
}

// firstCandidateText はcandidates[0].content.parts[*].textを連結して返します。
// 経路のどこかが欠けている場合はdomain.ErrMalformedEnvelopeを返します。
func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: missing candidates", domain.ErrMalformedEnvelope)
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", fmt.Errorf("%w: missing content", domain.ErrMalformedEnvelope)
	}
	if len(content.Parts) == 0 {
		return "", fmt.Errorf("%w: missing parts", domain.ErrMalformedEnvelope)
	}

	var sb strings.Builder
	for _, p := range content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: missing text", domain.ErrMalformedEnvelope)
	}
	return sb.String(), nil
}
