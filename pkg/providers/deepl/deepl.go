// Package deepl 实现 DeepL v2 批量翻译后端。
package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers/retry"
)

const (
	proEndpoint  = "https://api.deepl.com/v2/translate"
	freeEndpoint = "https://api-free.deepl.com/v2/translate"
)

// Config DeepL 配置
type Config struct {
	providers.BaseConfig

	// UseFreeAPI 使用免费版接口
	UseFreeAPI bool `json:"use_free_api"`

	// Formality 语气偏好，如 prefer_more
	Formality string `json:"formality,omitempty"`

	// ModelType 模型偏好，如 prefer_quality_optimized
	ModelType string `json:"model_type,omitempty"`

	// GlossaryID 术语表 ID，服务端拒绝后自动停用
	GlossaryID string `json:"glossary_id,omitempty"`

	// RetryConfig 请求级重试配置
	RetryConfig retry.Config `json:"retry_config"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Formality:   "prefer_more",
		ModelType:   "prefer_quality_optimized",
		RetryConfig: retry.DefaultConfig(),
	}
}

// Provider DeepL 提供商
type Provider struct {
	config     Config
	httpClient *http.Client
	retrier    *retry.Retrier

	// glossaryFailed 术语表被服务端拒绝过，后续请求不再携带
	glossaryFailed atomic.Bool
}

var _ providers.Provider = (*Provider)(nil)

// New 创建 DeepL 提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		if config.UseFreeAPI {
			config.APIEndpoint = freeEndpoint
		} else {
			config.APIEndpoint = proEndpoint
		}
	}
	return &Provider{
		config:  config,
		retrier: retry.New(config.RetryConfig),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name 提供商名称
func (p *Provider) Name() string {
	return "deepl"
}

// translateRequest DeepL v2 JSON 请求体
type translateRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
	Formality  string   `json:"formality,omitempty"`
	ModelType  string   `json:"model_type,omitempty"`
	GlossaryID string   `json:"glossary_id,omitempty"`
}

// translateResponse DeepL v2 响应体
type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// TranslateBatch 翻译一批文本。
// 400 响应若指向术语表，停用术语表后整批重发一次；
// 译文数量与请求不一致返回 ErrLengthMismatch，由上层逐条兜底。
func (p *Provider) TranslateBatch(ctx context.Context, req *providers.Request) ([]string, error) {
	body := translateRequest{
		Text:       req.Texts,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Formality:  p.config.Formality,
		ModelType:  p.config.ModelType,
	}
	if p.config.GlossaryID != "" && !p.glossaryFailed.Load() {
		body.GlossaryID = p.config.GlossaryID
	}

	resp, err := p.post(ctx, &body)
	if err != nil {
		if body.GlossaryID != "" && isGlossaryRejection(err) {
			p.glossaryFailed.Store(true)
			body.GlossaryID = ""
			resp, err = p.post(ctx, &body)
		}
		if err != nil {
			return nil, fmt.Errorf("deepl translate failed: %w", err)
		}
	}

	if len(resp.Translations) != len(req.Texts) {
		return nil, fmt.Errorf("deepl returned %d translations for %d texts: %w",
			len(resp.Translations), len(req.Texts), providers.ErrLengthMismatch)
	}
	out := make([]string, len(resp.Translations))
	for i, tr := range resp.Translations {
		out[i] = tr.Text
	}
	return out, nil
}

// post 发送一次翻译请求，网络与 5xx/429 由重试器处理
func (p *Provider) post(ctx context.Context, body *translateRequest) (*translateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := p.retrier.Do(ctx, func() (*http.Response, error) {
		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost,
			p.config.APIEndpoint, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, reqErr
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+p.config.APIKey)
		for k, v := range p.config.Headers {
			httpReq.Header.Set(k, v)
		}
		return p.httpClient.Do(httpReq)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return &parsed, nil
}

// isGlossaryRejection 400 响应是否由术语表引起
func isGlossaryRejection(err error) bool {
	var httpErr *retry.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(httpErr.Body), "glossary")
}
