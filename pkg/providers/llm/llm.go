// Package llm 实现基于聊天补全接口的批量翻译后端。
// 请求把整批文本编成 id/text JSON 数组发给模型，响应必须带回
// 每个 id 恰好一次，缺失或多余都视为协议违规整批作废。
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers"
)

// Config LLM 配置
type Config struct {
	providers.BaseConfig

	// Model 模型名称
	Model string `json:"model"`

	// Temperature 采样温度，翻译任务宜低
	Temperature float32 `json:"temperature"`

	// SystemPrompt 为空时使用内置翻译提示词
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
	}
}

// Provider 聊天补全翻译提供商
type Provider struct {
	config Config
	client *openai.Client
}

var _ providers.Provider = (*Provider)(nil)

// New 创建 LLM 提供商
func New(config Config) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.APIEndpoint != "" {
		clientConfig.BaseURL = config.APIEndpoint
	}
	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name 提供商名称
func (p *Provider) Name() string {
	return "llm"
}

const systemPrompt = `You are a professional translator for presentation slides.
Translate each item's "text" field from %s to %s.
Keep product names, numbers, and placeholders unchanged.
Respond with a JSON array of objects {"id": <same id>, "text": "<translation>"} and nothing else.`

// item 批量协议中的一条文本
type item struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// TranslateBatch 翻译一批文本
func (p *Provider) TranslateBatch(ctx context.Context, req *providers.Request) ([]string, error) {
	items := make([]item, len(req.Texts))
	for i, t := range req.Texts {
		items[i] = item{ID: i, Text: t}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	system := p.config.SystemPrompt
	if system == "" {
		source := req.SourceLang
		if source == "" {
			source = "the source language"
		}
		system = fmt.Sprintf(systemPrompt, source, req.TargetLang)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Temperature: p.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}

	return parseBatchResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

// fencePattern 剥掉模型爱加的 Markdown 代码围栏
var fencePattern = regexp2.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```", 0)

// parseBatchResponse 解析模型回复并按 id 还原顺序。
// 每个 id 必须恰好出现一次，否则按数量不符处理。
func parseBatchResponse(content string, want int) ([]string, error) {
	cleaned := strings.TrimSpace(content)
	if m, err := fencePattern.FindStringMatch(cleaned); err == nil && m != nil {
		cleaned = m.GroupByNumber(1).String()
	}

	// 容忍回复前后的闲聊文字，截取最外层数组
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("llm response has no JSON array: %w", providers.ErrLengthMismatch)
	}

	var items []item
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("llm response is not valid JSON: %w", providers.ErrLengthMismatch)
	}
	if len(items) != want {
		return nil, fmt.Errorf("llm returned %d items for %d texts: %w",
			len(items), want, providers.ErrLengthMismatch)
	}

	out := make([]string, want)
	seen := make([]bool, want)
	for _, it := range items {
		if it.ID < 0 || it.ID >= want || seen[it.ID] {
			return nil, fmt.Errorf("llm returned unexpected item id %d: %w",
				it.ID, providers.ErrLengthMismatch)
		}
		seen[it.ID] = true
		out[it.ID] = it.Text
	}
	return out, nil
}
