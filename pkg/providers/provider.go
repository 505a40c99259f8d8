// Package providers 定义批量翻译后端的公共接口。
// 后端接收一批文本并按原顺序返回同样数量的译文，
// 数量不一致视为协议违规，由上层服务降级为逐条翻译。
package providers

import (
	"context"
	"errors"
	"time"
)

// ErrLengthMismatch 后端返回的译文数量与请求不一致。
// 不按 id 重新对位，调用方应整批作废并逐条重试。
var ErrLengthMismatch = errors.New("backend returned a different number of translations than requested")

// Request 一批待翻译文本
type Request struct {
	// Texts 原文，顺序即译文顺序
	Texts []string

	// SourceLang 源语言代码，如 "EN"，可为空表示自动检测
	SourceLang string

	// TargetLang 目标语言代码，如 "FR"
	TargetLang string
}

// TotalCharacters 请求中的字符总量
func (r *Request) TotalCharacters() int64 {
	var total int64
	for _, t := range r.Texts {
		total += int64(len([]rune(t)))
	}
	return total
}

// Provider 批量翻译后端
type Provider interface {
	// Name 后端名称
	Name() string

	// TranslateBatch 翻译一批文本，译文与原文等长同序
	TranslateBatch(ctx context.Context, req *Request) ([]string, error)
}

// BaseConfig 后端基础配置
type BaseConfig struct {
	// APIKey API 密钥
	APIKey string `json:"api_key,omitempty"`

	// APIEndpoint 服务地址
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// Timeout 单次请求超时
	Timeout time.Duration `json:"timeout"`

	// MaxRetries 请求级重试次数
	MaxRetries int `json:"max_retries"`

	// RetryDelay 重试基础间隔，按次数指数放大
	RetryDelay time.Duration `json:"retry_delay"`

	// Headers 附加请求头
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Headers:    make(map[string]string),
	}
}
