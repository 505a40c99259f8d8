// Package raw 实现原样返回的空翻译后端，
// 供往返一致性测试与预演模式使用。
package raw

import (
	"context"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers"
)

// Provider 原样回写提供商
type Provider struct{}

var _ providers.Provider = (*Provider)(nil)

// New 创建 Raw 提供商
func New() *Provider {
	return &Provider{}
}

// Name 提供商名称
func (p *Provider) Name() string {
	return "raw"
}

// TranslateBatch 原样返回全部文本
func (p *Provider) TranslateBatch(_ context.Context, req *providers.Request) ([]string, error) {
	out := make([]string, len(req.Texts))
	copy(out, req.Texts)
	return out, nil
}
