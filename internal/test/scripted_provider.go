package test

import (
	"context"
	"strings"
	"sync"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers"
)

// ScriptedProvider 按脚本逐次应答的翻译后端，供质量门控测试
// 控制每一轮尝试的产出。脚本耗尽后沿用最后一条。
type ScriptedProvider struct {
	mu sync.Mutex

	// Script 每次整批调用使用的文本变换，nil 条目表示该次调用报错
	Script []func(text string) string

	calls int
}

var _ providers.Provider = (*ScriptedProvider)(nil)

// Name 提供商名称
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// Calls 整批调用次数
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// TranslateBatch 按脚本应答
func (p *ScriptedProvider) TranslateBatch(_ context.Context, req *providers.Request) ([]string, error) {
	p.mu.Lock()
	idx := p.calls
	p.calls++
	if idx >= len(p.Script) {
		idx = len(p.Script) - 1
	}
	transform := p.Script[idx]
	p.mu.Unlock()

	if transform == nil {
		return nil, context.DeadlineExceeded
	}
	out := make([]string, len(req.Texts))
	for i, t := range req.Texts {
		out[i] = transform(t)
	}
	return out, nil
}

// ScriptedService 按脚本逐次应答的翻译服务，满足树级翻译器的
// 文本替换契约。与 ScriptedProvider 的差别在于绕过服务层的
// 兜底逻辑，每次整批调用恰好消耗一条脚本。
type ScriptedService struct {
	mu     sync.Mutex
	Script []func(text string) string
	calls  int
}

// Calls 调用次数
func (s *ScriptedService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// TranslateBatch 按脚本应答，nil 条目表示该次调用报错
func (s *ScriptedService) TranslateBatch(_ context.Context, texts []string) ([]string, error) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	if idx >= len(s.Script) {
		idx = len(s.Script) - 1
	}
	transform := s.Script[idx]
	s.mu.Unlock()

	if transform == nil {
		return nil, context.DeadlineExceeded
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = t
			continue
		}
		out[i] = transform(t)
	}
	return out, nil
}

// Upper 把非空白文本转成大写的脚本变换
func Upper(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	return strings.ToUpper(text)
}

// Identity 原样返回的脚本变换
func Identity(text string) string {
	return text
}
