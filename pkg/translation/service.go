// Package translation 实现提取与重组之间的文本替换契约：
// 一批字符串进、等长同序的一批字符串出，空白文本原样透传且不计统计。
// 远程调用失败逐级降级：整批重试、逐条兜底、最终保留原文。
package translation

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers"
)

// Glossary 本地术语表查询接口，命中的文本跳过远程翻译
type Glossary interface {
	Lookup(text string) (string, bool)
}

// Options 服务配置
type Options struct {
	// SourceLang 源语言代码，可为空
	SourceLang string

	// TargetLang 目标语言代码
	TargetLang string

	// BatchSize 单次后端调用携带的最大文本数
	BatchSize int

	// Glossary 可为 nil
	Glossary Glossary
}

// Stats 服务累计计数，跨并发调用安全
type Stats struct {
	// APICalls 后端请求次数，含逐条兜底
	APICalls int

	// TextsTranslated 实际送出翻译的文本数
	TextsTranslated int

	// Characters 送出翻译的字符总量
	Characters int64

	// PredefinedHits 命中术语表的文本数
	PredefinedHits int

	// FallbackTexts 经历逐条兜底的文本数
	FallbackTexts int
}

// Service 批量翻译服务
type Service struct {
	provider providers.Provider
	opts     Options
	logger   *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// NewService 创建翻译服务
func NewService(provider providers.Provider, opts Options, logger *zap.Logger) *Service {
	if opts.BatchSize < 1 {
		opts.BatchSize = 50
	}
	return &Service{
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// Provider 返回底层后端名称
func (s *Service) Provider() string {
	return s.provider.Name()
}

// Stats 返回累计计数的快照
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// TranslateBatch 翻译一批文本，返回值与输入等长同序。
// 空白文本原样透传；术语表命中的条目直接替换；
// 其余分批发往后端。失败不向上传播，降级后保留原文。
// 只有上下文取消会返回错误。
func (s *Service) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	copy(out, texts)

	var pending []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if s.opts.Glossary != nil {
			if hit, ok := s.opts.Glossary.Lookup(t); ok {
				out[i] = hit
				s.mu.Lock()
				s.stats.PredefinedHits++
				s.mu.Unlock()
				continue
			}
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + s.opts.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		s.translateChunk(ctx, texts, out, pending[start:end])
	}
	return out, nil
}

// translateChunk 翻译一个分片，整批失败时逐条兜底
func (s *Service) translateChunk(ctx context.Context, texts, out []string, indexes []int) {
	chunk := make([]string, len(indexes))
	for i, idx := range indexes {
		chunk[i] = texts[idx]
	}
	req := &providers.Request{
		Texts:      chunk,
		SourceLang: s.opts.SourceLang,
		TargetLang: s.opts.TargetLang,
	}

	s.countCall(req, true)
	translated, err := s.provider.TranslateBatch(ctx, req)
	if err == nil && len(translated) != len(chunk) {
		err = providers.ErrLengthMismatch
	}
	if err == nil {
		for i, idx := range indexes {
			out[idx] = translated[i]
		}
		return
	}

	s.logger.Warn("整批翻译失败，逐条兜底",
		zap.String("provider", s.provider.Name()),
		zap.Int("texts", len(chunk)),
		zap.Error(err))

	for i, idx := range indexes {
		if ctx.Err() != nil {
			return
		}
		single := &providers.Request{
			Texts:      chunk[i : i+1],
			SourceLang: s.opts.SourceLang,
			TargetLang: s.opts.TargetLang,
		}
		s.countCall(single, false)
		s.mu.Lock()
		s.stats.FallbackTexts++
		s.mu.Unlock()

		one, oneErr := s.provider.TranslateBatch(ctx, single)
		if oneErr != nil || len(one) != 1 {
			// 最后的退路：保留原文，交给质量门控判定
			s.logger.Warn("逐条翻译失败，保留原文",
				zap.String("text", truncateForLog(chunk[i])),
				zap.Error(oneErr))
			continue
		}
		out[idx] = one[0]
	}
}

// countCall 记录一次后端调用。逐条兜底重发的文本在整批
// 计数中已经统计过，不再累计文本数与字符量。
func (s *Service) countCall(req *providers.Request, countTexts bool) {
	s.mu.Lock()
	s.stats.APICalls++
	if countTexts {
		s.stats.TextsTranslated += len(req.Texts)
		s.stats.Characters += req.TotalCharacters()
	}
	s.mu.Unlock()
}

// truncateForLog 日志里只露出文本开头
func truncateForLog(s string) string {
	r := []rune(s)
	if len(r) <= 40 {
		return s
	}
	return string(r[:40]) + "…"
}
