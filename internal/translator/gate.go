package translator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// TranslateSlideWithRetry 带质量门控的单张幻灯片翻译。
// 译文与原文逐字相同的非空运行算一次未翻译；出现未翻译叶子就
// 固定间隔后重试，直到清零或尝试耗尽。返回历次尝试中未翻译数
// 最低的那次（并列取最早），而不是最后一次——后来的尝试不见得更好。
// 所有尝试全部出错时返回原幻灯片与错误，调用方保留原文继续。
func (t *Translator) TranslateSlideWithRetry(ctx context.Context, src *presentation.Slide) (*presentation.Slide, int, error) {
	var best *presentation.Slide
	bestCount := -1
	var lastErr error

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return t.settle(src, best, bestCount, ctx.Err())
			case <-time.After(t.backoff):
			}
		}

		work, err := src.Clone()
		if err != nil {
			return src, 0, err
		}
		if err := t.translateSlide(ctx, work); err != nil {
			// 出错的尝试等同于全败，不参与择优
			lastErr = err
			t.logger.Warn("翻译尝试失败",
				zap.Int("slide", src.SlideNumber),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if ctx.Err() != nil {
				return t.settle(src, best, bestCount, ctx.Err())
			}
			continue
		}

		count := countUntranslated(src, work)
		if count == 0 {
			return work, 0, nil
		}
		if bestCount < 0 || count < bestCount {
			best = work
			bestCount = count
		}
		t.logger.Debug("存在未翻译叶子，准备重试",
			zap.Int("slide", src.SlideNumber),
			zap.Int("attempt", attempt),
			zap.Int("untranslated", count))
	}

	return t.settle(src, best, bestCount, lastErr)
}

// settle 尝试结束后的收尾：有可用结果就返回最佳尝试，
// 一次都没成功时退回原幻灯片。
func (t *Translator) settle(src, best *presentation.Slide, bestCount int, lastErr error) (*presentation.Slide, int, error) {
	if best != nil {
		return best, bestCount, nil
	}
	return src, 0, lastErr
}

// countUntranslated 统计译文与原文逐字相同的叶子运行数。
// 原文为空白的运行从不计入。两棵树结构相同，运行按同一
// 确定顺序配对。
func countUntranslated(src, translated *presentation.Slide) int {
	srcRuns := src.TextRuns()
	dstRuns := translated.TextRuns()
	n := len(srcRuns)
	if len(dstRuns) < n {
		n = len(dstRuns)
	}

	count := 0
	for i := 0; i < n; i++ {
		if strings.TrimSpace(srcRuns[i].Text) == "" {
			continue
		}
		if srcRuns[i].Text == dstRuns[i].Text {
			count++
		}
	}
	return count
}
