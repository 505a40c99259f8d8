// Package translator 对中间树做纯值变换：收集每张幻灯片的叶子文本，
// 成批送往翻译服务，再把译文写回树中同一位置。格式字段一概不动，
// 运行的切分保持原样，语义衔接交给容器的运行结构决定。
package translator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
	"github.com/nerdneilsfield/go-pptx-translator/internal/stats"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// BatchService 文本替换契约：等长同序，空白透传
type BatchService interface {
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)
}

// Translator 树级翻译器
type Translator struct {
	service     BatchService
	logger      *zap.Logger
	maxAttempts int
	concurrency int
	backoff     time.Duration

	// onSlideDone 每张幻灯片完成后的回调，进度条挂在这里
	onSlideDone func(slideNumber int)
}

// New 创建翻译器
func New(service BatchService, cfg *config.Config, logger *zap.Logger) *Translator {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	backoff := time.Duration(cfg.RetryDelay) * time.Second
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Translator{
		service:     service,
		logger:      logger,
		maxAttempts: maxAttempts,
		concurrency: concurrency,
		backoff:     backoff,
	}
}

// OnSlideDone 设置幻灯片完成回调，并发下可能乱序触发
func (t *Translator) OnSlideDone(fn func(slideNumber int)) {
	t.onSlideDone = fn
}

// TranslatePresentation 翻译整棵树并返回新树，原树不动。
// 幻灯片之间互相独立，按配置的并发度并行处理；
// 译文树带上目标语言标签与书写方向。
func (t *Translator) TranslatePresentation(ctx context.Context, pres *presentation.Presentation, lang config.Language) (*presentation.Presentation, *stats.Translation, error) {
	data, err := presentation.Encode(pres)
	if err != nil {
		return nil, nil, fmt.Errorf("拷贝演示文稿树失败: %w", err)
	}
	out, err := presentation.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("拷贝演示文稿树失败: %w", err)
	}
	out.TargetLanguage = lang.Name
	out.IsRTL = lang.RTL || config.IsRTLLanguage(lang.Name)

	st := &stats.Translation{}
	var mu sync.Mutex

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < t.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				slide := out.Slides[idx]
				best, residual, slideErr := t.TranslateSlideWithRetry(ctx, slide)
				if slideErr != nil {
					t.logger.Warn("幻灯片翻译失败，保留原文",
						zap.Int("slide", slide.SlideNumber),
						zap.Error(slideErr))
				} else {
					out.Slides[idx] = best
				}
				mu.Lock()
				st.UntranslatedLeaves += residual
				mu.Unlock()
				if t.onSlideDone != nil {
					t.onSlideDone(slide.SlideNumber)
				}
			}
		}()
	}

	for i := range out.Slides {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return nil, nil, err
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return out, st, nil
}

// translateSlide 翻译一张幻灯片（就地改写）。
// 文本槽位的收集顺序固定，译文按同一顺序写回。
func (t *Translator) translateSlide(ctx context.Context, slide *presentation.Slide) error {
	slots := collectSlots(slide)
	if len(slots) == 0 {
		return nil
	}

	texts := make([]string, len(slots))
	for i, s := range slots {
		texts[i] = s.get()
	}

	translated, err := t.service.TranslateBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(translated) != len(texts) {
		return fmt.Errorf("翻译服务返回 %d 条译文，请求 %d 条", len(translated), len(texts))
	}

	for i, s := range slots {
		s.set(translated[i])
	}
	slide.RecomputeDerived()
	return nil
}

// slot 一个可翻译的文本槽位
type slot struct {
	get func() string
	set func(string)
}

func runSlot(r *presentation.TextRun) slot {
	return slot{
		get: func() string { return r.Text },
		set: func(v string) { r.Text = v },
	}
}

// collectSlots 按确定顺序收集幻灯片内全部可翻译文本：
// 文本框与表格的运行、图表文案、备注、SmartArt 节点。
// 图表的分类与数值是数据，不在槽位之列。
func collectSlots(slide *presentation.Slide) []slot {
	var slots []slot

	for _, el := range slide.Elements {
		el := el
		for _, para := range el.Paragraphs {
			for _, r := range para.Runs {
				slots = append(slots, runSlot(r))
			}
		}
		if el.Table != nil {
			for _, cell := range el.Table.Cells {
				for _, para := range cell.Paragraphs {
					for _, r := range para.Runs {
						slots = append(slots, runSlot(r))
					}
				}
			}
		}
		if el.Chart != nil {
			slots = append(slots, chartSlots(el.Chart)...)
		}
	}

	if slide.SpeakerNotes != nil {
		notes := slide.SpeakerNotes
		slots = append(slots, slot{
			get: func() string { return notes.Text },
			set: func(v string) { notes.Text = v },
		})
	}

	for _, diagram := range slide.Diagrams {
		for _, node := range diagram.Nodes {
			node := node
			slots = append(slots, slot{
				get: func() string { return node.Text },
				set: func(v string) { node.Text = v },
			})
		}
	}

	return slots
}

// chartSlots 图表的可翻译文案：标题、系列名、轴标题、数据点标签
func chartSlots(chart *presentation.ChartData) []slot {
	var slots []slot

	if chart.Title != nil {
		slots = append(slots, slot{
			get: func() string { return *chart.Title },
			set: func(v string) { *chart.Title = v },
		})
	}

	for i := range chart.SeriesNames {
		i := i
		slots = append(slots, slot{
			get: func() string { return chart.SeriesNames[i] },
			set: func(v string) { chart.SeriesNames[i] = v },
		})
	}
	for _, series := range chart.DataValues {
		series := series
		slots = append(slots, slot{
			get: func() string { return series.SeriesName },
			set: func(v string) { series.SeriesName = v },
		})
		for _, dl := range series.DataLabels {
			dl := dl
			slots = append(slots, slot{
				get: func() string { return dl.Text },
				set: func(v string) { dl.Text = v },
			})
		}
	}

	for _, key := range chartAxisKeys(chart.AxisTitles) {
		key := key
		slots = append(slots, slot{
			get: func() string { return chart.AxisTitles[key] },
			set: func(v string) { chart.AxisTitles[key] = v },
		})
	}
	for _, dl := range chart.DataLabels {
		dl := dl
		slots = append(slots, slot{
			get: func() string { return dl.Text },
			set: func(v string) { dl.Text = v },
		})
	}

	return slots
}

// chartAxisKeys 轴标题键的固定遍历顺序
func chartAxisKeys(titles map[string]string) []string {
	keys := make([]string, 0, len(titles))
	for _, k := range []string{"category", "value", "series"} {
		if _, ok := titles[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range titles {
		switch k {
		case "category", "value", "series":
		default:
			keys = append(keys, k)
		}
	}
	return keys
}
