// Package reconciler 把翻译后的中间树写回原始容器。
// 容器是模板：形状、版式与全部视觉格式保持原样，只替换文本内容。
// 元素靠 shape_id 对位，找不到就跳过计数，单个元素的失败不影响整体。
package reconciler

import (
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/internal/stats"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// Options 回写行为开关
type Options struct {
	// MirrorRTLShapes RTL 目标语言时水平镜像顶层形状
	MirrorRTLShapes bool
	// AutoFitText 回写文本后打开自动换行与缩字适应
	AutoFitText bool
}

// DefaultOptions 两项开关默认全部开启
func DefaultOptions() Options {
	return Options{MirrorRTLShapes: true, AutoFitText: true}
}

// Reconciler 译文回写器
type Reconciler struct {
	logger *zap.Logger
	opts   Options
}

// New 创建回写器
func New(logger *zap.Logger, opts Options) *Reconciler {
	return &Reconciler{logger: logger, opts: opts}
}

// task 一次回写的运行状态，随 Reconcile 创建，不跨调用复用
type task struct {
	pkg    *pptx.Package
	rtl    bool
	width  int64
	opts   Options
	st     *stats.Reassembly
	logger *zap.Logger
}

// Reconcile 把翻译树写回容器并返回回写计数。
// 幻灯片数以两边较小者为准，超出部分不处理。
// 只有容器级读取失败会让整个回写中止。
func (r *Reconciler) Reconcile(pkg *pptx.Package, translated *presentation.Presentation) (*stats.Reassembly, error) {
	slidePaths, err := pkg.SlidePaths()
	if err != nil {
		return nil, err
	}

	t := &task{
		pkg:    pkg,
		rtl:    translated.IsRTL,
		opts:   r.opts,
		st:     &stats.Reassembly{},
		logger: r.logger,
	}

	if t.rtl && r.opts.MirrorRTLShapes {
		width, err := pkg.SlideWidth()
		if err != nil {
			r.logger.Warn("读取幻灯片宽度失败，跳过镜像翻转", zap.Error(err))
		} else {
			t.width = width
		}
	}

	count := len(slidePaths)
	if len(translated.Slides) != count {
		r.logger.Warn("幻灯片数量不一致，按较小一侧处理",
			zap.Int("container", count),
			zap.Int("translated", len(translated.Slides)))
		if len(translated.Slides) < count {
			count = len(translated.Slides)
		}
	}

	for i := 0; i < count; i++ {
		t.reconcileSlide(slidePaths[i], translated.Slides[i])
		t.st.SlidesProcessed++
	}
	return t.st, nil
}

// reconcileSlide 回写单张幻灯片：先做 RTL 镜像，再逐元素写文本，
// 最后处理备注与 SmartArt。任何局部失败记录后继续。
func (t *task) reconcileSlide(slidePath string, slide *presentation.Slide) {
	doc, err := t.pkg.Doc(slidePath)
	if err != nil {
		t.logger.Warn("幻灯片部件解析失败", zap.String("part", slidePath), zap.Error(err))
		return
	}
	spTree := pptx.ShapeTree(doc)
	if spTree == nil {
		t.logger.Warn("幻灯片缺少形状树", zap.String("part", slidePath))
		return
	}

	changed := false
	if t.rtl && t.width > 0 {
		if t.mirrorSlide(spTree) {
			changed = true
		}
	}

	for _, el := range slide.Elements {
		shape := pptx.FindShapeByID(spTree, el.ShapeID)
		if shape == nil {
			t.st.ElementsSkipped++
			t.logger.Debug("形状不存在，跳过元素",
				zap.String("part", slidePath),
				zap.Int("shape_id", el.ShapeID),
				zap.String("type", el.ElementType))
			continue
		}
		if t.reconcileElement(slidePath, shape, el) {
			changed = true
		}
	}

	if slide.SpeakerNotes != nil {
		t.updateNotes(slidePath, slide.SpeakerNotes)
	}
	for _, diagram := range slide.Diagrams {
		t.updateDiagram(diagram)
	}

	if changed {
		t.pkg.MarkDirty(slidePath)
	}
}

// reconcileElement 按元素类型分发回写，返回幻灯片部件是否被改动。
// 图片与未知类型没有可回写的文本，原样保留。
func (t *task) reconcileElement(slidePath string, shape *etree.Element, el *presentation.Element) bool {
	switch {
	case el.ElementType == presentation.ElementTextBox,
		el.ElementType == presentation.ElementAutoShape:
		changed := t.updateTextFrame(shape, el.Paragraphs)
		t.st.ElementsUpdated++
		return changed

	case el.ElementType == presentation.ElementTable:
		if el.Table == nil {
			return false
		}
		changed := t.updateTable(slidePath, shape, el.Table)
		t.st.ElementsUpdated++
		return changed

	case el.ElementType == presentation.ElementChart:
		if el.Chart == nil {
			return false
		}
		t.updateChart(slidePath, shape, el.Chart)
		t.st.ElementsUpdated++
		// 图表内容在独立部件中，幻灯片本体不变
		return false

	case strings.HasPrefix(el.ElementType, presentation.ElementOtherPrefix):
		return false
	}
	return false
}
