package reconciler

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// chartAxes 轴标题键与轴元素标签的对应
var chartAxes = []struct{ key, tag string }{
	{"category", "catAx"},
	{"value", "valAx"},
	{"series", "serAx"},
}

// updateChart 回写图表的文字内容：标题、系列名、轴标题与数据点标签。
// 分类与数值是数据不是文案，永远不回写。
func (t *task) updateChart(slidePath string, frame *etree.Element, data *presentation.ChartData) {
	chartPath, ok := t.pkg.ChartPartFor(slidePath, frame)
	if !ok {
		t.logger.Warn("图表部件定位失败", zap.String("part", slidePath))
		return
	}
	doc, err := t.pkg.Doc(chartPath)
	if err != nil {
		t.logger.Warn("图表部件解析失败", zap.String("part", chartPath), zap.Error(err))
		return
	}
	chartEl := pptx.ChartEl(doc)
	if chartEl == nil {
		return
	}

	changed := false
	if data.Title != nil && *data.Title != "" && pptx.HasTitle(chartEl) {
		if rich := pptx.TitleRich(chartEl); rich != nil {
			pptx.SetFrameText(rich, *data.Title)
			t.enableAutoShrink(rich)
			t.rtlParagraphs(rich)
			changed = true
		}
	}

	for _, axis := range chartAxes {
		title, ok := data.AxisTitles[axis.key]
		if !ok || title == "" {
			continue
		}
		rich := pptx.AxisTitleRich(chartEl, axis.tag)
		if rich == nil {
			continue
		}
		pptx.SetFrameText(rich, title)
		t.rtlParagraphs(rich)
		changed = true
	}

	series := pptx.Series(chartEl)
	if len(data.DataValues) > 0 {
		for i, ser := range series {
			if i >= len(data.DataValues) {
				break
			}
			if t.updateSeries(ser, data.DataValues[i]) {
				changed = true
			}
		}
	} else {
		// 旧式树只带系列名列表
		for i, ser := range series {
			if i >= len(data.SeriesNames) {
				break
			}
			if data.SeriesNames[i] != "" && pptx.SetSeriesName(ser, data.SeriesNames[i]) {
				changed = true
			}
		}
	}

	if changed {
		t.pkg.MarkDirty(chartPath)
	}
	t.st.ChartsUpdated++
}

// updateSeries 回写单个系列的名称与自定义数据点标签
func (t *task) updateSeries(ser *etree.Element, sv *presentation.ChartSeries) bool {
	changed := false
	if sv.SeriesName != "" && pptx.SetSeriesName(ser, sv.SeriesName) {
		changed = true
	}
	if len(sv.DataLabels) == 0 {
		return changed
	}

	byIndex := make(map[int]string, len(sv.DataLabels))
	for _, dl := range sv.DataLabels {
		if dl.Text != "" {
			byIndex[dl.PointIndex] = dl.Text
		}
	}
	for _, entry := range pptx.SeriesDataLabels(ser) {
		text, ok := byIndex[entry.PointIndex]
		if !ok {
			continue
		}
		pptx.SetFrameText(entry.Rich, text)
		t.rtlParagraphs(entry.Rich)
		changed = true
	}
	return changed
}

// rtlParagraphs RTL 模式下把富文本内全部段落标记为右向
func (t *task) rtlParagraphs(txBody *etree.Element) {
	if !t.rtl {
		return
	}
	for _, para := range pptx.Paragraphs(txBody) {
		t.setRTL(para)
	}
}
