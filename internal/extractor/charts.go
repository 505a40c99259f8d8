package extractor

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// emptyChartData 初始图表负载，集合字段保持空集而非空指针，
// 序列化后与历史 JSON 结构一致
func emptyChartData() *presentation.ChartData {
	return &presentation.ChartData{
		DataValues:    []*presentation.ChartSeries{},
		Categories:    []string{},
		SeriesNames:   []string{},
		AxisTitles:    map[string]string{},
		DataLabels:    []*presentation.DataLabel{},
		LegendEntries: []string{},
	}
}

// extractChart 提取图表内容。图表存放在独立部件中，
// 通过形状上的关系 ID 定位；部件解析失败时返回空负载。
func (e *Extractor) extractChart(pkg *pptx.Package, slidePath string, shape *etree.Element) *presentation.ChartData {
	data := emptyChartData()

	chartPath, ok := pkg.ChartPartFor(slidePath, shape)
	if !ok {
		e.logger.Warn("图表部件定位失败",
			zap.String("part", slidePath),
			zap.String("shape", pptx.ShapeName(shape)))
		return data
	}
	doc, err := pkg.Doc(chartPath)
	if err != nil {
		e.logger.Warn("图表部件解析失败", zap.String("part", chartPath), zap.Error(err))
		return data
	}

	chartEl := pptx.ChartEl(doc)
	if chartEl == nil {
		return data
	}

	if kind, ok := pptx.ChartKind(chartEl); ok {
		data.ChartType = presentation.String(kind)
	}
	if style, ok := pptx.ChartStyle(doc); ok {
		data.ChartStyle = presentation.Int(style)
	}
	if pptx.HasTitle(chartEl) {
		data.HasTitle = true
		if rich := pptx.TitleRich(chartEl); rich != nil {
			data.Title = presentation.String(pptx.FrameText(rich))
		}
	}

	for _, axis := range []struct{ tag, key string }{
		{"catAx", "category"},
		{"valAx", "value"},
		{"serAx", "series"},
	} {
		if rich := pptx.AxisTitleRich(chartEl, axis.tag); rich != nil {
			data.AxisTitles[axis.key] = pptx.FrameText(rich)
		}
	}

	for i, ser := range pptx.Series(chartEl) {
		series := &presentation.ChartSeries{
			Values:     []float64{},
			DataLabels: []*presentation.DataLabel{},
		}
		if name, ok := pptx.SeriesName(ser); ok {
			series.SeriesName = name
		}
		series.Values = append(series.Values, pptx.SeriesValues(ser)...)
		for _, entry := range pptx.SeriesDataLabels(ser) {
			text := pptx.FrameText(entry.Rich)
			if text == "" {
				continue
			}
			series.DataLabels = append(series.DataLabels, &presentation.DataLabel{
				PointIndex: entry.PointIndex,
				Text:       text,
			})
		}
		data.DataValues = append(data.DataValues, series)
		data.SeriesNames = append(data.SeriesNames, series.SeriesName)

		if i == 0 {
			data.Categories = append(data.Categories, pptx.SeriesCategories(ser)...)
		}
	}

	return data
}
