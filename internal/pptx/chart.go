package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ChartEl 图表部件的 c:chart 元素
func ChartEl(doc *etree.Document) *etree.Element {
	root := doc.Root()
	if root == nil {
		return nil
	}
	return root.SelectElement("chart")
}

// ChartPartFor 通过 graphicFrame 内图表引用的关系 ID 定位图表部件
func (p *Package) ChartPartFor(slidePath string, frame *etree.Element) (string, bool) {
	graphic := frame.SelectElement("graphic")
	if graphic == nil {
		return "", false
	}
	gd := graphic.SelectElement("graphicData")
	if gd == nil {
		return "", false
	}
	chartRef := gd.SelectElement("chart")
	if chartRef == nil {
		return "", false
	}
	rid := chartRef.SelectAttrValue("r:id", "")
	if rid == "" {
		// 前缀不是 r 的生产者，取任意带命名空间的 id 属性
		for _, attr := range chartRef.Attr {
			if attr.Key == "id" && attr.Space != "" {
				rid = attr.Value
				break
			}
		}
	}
	if rid == "" {
		return "", false
	}
	return p.RelTargetByID(slidePath, rid)
}

// ChartStyle 图表样式编号，chartSpace 直接持有
func ChartStyle(doc *etree.Document) (int, bool) {
	root := doc.Root()
	if root == nil {
		return 0, false
	}
	style := root.SelectElement("style")
	if style == nil {
		return 0, false
	}
	return intAttr(style, "val")
}

// PlotGroups 绘图区内的图类元素（barChart、lineChart 等），文档顺序
func PlotGroups(chartEl *etree.Element) []*etree.Element {
	plotArea := chartEl.SelectElement("plotArea")
	if plotArea == nil {
		return nil
	}
	var groups []*etree.Element
	for _, el := range plotArea.ChildElements() {
		if strings.HasSuffix(el.Tag, "Chart") {
			groups = append(groups, el)
		}
	}
	return groups
}

// ChartKind 图表类型原始标签，取第一个图类元素
func ChartKind(chartEl *etree.Element) (string, bool) {
	groups := PlotGroups(chartEl)
	if len(groups) == 0 {
		return "", false
	}
	return groups[0].Tag, true
}

// Series 全部数据系列，组合图表跨图类元素收集
func Series(chartEl *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, group := range PlotGroups(chartEl) {
		out = append(out, group.SelectElements("ser")...)
	}
	return out
}

// TitleRich 标题的富文本元素，公式型标题或无标题返回 nil
func TitleRich(parent *etree.Element) *etree.Element {
	title := parent.SelectElement("title")
	if title == nil {
		return nil
	}
	tx := title.SelectElement("tx")
	if tx == nil {
		return nil
	}
	return tx.SelectElement("rich")
}

// HasTitle 图表是否带标题元素
func HasTitle(chartEl *etree.Element) bool {
	return chartEl.SelectElement("title") != nil
}

// HasLegend 图表是否带图例
func HasLegend(chartEl *etree.Element) bool {
	return chartEl.SelectElement("legend") != nil
}

// seriesNameCache 系列名的 strCache 元素
func seriesNameCache(ser *etree.Element) *etree.Element {
	tx := ser.SelectElement("tx")
	if tx == nil {
		return nil
	}
	strRef := tx.SelectElement("strRef")
	if strRef == nil {
		return nil
	}
	return strRef.SelectElement("strCache")
}

// SeriesName 系列名。优先读公式缓存，字面量名次之。
func SeriesName(ser *etree.Element) (string, bool) {
	if cache := seriesNameCache(ser); cache != nil {
		if pt := cache.SelectElement("pt"); pt != nil {
			if v := pt.SelectElement("v"); v != nil {
				return v.Text(), true
			}
		}
		return "", false
	}
	if tx := ser.SelectElement("tx"); tx != nil {
		if v := tx.SelectElement("v"); v != nil {
			return v.Text(), true
		}
	}
	return "", false
}

// SetSeriesName 改写系列名。公式缓存是显示来源，c:f 指向的
// 工作表引用保持不动，字面量名直接覆盖。
func SetSeriesName(ser *etree.Element, name string) bool {
	if cache := seriesNameCache(ser); cache != nil {
		pt := cache.SelectElement("pt")
		if pt == nil {
			pt = cache.CreateElement("c:pt")
			pt.CreateAttr("idx", "0")
		}
		v := pt.SelectElement("v")
		if v == nil {
			v = pt.CreateElement("c:v")
		}
		v.SetText(name)
		return true
	}
	if tx := ser.SelectElement("tx"); tx != nil {
		if v := tx.SelectElement("v"); v != nil {
			v.SetText(name)
			return true
		}
	}
	return false
}

// cachePoints 引用缓存内的数据点，strCache 与 numCache 结构相同
func cachePoints(container *etree.Element) []*etree.Element {
	if container == nil {
		return nil
	}
	for _, refTag := range []string{"strRef", "numRef"} {
		if ref := container.SelectElement(refTag); ref != nil {
			for _, cacheTag := range []string{"strCache", "numCache"} {
				if cache := ref.SelectElement(cacheTag); cache != nil {
					return cache.SelectElements("pt")
				}
			}
			return nil
		}
	}
	for _, litTag := range []string{"strLit", "numLit"} {
		if lit := container.SelectElement(litTag); lit != nil {
			return lit.SelectElements("pt")
		}
	}
	return nil
}

// pointText 数据点的缓存值
func pointText(pt *etree.Element) string {
	v := pt.SelectElement("v")
	if v == nil {
		return ""
	}
	return v.Text()
}

// SeriesValues 系列的数值缓存
func SeriesValues(ser *etree.Element) []float64 {
	pts := cachePoints(ser.SelectElement("val"))
	out := make([]float64, 0, len(pts))
	for _, pt := range pts {
		if f, err := strconv.ParseFloat(pointText(pt), 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// SeriesCategories 系列的分类标签缓存
func SeriesCategories(ser *etree.Element) []string {
	pts := cachePoints(ser.SelectElement("cat"))
	out := make([]string, 0, len(pts))
	for _, pt := range pts {
		out = append(out, pointText(pt))
	}
	return out
}

// DataLabelEntry 自定义文本的数据点标签
type DataLabelEntry struct {
	PointIndex int
	Rich       *etree.Element
}

// SeriesDataLabels 系列下带富文本的数据点标签
func SeriesDataLabels(ser *etree.Element) []DataLabelEntry {
	dLbls := ser.SelectElement("dLbls")
	if dLbls == nil {
		return nil
	}
	var out []DataLabelEntry
	for _, dLbl := range dLbls.SelectElements("dLbl") {
		idxEl := dLbl.SelectElement("idx")
		if idxEl == nil {
			continue
		}
		idx, ok := intAttr(idxEl, "val")
		if !ok {
			continue
		}
		tx := dLbl.SelectElement("tx")
		if tx == nil {
			continue
		}
		rich := tx.SelectElement("rich")
		if rich == nil {
			continue
		}
		out = append(out, DataLabelEntry{PointIndex: idx, Rich: rich})
	}
	return out
}

// AxisTitleRich 指定轴的标题富文本，axTag 为 catAx、valAx 或 serAx
func AxisTitleRich(chartEl *etree.Element, axTag string) *etree.Element {
	plotArea := chartEl.SelectElement("plotArea")
	if plotArea == nil {
		return nil
	}
	ax := plotArea.SelectElement(axTag)
	if ax == nil {
		return nil
	}
	return TitleRich(ax)
}
