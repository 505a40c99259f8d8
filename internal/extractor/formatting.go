package extractor

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// python-pptx 在属性缺省时返回这些边距，保持同样的取值
const (
	defaultMarginLR = int64(91440)
	defaultMarginTB = int64(45720)
)

// attrStr 属性字符串指针，缺失或为空返回 nil
func attrStr(el *etree.Element, key string) *string {
	if el == nil {
		return nil
	}
	v := el.SelectAttrValue(key, "")
	if v == "" {
		return nil
	}
	return presentation.String(v)
}

// attrInt64Ptr 整型属性指针
func attrInt64Ptr(el *etree.Element, key string) *int64 {
	if el == nil {
		return nil
	}
	v := el.SelectAttrValue(key, "")
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return presentation.Int64(n)
}

// attrInt64Or 整型属性，缺失时返回默认值
func attrInt64Or(el *etree.Element, key string, def int64) int64 {
	if p := attrInt64Ptr(el, key); p != nil {
		return *p
	}
	return def
}

// colorSpec 从包含 srgbClr 或 schemeClr 子元素的容器提取颜色。
// 亮度调整从 lumMod/lumOff 换算，未调整时省略。
func colorSpec(container *etree.Element) *presentation.ColorSpec {
	if container == nil {
		return nil
	}
	var spec presentation.ColorSpec
	var colorEl *etree.Element
	if srgb := container.SelectElement("srgbClr"); srgb != nil {
		spec.RGB = srgb.SelectAttrValue("val", "")
		colorEl = srgb
	} else if scheme := container.SelectElement("schemeClr"); scheme != nil {
		spec.ThemeColor = scheme.SelectAttrValue("val", "")
		colorEl = scheme
	} else {
		return nil
	}
	if lumOff := colorEl.SelectElement("lumOff"); lumOff != nil {
		if v := attrInt64Ptr(lumOff, "val"); v != nil {
			spec.Brightness = presentation.Float(float64(*v) / 100000.0)
		}
	} else if lumMod := colorEl.SelectElement("lumMod"); lumMod != nil {
		if v := attrInt64Ptr(lumMod, "val"); v != nil {
			spec.Brightness = presentation.Float(float64(*v)/100000.0 - 1.0)
		}
	}
	return &spec
}

// fillChild 返回元素下的填充子元素
func fillChild(parent *etree.Element) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, tag := range []string{"noFill", "solidFill", "gradFill", "blipFill", "pattFill", "grpFill"} {
		if el := parent.SelectElement(tag); el != nil {
			return el
		}
	}
	return nil
}

// emptyBackground 无法访问背景时的占位值
func emptyBackground() *presentation.Background {
	return &presentation.Background{}
}

// extractBackground 提取幻灯片的背景信息。
// 没有 bg 元素即继承母版背景；bgRef 引用主题时填充细节不可读。
func extractBackground(doc *etree.Document) *presentation.Background {
	bg := &presentation.Background{}
	root := doc.Root()
	if root == nil {
		return bg
	}
	cSld := root.SelectElement("cSld")
	if cSld == nil {
		return bg
	}
	bgEl := cSld.SelectElement("bg")
	if root.Tag == "sld" {
		bg.FollowsMaster = presentation.Bool(bgEl == nil)
	}
	if bgEl == nil {
		return bg
	}
	bgPr := bgEl.SelectElement("bgPr")
	if bgPr == nil {
		return bg
	}
	fill := fillChild(bgPr)
	if fill == nil {
		return bg
	}
	bg.FillType = presentation.String(fill.Tag)
	switch fill.Tag {
	case "solidFill":
		bg.SolidColor = colorSpec(fill)
	case "pattFill":
		bg.PatternType = attrStr(fill, "prst")
	case "blipFill":
		bg.PicturePresent = true
	}
	return bg
}

// extractPlaceholderInfo 提取占位符信息，非占位符时标志为假
func extractPlaceholderInfo(shape *etree.Element) *presentation.PlaceholderInfo {
	info := &presentation.PlaceholderInfo{}
	ph := pptx.Placeholder(shape)
	if ph == nil {
		return info
	}
	info.IsPlaceholder = true
	info.PlaceholderType = presentation.String(pptx.PlaceholderType(ph))
	info.PlaceholderIdx = presentation.Int(pptx.PlaceholderIdx(ph))
	return info
}

// shapeProps 形状的 spPr 元素
func shapeProps(shape *etree.Element) *etree.Element {
	return shape.SelectElement("spPr")
}

// extractFill 提取形状填充
func extractFill(shape *etree.Element) *presentation.Fill {
	fill := &presentation.Fill{}
	el := fillChild(shapeProps(shape))
	if el == nil {
		return fill
	}
	fill.FillType = presentation.String(el.Tag)
	switch el.Tag {
	case "solidFill":
		fill.SolidColor = colorSpec(el)
	case "gradFill":
		if gsLst := el.SelectElement("gsLst"); gsLst != nil {
			for _, gs := range gsLst.SelectElements("gs") {
				stop := &presentation.GradientStop{Color: colorSpec(gs)}
				if pos := attrInt64Ptr(gs, "pos"); pos != nil {
					stop.Position = float64(*pos) / 100000.0
				}
				fill.GradientStops = append(fill.GradientStops, stop)
			}
		}
	case "pattFill":
		fill.PatternType = attrStr(el, "prst")
		if bgClr := el.SelectElement("bgClr"); bgClr != nil {
			fill.PatternBackColor = colorSpec(bgClr)
		}
	case "blipFill":
		fill.PicturePresent = true
	}
	return fill
}

// extractLine 提取形状边框
func extractLine(shape *etree.Element) *presentation.Line {
	line := &presentation.Line{}
	spPr := shapeProps(shape)
	if spPr == nil {
		return line
	}
	ln := spPr.SelectElement("ln")
	if ln == nil {
		return line
	}
	line.HasLine = true
	line.Width = attrInt64Ptr(ln, "w")
	if solid := ln.SelectElement("solidFill"); solid != nil {
		line.Color = colorSpec(solid)
	}
	if dash := ln.SelectElement("prstDash"); dash != nil {
		line.DashStyle = attrStr(dash, "val")
	}
	return line
}

// extractShadow 提取形状阴影。effectLst 存在即表示不再继承主题效果。
func extractShadow(shape *etree.Element) *presentation.Shadow {
	shadow := &presentation.Shadow{}
	spPr := shapeProps(shape)
	if spPr == nil {
		return shadow
	}
	effectLst := spPr.SelectElement("effectLst")
	if effectLst == nil {
		return shadow
	}
	shadow.HasShadow = true

	shdw := effectLst.SelectElement("outerShdw")
	kind := "outer"
	if shdw == nil {
		shdw = effectLst.SelectElement("innerShdw")
		kind = "inner"
	}
	if shdw == nil {
		return shadow
	}
	shadow.ShadowType = presentation.String(kind)
	shadow.Color = colorSpec(shdw)
	shadow.Blur = attrInt64Ptr(shdw, "blurRad")
	shadow.Distance = attrInt64Ptr(shdw, "dist")
	if dir := attrInt64Ptr(shdw, "dir"); dir != nil {
		shadow.Angle = presentation.Float(float64(*dir) / 60000.0)
	}
	return shadow
}

// extractDimensions 提取形状几何信息。占位符常常不带 xfrm，
// 位置继承自版式，此时各字段为空。
func extractDimensions(shape *etree.Element) *presentation.Dimensions {
	dims := &presentation.Dimensions{}
	xfrm := pptx.Xfrm(shape)
	if xfrm == nil {
		return dims
	}
	if x, y, ok := pptx.Offset(xfrm); ok {
		dims.Left = presentation.Int64(x)
		dims.Top = presentation.Int64(y)
	}
	if cx, cy, ok := pptx.Extent(xfrm); ok {
		dims.Width = presentation.Int64(cx)
		dims.Height = presentation.Int64(cy)
	}
	dims.Rotation = pptx.Rotation(xfrm)
	return dims
}

// extractBounds 提取无旋转的几何信息，供版式占位符使用
func extractBounds(shape *etree.Element) *presentation.Bounds {
	bounds := &presentation.Bounds{}
	xfrm := pptx.Xfrm(shape)
	if xfrm == nil {
		return bounds
	}
	if x, y, ok := pptx.Offset(xfrm); ok {
		bounds.Left = presentation.Int64(x)
		bounds.Top = presentation.Int64(y)
	}
	if cx, cy, ok := pptx.Extent(xfrm); ok {
		bounds.Width = presentation.Int64(cx)
		bounds.Height = presentation.Int64(cy)
	}
	return bounds
}

// extractTextFrameProps 提取文本框级属性
func extractTextFrameProps(txBody *etree.Element) *presentation.TextFrameProps {
	props := &presentation.TextFrameProps{}
	bodyPr := pptx.BodyPr(txBody)

	props.MarginLeft = presentation.Int64(attrInt64Or(bodyPr, "lIns", defaultMarginLR))
	props.MarginRight = presentation.Int64(attrInt64Or(bodyPr, "rIns", defaultMarginLR))
	props.MarginTop = presentation.Int64(attrInt64Or(bodyPr, "tIns", defaultMarginTB))
	props.MarginBottom = presentation.Int64(attrInt64Or(bodyPr, "bIns", defaultMarginTB))

	if bodyPr == nil {
		return props
	}
	switch bodyPr.SelectAttrValue("wrap", "") {
	case "square":
		props.WordWrap = presentation.Bool(true)
	case "none":
		props.WordWrap = presentation.Bool(false)
	}
	for _, tag := range []string{"normAutofit", "spAutoFit", "noAutofit"} {
		if bodyPr.SelectElement(tag) != nil {
			props.AutoSize = presentation.String(tag)
			break
		}
	}
	props.VerticalAnchor = attrStr(bodyPr, "anchor")
	props.TextDirection = attrStr(bodyPr, "vert")
	if rot := attrInt64Ptr(bodyPr, "rot"); rot != nil {
		props.RotationAngle = presentation.Float(float64(*rot) / 60000.0)
	}
	return props
}

// extractParagraphFormatting 提取段落级格式
func extractParagraphFormatting(para *etree.Element) *presentation.ParagraphFormatting {
	pPr := pptx.ParagraphProps(para)
	format := &presentation.ParagraphFormatting{
		BulletFormat: extractBulletFormat(pPr),
	}
	if pPr == nil {
		return format
	}

	if lvl := attrInt64Ptr(pPr, "lvl"); lvl != nil {
		format.Level = int(*lvl)
	}
	format.Alignment = attrStr(pPr, "algn")
	format.Indent = attrInt64Ptr(pPr, "indent")
	format.LeftIndent = attrInt64Ptr(pPr, "marL")
	format.RightIndent = attrInt64Ptr(pPr, "marR")

	if lnSpc := pPr.SelectElement("lnSpc"); lnSpc != nil {
		format.LineSpacing = spacingValue(lnSpc)
	}
	format.SpaceBefore = pointSpacing(pPr.SelectElement("spcBef"))
	format.SpaceAfter = pointSpacing(pPr.SelectElement("spcAft"))

	if rtl := pPr.SelectAttrValue("rtl", ""); rtl != "" {
		if rtl == "1" {
			format.TextDirection = presentation.String("rtl")
		} else {
			format.TextDirection = presentation.String("ltr")
		}
	}
	return format
}

// spacingValue 行距取值：百分比换算为倍数，点值换算为磅
func spacingValue(spc *etree.Element) *float64 {
	if pct := spc.SelectElement("spcPct"); pct != nil {
		if v := attrInt64Ptr(pct, "val"); v != nil {
			return presentation.Float(float64(*v) / 100000.0)
		}
	}
	if pts := spc.SelectElement("spcPts"); pts != nil {
		if v := attrInt64Ptr(pts, "val"); v != nil {
			return presentation.Float(float64(*v) / 100.0)
		}
	}
	return nil
}

// pointSpacing 段前段后间距，只认点值
func pointSpacing(spc *etree.Element) *float64 {
	if spc == nil {
		return nil
	}
	if pts := spc.SelectElement("spcPts"); pts != nil {
		if v := attrInt64Ptr(pts, "val"); v != nil {
			return presentation.Float(float64(*v) / 100.0)
		}
	}
	return nil
}

// extractBulletFormat 提取项目符号与编号格式。
// buChar、buAutoNum、buNone 依次判定，后者覆盖前者的类型判断。
func extractBulletFormat(pPr *etree.Element) *presentation.BulletFormat {
	bullet := &presentation.BulletFormat{}
	if pPr == nil {
		return bullet
	}

	if buChar := pPr.SelectElement("buChar"); buChar != nil {
		bullet.IsBulleted = true
		bullet.BulletType = presentation.String("bullet")
		bullet.BulletChar = presentation.String(buChar.SelectAttrValue("char", "•"))
	}
	if buFont := pPr.SelectElement("buFont"); buFont != nil {
		bullet.BulletFont = attrStr(buFont, "typeface")
	}
	if buClr := pPr.SelectElement("buClr"); buClr != nil {
		if srgb := buClr.SelectElement("srgbClr"); srgb != nil {
			bullet.BulletColor = attrStr(srgb, "val")
		} else if scheme := buClr.SelectElement("schemeClr"); scheme != nil {
			bullet.BulletColor = presentation.String("scheme_" + scheme.SelectAttrValue("val", ""))
		}
	}
	if buAutoNum := pPr.SelectElement("buAutoNum"); buAutoNum != nil {
		bullet.IsBulleted = true
		bullet.BulletType = presentation.String("numbered")
		bullet.NumberingFormat = presentation.String(buAutoNum.SelectAttrValue("type", "arabicPeriod"))
		if start := attrInt64Ptr(buAutoNum, "startAt"); start != nil {
			bullet.StartAt = presentation.Int(int(*start))
		}
	}
	if pPr.SelectElement("buNone") != nil {
		bullet.IsBulleted = false
		bullet.BulletType = presentation.String("none")
	}
	return bullet
}

// extractRunFormatting 提取运行的文本与全部格式属性。
// 格式属性逐个缺省降级，单个属性读取失败不影响其余。
func extractRunFormatting(run *etree.Element) *presentation.TextRun {
	tr := &presentation.TextRun{Text: pptx.RunText(run)}
	rPr := pptx.RunProps(run)
	if rPr == nil {
		return tr
	}

	if latin := rPr.SelectElement("latin"); latin != nil {
		tr.FontName = attrStr(latin, "typeface")
	}
	if sz := attrInt64Ptr(rPr, "sz"); sz != nil {
		tr.FontSize = presentation.Float(float64(*sz) / 100.0)
	}
	tr.Bold = xmlBoolAttr(rPr, "b")
	tr.Italic = xmlBoolAttr(rPr, "i")
	tr.Underline = underlineValue(rPr)
	if solid := rPr.SelectElement("solidFill"); solid != nil {
		tr.Color = colorSpec(solid)
	}

	tr.Strike = attrStr(rPr, "strike")
	tr.Kerning = attrStr(rPr, "kern")
	tr.Spacing = attrStr(rPr, "spc")
	tr.Caps = attrStr(rPr, "cap")

	if baseline := rPr.SelectAttrValue("baseline", ""); baseline != "" {
		if v, err := strconv.Atoi(strings.TrimSuffix(baseline, "%")); err == nil {
			if v > 0 {
				tr.Superscript = presentation.Int(v)
			} else if v < 0 {
				tr.Subscript = presentation.Int(-v)
			}
		}
	}

	if highlight := rPr.SelectElement("highlight"); highlight != nil {
		if srgb := highlight.SelectElement("srgbClr"); srgb != nil {
			tr.Highlight = attrStr(srgb, "val")
		} else if scheme := highlight.SelectElement("schemeClr"); scheme != nil {
			tr.Highlight = presentation.String("scheme_" + scheme.SelectAttrValue("val", ""))
		}
	}

	if ln := rPr.SelectElement("ln"); ln != nil {
		outline := &presentation.TextOutline{Width: attrStr(ln, "w")}
		if solid := ln.SelectElement("solidFill"); solid != nil {
			if srgb := solid.SelectElement("srgbClr"); srgb != nil {
				outline.Color = attrStr(srgb, "val")
			}
		}
		tr.Outline = outline
	}
	return tr
}

// xmlBoolAttr OOXML 布尔属性指针，缺失返回 nil
func xmlBoolAttr(el *etree.Element, key string) *bool {
	switch el.SelectAttrValue(key, "") {
	case "1", "true":
		return presentation.Bool(true)
	case "0", "false":
		return presentation.Bool(false)
	}
	return nil
}

// underlineValue 下划线三态：none 为假，其余样式为真，缺失为空
func underlineValue(rPr *etree.Element) *bool {
	u := rPr.SelectAttrValue("u", "")
	switch u {
	case "":
		return nil
	case "none":
		return presentation.Bool(false)
	default:
		return presentation.Bool(true)
	}
}

// extractImageInfo 提取图片形状的描述信息
func extractImageInfo(shape *etree.Element) *presentation.ImageInfo {
	info := &presentation.ImageInfo{Description: pptx.ShapeName(shape)}
	if descr := pptx.ShapeDescription(shape); descr != "" {
		info.AltText = presentation.String(descr)
	}
	return info
}

// extractTable 提取表格结构与单元格内容。
// 单元格按文档内 (行, 列) 顺序展开，列数以表格网格为准。
func extractTable(shape *etree.Element) *presentation.TableData {
	data := &presentation.TableData{Cells: []*presentation.TableCell{}}
	tbl := pptx.TableIn(shape)
	if tbl == nil {
		return data
	}

	rows := pptx.TableRows(tbl)
	data.Rows = len(rows)
	data.Columns = pptx.TableColumnCount(tbl)

	for rowIdx, row := range rows {
		for colIdx, tc := range pptx.RowCells(row) {
			cell := &presentation.TableCell{
				Row:        rowIdx,
				Column:     colIdx,
				Paragraphs: []*presentation.Paragraph{},
			}
			if txBody := pptx.CellTxBody(tc); txBody != nil {
				cell.Text = pptx.FrameText(txBody)
				cell.Paragraphs = extractParagraphs(txBody)
			}
			data.Cells = append(data.Cells, cell)
		}
	}
	return data
}
