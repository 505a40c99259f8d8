package pptx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// ShapeTree 返回幻灯片、版式、母版或备注页的 spTree 元素
func ShapeTree(doc *etree.Document) *etree.Element {
	root := doc.Root()
	if root == nil {
		return nil
	}
	cSld := root.SelectElement("cSld")
	if cSld == nil {
		return nil
	}
	return cSld.SelectElement("spTree")
}

// isShapeTag 形状容器的直接子元素中算作形状的标签
func isShapeTag(tag string) bool {
	switch tag {
	case "sp", "grpSp", "graphicFrame", "pic", "cxnSp", "contentPart":
		return true
	}
	return false
}

// TopLevelShapes 返回 spTree 的直接形状子元素，保持文档顺序。
// 组合形状作为整体出现，不展开。
func TopLevelShapes(spTree *etree.Element) []*etree.Element {
	if spTree == nil {
		return nil
	}
	var shapes []*etree.Element
	for _, el := range spTree.ChildElements() {
		if isShapeTag(el.Tag) {
			shapes = append(shapes, el)
		}
	}
	return shapes
}

// FlattenShapes 返回 spTree 下全部叶子形状，组合形状展开为其成员。
// 用显式工作栈做先序展开，嵌套层级不受调用栈限制。
func FlattenShapes(spTree *etree.Element) []*etree.Element {
	top := TopLevelShapes(spTree)

	var out []*etree.Element
	stack := make([]*etree.Element, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		stack = append(stack, top[i])
	}
	for len(stack) > 0 {
		shape := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if shape.Tag == "grpSp" {
			members := TopLevelShapes(shape)
			for i := len(members) - 1; i >= 0; i-- {
				stack = append(stack, members[i])
			}
			continue
		}
		out = append(out, shape)
	}
	return out
}

// nonVisualProps 形状的 cNvPr 元素，携带 id 与 name
func nonVisualProps(shape *etree.Element) *etree.Element {
	for _, child := range shape.ChildElements() {
		if strings.HasPrefix(child.Tag, "nv") && strings.HasSuffix(child.Tag, "Pr") {
			if cNvPr := child.SelectElement("cNvPr"); cNvPr != nil {
				return cNvPr
			}
		}
	}
	return nil
}

// ShapeID 形状在幻灯片内的稳定标识
func ShapeID(shape *etree.Element) (int, bool) {
	return intAttr(nonVisualProps(shape), "id")
}

// ShapeName 形状名称
func ShapeName(shape *etree.Element) string {
	cNvPr := nonVisualProps(shape)
	if cNvPr == nil {
		return ""
	}
	return cNvPr.SelectAttrValue("name", "")
}

// ShapeDescription 形状的替代文本描述
func ShapeDescription(shape *etree.Element) string {
	cNvPr := nonVisualProps(shape)
	if cNvPr == nil {
		return ""
	}
	return cNvPr.SelectAttrValue("descr", "")
}

// FindShapeByID 在 spTree 的展平形状中按 id 查找。
// 组合成员也参与查找，组内文本同样要接受更新。
func FindShapeByID(spTree *etree.Element, id int) *etree.Element {
	for _, shape := range FlattenShapes(spTree) {
		if got, ok := ShapeID(shape); ok && got == id {
			return shape
		}
	}
	return nil
}

// graphicData graphicFrame 内的 a:graphicData 元素
func graphicData(frame *etree.Element) *etree.Element {
	graphic := frame.SelectElement("graphic")
	if graphic == nil {
		return nil
	}
	return graphic.SelectElement("graphicData")
}

// Classify 判定形状的元素类型。
// 带文本框的 sp 一律算 TextBox，纯几何形状算 AutoShape，
// 其余类型带 Other_ 前缀加原始标签。
func Classify(shape *etree.Element) string {
	switch shape.Tag {
	case "pic":
		return presentation.ElementPicture
	case "graphicFrame":
		gd := graphicData(shape)
		if gd == nil {
			return presentation.ElementOtherPrefix + shape.Tag
		}
		if gd.SelectElement("tbl") != nil {
			return presentation.ElementTable
		}
		if gd.SelectElement("chart") != nil {
			return presentation.ElementChart
		}
		uri := gd.SelectAttrValue("uri", "")
		switch {
		case strings.HasSuffix(uri, "/table"):
			return presentation.ElementTable
		case strings.HasSuffix(uri, "/chart"):
			return presentation.ElementChart
		}
		return presentation.ElementOtherPrefix + shape.Tag
	case "sp":
		if shape.SelectElement("txBody") != nil {
			return presentation.ElementTextBox
		}
		if spPr := shape.SelectElement("spPr"); spPr != nil && spPr.SelectElement("prstGeom") != nil {
			return presentation.ElementAutoShape
		}
		return presentation.ElementOtherPrefix + shape.Tag
	default:
		return presentation.ElementOtherPrefix + shape.Tag
	}
}

// Xfrm 返回形状的变换元素。位置随形状类别不同：
// sp、pic、cxnSp 在 spPr 下，graphicFrame 直接持有，grpSp 在 grpSpPr 下。
func Xfrm(shape *etree.Element) *etree.Element {
	switch shape.Tag {
	case "graphicFrame":
		return shape.SelectElement("xfrm")
	case "grpSp":
		if grpSpPr := shape.SelectElement("grpSpPr"); grpSpPr != nil {
			return grpSpPr.SelectElement("xfrm")
		}
		return nil
	default:
		if spPr := shape.SelectElement("spPr"); spPr != nil {
			return spPr.SelectElement("xfrm")
		}
		return nil
	}
}

// Offset 读取 xfrm 的 off 坐标，单位 EMU
func Offset(xfrm *etree.Element) (x, y int64, ok bool) {
	if xfrm == nil {
		return 0, 0, false
	}
	off := xfrm.SelectElement("off")
	if off == nil {
		return 0, 0, false
	}
	x, xok := int64Attr(off, "x")
	y, yok := int64Attr(off, "y")
	return x, y, xok && yok
}

// Extent 读取 xfrm 的 ext 尺寸，单位 EMU
func Extent(xfrm *etree.Element) (cx, cy int64, ok bool) {
	if xfrm == nil {
		return 0, 0, false
	}
	ext := xfrm.SelectElement("ext")
	if ext == nil {
		return 0, 0, false
	}
	cx, xok := int64Attr(ext, "cx")
	cy, yok := int64Attr(ext, "cy")
	return cx, cy, xok && yok
}

// SetOffsetX 写回 off 的 x 坐标
func SetOffsetX(xfrm *etree.Element, x int64) bool {
	if xfrm == nil {
		return false
	}
	off := xfrm.SelectElement("off")
	if off == nil {
		return false
	}
	off.CreateAttr("x", strconv.FormatInt(x, 10))
	return true
}

// Rotation 形状旋转角度，单位度。容器内以 1/60000 度存储。
func Rotation(xfrm *etree.Element) float64 {
	if xfrm == nil {
		return 0
	}
	rot, ok := int64Attr(xfrm, "rot")
	if !ok {
		return 0
	}
	return float64(rot) / 60000.0
}

// Placeholder 返回形状的占位符元素，非占位符返回 nil
func Placeholder(shape *etree.Element) *etree.Element {
	for _, child := range shape.ChildElements() {
		if strings.HasPrefix(child.Tag, "nv") && strings.HasSuffix(child.Tag, "Pr") {
			if nvPr := child.SelectElement("nvPr"); nvPr != nil {
				return nvPr.SelectElement("ph")
			}
		}
	}
	return nil
}

// PlaceholderType 占位符类型原始值，属性缺省时按约定取 obj
func PlaceholderType(ph *etree.Element) string {
	if ph == nil {
		return ""
	}
	return ph.SelectAttrValue("type", "obj")
}

// PlaceholderIdx 占位符索引，缺省为 0
func PlaceholderIdx(ph *etree.Element) int {
	if ph == nil {
		return 0
	}
	idx, _ := intAttr(ph, "idx")
	return idx
}
