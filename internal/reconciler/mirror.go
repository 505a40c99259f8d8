package reconciler

import (
	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
)

// mirrorSlide 为从右向左的目标语言水平翻转版面。
// 只翻转顶层形状，组合形状作为整体移动，组内相对位置不变。
// 必须发生在文本回写之前，翻转失败的形状保持原位。
func (t *task) mirrorSlide(spTree *etree.Element) bool {
	mirrored := false
	for _, shape := range pptx.TopLevelShapes(spTree) {
		if t.mirrorShape(shape) {
			mirrored = true
		}
	}
	return mirrored
}

// mirrorShape 按垂直中轴翻转形状的水平位置
func (t *task) mirrorShape(shape *etree.Element) bool {
	xfrm := pptx.Xfrm(shape)
	if xfrm == nil {
		return false
	}
	left, _, ok := pptx.Offset(xfrm)
	if !ok {
		return false
	}
	width, _, ok := pptx.Extent(xfrm)
	if !ok {
		return false
	}

	newLeft := t.width - (left + width)
	if !pptx.SetOffsetX(xfrm, newLeft) {
		return false
	}
	t.st.ShapesMirrored++
	return true
}
