package pptx

import (
	"strings"

	"github.com/beevik/etree"
)

// TxBody 形状的文本框元素，没有文本框返回 nil
func TxBody(shape *etree.Element) *etree.Element {
	return shape.SelectElement("txBody")
}

// BodyPr 文本框属性元素
func BodyPr(txBody *etree.Element) *etree.Element {
	if txBody == nil {
		return nil
	}
	return txBody.SelectElement("bodyPr")
}

// EnsureBodyPr 返回 bodyPr，不存在时创建在先头位置
func EnsureBodyPr(txBody *etree.Element) *etree.Element {
	return ensureFirstElement(txBody, "bodyPr", "a:bodyPr")
}

// Paragraphs 文本框内的段落列表
func Paragraphs(txBody *etree.Element) []*etree.Element {
	if txBody == nil {
		return nil
	}
	return txBody.SelectElements("p")
}

// Runs 段落内的文本运行，a:br 与 a:fld 不算运行
func Runs(para *etree.Element) []*etree.Element {
	return para.SelectElements("r")
}

// RunText 运行的文本内容
func RunText(run *etree.Element) string {
	t := run.SelectElement("t")
	if t == nil {
		return ""
	}
	return t.Text()
}

// SetRunText 覆盖运行的文本，只动 a:t，格式元素保持原样
func SetRunText(run *etree.Element, text string) {
	t := run.SelectElement("t")
	if t == nil {
		t = run.CreateElement("a:t")
	}
	t.SetText(text)
}

// RunProps 运行的 rPr 元素
func RunProps(run *etree.Element) *etree.Element {
	return run.SelectElement("rPr")
}

// EnsureRunProps 返回 rPr，不存在时创建在 a:t 之前
func EnsureRunProps(run *etree.Element) *etree.Element {
	return ensureFirstElement(run, "rPr", "a:rPr")
}

// ParagraphProps 段落的 pPr 元素
func ParagraphProps(para *etree.Element) *etree.Element {
	return para.SelectElement("pPr")
}

// EnsureParagraphProps 返回 pPr，不存在时创建。
// pPr 必须是 a:p 的第一个子元素，插入位置由此决定。
func EnsureParagraphProps(para *etree.Element) *etree.Element {
	return ensureFirstElement(para, "pPr", "a:pPr")
}

// NewRun 创建一个空运行元素，未挂接到任何段落
func NewRun() *etree.Element {
	run := etree.NewElement("a:r")
	run.CreateElement("a:t")
	return run
}

// AppendRun 在段落尾部追加运行。
// endParaRPr 按模式必须收尾，存在时运行插到它前面。
func AppendRun(para *etree.Element, run *etree.Element) {
	if end := para.SelectElement("endParaRPr"); end != nil {
		for i, tok := range para.Child {
			if el, ok := tok.(*etree.Element); ok && el == end {
				para.InsertChildAt(i, run)
				return
			}
		}
	}
	para.AddChild(run)
}

// FrameText 文本框的显示文本，段落以换行连接
func FrameText(txBody *etree.Element) string {
	paras := Paragraphs(txBody)
	parts := make([]string, 0, len(paras))
	for _, para := range paras {
		var b strings.Builder
		for _, run := range Runs(para) {
			b.WriteString(RunText(run))
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// SetFrameText 整体替换文本框内容。文本按换行拆成段落，
// 第一个段落保留原有 pPr，其余段落重建，运行级格式不保留。
func SetFrameText(txBody *etree.Element, text string) {
	paras := Paragraphs(txBody)
	var first *etree.Element
	if len(paras) == 0 {
		first = txBody.CreateElement("a:p")
	} else {
		first = paras[0]
		for _, extra := range paras[1:] {
			txBody.RemoveChild(extra)
		}
	}

	clearParagraphContent(first)

	lines := strings.Split(text, "\n")
	run := NewRun()
	SetRunText(run, lines[0])
	AppendRun(first, run)

	for _, line := range lines[1:] {
		para := txBody.CreateElement("a:p")
		run := NewRun()
		SetRunText(run, line)
		AppendRun(para, run)
	}
}

// clearParagraphContent 删除段落内的运行、换行与字段，保留 pPr
func clearParagraphContent(para *etree.Element) {
	removeChildElements(para, "r")
	removeChildElements(para, "br")
	removeChildElements(para, "fld")
}

// SetWordWrap 打开文本自动换行
func SetWordWrap(bodyPr *etree.Element) {
	bodyPr.CreateAttr("wrap", "square")
}

// EnableShrinkToFit 启用文本缩放适应形状。
// 互斥的自动适应元素先移除，再放入 normAutofit。
// 自动适应元素在 bodyPr 中排在 prstTxWarp 之后。
func EnableShrinkToFit(bodyPr *etree.Element) {
	removeChildElements(bodyPr, "spAutoFit")
	removeChildElements(bodyPr, "noAutofit")
	if bodyPr.SelectElement("normAutofit") != nil {
		return
	}
	autofit := etree.NewElement("a:normAutofit")
	if warp := bodyPr.SelectElement("prstTxWarp"); warp != nil {
		for i, tok := range bodyPr.Child {
			if el, ok := tok.(*etree.Element); ok && el == warp {
				bodyPr.InsertChildAt(i+1, autofit)
				return
			}
		}
	}
	insertElementFirst(bodyPr, autofit)
}
