package reconciler

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// updateTextFrame 把译文段落写入形状的文本框。
// 译文段落多于原有段落时追加，少于时删除尾部多余段落，
// 最后打开自动换行与缩字适应，防止译文长于原文时溢出。
func (t *task) updateTextFrame(shape *etree.Element, paragraphs []*presentation.Paragraph) bool {
	txBody := pptx.TxBody(shape)
	if txBody == nil {
		return false
	}
	t.updateBody(txBody, paragraphs, true)
	t.enableAutoShrink(txBody)
	return true
}

// updateBody 段落级对位回写。allowGrow 控制译文段落多出时是否追加，
// 表格单元格沿用只更新既有段落的约定。
func (t *task) updateBody(txBody *etree.Element, paragraphs []*presentation.Paragraph, allowGrow bool) {
	existing := pptx.Paragraphs(txBody)

	for idx, tp := range paragraphs {
		var para *etree.Element
		switch {
		case idx < len(existing):
			para = existing[idx]
		case allowGrow:
			para = txBody.CreateElement("a:p")
			existing = append(existing, para)
		default:
			continue
		}
		t.updateRuns(para, tp.Runs)
	}

	if allowGrow {
		for surplus := pptx.Paragraphs(txBody); len(surplus) > len(paragraphs); surplus = pptx.Paragraphs(txBody) {
			txBody.RemoveChild(surplus[len(surplus)-1])
		}
	}
}

// updateRuns 运行级对位回写。数量一致时逐个就地覆盖文本，
// 格式一概不动；数量不一致时重建：保留首个运行承接原格式，
// 其余译文各追加一个只带粗斜体与字号的新运行。
func (t *task) updateRuns(para *etree.Element, runs []*presentation.TextRun) {
	existing := pptx.Runs(para)

	if len(existing) == len(runs) {
		for i, run := range existing {
			pptx.SetRunText(run, runs[i].Text)
			t.st.TextRunsUpdated++
		}
	} else {
		for len(existing) > 1 {
			para.RemoveChild(existing[len(existing)-1])
			existing = existing[:len(existing)-1]
		}
		if len(existing) == 0 {
			run := pptx.NewRun()
			pptx.AppendRun(para, run)
			existing = append(existing, run)
		}
		if len(runs) > 0 {
			pptx.SetRunText(existing[0], runs[0].Text)
			t.st.TextRunsUpdated++
		}
		for _, tr := range runs[1:] {
			run := pptx.NewRun()
			pptx.SetRunText(run, tr.Text)
			applyCarriedProps(run, tr)
			pptx.AppendRun(para, run)
			t.st.TextRunsUpdated++
		}
	}

	if t.rtl {
		t.setRTL(para)
	}
}

// applyCarriedProps 重建运行时带上的最小格式子集
func applyCarriedProps(run *etree.Element, tr *presentation.TextRun) {
	hasSize := tr.FontSize != nil && *tr.FontSize > 0
	if tr.Bold == nil && tr.Italic == nil && !hasSize {
		return
	}
	rPr := pptx.EnsureRunProps(run)
	if tr.Bold != nil {
		rPr.CreateAttr("b", xmlBool(*tr.Bold))
	}
	if tr.Italic != nil {
		rPr.CreateAttr("i", xmlBool(*tr.Italic))
	}
	if hasSize {
		// 字号以百分之一磅存储
		rPr.CreateAttr("sz", strconv.Itoa(int(*tr.FontSize*100)))
	}
}

func xmlBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// setRTL 把段落标记为从右向左书写并右对齐
func (t *task) setRTL(para *etree.Element) {
	pPr := pptx.EnsureParagraphProps(para)
	pPr.CreateAttr("rtl", "1")
	pPr.CreateAttr("algn", "r")
	t.st.RTLParagraphsSet++
}

// enableAutoShrink 打开自动换行并启用缩字适应
func (t *task) enableAutoShrink(txBody *etree.Element) {
	if !t.opts.AutoFitText {
		return
	}
	bodyPr := pptx.EnsureBodyPr(txBody)
	pptx.SetWordWrap(bodyPr)
	pptx.EnableShrinkToFit(bodyPr)
	t.st.AutoShrinkEnabled++
}
