package presentation

import "strings"

// PlainText 连接段落内所有运行的文本
func (p *Paragraph) PlainText() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// joinParagraphs 段落文本以换行连接，与容器中文本框的显示文本一致
func joinParagraphs(paras []*Paragraph) string {
	parts := make([]string, 0, len(paras))
	for _, p := range paras {
		parts = append(parts, p.PlainText())
	}
	return strings.Join(parts, "\n")
}

// RecomputeFullText 重算派生的 full_text 字段。
// 任何改动运行文本的代码在结束前都必须调用。
func (e *Element) RecomputeFullText() {
	if e.Paragraphs != nil {
		e.FullText = joinParagraphs(e.Paragraphs)
	}
}

// RecomputeText 重算单元格的派生 text 字段
func (c *TableCell) RecomputeText() {
	c.Text = joinParagraphs(c.Paragraphs)
}

// SyncTexts 从节点重建扁平文本列表，节点文本改动后调用。
// 列表只收非空文本，顺序与节点一致，与提取时的构造规则相同。
// 没有节点的图示保留手工填写的文本列表。
func (d *Diagram) SyncTexts() {
	if len(d.Nodes) == 0 {
		return
	}
	texts := make([]string, 0, len(d.Nodes))
	for _, node := range d.Nodes {
		if node.Text != "" {
			texts = append(texts, node.Text)
		}
	}
	d.Texts = texts
}

// RecomputeFullText 重算图示的派生 full_text 字段
func (d *Diagram) RecomputeFullText() {
	d.FullText = strings.Join(d.Texts, " ")
}

// RecomputeDerived 重算幻灯片内全部派生文本字段
func (s *Slide) RecomputeDerived() {
	for _, el := range s.Elements {
		el.RecomputeFullText()
		if el.Table != nil {
			for _, cell := range el.Table.Cells {
				cell.RecomputeText()
			}
		}
	}
	for _, d := range s.Diagrams {
		d.SyncTexts()
		d.RecomputeFullText()
	}
}

// TextRuns 按确定顺序收集幻灯片内文本框与表格单元格中的所有运行。
// 顺序由元素、段落、运行在树中的位置决定，同一棵树多次调用结果一致，
// 质量门控靠这一点对源树与译文树做逐运行配对。
func (s *Slide) TextRuns() []*TextRun {
	var runs []*TextRun
	for _, el := range s.Elements {
		for _, para := range el.Paragraphs {
			runs = append(runs, para.Runs...)
		}
		if el.Table != nil {
			for _, cell := range el.Table.Cells {
				for _, para := range cell.Paragraphs {
					runs = append(runs, para.Runs...)
				}
			}
		}
	}
	return runs
}

// VisitRuns 遍历幻灯片内所有运行，含文本框与表格单元格
func (s *Slide) VisitRuns(fn func(r *TextRun)) {
	for _, r := range s.TextRuns() {
		fn(r)
	}
}

// ElementByShapeID 按 shape_id 查找元素，找不到返回 nil
func (s *Slide) ElementByShapeID(id int) *Element {
	for _, el := range s.Elements {
		if el.ShapeID == id {
			return el
		}
	}
	return nil
}

// IsTextual 形状是否携带文本段落
func (e *Element) IsTextual() bool {
	return e.Paragraphs != nil
}
