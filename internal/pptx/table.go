package pptx

import "github.com/beevik/etree"

// TableIn 返回 graphicFrame 内的表格元素，非表格返回 nil
func TableIn(frame *etree.Element) *etree.Element {
	gd := graphicData(frame)
	if gd == nil {
		return nil
	}
	return gd.SelectElement("tbl")
}

// TableRows 表格的行列表
func TableRows(tbl *etree.Element) []*etree.Element {
	if tbl == nil {
		return nil
	}
	return tbl.SelectElements("tr")
}

// RowCells 行内的单元格列表。合并单元格的延续格也在其中，
// 文档内 tc 的顺序与网格列一一对应。
func RowCells(tr *etree.Element) []*etree.Element {
	return tr.SelectElements("tc")
}

// CellTxBody 单元格的文本框
func CellTxBody(tc *etree.Element) *etree.Element {
	return tc.SelectElement("txBody")
}

// TableColumnCount 表格列数，以 tblGrid 为准
func TableColumnCount(tbl *etree.Element) int {
	if tbl == nil {
		return 0
	}
	grid := tbl.SelectElement("tblGrid")
	if grid == nil {
		return 0
	}
	return len(grid.SelectElements("gridCol"))
}

// CellAt 按 (row, col) 取单元格，越界返回 nil
func CellAt(tbl *etree.Element, row, col int) *etree.Element {
	rows := TableRows(tbl)
	if row < 0 || row >= len(rows) {
		return nil
	}
	cells := RowCells(rows[row])
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}
