package reconciler

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// updateTable 按 (row, column) 坐标把译文写回表格单元格。
// 单元格内只更新既有段落，不增删；越界坐标跳过并记录。
func (t *task) updateTable(slidePath string, frame *etree.Element, data *presentation.TableData) bool {
	tbl := pptx.TableIn(frame)
	if tbl == nil {
		return false
	}

	changed := false
	for _, cell := range data.Cells {
		if len(cell.Paragraphs) == 0 {
			continue
		}
		tc := pptx.CellAt(tbl, cell.Row, cell.Column)
		if tc == nil {
			t.logger.Warn("表格单元格越界",
				zap.String("part", slidePath),
				zap.Int("row", cell.Row),
				zap.Int("column", cell.Column))
			continue
		}
		txBody := pptx.CellTxBody(tc)
		if txBody == nil {
			continue
		}
		t.updateBody(txBody, cell.Paragraphs, false)
		t.enableAutoShrink(txBody)
		changed = true
	}

	t.st.TablesUpdated++
	return changed
}
