package reconciler

import (
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// updateDiagram 把译文写回 SmartArt 数据部件，节点按 modelId 对应。
// 绘制缓存部件同步刷新是尽力而为，刷不到时 PowerPoint 打开会自行重建。
func (t *task) updateDiagram(diagram *presentation.Diagram) {
	if diagram.DataPart == "" {
		return
	}
	doc, err := t.pkg.Doc(diagram.DataPart)
	if err != nil {
		t.logger.Warn("SmartArt 数据部件解析失败",
			zap.String("part", diagram.DataPart), zap.Error(err))
		return
	}

	byID := make(map[string]string, len(diagram.Nodes))
	for _, node := range diagram.Nodes {
		if node.Text != "" {
			byID[node.NodeID] = node.Text
		}
	}
	if len(byID) == 0 {
		return
	}

	updated := 0
	for _, pt := range pptx.DiagramPoints(doc) {
		if !pt.IsNode() {
			continue
		}
		text, ok := byID[pt.ModelID]
		if !ok || text == pt.Text() {
			continue
		}
		if pt.SetText(text) {
			updated++
		}
	}
	if updated == 0 {
		return
	}

	t.pkg.MarkDirty(diagram.DataPart)
	t.st.DiagramsUpdated++

	if drawingPath, ok := t.pkg.DrawingPartFor(diagram.DataPart); ok {
		if _, err := t.pkg.UpdateDrawingTexts(drawingPath, byID); err != nil {
			t.logger.Debug("SmartArt 绘制缓存刷新失败",
				zap.String("part", drawingPath), zap.Error(err))
		}
	}
}
