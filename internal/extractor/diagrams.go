package extractor

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// extractDiagram 提取单个 SmartArt 数据部件的节点结构与文本。
// 层级优先走父子边推断：无父节点的点层级为 0，子节点逐级加一。
// 既无文本也无节点的图示视为空，返回 nil。
func (e *Extractor) extractDiagram(pkg *pptx.Package, dataPart string) *presentation.Diagram {
	doc, err := pkg.Doc(dataPart)
	if err != nil {
		e.logger.Warn("图示数据部件解析失败", zap.String("part", dataPart), zap.Error(err))
		return nil
	}

	diagram := &presentation.Diagram{
		ElementType: presentation.ElementSmartArt,
		Texts:       []string{},
		Nodes:       []*presentation.DiagramNode{},
		DataPart:    dataPart,
	}

	if layout, ok := pptx.DiagramLayoutType(doc); ok {
		diagram.LayoutType = presentation.String(layout)
	}

	points := pptx.DiagramPoints(doc)
	byID := make(map[string]*presentation.DiagramNode, len(points))
	for _, pt := range points {
		// doc 点是文档伪节点，不进入节点列表
		if !pt.IsNode() {
			continue
		}
		node := &presentation.DiagramNode{
			NodeID: pt.ModelID,
			Text:   strings.TrimSpace(pt.Text()),
		}
		diagram.Nodes = append(diagram.Nodes, node)
		byID[node.NodeID] = node
		if node.Text != "" {
			diagram.Texts = append(diagram.Texts, node.Text)
		}
	}

	// 父子边：srcId 是父节点，destId 是子节点。
	// 从 doc 伪节点出发的边不算父子关系，其目标就是根。
	for _, cxn := range pptx.DiagramParentConnections(doc) {
		if _, ok := byID[cxn.SourceID]; !ok {
			continue
		}
		if child, ok := byID[cxn.DestID]; ok {
			child.ParentID = presentation.String(cxn.SourceID)
		}
	}
	assignLevels(diagram.Nodes)

	diagram.FullText = strings.Join(diagram.Texts, " ")
	if len(diagram.Texts) == 0 && len(diagram.Nodes) == 0 {
		return nil
	}
	return diagram
}

// assignLevels 从根节点起沿父子关系给节点标层级。
// 用显式队列逐层下推，连通不到根的节点层级保持为空。
func assignLevels(nodes []*presentation.DiagramNode) {
	children := make(map[string][]*presentation.DiagramNode)
	var queue []*presentation.DiagramNode
	for _, node := range nodes {
		if node.ParentID == nil {
			node.Level = presentation.Int(0)
			queue = append(queue, node)
		} else {
			children[*node.ParentID] = append(children[*node.ParentID], node)
		}
	}

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range children[parent.NodeID] {
			if child.Level != nil {
				continue
			}
			child.Level = presentation.Int(*parent.Level + 1)
			queue = append(queue, child)
		}
	}
}
