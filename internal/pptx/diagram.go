package pptx

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// DiagramDataPartsFor 幻灯片引用的 SmartArt 数据部件
func (p *Package) DiagramDataPartsFor(slidePath string) ([]string, error) {
	return p.RelTargets(slidePath, RelTypeDiagramData)
}

// AllDiagramDataParts 容器内全部 SmartArt 数据部件，路径排序
func (p *Package) AllDiagramDataParts() []string {
	var out []string
	for name := range p.parts {
		if strings.HasPrefix(name, "ppt/diagrams/data") && strings.HasSuffix(name, ".xml") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// DiagramPoint 数据模型中的一个点
type DiagramPoint struct {
	ModelID string
	Type    string // 空串等价于 node
	El      *etree.Element
	TextEl  *etree.Element // dgm:t，无文本的点为 nil
}

// DiagramPoints 数据模型的全部点，文档顺序
func DiagramPoints(doc *etree.Document) []DiagramPoint {
	root := doc.Root()
	if root == nil {
		return nil
	}
	ptLst := root.SelectElement("ptLst")
	if ptLst == nil {
		return nil
	}
	var out []DiagramPoint
	for _, pt := range ptLst.SelectElements("pt") {
		out = append(out, DiagramPoint{
			ModelID: pt.SelectAttrValue("modelId", ""),
			Type:    pt.SelectAttrValue("type", ""),
			El:      pt,
			TextEl:  pt.SelectElement("t"),
		})
	}
	return out
}

// IsNode 点是否是内容节点。type 缺省即 node。
func (d DiagramPoint) IsNode() bool {
	return d.Type == "" || d.Type == "node"
}

// Text 点的文本内容
func (d DiagramPoint) Text() string {
	if d.TextEl == nil {
		return ""
	}
	return FrameText(d.TextEl)
}

// SetText 覆盖点的文本
func (d DiagramPoint) SetText(text string) bool {
	if d.TextEl == nil {
		return false
	}
	SetFrameText(d.TextEl, text)
	return true
}

// DiagramConnection 数据模型中的一条父子边
type DiagramConnection struct {
	SourceID string
	DestID   string
}

// DiagramParentConnections 数据模型的父子边。type 缺省即 parOf。
func DiagramParentConnections(doc *etree.Document) []DiagramConnection {
	root := doc.Root()
	if root == nil {
		return nil
	}
	cxnLst := root.SelectElement("cxnLst")
	if cxnLst == nil {
		return nil
	}
	var out []DiagramConnection
	for _, cxn := range cxnLst.SelectElements("cxn") {
		typ := cxn.SelectAttrValue("type", "")
		if typ != "" && typ != "parOf" {
			continue
		}
		out = append(out, DiagramConnection{
			SourceID: cxn.SelectAttrValue("srcId", ""),
			DestID:   cxn.SelectAttrValue("destId", ""),
		})
	}
	return out
}

// DiagramLayoutType 数据模型引用的布局标识
func DiagramLayoutType(doc *etree.Document) (string, bool) {
	root := doc.Root()
	if root == nil {
		return "", false
	}
	// 布局在 relIds 的 lo 关系上，数据模型本身只记 ID；
	// 退而读取文档级 uniqueId 式样的 prSet 布局引用
	for _, pt := range DiagramPoints(doc) {
		if pt.Type != "doc" {
			continue
		}
		if prSet := pt.El.SelectElement("prSet"); prSet != nil {
			if v := prSet.SelectAttrValue("loTypeId", ""); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// DrawingPartFor 数据部件对应的绘制缓存部件。
// 约定同编号命名，data3.xml 对应 drawing3.xml。
func (p *Package) DrawingPartFor(dataPath string) (string, bool) {
	name := strings.Replace(dataPath, "/data", "/drawing", 1)
	if name != dataPath && p.HasPart(name) {
		return name, true
	}
	return "", false
}

// UpdateDrawingTexts 把译文同步进绘制缓存，按 modelId 对应。
// 缓存过期时 PowerPoint 会自行重建，这里尽力而为。
func (p *Package) UpdateDrawingTexts(drawingPath string, byModelID map[string]string) (int, error) {
	doc, err := p.Doc(drawingPath)
	if err != nil {
		return 0, err
	}
	root := doc.Root()
	if root == nil {
		return 0, nil
	}
	updated := 0
	for _, sp := range descendants(root, "sp") {
		id := sp.SelectAttrValue("modelId", "")
		if id == "" {
			continue
		}
		text, ok := byModelID[id]
		if !ok {
			continue
		}
		txBody := sp.SelectElement("txBody")
		if txBody == nil {
			continue
		}
		SetFrameText(txBody, text)
		updated++
	}
	if updated > 0 {
		p.MarkDirty(drawingPath)
	}
	return updated, nil
}
