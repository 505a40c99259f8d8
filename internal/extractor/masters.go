package extractor

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// layoutRef 版式部件到母版/版式序号的映射项
type layoutRef struct {
	masterIndex int
	layoutIndex int
	name        string
}

// extractMasters 提取全部母版与版式，并返回版式部件路径的索引表，
// 幻灯片通过关系图用它定位自己的版式坐标。
func (e *Extractor) extractMasters(pkg *pptx.Package) ([]*presentation.SlideMaster, map[string]layoutRef) {
	masters := []*presentation.SlideMaster{}
	layoutIndex := make(map[string]layoutRef)

	for masterIdx, masterPath := range e.masterPaths(pkg) {
		doc, err := pkg.Doc(masterPath)
		if err != nil {
			e.logger.Warn("母版解析失败", zap.String("part", masterPath), zap.Error(err))
			continue
		}

		master := &presentation.SlideMaster{
			MasterIndex: masterIdx,
			MasterName:  cSldName(doc),
			Background:  extractBackground(doc),
			Layouts:     []*presentation.SlideLayout{},
		}

		for layoutIdx, layoutPath := range e.layoutPaths(pkg, masterPath, doc) {
			layout := e.extractLayout(pkg, layoutPath, layoutIdx)
			if layout == nil {
				continue
			}
			master.Layouts = append(master.Layouts, layout)
			layoutIndex[layoutPath] = layoutRef{
				masterIndex: masterIdx,
				layoutIndex: layoutIdx,
				name:        layout.LayoutName,
			}
		}
		masters = append(masters, master)
	}
	return masters, layoutIndex
}

// masterPaths 母版部件路径，顺序以 presentation.xml 的 sldMasterIdLst 为准
func (e *Extractor) masterPaths(pkg *pptx.Package) []string {
	var paths []string
	if doc, err := pkg.Doc(pptx.PresentationPart); err == nil {
		if root := doc.Root(); root != nil {
			if idList := root.SelectElement("sldMasterIdLst"); idList != nil {
				for _, idEl := range idList.SelectElements("sldMasterId") {
					rid := idEl.SelectAttrValue("r:id", "")
					if target, ok := pkg.RelTargetByID(pptx.PresentationPart, rid); ok {
						paths = append(paths, target)
					}
				}
			}
		}
	}
	if len(paths) > 0 {
		return paths
	}
	for _, name := range pkg.PartNames() {
		if strings.HasPrefix(name, "ppt/slideMasters/slideMaster") && strings.HasSuffix(name, ".xml") {
			paths = append(paths, name)
		}
	}
	sort.Strings(paths)
	return paths
}

// layoutPaths 母版引用的版式部件路径，顺序以 sldLayoutIdLst 为准
func (e *Extractor) layoutPaths(pkg *pptx.Package, masterPath string, masterDoc *etree.Document) []string {
	var paths []string
	root := masterDoc.Root()
	if root == nil {
		return nil
	}
	idList := root.SelectElement("sldLayoutIdLst")
	if idList == nil {
		return nil
	}
	for _, idEl := range idList.SelectElements("sldLayoutId") {
		rid := idEl.SelectAttrValue("r:id", "")
		if target, ok := pkg.RelTargetByID(masterPath, rid); ok {
			paths = append(paths, target)
		}
	}
	return paths
}

// extractLayout 提取单个版式及其占位符清单
func (e *Extractor) extractLayout(pkg *pptx.Package, layoutPath string, layoutIdx int) *presentation.SlideLayout {
	doc, err := pkg.Doc(layoutPath)
	if err != nil {
		e.logger.Warn("版式解析失败", zap.String("part", layoutPath), zap.Error(err))
		return nil
	}

	layout := &presentation.SlideLayout{
		LayoutIndex:  layoutIdx,
		LayoutName:   cSldName(doc),
		Background:   extractBackground(doc),
		Placeholders: []*presentation.LayoutPlaceholder{},
	}

	spTree := pptx.ShapeTree(doc)
	if spTree == nil {
		return layout
	}
	for _, shape := range pptx.FlattenShapes(spTree) {
		ph := pptx.Placeholder(shape)
		if ph == nil {
			continue
		}
		layout.Placeholders = append(layout.Placeholders, &presentation.LayoutPlaceholder{
			PlaceholderIdx:  pptx.PlaceholderIdx(ph),
			PlaceholderType: pptx.PlaceholderType(ph),
			Name:            pptx.ShapeName(shape),
			Dimensions:      extractBounds(shape),
		})
	}
	return layout
}

// cSldName cSld 元素的 name 属性，母版与版式在此记录显示名
func cSldName(doc *etree.Document) string {
	root := doc.Root()
	if root == nil {
		return ""
	}
	cSld := root.SelectElement("cSld")
	if cSld == nil {
		return ""
	}
	return cSld.SelectAttrValue("name", "")
}

// slideLayoutInfo 解析幻灯片对版式的引用坐标
func (e *Extractor) slideLayoutInfo(pkg *pptx.Package, slidePath string, doc *etree.Document, layoutIndex map[string]layoutRef) *presentation.LayoutInfo {
	info := &presentation.LayoutInfo{}

	if root := doc.Root(); root != nil {
		if cSld := root.SelectElement("cSld"); cSld != nil {
			info.FollowsMasterBackground = presentation.Bool(cSld.SelectElement("bg") == nil)
		}
	}

	targets, err := pkg.RelTargets(slidePath, pptx.RelTypeSlideLayout)
	if err != nil || len(targets) == 0 {
		return info
	}
	ref, ok := layoutIndex[targets[0]]
	if !ok {
		e.logger.Debug("幻灯片引用的版式不在母版清单中",
			zap.String("part", slidePath), zap.String("layout", targets[0]))
		return info
	}
	info.MasterIndex = presentation.Int(ref.masterIndex)
	info.LayoutIndex = presentation.Int(ref.layoutIndex)
	info.LayoutName = presentation.String(ref.name)
	return info
}
