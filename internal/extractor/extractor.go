// Package extractor 把 .pptx 容器投影为中间树表示。
// 提取是只读遍历，不改动容器任何部件；单个形状或属性提取失败
// 只影响其自身，对应字段置空，不中断所在幻灯片。
package extractor

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// Extractor 演示文稿内容提取器
type Extractor struct {
	logger *zap.Logger
}

// New 创建提取器
func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract 提取整个演示文稿的结构化内容。
// name 记录为 presentation_name，通常传源文件基础名。
func (e *Extractor) Extract(pkg *pptx.Package, name string) (*presentation.Presentation, error) {
	slidePaths, err := pkg.SlidePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate slides: %w", err)
	}

	pres := &presentation.Presentation{
		Name:        name,
		TotalSlides: len(slidePaths),
		Slides:      make([]*presentation.Slide, 0, len(slidePaths)),
	}

	e.logger.Info("开始提取演示文稿",
		zap.String("name", name),
		zap.Int("slides", len(slidePaths)))

	masters, layoutIndex := e.extractMasters(pkg)
	pres.SlideMasters = masters

	for i, slidePath := range slidePaths {
		slide := e.extractSlide(pkg, slidePath, i+1, layoutIndex)
		pres.Slides = append(pres.Slides, slide)
	}

	e.attachDiagrams(pkg, slidePaths, pres)

	e.logger.Info("提取完成",
		zap.Int("slides", len(pres.Slides)),
		zap.Int("masters", len(pres.SlideMasters)))
	return pres, nil
}

// extractSlide 提取单张幻灯片的全部内容
func (e *Extractor) extractSlide(pkg *pptx.Package, slidePath string, slideNumber int, layoutIndex map[string]layoutRef) *presentation.Slide {
	slide := &presentation.Slide{
		SlideNumber: slideNumber,
		Elements:    []*presentation.Element{},
		Links:       []*presentation.Link{},
		Diagrams:    []*presentation.Diagram{},
	}

	doc, err := pkg.Doc(slidePath)
	if err != nil {
		e.logger.Warn("幻灯片解析失败，输出空白条目",
			zap.String("part", slidePath), zap.Error(err))
		slide.LayoutInfo = &presentation.LayoutInfo{}
		slide.Background = emptyBackground()
		return slide
	}

	slide.LayoutInfo = e.slideLayoutInfo(pkg, slidePath, doc, layoutIndex)
	slide.Background = extractBackground(doc)

	spTree := pptx.ShapeTree(doc)
	if spTree == nil {
		e.logger.Warn("幻灯片缺少形状树", zap.String("part", slidePath))
		return slide
	}

	rels := e.hyperlinkTargets(pkg, slidePath)
	for _, shape := range pptx.FlattenShapes(spTree) {
		element := e.extractShape(pkg, slidePath, shape)
		if element != nil {
			slide.Elements = append(slide.Elements, element)
		}
		slide.Links = append(slide.Links, extractLinks(shape, rels)...)
	}

	slide.SpeakerNotes = e.extractNotes(pkg, slidePath)
	return slide
}

// extractShape 提取单个形状。分类优先级：带文本框的形状按文本框处理，
// 表格、图表、图片各归其类，其余类型尽力提取文本后归入 Other。
func (e *Extractor) extractShape(pkg *pptx.Package, slidePath string, shape *etree.Element) *presentation.Element {
	id, ok := pptx.ShapeID(shape)
	if !ok {
		e.logger.Debug("形状缺少稳定标识，跳过",
			zap.String("part", slidePath), zap.String("tag", shape.Tag))
		return nil
	}

	element := &presentation.Element{
		ShapeID:         id,
		ShapeName:       pptx.ShapeName(shape),
		ElementType:     pptx.Classify(shape),
		PlaceholderInfo: extractPlaceholderInfo(shape),
		Fill:            extractFill(shape),
		Line:            extractLine(shape),
		Shadow:          extractShadow(shape),
	}

	switch element.ElementType {
	case presentation.ElementTextBox:
		e.extractTextPayload(element, shape)
	case presentation.ElementTable:
		element.Table = extractTable(shape)
	case presentation.ElementChart:
		element.Chart = e.extractChart(pkg, slidePath, shape)
	case presentation.ElementPicture:
		element.Image = extractImageInfo(shape)
	case presentation.ElementAutoShape:
		// 纯几何形状，无文本负载
	default:
		// Other 类型：有文本框就尽力提取
		if pptx.TxBody(shape) != nil {
			e.extractTextPayload(element, shape)
		}
	}

	element.Dimensions = extractDimensions(shape)
	return element
}

// extractTextPayload 提取形状的文本框属性与段落内容
func (e *Extractor) extractTextPayload(element *presentation.Element, shape *etree.Element) {
	txBody := pptx.TxBody(shape)
	if txBody == nil {
		return
	}
	element.TextFrame = extractTextFrameProps(txBody)
	element.Paragraphs = extractParagraphs(txBody)
	element.FullText = pptx.FrameText(txBody)
}

// extractParagraphs 提取文本框内全部段落
func extractParagraphs(txBody *etree.Element) []*presentation.Paragraph {
	paras := pptx.Paragraphs(txBody)
	out := make([]*presentation.Paragraph, 0, len(paras))
	for _, para := range paras {
		p := &presentation.Paragraph{
			Formatting: extractParagraphFormatting(para),
			Runs:       []*presentation.TextRun{},
		}
		for _, run := range pptx.Runs(para) {
			p.Runs = append(p.Runs, extractRunFormatting(run))
		}
		out = append(out, p)
	}
	return out
}

// hyperlinkTargets 幻灯片关系中的外部链接目标，按关系 ID 索引
func (e *Extractor) hyperlinkTargets(pkg *pptx.Package, slidePath string) map[string]string {
	rels, err := pkg.Relationships(slidePath)
	if err != nil {
		return nil
	}
	targets := make(map[string]string)
	for _, rel := range rels {
		if rel.Type == pptx.RelTypeHyperlink && strings.EqualFold(rel.TargetMode, "External") {
			targets[rel.ID] = rel.Target
		}
	}
	return targets
}

// extractLinks 收集形状内运行级超链接。只有指向外部地址的链接才记录，
// 文档内跳转动作没有地址，不在清单之列。
func extractLinks(shape *etree.Element, targets map[string]string) []*presentation.Link {
	txBody := pptx.TxBody(shape)
	if txBody == nil || len(targets) == 0 {
		return nil
	}
	var links []*presentation.Link
	for _, para := range pptx.Paragraphs(txBody) {
		for _, run := range pptx.Runs(para) {
			rPr := pptx.RunProps(run)
			if rPr == nil {
				continue
			}
			hlink := rPr.SelectElement("hlinkClick")
			if hlink == nil {
				continue
			}
			rid := hlink.SelectAttrValue("r:id", "")
			url, ok := targets[rid]
			if !ok {
				continue
			}
			links = append(links, &presentation.Link{
				Text: pptx.RunText(run),
				URL:  url,
			})
		}
	}
	return links
}

// extractNotes 提取演讲者备注，空白备注视同无备注
func (e *Extractor) extractNotes(pkg *pptx.Package, slidePath string) *presentation.SpeakerNotes {
	text, err := pkg.NotesText(slidePath)
	if err != nil {
		e.logger.Warn("备注读取失败", zap.String("part", slidePath), zap.Error(err))
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &presentation.SpeakerNotes{
		Text:        text,
		ElementType: presentation.ElementSpeakerNotes,
	}
}

// attachDiagrams 提取 SmartArt 内容并挂接到引用它的幻灯片。
// 归属通过幻灯片关系图解析；没有任何幻灯片引用的数据部件
// 退回挂到第一张幻灯片，保证内容不丢失。
func (e *Extractor) attachDiagrams(pkg *pptx.Package, slidePaths []string, pres *presentation.Presentation) {
	attached := make(map[string]bool)

	for i, slidePath := range slidePaths {
		dataParts, err := pkg.DiagramDataPartsFor(slidePath)
		if err != nil {
			e.logger.Warn("图示关系解析失败", zap.String("part", slidePath), zap.Error(err))
			continue
		}
		for _, dataPart := range dataParts {
			diagram := e.extractDiagram(pkg, dataPart)
			if diagram != nil {
				pres.Slides[i].Diagrams = append(pres.Slides[i].Diagrams, diagram)
			}
			attached[dataPart] = true
		}
	}

	if len(pres.Slides) == 0 {
		return
	}
	for _, dataPart := range pkg.AllDiagramDataParts() {
		if attached[dataPart] {
			continue
		}
		diagram := e.extractDiagram(pkg, dataPart)
		if diagram != nil {
			e.logger.Debug("图示未被任何幻灯片引用，挂到第一张",
				zap.String("part", dataPart))
			pres.Slides[0].Diagrams = append(pres.Slides[0].Diagrams, diagram)
		}
	}
}
