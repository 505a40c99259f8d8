package pptx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// NotesContentType 备注页部件的内容类型
const NotesContentType = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"

// notesTemplate 新建备注页的最小骨架，只含备注占位符
const notesTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr><p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp></p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`

// NotesPathFor 幻灯片关联的备注页部件路径
func (p *Package) NotesPathFor(slidePath string) (string, bool) {
	targets, err := p.RelTargets(slidePath, RelTypeNotesSlide)
	if err != nil || len(targets) == 0 {
		return "", false
	}
	return targets[0], true
}

// NotesBody 备注页中 body 占位符的文本框
func (p *Package) NotesBody(notesPath string) (*etree.Element, error) {
	doc, err := p.Doc(notesPath)
	if err != nil {
		return nil, err
	}
	spTree := ShapeTree(doc)
	if spTree == nil {
		return nil, fmt.Errorf("备注页 %s 缺少形状树", notesPath)
	}
	for _, shape := range FlattenShapes(spTree) {
		if shape.Tag != "sp" {
			continue
		}
		if ph := Placeholder(shape); ph != nil && PlaceholderType(ph) == "body" {
			if txBody := TxBody(shape); txBody != nil {
				return txBody, nil
			}
		}
	}
	return nil, fmt.Errorf("备注页 %s 没有备注占位符", notesPath)
}

// NotesText 读取幻灯片的备注文本，无备注返回空串
func (p *Package) NotesText(slidePath string) (string, error) {
	notesPath, ok := p.NotesPathFor(slidePath)
	if !ok {
		return "", nil
	}
	body, err := p.NotesBody(notesPath)
	if err != nil {
		return "", err
	}
	return FrameText(body), nil
}

// SetNotesText 覆盖幻灯片的备注文本，没有备注页时就地创建。
// 创建需要容器里已有备注母版，缺失时返回错误由调用方决定跳过。
func (p *Package) SetNotesText(slidePath, text string) error {
	notesPath, ok := p.NotesPathFor(slidePath)
	if !ok {
		var err error
		notesPath, err = p.createNotesSlide(slidePath)
		if err != nil {
			return err
		}
	}
	body, err := p.NotesBody(notesPath)
	if err != nil {
		return err
	}
	SetFrameText(body, text)
	p.MarkDirty(notesPath)
	return nil
}

// notesMasterPath 容器内的备注母版部件
func (p *Package) notesMasterPath() (string, bool) {
	for name := range p.parts {
		if strings.HasPrefix(name, "ppt/notesMasters/notesMaster") && strings.HasSuffix(name, ".xml") {
			return name, true
		}
	}
	return "", false
}

// createNotesSlide 为幻灯片新建备注页：写入部件、登记内容类型、
// 建立备注页到母版与幻灯片的关系、以及幻灯片到备注页的关系。
func (p *Package) createNotesSlide(slidePath string) (string, error) {
	masterPath, ok := p.notesMasterPath()
	if !ok {
		return "", fmt.Errorf("容器缺少备注母版，无法为 %s 创建备注页", slidePath)
	}

	notesPath := p.NextPartName("ppt/notesSlides/notesSlide")
	p.SetPart(notesPath, []byte(notesTemplate))

	if err := p.EnsureOverride(notesPath, NotesContentType); err != nil {
		return "", err
	}
	if _, err := p.AddRelationship(notesPath, RelTypeNotesMaster, masterPath); err != nil {
		return "", err
	}
	if _, err := p.AddRelationship(notesPath, RelTypeSlide, slidePath); err != nil {
		return "", err
	}
	if _, err := p.AddRelationship(slidePath, RelTypeNotesSlide, notesPath); err != nil {
		return "", err
	}
	return notesPath, nil
}
