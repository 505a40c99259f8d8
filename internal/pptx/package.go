// Package pptx 提供 .pptx 容器的读取、局部修改与回写。
// 容器是一个 OPC 约定的 zip 包，部件之间靠关系文件连接。
// 回写遵循最小触碰原则：只有被标记为脏的部件会重新序列化，
// 其余部件原始字节逐一复制，保证未修改内容在输入输出之间完全一致。
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// 常用部件路径
const (
	ContentTypesPart = "[Content_Types].xml"
	PresentationPart = "ppt/presentation.xml"
)

// OPC 关系类型
const (
	RelTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RelTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	RelTypeNotesMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	RelTypeChart       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	RelTypeDiagramData = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/diagramData"
	RelTypeHyperlink   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// Package 一个打开的 .pptx 容器。
// 部件内容全部驻留内存，zip 条目顺序与压缩方式按原样记录。
type Package struct {
	parts   map[string][]byte
	methods map[string]uint16
	order   []string
	docs    map[string]*etree.Document
	dirty   map[string]bool
}

// Open 从文件打开容器
func Open(filePath string) (*Package, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	pkg, err := FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("打开 %s: %w", filePath, err)
	}
	return pkg, nil
}

// FromBytes 从内存字节打开容器，服务模式下直接处理上传内容
func FromBytes(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("不是有效的 zip 容器: %w", err)
	}

	pkg := &Package{
		parts:   make(map[string][]byte),
		methods: make(map[string]uint16),
		docs:    make(map[string]*etree.Document),
		dirty:   make(map[string]bool),
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("读取部件 %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("读取部件 %s: %w", f.Name, err)
		}
		name := strings.TrimPrefix(f.Name, "/")
		if _, seen := pkg.parts[name]; !seen {
			pkg.order = append(pkg.order, name)
		}
		pkg.parts[name] = content
		pkg.methods[name] = f.Method
	}

	if !pkg.HasPart(PresentationPart) {
		return nil, fmt.Errorf("容器中缺少 %s，不是演示文稿", PresentationPart)
	}
	return pkg, nil
}

// HasPart 部件是否存在
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Part 返回部件的当前字节。脏部件返回重新序列化后的内容。
func (p *Package) Part(name string) ([]byte, error) {
	if p.dirty[name] {
		if doc, ok := p.docs[name]; ok {
			data, err := doc.WriteToBytes()
			if err != nil {
				return nil, fmt.Errorf("序列化部件 %s: %w", name, err)
			}
			return data, nil
		}
	}
	data, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("部件不存在: %s", name)
	}
	return data, nil
}

// Doc 解析部件为 XML 文档并缓存。纯读取不会触发重新序列化，
// 修改后必须调用 MarkDirty，否则改动不会写入容器。
func (p *Package) Doc(name string) (*etree.Document, error) {
	if doc, ok := p.docs[name]; ok {
		return doc, nil
	}
	data, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("部件不存在: %s", name)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("解析部件 %s: %w", name, err)
	}
	p.docs[name] = doc
	return doc, nil
}

// MarkDirty 标记部件已被修改，保存时重新序列化
func (p *Package) MarkDirty(name string) {
	p.dirty[name] = true
}

// SetPart 写入新部件或替换既有部件的原始字节
func (p *Package) SetPart(name string, data []byte) {
	name = strings.TrimPrefix(name, "/")
	if _, seen := p.parts[name]; !seen {
		p.order = append(p.order, name)
		p.methods[name] = zip.Deflate
	}
	p.parts[name] = data
	delete(p.docs, name)
	delete(p.dirty, name)
}

// Bytes 把容器完整写出为 zip 字节。
// 条目保持打开时的顺序与压缩方式，新增部件追加在尾部。
func (p *Package) Bytes() ([]byte, error) {
	for name := range p.dirty {
		doc, ok := p.docs[name]
		if !ok {
			continue
		}
		data, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("序列化部件 %s: %w", name, err)
		}
		p.parts[name] = data
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.order {
		hdr := &zip.FileHeader{Name: name, Method: p.methods[name]}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("写入条目 %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			zw.Close()
			return nil, fmt.Errorf("写入条目 %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("关闭容器: %w", err)
	}
	return buf.Bytes(), nil
}

// Save 把容器写到文件
func (p *Package) Save(filePath string) error {
	data, err := p.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

// PartNames 返回全部部件名，保持 zip 顺序
func (p *Package) PartNames() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// SlidePaths 按显示顺序返回幻灯片部件路径。
// 顺序以 presentation.xml 的 sldIdLst 为准，
// 异常容器退回到按文件名数字排序。
func (p *Package) SlidePaths() ([]string, error) {
	ordered, err := p.slidePathsFromIDList()
	if err == nil && len(ordered) > 0 {
		return ordered, nil
	}

	var paths []string
	for name := range p.parts {
		if strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml") {
			paths = append(paths, name)
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return slideNumberFromPath(paths[i]) < slideNumberFromPath(paths[j])
	})
	return paths, nil
}

func (p *Package) slidePathsFromIDList() ([]string, error) {
	doc, err := p.Doc(PresentationPart)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("presentation.xml 没有根元素")
	}
	idList := root.SelectElement("sldIdLst")
	if idList == nil {
		return nil, fmt.Errorf("presentation.xml 缺少 sldIdLst")
	}

	rels, err := p.Relationships(PresentationPart)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]string, len(rels))
	for _, r := range rels {
		byID[r.ID] = r.Target
	}

	var paths []string
	for _, sldID := range idList.SelectElements("sldId") {
		rid := sldID.SelectAttrValue("r:id", "")
		if target, ok := byID[rid]; ok {
			paths = append(paths, target)
		}
	}
	return paths, nil
}

func slideNumberFromPath(p string) int {
	base := path.Base(p)
	base = strings.TrimSuffix(base, ".xml")
	digits := strings.TrimLeftFunc(base, func(r rune) bool { return r < '0' || r > '9' })
	n, _ := strconv.Atoi(digits)
	return n
}

// SlideNumber 幻灯片部件在显示顺序中的编号，从 1 开始
func (p *Package) SlideNumber(slidePath string) (int, error) {
	paths, err := p.SlidePaths()
	if err != nil {
		return 0, err
	}
	for i, sp := range paths {
		if sp == slidePath {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("不是幻灯片部件: %s", slidePath)
}

// SlideWidth 幻灯片宽度，单位 EMU，读取 presentation.xml 的 sldSz
func (p *Package) SlideWidth() (int64, error) {
	doc, err := p.Doc(PresentationPart)
	if err != nil {
		return 0, err
	}
	root := doc.Root()
	if root == nil {
		return 0, fmt.Errorf("presentation.xml 没有根元素")
	}
	sldSz := root.SelectElement("sldSz")
	if sldSz == nil {
		return 0, fmt.Errorf("presentation.xml 缺少 sldSz")
	}
	cx, ok := int64Attr(sldSz, "cx")
	if !ok {
		return 0, fmt.Errorf("sldSz 缺少 cx 属性")
	}
	return cx, nil
}

// Relationship 一条 OPC 关系
type Relationship struct {
	ID         string
	Type       string
	Target     string // 已解析为包内绝对路径，外部链接保持原样
	TargetMode string
}

// relsPathFor 部件对应的关系文件路径
func relsPathFor(partName string) string {
	dir := path.Dir(partName)
	base := path.Base(partName)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// resolveTarget 把关系目标解析为包内路径
func resolveTarget(partName, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(partName), target))
}

// Relationships 解析部件的全部关系，没有关系文件时返回空列表
func (p *Package) Relationships(partName string) ([]Relationship, error) {
	relsPath := relsPathFor(partName)
	if !p.HasPart(relsPath) {
		return nil, nil
	}
	doc, err := p.Doc(relsPath)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("关系文件 %s 没有根元素", relsPath)
	}

	var rels []Relationship
	for _, el := range root.SelectElements("Relationship") {
		rel := Relationship{
			ID:         el.SelectAttrValue("Id", ""),
			Type:       el.SelectAttrValue("Type", ""),
			Target:     el.SelectAttrValue("Target", ""),
			TargetMode: el.SelectAttrValue("TargetMode", ""),
		}
		if !strings.EqualFold(rel.TargetMode, "External") {
			rel.Target = resolveTarget(partName, rel.Target)
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// RelTargets 返回部件上给定类型关系指向的包内路径
func (p *Package) RelTargets(partName, relType string) ([]string, error) {
	rels, err := p.Relationships(partName)
	if err != nil {
		return nil, err
	}
	var targets []string
	for _, r := range rels {
		if r.Type == relType && !strings.EqualFold(r.TargetMode, "External") {
			targets = append(targets, r.Target)
		}
	}
	return targets, nil
}

// RelTargetByID 按关系 ID 查找目标路径
func (p *Package) RelTargetByID(partName, rid string) (string, bool) {
	rels, err := p.Relationships(partName)
	if err != nil {
		return "", false
	}
	for _, r := range rels {
		if r.ID == rid {
			return r.Target, true
		}
	}
	return "", false
}

// AddRelationship 在部件的关系文件中追加一条关系并返回分配的 ID。
// 关系文件不存在时新建。target 以包内绝对路径传入，
// 写入时转换为相对于部件目录的路径。
func (p *Package) AddRelationship(partName, relType, target string) (string, error) {
	relsPath := relsPathFor(partName)
	var doc *etree.Document
	if p.HasPart(relsPath) {
		var err error
		doc, err = p.Doc(relsPath)
		if err != nil {
			return "", err
		}
	} else {
		doc = etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root := doc.CreateElement("Relationships")
		root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
		p.SetPart(relsPath, nil)
		p.docs[relsPath] = doc
	}

	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("关系文件 %s 没有根元素", relsPath)
	}

	maxID := 0
	for _, el := range root.SelectElements("Relationship") {
		id := el.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}
	rid := "rId" + strconv.Itoa(maxID+1)

	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", rid)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", relativeTarget(partName, target))
	p.MarkDirty(relsPath)
	return rid, nil
}

// relativeTarget 把包内绝对路径转换为相对于部件目录的关系目标
func relativeTarget(partName, target string) string {
	baseDir := path.Dir(partName)
	targetDir, targetBase := path.Split(target)
	targetDir = path.Clean(targetDir)

	if targetDir == baseDir {
		return targetBase
	}

	baseParts := strings.Split(baseDir, "/")
	targetParts := strings.Split(targetDir, "/")
	common := 0
	for common < len(baseParts) && common < len(targetParts) && baseParts[common] == targetParts[common] {
		common++
	}
	var segments []string
	for i := common; i < len(baseParts); i++ {
		segments = append(segments, "..")
	}
	segments = append(segments, targetParts[common:]...)
	segments = append(segments, targetBase)
	return strings.Join(segments, "/")
}

// EnsureOverride 在 [Content_Types].xml 中登记部件的内容类型
func (p *Package) EnsureOverride(partName, contentType string) error {
	doc, err := p.Doc(ContentTypesPart)
	if err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("%s 没有根元素", ContentTypesPart)
	}

	want := "/" + strings.TrimPrefix(partName, "/")
	for _, el := range root.SelectElements("Override") {
		if el.SelectAttrValue("PartName", "") == want {
			return nil
		}
	}
	override := root.CreateElement("Override")
	override.CreateAttr("PartName", want)
	override.CreateAttr("ContentType", contentType)
	p.MarkDirty(ContentTypesPart)
	return nil
}

// NextPartName 生成形如 prefix{N}.xml 的未占用部件名
func (p *Package) NextPartName(prefix string) string {
	max := 0
	for name := range p.parts {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".xml") {
			continue
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".xml")
		if n, err := strconv.Atoi(middle); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d.xml", prefix, max+1)
}
