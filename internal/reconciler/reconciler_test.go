package reconciler

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/extractor"
	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	fixture "github.com/nerdneilsfield/go-pptx-translator/internal/test"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// extractDeck 打开固定容器并抽取中间树，回写测试都从这对组合出发
func extractDeck(t *testing.T) (*pptx.Package, *presentation.Presentation) {
	t.Helper()
	pkg, err := pptx.FromBytes(fixture.Deck())
	require.NoError(t, err)
	pres, err := extractor.New(zap.NewNop()).Extract(pkg, "deck.pptx")
	require.NoError(t, err)
	return pkg, pres
}

func reconcileInto(t *testing.T, pkg *pptx.Package, pres *presentation.Presentation) *pptx.Package {
	t.Helper()
	_, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	return reopened
}

func slideTree(t *testing.T, pkg *pptx.Package, part string) *etree.Element {
	t.Helper()
	doc, err := pkg.Doc(part)
	require.NoError(t, err)
	spTree := pptx.ShapeTree(doc)
	require.NotNil(t, spTree)
	return spTree
}

// topLevelShapeByID 按 id 查顶层形状，组合形状作为整体返回
func topLevelShapeByID(spTree *etree.Element, id int) *etree.Element {
	for _, shape := range pptx.TopLevelShapes(spTree) {
		if got, ok := pptx.ShapeID(shape); ok && got == id {
			return shape
		}
	}
	return nil
}

func shapeParagraphs(t *testing.T, spTree *etree.Element, id int) []*etree.Element {
	t.Helper()
	shape := pptx.FindShapeByID(spTree, id)
	require.NotNil(t, shape)
	txBody := pptx.TxBody(shape)
	require.NotNil(t, txBody)
	return pptx.Paragraphs(txBody)
}

// 原样回写再抽取，文本内容与原树完全一致
func TestRoundTripIdentity(t *testing.T) {
	pkg, pres := extractDeck(t)
	before, err := presentation.Encode(pres)
	require.NoError(t, err)

	reopened := reconcileInto(t, pkg, pres)
	again, err := extractor.New(zap.NewNop()).Extract(reopened, "deck.pptx")
	require.NoError(t, err)

	require.Len(t, again.Slides, len(pres.Slides))
	for i, slide := range pres.Slides {
		src := slide.TextRuns()
		dst := again.Slides[i].TextRuns()
		require.Len(t, dst, len(src), "slide %d", i+1)
		for j := range src {
			assert.Equal(t, src[j].Text, dst[j].Text)
		}
	}
	assert.Equal(t, "Remember to thank the team", mustNotes(t, reopened))

	// 原树不被回写过程改动
	after, err := presentation.Encode(pres)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func mustNotes(t *testing.T, pkg *pptx.Package) string {
	t.Helper()
	text, err := pkg.NotesText("ppt/slides/slide1.xml")
	require.NoError(t, err)
	return text
}

// 运行数一致时逐个就地覆盖，原有运行格式一字不动
func TestRunsEqualCountInPlace(t *testing.T) {
	pkg, pres := extractDeck(t)
	title := pres.Slides[0].ElementByShapeID(2)
	require.NotNil(t, title)
	require.Len(t, title.Paragraphs[0].Runs, 2)
	title.Paragraphs[0].Runs[0].Text = "Revisión "
	title.Paragraphs[0].Runs[1].Text = "Trimestral"

	reopened := reconcileInto(t, pkg, pres)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	paras := shapeParagraphs(t, spTree, 2)
	require.Len(t, paras, 1)
	runs := pptx.Runs(paras[0])
	require.Len(t, runs, 2)

	assert.Equal(t, "Revisión ", pptx.RunText(runs[0]))
	assert.Equal(t, "Trimestral", pptx.RunText(runs[1]))

	// 首运行的字号、加粗、颜色与字体原样保留
	rPr := runs[0].FindElement("rPr")
	require.NotNil(t, rPr)
	assert.Equal(t, "4400", rPr.SelectAttrValue("sz", ""))
	assert.Equal(t, "1", rPr.SelectAttrValue("b", ""))
	fill := rPr.FindElement("solidFill/srgbClr")
	require.NotNil(t, fill)
	assert.Equal(t, "1F4E79", fill.SelectAttrValue("val", ""))
	require.NotNil(t, rPr.FindElement("latin"))
	assert.Equal(t, "Calibri", rPr.FindElement("latin").SelectAttrValue("typeface", ""))

	// 次运行保持斜体
	rPr2 := runs[1].FindElement("rPr")
	require.NotNil(t, rPr2)
	assert.Equal(t, "1", rPr2.SelectAttrValue("i", ""))
}

// 运行数不一致时重建段落：首运行承接原格式，追加运行只带粗斜体与字号
func TestRunsMismatchRebuild(t *testing.T) {
	pkg, pres := extractDeck(t)
	title := pres.Slides[0].ElementByShapeID(2)
	require.NotNil(t, title)
	title.Paragraphs[0].Runs = []*presentation.TextRun{
		{Text: "Revisión"},
		{Text: " trimestral", Italic: presentation.Bool(true), FontSize: presentation.Float(44)},
		{Text: " 2026", Bold: presentation.Bool(true)},
	}

	reopened := reconcileInto(t, pkg, pres)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	paras := shapeParagraphs(t, spTree, 2)
	require.Len(t, paras, 1)
	runs := pptx.Runs(paras[0])
	require.Len(t, runs, 3)

	// 首运行沿用原 rPr，颜色信息不丢
	assert.Equal(t, "Revisión", pptx.RunText(runs[0]))
	rPr := runs[0].FindElement("rPr")
	require.NotNil(t, rPr)
	assert.NotNil(t, rPr.FindElement("solidFill/srgbClr"))

	// 追加运行只带最小格式子集
	assert.Equal(t, " trimestral", pptx.RunText(runs[1]))
	rPr1 := runs[1].FindElement("rPr")
	require.NotNil(t, rPr1)
	assert.Equal(t, "1", rPr1.SelectAttrValue("i", ""))
	assert.Equal(t, "4400", rPr1.SelectAttrValue("sz", ""))
	assert.Nil(t, rPr1.FindElement("solidFill"))

	assert.Equal(t, " 2026", pptx.RunText(runs[2]))
	rPr2 := runs[2].FindElement("rPr")
	require.NotNil(t, rPr2)
	assert.Equal(t, "1", rPr2.SelectAttrValue("b", ""))
	assert.Equal(t, "", rPr2.SelectAttrValue("sz", ""))
}

// 运行数不一致且无任何携带格式时，追加运行不写 rPr
func TestRunsMismatchNoCarriedProps(t *testing.T) {
	pkg, pres := extractDeck(t)
	box := pres.Slides[1].ElementByShapeID(2)
	require.NotNil(t, box)
	box.Paragraphs[0].Runs = []*presentation.TextRun{
		{Text: "Hoja"},
		{Text: " de ruta"},
	}

	reopened := reconcileInto(t, pkg, pres)
	spTree := slideTree(t, reopened, "ppt/slides/slide2.xml")
	paras := shapeParagraphs(t, spTree, 2)
	runs := pptx.Runs(paras[0])
	require.Len(t, runs, 2)
	assert.Nil(t, runs[1].FindElement("rPr"))
}

// 译文段落多于原有段落时追加，少于时删除尾部多余段落
func TestParagraphGrowAndTrim(t *testing.T) {
	pkg, pres := extractDeck(t)
	body := pres.Slides[0].ElementByShapeID(3)
	require.NotNil(t, body)
	require.Len(t, body.Paragraphs, 2)
	body.Paragraphs = append(body.Paragraphs, &presentation.Paragraph{
		Runs: []*presentation.TextRun{{Text: "Punto extra"}},
	})

	reopened := reconcileInto(t, pkg, pres)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	paras := shapeParagraphs(t, spTree, 3)
	require.Len(t, paras, 3)
	assert.Equal(t, "Punto extra", pptx.RunText(pptx.Runs(paras[2])[0]))

	// 再缩回一个段落
	tree2, err := extractor.New(zap.NewNop()).Extract(reopened, "deck.pptx")
	require.NoError(t, err)
	body2 := tree2.Slides[0].ElementByShapeID(3)
	body2.Paragraphs = body2.Paragraphs[:1]

	final := reconcileInto(t, reopened, tree2)
	finalParas := shapeParagraphs(t, slideTree(t, final, "ppt/slides/slide1.xml"), 3)
	assert.Len(t, finalParas, 1)
}

// 回写后的文本框打开自动换行与缩字适应
func TestAutoShrinkApplied(t *testing.T) {
	pkg, pres := extractDeck(t)
	reopened := reconcileInto(t, pkg, pres)

	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	shape := pptx.FindShapeByID(spTree, 2)
	require.NotNil(t, shape)
	bodyPr := pptx.BodyPr(pptx.TxBody(shape))
	require.NotNil(t, bodyPr)
	assert.Equal(t, "square", bodyPr.SelectAttrValue("wrap", ""))
	assert.NotNil(t, bodyPr.FindElement("normAutofit"))
}

// 关闭缩字开关后不改 bodyPr 的适配属性
func TestAutoFitTextDisabled(t *testing.T) {
	pkg, pres := extractDeck(t)
	st, err := New(zap.NewNop(), Options{MirrorRTLShapes: true, AutoFitText: false}).Reconcile(pkg, pres)
	require.NoError(t, err)
	assert.Equal(t, 0, st.AutoShrinkEnabled)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	shape := pptx.FindShapeByID(spTree, 2)
	require.NotNil(t, shape)
	bodyPr := pptx.BodyPr(pptx.TxBody(shape))
	require.NotNil(t, bodyPr)
	assert.Nil(t, bodyPr.FindElement("normAutofit"))
}

// 关闭镜像开关后 RTL 只设置段落标记，形状位置不动
func TestMirrorRTLShapesDisabled(t *testing.T) {
	pkg, pres := extractDeck(t)
	pres.IsRTL = true

	st, err := New(zap.NewNop(), Options{MirrorRTLShapes: false, AutoFitText: true}).Reconcile(pkg, pres)
	require.NoError(t, err)
	assert.Equal(t, 0, st.ShapesMirrored)
	assert.Greater(t, st.RTLParagraphsSet, 0)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	group := topLevelShapeByID(spTree, 10)
	require.NotNil(t, group)
	x, _, ok := pptx.Offset(pptx.Xfrm(group))
	require.True(t, ok)
	assert.Equal(t, int64(1000000), x)
}

// 目标语言为 RTL 时顶层形状水平镜像，段落标记右向
func TestRTLMirrorAndParagraphMarks(t *testing.T) {
	pkg, pres := extractDeck(t)
	pres.IsRTL = true

	st, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)
	// slide1 顶层五个形状 + slide2 顶层两个形状
	assert.Equal(t, 7, st.ShapesMirrored)
	assert.Greater(t, st.RTLParagraphsSet, 0)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")

	// 组合形状整体移动：9144000 - (1000000 + 2000000)。
	// 组合只出现在顶层清单里，展平查找返回的是组内成员。
	group := topLevelShapeByID(spTree, 10)
	require.NotNil(t, group)
	x, _, ok := pptx.Offset(pptx.Xfrm(group))
	require.True(t, ok)
	assert.Equal(t, int64(6144000), x)

	// 组内成员保持相对位置
	inner := pptx.FindShapeByID(spTree, 11)
	require.NotNil(t, inner)
	innerX, _, ok := pptx.Offset(pptx.Xfrm(inner))
	require.True(t, ok)
	assert.Equal(t, int64(1000000), innerX)

	// 图片同样镜像：9144000 - (300000 + 1200000)
	pic := pptx.FindShapeByID(spTree, 7)
	require.NotNil(t, pic)
	picX, _, ok := pptx.Offset(pptx.Xfrm(pic))
	require.True(t, ok)
	assert.Equal(t, int64(7644000), picX)

	// 回写过的段落带 rtl 与右对齐
	paras := shapeParagraphs(t, spTree, 2)
	pPr := paras[0].FindElement("pPr")
	require.NotNil(t, pPr)
	assert.Equal(t, "1", pPr.SelectAttrValue("rtl", ""))
	assert.Equal(t, "r", pPr.SelectAttrValue("algn", ""))
}

// 表格按 (row, column) 对位，互不串格；单元格不追加段落
func TestTableCellAddressing(t *testing.T) {
	pkg, pres := extractDeck(t)
	table := pres.Slides[0].ElementByShapeID(6)
	require.NotNil(t, table)
	require.NotNil(t, table.Table)
	require.Len(t, table.Table.Cells, 4)

	markers := map[[2]int]string{
		{0, 0}: "Métrica",
		{0, 1}: "Objetivo",
		{1, 0}: "Crecimiento",
		{1, 1}: "15 %",
	}
	for _, cell := range table.Table.Cells {
		cell.Paragraphs[0].Runs[0].Text = markers[[2]int{cell.Row, cell.Column}]
	}
	// 多出的译文段落在单元格里被忽略
	table.Table.Cells[0].Paragraphs = append(table.Table.Cells[0].Paragraphs,
		&presentation.Paragraph{Runs: []*presentation.TextRun{{Text: "ignorado"}}})

	reopened := reconcileInto(t, pkg, pres)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	frame := pptx.FindShapeByID(spTree, 6)
	require.NotNil(t, frame)
	tbl := pptx.TableIn(frame)
	require.NotNil(t, tbl)

	for pos, want := range markers {
		tc := pptx.CellAt(tbl, pos[0], pos[1])
		require.NotNil(t, tc, "cell %v", pos)
		assert.Equal(t, want, pptx.FrameText(pptx.CellTxBody(tc)), "cell %v", pos)
	}
	assert.Len(t, pptx.Paragraphs(pptx.CellTxBody(pptx.CellAt(tbl, 0, 0))), 1)
}

// 找不到 shape_id 的元素跳过计数，其余元素照常回写
func TestUnresolvedShapeSkipped(t *testing.T) {
	pkg, pres := extractDeck(t)
	title := pres.Slides[0].ElementByShapeID(2)
	require.NotNil(t, title)
	title.ShapeID = 999
	body := pres.Slides[0].ElementByShapeID(3)
	body.Paragraphs[0].Runs[0].Text = "Primer punto"

	st, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)
	assert.Equal(t, 1, st.ElementsSkipped)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	spTree := slideTree(t, reopened, "ppt/slides/slide1.xml")
	paras := shapeParagraphs(t, spTree, 3)
	assert.Equal(t, "Primer punto", pptx.RunText(pptx.Runs(paras[0])[0]))
	// 标题保持原文
	titleParas := shapeParagraphs(t, spTree, 2)
	assert.Equal(t, "Quarterly ", pptx.RunText(pptx.Runs(titleParas[0])[0]))
}

// 幻灯片数不一致时按较小一侧处理，多出的容器页原样保留
func TestSlideCountMismatch(t *testing.T) {
	pkg, pres := extractDeck(t)
	pres.Slides[0].ElementByShapeID(2).Paragraphs[0].Runs[0].Text = "Traducido "
	pres.Slides = pres.Slides[:1]

	st, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)
	assert.Equal(t, 1, st.SlidesProcessed)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	spTree := slideTree(t, reopened, "ppt/slides/slide2.xml")
	paras := shapeParagraphs(t, spTree, 2)
	assert.Equal(t, "Roadmap", pptx.RunText(pptx.Runs(paras[0])[0]))
}

// 演讲者备注回写到既有备注部件
func TestNotesUpdated(t *testing.T) {
	pkg, pres := extractDeck(t)
	require.NotNil(t, pres.Slides[0].SpeakerNotes)
	pres.Slides[0].SpeakerNotes.Text = "No olvides agradecer al equipo"

	st, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)
	assert.Equal(t, 1, st.NotesUpdated)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "No olvides agradecer al equipo", mustNotes(t, reopened))
}

// 图表标题、系列名、轴标题与数据点标签全部回写，数据本身保持不变
func TestChartWriteBack(t *testing.T) {
	pkg, pres := extractDeck(t)
	chart := pres.Slides[1].ElementByShapeID(4)
	require.NotNil(t, chart)
	require.NotNil(t, chart.Chart)

	chart.Chart.Title = presentation.String("Ventas por región")
	require.Len(t, chart.Chart.DataValues, 2)
	chart.Chart.DataValues[0].SeriesName = "Norte"
	chart.Chart.DataValues[1].SeriesName = "Sur"
	require.NotEmpty(t, chart.Chart.DataValues[0].DataLabels)
	chart.Chart.DataValues[0].DataLabels[0].Text = "Pico"
	chart.Chart.AxisTitles["category"] = "Trimestre"
	chart.Chart.AxisTitles["value"] = "Ingresos"

	st, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)
	assert.Equal(t, 1, st.ChartsUpdated)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)
	doc, err := reopened.Doc("ppt/charts/chart1.xml")
	require.NoError(t, err)
	chartEl := pptx.ChartEl(doc)
	require.NotNil(t, chartEl)

	assert.Equal(t, "Ventas por región", pptx.FrameText(pptx.TitleRich(chartEl)))
	assert.Equal(t, "Trimestre", pptx.FrameText(pptx.AxisTitleRich(chartEl, "catAx")))
	assert.Equal(t, "Ingresos", pptx.FrameText(pptx.AxisTitleRich(chartEl, "valAx")))

	series := pptx.Series(chartEl)
	require.Len(t, series, 2)
	name0, ok := pptx.SeriesName(series[0])
	require.True(t, ok)
	assert.Equal(t, "Norte", name0)
	name1, ok := pptx.SeriesName(series[1])
	require.True(t, ok)
	assert.Equal(t, "Sur", name1)

	labels := pptx.SeriesDataLabels(series[0])
	require.Len(t, labels, 1)
	assert.Equal(t, "Pico", pptx.FrameText(labels[0].Rich))

	// 分类与数值是数据，不回写
	assert.Equal(t, []float64{120, 150}, pptx.SeriesValues(series[0]))
	assert.Equal(t, []string{"Q1", "Q2"}, pptx.SeriesCategories(series[0]))
}

// SmartArt 节点按 modelId 回写数据部件，绘制缓存同步刷新
func TestDiagramWriteBack(t *testing.T) {
	pkg, pres := extractDeck(t)
	require.Len(t, pres.Slides[1].Diagrams, 1)
	diagram := pres.Slides[1].Diagrams[0]
	require.Len(t, diagram.Nodes, 3)
	for i, text := range []string{"Planificar", "Construir", "Entregar"} {
		diagram.Nodes[i].Text = text
	}

	st, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)
	assert.Equal(t, 1, st.DiagramsUpdated)

	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)

	doc, err := reopened.Doc("ppt/diagrams/data1.xml")
	require.NoError(t, err)
	texts := map[string]string{}
	for _, pt := range pptx.DiagramPoints(doc) {
		if pt.IsNode() {
			texts[pt.ModelID] = pt.Text()
		}
	}
	assert.Equal(t, map[string]string{
		"{N-1}": "Planificar",
		"{N-2}": "Construir",
		"{N-3}": "Entregar",
	}, texts)

	drawing, err := reopened.Part("ppt/diagrams/drawing1.xml")
	require.NoError(t, err)
	assert.Contains(t, string(drawing), "Planificar")
	assert.NotContains(t, string(drawing), ">Plan<")
}

// 未改动的部件字节级原样保留
func TestUntouchedPartsPreserved(t *testing.T) {
	pkg, pres := extractDeck(t)
	pres.Slides[0].ElementByShapeID(2).Paragraphs[0].Runs[0].Text = "Cambiado "

	_, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)
	data, err := pkg.Bytes()
	require.NoError(t, err)
	reopened, err := pptx.FromBytes(data)
	require.NoError(t, err)

	for _, part := range []string{
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/media/image1.png",
	} {
		got, err := reopened.Part(part)
		require.NoError(t, err)
		want := fixture.DeckParts()[part]
		assert.Equal(t, want, got, part)
	}
}

// 回写统计覆盖全部元素类别
func TestReassemblyStats(t *testing.T) {
	pkg, pres := extractDeck(t)
	st, err := New(zap.NewNop(), DefaultOptions()).Reconcile(pkg, pres)
	require.NoError(t, err)

	assert.Equal(t, 2, st.SlidesProcessed)
	assert.Equal(t, 0, st.ElementsSkipped)
	assert.Equal(t, 1, st.TablesUpdated)
	assert.Equal(t, 1, st.ChartsUpdated)
	assert.Equal(t, 1, st.NotesUpdated)
	assert.Greater(t, st.TextRunsUpdated, 0)
	assert.Greater(t, st.ElementsUpdated, 0)
	assert.Equal(t, 0, st.ShapesMirrored)
}
