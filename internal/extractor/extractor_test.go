package extractor

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	fixture "github.com/nerdneilsfield/go-pptx-translator/internal/test"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

func extractDeck(t *testing.T) *presentation.Presentation {
	t.Helper()
	pkg, err := pptx.FromBytes(fixture.Deck())
	require.NoError(t, err)
	pres, err := New(zap.NewNop()).Extract(pkg, "deck.pptx")
	require.NoError(t, err)
	return pres
}

func parseFragment(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	return doc.Root()
}

func TestExtractPresentation(t *testing.T) {
	pres := extractDeck(t)

	assert.Equal(t, "deck.pptx", pres.Name)
	assert.Equal(t, 2, pres.TotalSlides)
	require.Len(t, pres.Slides, 2)
	require.Len(t, pres.SlideMasters, 1)

	assert.Equal(t, 1, pres.Slides[0].SlideNumber)
	assert.Equal(t, 2, pres.Slides[1].SlideNumber)
}

func TestExtractElements(t *testing.T) {
	pres := extractDeck(t)
	slide := pres.Slides[0]

	require.Len(t, slide.Elements, 5)

	var ids []int
	var types []string
	for _, el := range slide.Elements {
		ids = append(ids, el.ShapeID)
		types = append(types, el.ElementType)
	}
	assert.Equal(t, []int{2, 3, 11, 6, 7}, ids, "组合形状成员按先序展平")
	assert.Equal(t, []string{
		presentation.ElementTextBox,
		presentation.ElementTextBox,
		presentation.ElementTextBox,
		presentation.ElementTable,
		presentation.ElementPicture,
	}, types)
}

func TestExtractTitleFormatting(t *testing.T) {
	pres := extractDeck(t)
	title := pres.Slides[0].ElementByShapeID(2)
	require.NotNil(t, title)

	assert.Equal(t, "Title 1", title.ShapeName)
	assert.Equal(t, "Quarterly Review", title.FullText)

	require.NotNil(t, title.PlaceholderInfo)
	assert.True(t, title.PlaceholderInfo.IsPlaceholder)
	require.NotNil(t, title.PlaceholderInfo.PlaceholderType)
	assert.Equal(t, "ctrTitle", *title.PlaceholderInfo.PlaceholderType)

	require.Len(t, title.Paragraphs, 1)
	para := title.Paragraphs[0]
	require.NotNil(t, para.Formatting.Alignment)
	assert.Equal(t, "ctr", *para.Formatting.Alignment)

	require.Len(t, para.Runs, 2)
	first, second := para.Runs[0], para.Runs[1]

	assert.Equal(t, "Quarterly ", first.Text)
	require.NotNil(t, first.FontSize)
	assert.InDelta(t, 44.0, *first.FontSize, 0.001)
	require.NotNil(t, first.Bold)
	assert.True(t, *first.Bold)
	require.NotNil(t, first.FontName)
	assert.Equal(t, "Calibri", *first.FontName)
	require.NotNil(t, first.Color)
	assert.Equal(t, "1F4E79", first.Color.RGB)

	assert.Equal(t, "Review", second.Text)
	require.NotNil(t, second.Italic)
	assert.True(t, *second.Italic)
	assert.Nil(t, second.Bold, "未声明的属性保持为空")
	assert.Nil(t, second.Color)

	t.Run("Text Frame Properties", func(t *testing.T) {
		require.NotNil(t, title.TextFrame)
		require.NotNil(t, title.TextFrame.WordWrap)
		assert.True(t, *title.TextFrame.WordWrap)
		require.NotNil(t, title.TextFrame.MarginLeft)
		assert.Equal(t, int64(91440), *title.TextFrame.MarginLeft)
	})

	t.Run("Dimensions", func(t *testing.T) {
		require.NotNil(t, title.Dimensions)
		require.NotNil(t, title.Dimensions.Left)
		assert.Equal(t, int64(685800), *title.Dimensions.Left)
		require.NotNil(t, title.Dimensions.Width)
		assert.Equal(t, int64(7772400), *title.Dimensions.Width)
		assert.Equal(t, 0.0, title.Dimensions.Rotation)
	})
}

func TestExtractBulletsAndSpacing(t *testing.T) {
	pres := extractDeck(t)
	body := pres.Slides[0].ElementByShapeID(3)
	require.NotNil(t, body)
	require.Len(t, body.Paragraphs, 2)

	bulleted := body.Paragraphs[0].Formatting
	require.NotNil(t, bulleted.BulletFormat)
	assert.True(t, bulleted.BulletFormat.IsBulleted)
	require.NotNil(t, bulleted.BulletFormat.BulletType)
	assert.Equal(t, "bullet", *bulleted.BulletFormat.BulletType)
	require.NotNil(t, bulleted.BulletFormat.BulletChar)
	assert.Equal(t, "•", *bulleted.BulletFormat.BulletChar)
	require.NotNil(t, bulleted.BulletFormat.BulletFont)
	assert.Equal(t, "Arial", *bulleted.BulletFormat.BulletFont)
	require.NotNil(t, bulleted.SpaceBefore)
	assert.InDelta(t, 6.0, *bulleted.SpaceBefore, 0.001)

	plain := body.Paragraphs[1].Formatting
	require.NotNil(t, plain.BulletFormat)
	assert.False(t, plain.BulletFormat.IsBulleted)
	assert.Nil(t, plain.BulletFormat.BulletType)

	underlined := body.Paragraphs[1].Runs[0]
	require.NotNil(t, underlined.Underline)
	assert.True(t, *underlined.Underline)
}

func TestExtractHyperlinks(t *testing.T) {
	pres := extractDeck(t)

	require.Len(t, pres.Slides[0].Links, 1)
	link := pres.Slides[0].Links[0]
	assert.Equal(t, "Visit our site", link.Text)
	assert.Equal(t, "https://example.com/report", link.URL)

	assert.Empty(t, pres.Slides[1].Links)
}

func TestExtractTableContent(t *testing.T) {
	pres := extractDeck(t)
	table := pres.Slides[0].ElementByShapeID(6)
	require.NotNil(t, table)
	require.NotNil(t, table.Table)

	assert.Equal(t, 2, table.Table.Rows)
	assert.Equal(t, 2, table.Table.Columns)
	require.Len(t, table.Table.Cells, 4)

	texts := map[[2]int]string{}
	for _, cell := range table.Table.Cells {
		texts[[2]int{cell.Row, cell.Column}] = cell.Text
	}
	assert.Equal(t, "Metric", texts[[2]int{0, 0}])
	assert.Equal(t, "Target", texts[[2]int{0, 1}])
	assert.Equal(t, "Growth", texts[[2]int{1, 0}])
	assert.Equal(t, "15%", texts[[2]int{1, 1}])

	header := table.Table.Cells[0]
	require.Len(t, header.Paragraphs, 1)
	require.Len(t, header.Paragraphs[0].Runs, 1)
	require.NotNil(t, header.Paragraphs[0].Runs[0].Bold)
	assert.True(t, *header.Paragraphs[0].Runs[0].Bold)
}

func TestExtractPicture(t *testing.T) {
	pres := extractDeck(t)
	pic := pres.Slides[0].ElementByShapeID(7)
	require.NotNil(t, pic)
	require.NotNil(t, pic.Image)

	assert.Equal(t, "Picture 6", pic.Image.Description)
	require.NotNil(t, pic.Image.AltText)
	assert.Equal(t, "A chart screenshot", *pic.Image.AltText)
	assert.Nil(t, pic.Paragraphs)
}

func TestExtractSpeakerNotes(t *testing.T) {
	pres := extractDeck(t)

	require.NotNil(t, pres.Slides[0].SpeakerNotes)
	assert.Equal(t, "Remember to thank the team", pres.Slides[0].SpeakerNotes.Text)
	assert.Equal(t, presentation.ElementSpeakerNotes, pres.Slides[0].SpeakerNotes.ElementType)

	assert.Nil(t, pres.Slides[1].SpeakerNotes)
}

func TestExtractChartContent(t *testing.T) {
	pres := extractDeck(t)
	chart := pres.Slides[1].ElementByShapeID(4)
	require.NotNil(t, chart)
	require.NotNil(t, chart.Chart)
	data := chart.Chart

	require.NotNil(t, data.ChartType)
	assert.Equal(t, "barChart", *data.ChartType)
	require.NotNil(t, data.ChartStyle)
	assert.Equal(t, 2, *data.ChartStyle)

	assert.True(t, data.HasTitle)
	require.NotNil(t, data.Title)
	assert.Equal(t, "Sales by Region", *data.Title)

	assert.Equal(t, []string{"North", "South"}, data.SeriesNames)
	assert.Equal(t, []string{"Q1", "Q2"}, data.Categories)
	assert.Equal(t, map[string]string{"category": "Quarter", "value": "Revenue"}, data.AxisTitles)

	require.Len(t, data.DataValues, 2)
	north := data.DataValues[0]
	assert.Equal(t, []float64{120, 150}, north.Values)
	require.Len(t, north.DataLabels, 1)
	assert.Equal(t, 0, north.DataLabels[0].PointIndex)
	assert.Equal(t, "Peak", north.DataLabels[0].Text)
	assert.Empty(t, data.DataValues[1].DataLabels)
	assert.Empty(t, data.LegendEntries)
}

func TestExtractDiagramContent(t *testing.T) {
	pres := extractDeck(t)

	assert.Empty(t, pres.Slides[0].Diagrams)
	require.Len(t, pres.Slides[1].Diagrams, 1)
	diagram := pres.Slides[1].Diagrams[0]

	assert.Equal(t, presentation.ElementSmartArt, diagram.ElementType)
	assert.Equal(t, "ppt/diagrams/data1.xml", diagram.DataPart)
	require.NotNil(t, diagram.LayoutType)
	assert.Contains(t, *diagram.LayoutType, "process1")
	assert.Equal(t, []string{"Plan", "Build", "Ship"}, diagram.Texts)
	assert.Equal(t, "Plan Build Ship", diagram.FullText)

	// doc 伪节点不进入节点列表
	require.Len(t, diagram.Nodes, 3)
	byID := map[string]*presentation.DiagramNode{}
	for _, node := range diagram.Nodes {
		byID[node.NodeID] = node
	}
	assert.NotContains(t, byID, "{DOC-0}")

	plan := byID["{N-1}"]
	require.NotNil(t, plan)
	assert.Equal(t, "Plan", plan.Text)
	assert.Nil(t, plan.ParentID)
	require.NotNil(t, plan.Level)
	assert.Equal(t, 0, *plan.Level)

	ship := byID["{N-3}"]
	require.NotNil(t, ship)
	require.NotNil(t, ship.ParentID)
	assert.Equal(t, "{N-1}", *ship.ParentID)
	require.NotNil(t, ship.Level)
	assert.Equal(t, 1, *ship.Level)
}

func TestExtractMastersAndLayoutInfo(t *testing.T) {
	pres := extractDeck(t)

	require.Len(t, pres.SlideMasters, 1)
	master := pres.SlideMasters[0]
	assert.Equal(t, 0, master.MasterIndex)
	require.NotNil(t, master.Background)
	require.NotNil(t, master.Background.FillType)
	assert.Equal(t, "solidFill", *master.Background.FillType)
	require.NotNil(t, master.Background.SolidColor)
	assert.Equal(t, "bg1", master.Background.SolidColor.ThemeColor)
	assert.Nil(t, master.Background.FollowsMaster)

	require.Len(t, master.Layouts, 1)
	layout := master.Layouts[0]
	assert.Equal(t, "Title Slide", layout.LayoutName)
	require.Len(t, layout.Placeholders, 1)
	ph := layout.Placeholders[0]
	assert.Equal(t, "ctrTitle", ph.PlaceholderType)
	assert.Equal(t, "Title Placeholder 1", ph.Name)
	require.NotNil(t, ph.Dimensions.Width)
	assert.Equal(t, int64(7772400), *ph.Dimensions.Width)

	info := pres.Slides[0].LayoutInfo
	require.NotNil(t, info)
	require.NotNil(t, info.MasterIndex)
	assert.Equal(t, 0, *info.MasterIndex)
	require.NotNil(t, info.LayoutIndex)
	assert.Equal(t, 0, *info.LayoutIndex)
	require.NotNil(t, info.LayoutName)
	assert.Equal(t, "Title Slide", *info.LayoutName)
	require.NotNil(t, info.FollowsMasterBackground)
	assert.False(t, *info.FollowsMasterBackground)

	second := pres.Slides[1].LayoutInfo
	require.NotNil(t, second)
	require.NotNil(t, second.FollowsMasterBackground)
	assert.True(t, *second.FollowsMasterBackground)
}

func TestExtractBackground(t *testing.T) {
	pres := extractDeck(t)

	withBg := pres.Slides[0].Background
	require.NotNil(t, withBg)
	require.NotNil(t, withBg.FollowsMaster)
	assert.False(t, *withBg.FollowsMaster)
	require.NotNil(t, withBg.FillType)
	assert.Equal(t, "solidFill", *withBg.FillType)
	require.NotNil(t, withBg.SolidColor)
	assert.Equal(t, "FFFFFF", withBg.SolidColor.RGB)

	inherited := pres.Slides[1].Background
	require.NotNil(t, inherited)
	require.NotNil(t, inherited.FollowsMaster)
	assert.True(t, *inherited.FollowsMaster)
	assert.Nil(t, inherited.FillType)
}

func TestRunFormattingDetails(t *testing.T) {
	t.Run("Baseline Superscript", func(t *testing.T) {
		run := parseFragment(t, `<a:r xmlns:a="x"><a:rPr baseline="30000"/><a:t>2</a:t></a:r>`)
		tr := extractRunFormatting(run)
		require.NotNil(t, tr.Superscript)
		assert.Equal(t, 30000, *tr.Superscript)
		assert.Nil(t, tr.Subscript)
	})

	t.Run("Baseline Subscript", func(t *testing.T) {
		run := parseFragment(t, `<a:r xmlns:a="x"><a:rPr baseline="-25000"/><a:t>x</a:t></a:r>`)
		tr := extractRunFormatting(run)
		require.NotNil(t, tr.Subscript)
		assert.Equal(t, 25000, *tr.Subscript)
		assert.Nil(t, tr.Superscript)
	})

	t.Run("Strike Kern Spacing Caps", func(t *testing.T) {
		run := parseFragment(t, `<a:r xmlns:a="x"><a:rPr strike="sngStrike" kern="1200" spc="300" cap="all"/><a:t>loud</a:t></a:r>`)
		tr := extractRunFormatting(run)
		require.NotNil(t, tr.Strike)
		assert.Equal(t, "sngStrike", *tr.Strike)
		require.NotNil(t, tr.Kerning)
		assert.Equal(t, "1200", *tr.Kerning)
		require.NotNil(t, tr.Spacing)
		assert.Equal(t, "300", *tr.Spacing)
		require.NotNil(t, tr.Caps)
		assert.Equal(t, "all", *tr.Caps)
	})

	t.Run("Highlight And Outline", func(t *testing.T) {
		run := parseFragment(t, `<a:r xmlns:a="x"><a:rPr><a:ln w="9525"><a:solidFill><a:srgbClr val="FF0000"/></a:solidFill></a:ln><a:highlight><a:srgbClr val="FFFF00"/></a:highlight></a:rPr><a:t>marked</a:t></a:r>`)
		tr := extractRunFormatting(run)
		require.NotNil(t, tr.Highlight)
		assert.Equal(t, "FFFF00", *tr.Highlight)
		require.NotNil(t, tr.Outline)
		require.NotNil(t, tr.Outline.Width)
		assert.Equal(t, "9525", *tr.Outline.Width)
		require.NotNil(t, tr.Outline.Color)
		assert.Equal(t, "FF0000", *tr.Outline.Color)
	})

	t.Run("Underline None Is False", func(t *testing.T) {
		run := parseFragment(t, `<a:r xmlns:a="x"><a:rPr u="none"/><a:t>plain</a:t></a:r>`)
		tr := extractRunFormatting(run)
		require.NotNil(t, tr.Underline)
		assert.False(t, *tr.Underline)
	})

	t.Run("Color Brightness", func(t *testing.T) {
		run := parseFragment(t, `<a:r xmlns:a="x"><a:rPr><a:solidFill><a:schemeClr val="accent1"><a:lumMod val="60000"/><a:lumOff val="40000"/></a:schemeClr></a:solidFill></a:rPr><a:t>tint</a:t></a:r>`)
		tr := extractRunFormatting(run)
		require.NotNil(t, tr.Color)
		assert.Equal(t, "accent1", tr.Color.ThemeColor)
		require.NotNil(t, tr.Color.Brightness)
		assert.InDelta(t, 0.4, *tr.Color.Brightness, 0.001)
	})
}

func TestBulletCascade(t *testing.T) {
	t.Run("Numbered Overrides Char", func(t *testing.T) {
		para := parseFragment(t, `<a:p xmlns:a="x"><a:pPr><a:buChar char="-"/><a:buAutoNum type="romanUcPeriod" startAt="3"/></a:pPr></a:p>`)
		b := extractParagraphFormatting(para).BulletFormat
		assert.True(t, b.IsBulleted)
		require.NotNil(t, b.BulletType)
		assert.Equal(t, "numbered", *b.BulletType)
		require.NotNil(t, b.NumberingFormat)
		assert.Equal(t, "romanUcPeriod", *b.NumberingFormat)
		require.NotNil(t, b.StartAt)
		assert.Equal(t, 3, *b.StartAt)
	})

	t.Run("None Wins", func(t *testing.T) {
		para := parseFragment(t, `<a:p xmlns:a="x"><a:pPr><a:buChar char="-"/><a:buNone/></a:pPr></a:p>`)
		b := extractParagraphFormatting(para).BulletFormat
		assert.False(t, b.IsBulleted)
		require.NotNil(t, b.BulletType)
		assert.Equal(t, "none", *b.BulletType)
	})

	t.Run("RTL Direction", func(t *testing.T) {
		para := parseFragment(t, `<a:p xmlns:a="x"><a:pPr rtl="1" algn="r"/></a:p>`)
		f := extractParagraphFormatting(para)
		require.NotNil(t, f.TextDirection)
		assert.Equal(t, "rtl", *f.TextDirection)
		require.NotNil(t, f.Alignment)
		assert.Equal(t, "r", *f.Alignment)
	})
}

func TestAssignLevelsOrphan(t *testing.T) {
	nodes := []*presentation.DiagramNode{
		{NodeID: "root"},
		{NodeID: "child", ParentID: presentation.String("root")},
		{NodeID: "orphan", ParentID: presentation.String("missing")},
	}
	assignLevels(nodes)

	require.NotNil(t, nodes[0].Level)
	assert.Equal(t, 0, *nodes[0].Level)
	require.NotNil(t, nodes[1].Level)
	assert.Equal(t, 1, *nodes[1].Level)
	assert.Nil(t, nodes[2].Level, "连不到根的节点不标层级")
}
