package pptx

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

func slide1Tree(t *testing.T) (*Package, *etree.Element) {
	t.Helper()
	pkg := openFixture(t)
	doc, err := pkg.Doc("ppt/slides/slide1.xml")
	require.NoError(t, err)
	spTree := ShapeTree(doc)
	require.NotNil(t, spTree)
	return pkg, spTree
}

func TestShapeEnumeration(t *testing.T) {
	_, spTree := slide1Tree(t)

	t.Run("Top Level Keeps Groups Whole", func(t *testing.T) {
		top := TopLevelShapes(spTree)
		require.Len(t, top, 5)
		tags := make([]string, 0, len(top))
		for _, s := range top {
			tags = append(tags, s.Tag)
		}
		assert.Equal(t, []string{"sp", "sp", "grpSp", "graphicFrame", "pic"}, tags)
	})

	t.Run("Flatten Expands Group Members", func(t *testing.T) {
		flat := FlattenShapes(spTree)
		require.Len(t, flat, 5)
		ids := make([]int, 0, len(flat))
		for _, s := range flat {
			id, ok := ShapeID(s)
			require.True(t, ok)
			ids = append(ids, id)
		}
		assert.Equal(t, []int{2, 3, 11, 6, 7}, ids)
	})

	t.Run("Find By ID Reaches Group Members", func(t *testing.T) {
		shape := FindShapeByID(spTree, 11)
		require.NotNil(t, shape)
		assert.Equal(t, "Grouped Text", ShapeName(shape))
		assert.Nil(t, FindShapeByID(spTree, 99))
	})
}

func TestClassify(t *testing.T) {
	_, spTree := slide1Tree(t)
	byID := map[int]string{}
	for _, s := range FlattenShapes(spTree) {
		id, _ := ShapeID(s)
		byID[id] = Classify(s)
	}
	assert.Equal(t, presentation.ElementTextBox, byID[2])
	assert.Equal(t, presentation.ElementTextBox, byID[3])
	assert.Equal(t, presentation.ElementTextBox, byID[11])
	assert.Equal(t, presentation.ElementTable, byID[6])
	assert.Equal(t, presentation.ElementPicture, byID[7])
}

func TestClassifyChartFrame(t *testing.T) {
	pkg := openFixture(t)
	doc, err := pkg.Doc("ppt/slides/slide2.xml")
	require.NoError(t, err)
	spTree := ShapeTree(doc)
	frame := FindShapeByID(spTree, 4)
	require.NotNil(t, frame)
	assert.Equal(t, presentation.ElementChart, Classify(frame))
}

func TestGeometry(t *testing.T) {
	_, spTree := slide1Tree(t)

	t.Run("Shape Offset And Extent", func(t *testing.T) {
		title := FindShapeByID(spTree, 2)
		xfrm := Xfrm(title)
		require.NotNil(t, xfrm)

		x, y, ok := Offset(xfrm)
		require.True(t, ok)
		assert.Equal(t, int64(685800), x)
		assert.Equal(t, int64(457200), y)

		cx, cy, ok := Extent(xfrm)
		require.True(t, ok)
		assert.Equal(t, int64(7772400), cx)
		assert.Equal(t, int64(1143000), cy)
	})

	t.Run("GraphicFrame Holds Xfrm Directly", func(t *testing.T) {
		table := FindShapeByID(spTree, 6)
		xfrm := Xfrm(table)
		require.NotNil(t, xfrm)
		x, _, ok := Offset(xfrm)
		require.True(t, ok)
		assert.Equal(t, int64(4114800), x)
	})

	t.Run("Group Xfrm Under GrpSpPr", func(t *testing.T) {
		var group *etree.Element
		for _, s := range TopLevelShapes(spTree) {
			if s.Tag == "grpSp" {
				group = s
			}
		}
		require.NotNil(t, group)
		xfrm := Xfrm(group)
		require.NotNil(t, xfrm)
		x, _, ok := Offset(xfrm)
		require.True(t, ok)
		assert.Equal(t, int64(1000000), x)
	})

	t.Run("Set Offset X", func(t *testing.T) {
		title := FindShapeByID(spTree, 2)
		xfrm := Xfrm(title)
		require.True(t, SetOffsetX(xfrm, 123456))
		x, _, _ := Offset(xfrm)
		assert.Equal(t, int64(123456), x)
	})
}

func TestPlaceholder(t *testing.T) {
	_, spTree := slide1Tree(t)

	title := FindShapeByID(spTree, 2)
	ph := Placeholder(title)
	require.NotNil(t, ph)
	assert.Equal(t, "ctrTitle", PlaceholderType(ph))
	assert.Equal(t, 0, PlaceholderIdx(ph))

	body := FindShapeByID(spTree, 3)
	ph = Placeholder(body)
	require.NotNil(t, ph)
	assert.Equal(t, "body", PlaceholderType(ph))
	assert.Equal(t, 1, PlaceholderIdx(ph))

	grouped := FindShapeByID(spTree, 11)
	assert.Nil(t, Placeholder(grouped))
}
