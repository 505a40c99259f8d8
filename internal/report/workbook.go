// Package report 生成翻译对照工作簿，一行对应一个被翻译的文本单元。
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// SheetName 工作表名
const SheetName = "Translations"

var headers = []string{
	"Slide", "Element Type", "Shape Name", "Shape ID", "Location",
	"Original Text", "Translated Text", "Original Chars", "Translated Chars",
}

// 各列显示宽度
var columnWidths = []float64{8, 15, 20, 10, 20, 50, 50, 12, 12}

// Record 一个文本单元的原译对照
type Record struct {
	Slide       int
	ElementType string
	ShapeName   string
	ShapeID     int
	Location    string
	Original    string
	Translated  string
}

// Collect 对照源树与译文树，收集全部非空文本单元。
// 元素按 shape_id 对位，译文侧缺失的单元译文列留空。
func Collect(src, dst *presentation.Presentation) []Record {
	var records []Record
	for i, slide := range src.Slides {
		var counterpart *presentation.Slide
		if dst != nil && i < len(dst.Slides) {
			counterpart = dst.Slides[i]
		}
		records = append(records, collectSlide(slide, counterpart)...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Slide != records[j].Slide {
			return records[i].Slide < records[j].Slide
		}
		return records[i].ElementType < records[j].ElementType
	})
	return records
}

func collectSlide(src, dst *presentation.Slide) []Record {
	var records []Record

	add := func(elType, shapeName string, shapeID int, location, original, translated string) {
		if original == "" {
			return
		}
		records = append(records, Record{
			Slide:       src.SlideNumber,
			ElementType: elType,
			ShapeName:   shapeName,
			ShapeID:     shapeID,
			Location:    location,
			Original:    original,
			Translated:  translated,
		})
	}

	for _, el := range src.Elements {
		var pair *presentation.Element
		if dst != nil {
			pair = dst.ElementByShapeID(el.ShapeID)
		}
		collectElement(el, pair, add)
	}

	if src.SpeakerNotes != nil {
		translated := ""
		if dst != nil && dst.SpeakerNotes != nil {
			translated = dst.SpeakerNotes.Text
		}
		add("Notes", "", 0, "Speaker Notes", src.SpeakerNotes.Text, translated)
	}

	for di, diagram := range src.Diagrams {
		var pair *presentation.Diagram
		if dst != nil && di < len(dst.Diagrams) {
			pair = dst.Diagrams[di]
		}
		for ni, node := range diagram.Nodes {
			translated := ""
			if pair != nil && ni < len(pair.Nodes) {
				translated = pair.Nodes[ni].Text
			}
			add("SmartArt", "", 0, fmt.Sprintf("Node %s", node.NodeID), node.Text, translated)
		}
	}

	return records
}

func collectElement(el, pair *presentation.Element, add func(elType, shapeName string, shapeID int, location, original, translated string)) {
	switch el.ElementType {
	case presentation.ElementTextBox, presentation.ElementAutoShape:
		for pi, para := range el.Paragraphs {
			translated := ""
			if pair != nil && pi < len(pair.Paragraphs) {
				translated = pair.Paragraphs[pi].PlainText()
			}
			add(el.ElementType, el.ShapeName, el.ShapeID,
				fmt.Sprintf("Paragraph %d", pi+1), para.PlainText(), translated)
		}

	case presentation.ElementTable:
		if el.Table == nil {
			return
		}
		for ci, cell := range el.Table.Cells {
			translated := ""
			if pair != nil && pair.Table != nil && ci < len(pair.Table.Cells) {
				translated = pair.Table.Cells[ci].Text
			}
			add(el.ElementType, el.ShapeName, el.ShapeID,
				fmt.Sprintf("Cell (%d,%d)", cell.Row, cell.Column), cell.Text, translated)
		}

	case presentation.ElementChart:
		if el.Chart == nil {
			return
		}
		collectChart(el, pair, add)
	}
}

func collectChart(el, pair *presentation.Element, add func(elType, shapeName string, shapeID int, location, original, translated string)) {
	var dst *presentation.ChartData
	if pair != nil {
		dst = pair.Chart
	}
	src := el.Chart

	if src.Title != nil {
		translated := ""
		if dst != nil && dst.Title != nil {
			translated = *dst.Title
		}
		add(el.ElementType, el.ShapeName, el.ShapeID, "Chart Title", *src.Title, translated)
	}

	for si, ser := range src.DataValues {
		translated := ""
		if dst != nil && si < len(dst.DataValues) {
			translated = dst.DataValues[si].SeriesName
		}
		add(el.ElementType, el.ShapeName, el.ShapeID,
			fmt.Sprintf("Series %d Name", si+1), ser.SeriesName, translated)

		for li, label := range ser.DataLabels {
			labelTranslated := ""
			if dst != nil && si < len(dst.DataValues) && li < len(dst.DataValues[si].DataLabels) {
				labelTranslated = dst.DataValues[si].DataLabels[li].Text
			}
			add(el.ElementType, el.ShapeName, el.ShapeID,
				fmt.Sprintf("Series %d Label %d", si+1, label.PointIndex), label.Text, labelTranslated)
		}
	}

	for _, axis := range []string{"category", "value", "series"} {
		title, ok := src.AxisTitles[axis]
		if !ok {
			continue
		}
		translated := ""
		if dst != nil {
			translated = dst.AxisTitles[axis]
		}
		add(el.ElementType, el.ShapeName, el.ShapeID,
			fmt.Sprintf("Axis Title (%s)", axis), title, translated)
	}
}

// Workbook 把对照记录渲染为工作簿
func Workbook(records []Record) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, err
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	for col, width := range columnWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, name, name, width); err != nil {
			return nil, err
		}
	}

	for i, rec := range records {
		row := []interface{}{
			rec.Slide, rec.ElementType, rec.ShapeName, rec.ShapeID, rec.Location,
			rec.Original, rec.Translated, len([]rune(rec.Original)), len([]rune(rec.Translated)),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	return f, nil
}

// Save 收集对照记录并写出工作簿文件
func Save(path string, src, dst *presentation.Presentation) error {
	f, err := Workbook(Collect(src, dst))
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}
