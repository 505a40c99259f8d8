package stats

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShowPipeline(t *testing.T) {
	var buf bytes.Buffer
	p := &Pipeline{
		SourceFile:     "decks/quarterly-review.pptx",
		TargetLanguage: "Spanish",
		SlideCount:     12,
		Duration:       90 * time.Second,
		Translation: Translation{
			APICalls:             4,
			TotalTextsTranslated: 1234,
			TotalCharacters:      56789,
		},
		Reassembly: Reassembly{
			SlidesProcessed: 12,
			ElementsUpdated: 40,
		},
	}
	NewVisualizer(&buf).ShowPipeline(p)

	out := buf.String()
	assert.Contains(t, out, "decks/quarterly-review.pptx")
	assert.Contains(t, out, "Spanish")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "56,789")
	assert.Contains(t, out, "1m30s")
	// 没有镜像发生时不显示 RTL 计数行
	assert.NotContains(t, out, "Shapes Mirrored")
}

func TestShowPipelineRTLRows(t *testing.T) {
	var buf bytes.Buffer
	p := &Pipeline{
		SourceFile:     "deck.pptx",
		TargetLanguage: "Arabic",
		Reassembly:     Reassembly{ShapesMirrored: 5, RTLParagraphsSet: 9},
	}
	NewVisualizer(&buf).ShowPipeline(p)
	assert.Contains(t, buf.String(), "Shapes Mirrored")
	assert.Contains(t, buf.String(), "RTL Paragraphs Set")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "2.5s", formatDuration(2500*time.Millisecond))
	assert.Equal(t, "2m5s", formatDuration(125*time.Second))
}
