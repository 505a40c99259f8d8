package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

// maxPathWidth 表格里文件路径列的最大显示宽度，超出按显示宽度截断
const maxPathWidth = 48

// Visualizer 把一次端到端运行的汇总渲染为终端表格
type Visualizer struct {
	w io.Writer
}

// NewVisualizer 创建可视化器
func NewVisualizer(w io.Writer) *Visualizer {
	return &Visualizer{w: w}
}

// ShowPipeline 显示一次运行的完整汇总
func (v *Visualizer) ShowPipeline(p *Pipeline) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(v.w, "📊 Translation Summary")

	v.renderSection("Overview", [][2]string{
		{"Source File", runewidth.Truncate(p.SourceFile, maxPathWidth, "…")},
		{"Target Language", p.TargetLanguage},
		{"Slides", formatNumber(int64(p.SlideCount))},
		{"Duration", formatDuration(p.Duration)},
	})

	v.renderSection("Translation", [][2]string{
		{"API Calls", formatNumber(int64(p.Translation.APICalls))},
		{"Texts Translated", formatNumber(int64(p.Translation.TotalTextsTranslated))},
		{"Characters", formatNumber(p.Translation.TotalCharacters)},
		{"Predefined Hits", formatNumber(int64(p.Translation.PredefinedHits))},
		{"Untranslated Leaves", formatNumber(int64(p.Translation.UntranslatedLeaves))},
	})

	rows := [][2]string{
		{"Slides Processed", formatNumber(int64(p.Reassembly.SlidesProcessed))},
		{"Elements Updated", formatNumber(int64(p.Reassembly.ElementsUpdated))},
		{"Elements Skipped", formatNumber(int64(p.Reassembly.ElementsSkipped))},
		{"Text Runs Updated", formatNumber(int64(p.Reassembly.TextRunsUpdated))},
		{"Tables Updated", formatNumber(int64(p.Reassembly.TablesUpdated))},
		{"Charts Updated", formatNumber(int64(p.Reassembly.ChartsUpdated))},
		{"Notes Updated", formatNumber(int64(p.Reassembly.NotesUpdated))},
		{"Diagrams Updated", formatNumber(int64(p.Reassembly.DiagramsUpdated))},
	}
	// RTL 相关计数只在发生时显示
	if p.Reassembly.RTLParagraphsSet > 0 || p.Reassembly.ShapesMirrored > 0 {
		rows = append(rows,
			[2]string{"RTL Paragraphs Set", formatNumber(int64(p.Reassembly.RTLParagraphsSet))},
			[2]string{"Shapes Mirrored", formatNumber(int64(p.Reassembly.ShapesMirrored))},
		)
	}
	v.renderSection("Reassembly", rows)
}

func (v *Visualizer) renderSection(name string, rows [][2]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(v.w)
	tw.SetTitle(name)
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}

// formatNumber 千位分隔
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

// formatDuration 人类可读的时长
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
