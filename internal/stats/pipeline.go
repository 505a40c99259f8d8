package stats

import (
	"time"
)

// Translation 翻译阶段计数
type Translation struct {
	// APICalls 后端请求次数，含重试
	APICalls int `json:"api_calls"`

	// TotalTextsTranslated 实际送出翻译的文本数，空白文本不计
	TotalTextsTranslated int `json:"total_texts_translated"`

	// TotalCharacters 送出翻译的字符总量
	TotalCharacters int64 `json:"total_characters"`

	// PredefinedHits 命中预定义词表、未经机器翻译的文本数
	PredefinedHits int `json:"predefined_hits"`

	// UntranslatedLeaves 重试耗尽后仍与原文相同的叶子数
	UntranslatedLeaves int `json:"untranslated_leaves"`
}

// Reassembly 重组阶段计数，字段与重组器逐项对应
type Reassembly struct {
	SlidesProcessed int `json:"slides_processed"`

	ElementsUpdated int `json:"elements_updated"`

	// ElementsSkipped shape_id 在容器中找不到对应形状的元素数
	ElementsSkipped int `json:"elements_skipped"`

	TextRunsUpdated int `json:"text_runs_updated"`

	TablesUpdated int `json:"tables_updated"`

	ChartsUpdated int `json:"charts_updated"`

	NotesUpdated int `json:"notes_updated"`

	// DiagramsUpdated 回写了节点文本的 SmartArt 数据部件数
	DiagramsUpdated int `json:"diagrams_updated"`

	// RTLParagraphsSet 设置了从右向左书写属性的段落数
	RTLParagraphsSet int `json:"rtl_paragraphs_set"`

	// AutoShrinkEnabled 启用了自动缩字的文本框数
	AutoShrinkEnabled int `json:"auto_shrink_enabled"`

	// ShapesMirrored 镜像翻转过水平位置的顶层形状数
	ShapesMirrored int `json:"shapes_mirrored"`
}

// Pipeline 一次端到端运行的汇总
type Pipeline struct {
	SourceFile     string        `json:"source_file"`
	TargetLanguage string        `json:"target_language"`
	SlideCount     int           `json:"slide_count"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Translation    Translation   `json:"translation"`
	Reassembly     Reassembly    `json:"reassembly"`
}
