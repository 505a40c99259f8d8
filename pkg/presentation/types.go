// Package presentation 定义演示文稿的中间树表示（IR）。
// 提取器将 .pptx 容器投影为这棵树，翻译阶段对叶子文本做纯值变换，
// 重组器再按 shape_id 把译文写回原容器。JSON 字段名是各阶段间的交接契约，
// 保持稳定，不随内部重构改变。
package presentation

// Element 类型标识。Other 类型携带 "Other_" 前缀加原始容器标签。
const (
	ElementTextBox      = "TextBox"
	ElementAutoShape    = "AutoShape"
	ElementTable        = "Table"
	ElementChart        = "Chart"
	ElementPicture      = "Picture"
	ElementSmartArt     = "SmartArt"
	ElementSpeakerNotes = "SpeakerNotes"
	ElementOtherPrefix  = "Other_"
)

// Presentation 整个演示文稿的树根
type Presentation struct {
	// Name 源文件名
	Name string `json:"presentation_name"`

	// TotalSlides 幻灯片总数
	TotalSlides int `json:"total_slides"`

	// SlideMasters 母版信息（只读透传，重组时不回写）
	SlideMasters []*SlideMaster `json:"slide_masters"`

	// Slides 幻灯片列表，显示顺序
	Slides []*Slide `json:"slides"`

	// TargetLanguage 翻译后的目标语言显示名（仅翻译树携带）
	TargetLanguage string `json:"target_language,omitempty"`

	// IsRTL 目标语言是否从右向左书写（仅翻译树携带）
	IsRTL bool `json:"is_rtl,omitempty"`
}

// SlideMaster 幻灯片母版
type SlideMaster struct {
	MasterIndex int            `json:"master_index"`
	MasterName  string         `json:"master_name"`
	Background  *Background    `json:"background"`
	Layouts     []*SlideLayout `json:"layouts"`
}

// SlideLayout 母版下的版式
type SlideLayout struct {
	LayoutIndex  int                  `json:"layout_index"`
	LayoutName   string               `json:"layout_name"`
	Background   *Background          `json:"background"`
	Placeholders []*LayoutPlaceholder `json:"placeholders"`
}

// LayoutPlaceholder 版式中的占位符
type LayoutPlaceholder struct {
	PlaceholderIdx  int     `json:"placeholder_idx"`
	PlaceholderType string  `json:"placeholder_type"`
	Name            string  `json:"name"`
	Dimensions      *Bounds `json:"dimensions"`
}

// Background 幻灯片、版式或母版的背景信息
type Background struct {
	FollowsMaster  *bool           `json:"follows_master"`
	FillType       *string         `json:"fill_type"`
	SolidColor     *ColorSpec      `json:"solid_color"`
	GradientColors []*GradientStop `json:"gradient_colors"`
	PatternType    *string         `json:"pattern_type"`
	PicturePresent bool            `json:"picture_present"`
}

// ColorSpec 颜色描述，三种表示按可用性填充
type ColorSpec struct {
	RGB        string   `json:"rgb,omitempty"`
	ThemeColor string   `json:"theme_color,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
}

// LayoutInfo 幻灯片引用的版式定位信息
type LayoutInfo struct {
	MasterIndex             *int    `json:"master_index"`
	LayoutIndex             *int    `json:"layout_index"`
	LayoutName              *string `json:"layout_name"`
	FollowsMasterBackground *bool   `json:"follows_master_background"`
}

// Slide 单张幻灯片
type Slide struct {
	// SlideNumber 从 1 开始的幻灯片编号
	SlideNumber int `json:"slide_number"`

	// LayoutInfo 版式信息
	LayoutInfo *LayoutInfo `json:"layout_info"`

	// Background 背景信息
	Background *Background `json:"background"`

	// Elements 幻灯片上的形状，组内形状已展平
	Elements []*Element `json:"elements"`

	// Links 运行级超链接清单
	Links []*Link `json:"links"`

	// SpeakerNotes 演讲者备注，无备注时为 nil
	SpeakerNotes *SpeakerNotes `json:"speaker_notes"`

	// Diagrams SmartArt 图示内容，容器中独立于形状存放
	Diagrams []*Diagram `json:"smartart"`
}

// Link 超链接
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// SpeakerNotes 演讲者备注
type SpeakerNotes struct {
	Text        string `json:"text"`
	ElementType string `json:"element_type"`
}

// Element 幻灯片上的一个形状。ShapeID 在单张幻灯片内唯一且在提取与重组
// 之间保持稳定，是两棵树之间唯一的连接键。类型相关负载只填充其一。
type Element struct {
	ShapeID         int              `json:"shape_id"`
	ShapeName       string           `json:"shape_name"`
	ElementType     string           `json:"element_type"`
	PlaceholderInfo *PlaceholderInfo `json:"placeholder_info"`
	Fill            *Fill            `json:"fill"`
	Line            *Line            `json:"line"`
	Shadow          *Shadow          `json:"shadow"`

	// TextFrame 文本框属性，仅文本类形状携带
	TextFrame *TextFrameProps `json:"text_frame_properties,omitempty"`

	// Paragraphs 文本段落，仅文本类形状携带
	Paragraphs []*Paragraph `json:"paragraphs,omitempty"`

	// FullText 派生字段：所有段落内运行文本的连接，变更后必须重新计算，
	// 永远不作为文本来源使用
	FullText string `json:"full_text,omitempty"`

	Table *TableData `json:"table_data,omitempty"`
	Chart *ChartData `json:"chart_data,omitempty"`
	Image *ImageInfo `json:"image_info,omitempty"`

	Dimensions *Dimensions `json:"dimensions"`
}

// PlaceholderInfo 占位符信息
type PlaceholderInfo struct {
	IsPlaceholder   bool    `json:"is_placeholder"`
	PlaceholderType *string `json:"placeholder_type"`
	PlaceholderIdx  *int    `json:"placeholder_idx"`
}

// Fill 形状填充
type Fill struct {
	FillType         *string         `json:"fill_type"`
	SolidColor       *ColorSpec      `json:"solid_color"`
	GradientStops    []*GradientStop `json:"gradient_stops"`
	PatternType      *string         `json:"pattern_type"`
	PatternBackColor *ColorSpec      `json:"pattern_back_color,omitempty"`
	PicturePresent   bool            `json:"picture_present"`
}

// GradientStop 渐变色标
type GradientStop struct {
	Position float64    `json:"position"`
	Color    *ColorSpec `json:"color"`
}

// Line 形状边框
type Line struct {
	HasLine      bool       `json:"has_line"`
	Color        *ColorSpec `json:"color"`
	Width        *int64     `json:"width"`
	DashStyle    *string    `json:"dash_style"`
	Transparency *float64   `json:"transparency"`
}

// Shadow 形状阴影
type Shadow struct {
	HasShadow    bool       `json:"has_shadow"`
	ShadowType   *string    `json:"shadow_type"`
	Color        *ColorSpec `json:"color"`
	Transparency *float64   `json:"transparency"`
	Blur         *int64     `json:"blur"`
	Angle        *float64   `json:"angle"`
	Distance     *int64     `json:"distance"`
}

// Dimensions 形状几何信息，长度单位为 EMU，rotation 为度
type Dimensions struct {
	Left     *int64  `json:"left"`
	Top      *int64  `json:"top"`
	Width    *int64  `json:"width"`
	Height   *int64  `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Bounds 无旋转的几何信息，用于版式占位符
type Bounds struct {
	Left   *int64 `json:"left"`
	Top    *int64 `json:"top"`
	Width  *int64 `json:"width"`
	Height *int64 `json:"height"`
}

// TextFrameProps 文本框级属性
type TextFrameProps struct {
	MarginLeft     *int64   `json:"margin_left"`
	MarginRight    *int64   `json:"margin_right"`
	MarginTop      *int64   `json:"margin_top"`
	MarginBottom   *int64   `json:"margin_bottom"`
	WordWrap       *bool    `json:"word_wrap"`
	AutoSize       *string  `json:"auto_size"`
	VerticalAnchor *string  `json:"vertical_anchor"`
	TextDirection  *string  `json:"text_direction"`
	RotationAngle  *float64 `json:"rotation_angle"`
}

// Paragraph 段落。Runs 的顺序即显示时的连接顺序。
type Paragraph struct {
	Formatting *ParagraphFormatting `json:"paragraph_formatting"`
	Runs       []*TextRun           `json:"runs"`
}

// ParagraphFormatting 段落级格式
type ParagraphFormatting struct {
	Level         int           `json:"level"`
	Alignment     *string       `json:"alignment"`
	LineSpacing   *float64      `json:"line_spacing"`
	SpaceBefore   *float64      `json:"space_before"`
	SpaceAfter    *float64      `json:"space_after"`
	Indent        *int64        `json:"indent"`
	LeftIndent    *int64        `json:"left_indent"`
	RightIndent   *int64        `json:"right_indent"`
	BulletFormat  *BulletFormat `json:"bullet_format"`
	TextDirection *string       `json:"text_direction"`
}

// BulletFormat 项目符号与编号格式
type BulletFormat struct {
	IsBulleted      bool    `json:"is_bulleted"`
	BulletType      *string `json:"bullet_type"`
	BulletChar      *string `json:"bullet_char"`
	BulletFont      *string `json:"bullet_font"`
	BulletColor     *string `json:"bullet_color"`
	NumberingFormat *string `json:"numbering_format"`
	StartAt         *int    `json:"start_at"`
}

// TextRun 携带独立格式的最小文本单元。Text 可以为空；
// 其余字段全部是格式信息，翻译阶段不得改动。
type TextRun struct {
	Text        string       `json:"text"`
	FontName    *string      `json:"font_name"`
	FontSize    *float64     `json:"font_size"`
	Bold        *bool        `json:"bold"`
	Italic      *bool        `json:"italic"`
	Underline   *bool        `json:"underline"`
	Color       *ColorSpec   `json:"color"`
	Strike      *string      `json:"strike"`
	Kerning     *string      `json:"kerning"`
	Spacing     *string      `json:"spacing"`
	Caps        *string      `json:"caps"`
	Superscript *int         `json:"superscript"`
	Subscript   *int         `json:"subscript"`
	Highlight   *string      `json:"text_highlight"`
	Outline     *TextOutline `json:"text_outline"`
}

// TextOutline 文字描边，属性保留容器原始字符串值
type TextOutline struct {
	Width *string `json:"width"`
	Color *string `json:"color"`
}

// TableData 表格负载
type TableData struct {
	Rows    int          `json:"rows"`
	Columns int          `json:"columns"`
	Cells   []*TableCell `json:"cells"`
}

// TableCell 表格单元格，以 (row, column) 坐标寻址。
// Text 是派生字段，与 Element.FullText 同规则。
type TableCell struct {
	Row        int          `json:"row"`
	Column     int          `json:"column"`
	Text       string       `json:"text"`
	Paragraphs []*Paragraph `json:"paragraphs"`
}

// ChartData 图表负载。Values 与 Categories 永远不参与翻译。
type ChartData struct {
	ChartType     *string           `json:"chart_type"`
	ChartStyle    *int              `json:"chart_style"`
	HasTitle      bool              `json:"has_title"`
	Title         *string           `json:"title"`
	DataValues    []*ChartSeries    `json:"data_values"`
	Categories    []string          `json:"categories"`
	SeriesNames   []string          `json:"series_names"`
	AxisTitles    map[string]string `json:"axis_titles"`
	DataLabels    []*DataLabel      `json:"data_labels"`
	LegendEntries []string          `json:"legend_entries"`
}

// ChartSeries 单个数据系列
type ChartSeries struct {
	SeriesName string       `json:"series_name"`
	Values     []float64    `json:"values"`
	DataLabels []*DataLabel `json:"data_labels"`
}

// DataLabel 数据点标签
type DataLabel struct {
	PointIndex int    `json:"point_index"`
	Text       string `json:"text"`
}

// ImageInfo 图片形状的描述信息
type ImageInfo struct {
	Description string  `json:"description"`
	AltText     *string `json:"alt_text"`
}

// Diagram SmartArt 图示。数据存放在容器的 diagrams/data*.xml 部件中，
// DataPart 记录来源部件路径供重组阶段回写定位。
type Diagram struct {
	ElementType string         `json:"element_type"`
	LayoutType  *string        `json:"layout_type"`
	Texts       []string       `json:"texts"`
	Nodes       []*DiagramNode `json:"nodes"`
	FullText    string         `json:"full_text"`
	DataPart    string         `json:"data_part,omitempty"`
}

// DiagramNode 图示中的层级节点。Level 直接读取或由 parent 边推断，
// 根节点（无 parent）层级为 0。
type DiagramNode struct {
	NodeID   string  `json:"node_id"`
	Level    *int    `json:"level"`
	ParentID *string `json:"parent_id"`
	Text     string  `json:"text"`
}
