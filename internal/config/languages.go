package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/language"
)

// Language 一种受支持的目标语言
type Language struct {
	Name       string // 显示名，树中 target_language 字段使用
	Code       string // DeepL 目标语言代码
	GlossaryID string // 该语言的 DeepL 术语表 ID，可为空
	RTL        bool   // 是否从右向左书写
}

// supportedLanguages 全部受支持的目标语言，源语言固定为英语
var supportedLanguages = []Language{
	{Name: "French", Code: "FR"},
	{Name: "Spanish", Code: "ES"},
	{Name: "Italian", Code: "IT"},
	{Name: "German", Code: "DE"},
	{Name: "Portuguese", Code: "PT"},
	{Name: "Dutch", Code: "NL", GlossaryID: "c108ea02-1025-4ad4-b702-d10eda123786"},
	{Name: "Swedish", Code: "SV", GlossaryID: "e63a7f5d-b189-4d2c-868a-e8849cd691ac"},
	{Name: "Danish", Code: "DA"},
	{Name: "Finnish", Code: "FI"},
	{Name: "Norwegian", Code: "NB"},
	{Name: "Polish", Code: "PL"},
	{Name: "Czech", Code: "CS"},
	{Name: "Romanian", Code: "RO"},
	{Name: "Hungarian", Code: "HU"},
	{Name: "Greek", Code: "EL"},
	{Name: "Bulgarian", Code: "BG"},
	{Name: "Slovak", Code: "SK"},
	{Name: "Slovenian", Code: "SL"},
	{Name: "Estonian", Code: "ET"},
	{Name: "Latvian", Code: "LV"},
	{Name: "Lithuanian", Code: "LT"},
	{Name: "Chinese", Code: "ZH"},
	{Name: "Japanese", Code: "JA"},
	{Name: "Korean", Code: "KO"},
	{Name: "Indonesian", Code: "ID"},
	{Name: "Arabic", Code: "AR", RTL: true},
	{Name: "Hebrew", Code: "HE", RTL: true},
	{Name: "Russian", Code: "RU"},
	{Name: "Ukrainian", Code: "UK"},
	{Name: "Turkish", Code: "TR"},
}

// rtlNames RTL 判定按显示名进行，包含表外语言以兼容手工编辑过的树
var rtlNames = map[string]bool{
	"arabic":  true,
	"hebrew":  true,
	"urdu":    true,
	"persian": true,
	"farsi":   true,
}

// SupportedLanguages 返回受支持语言的副本，保持定义顺序
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// LanguageNames 返回按字母排序的语言显示名列表
func LanguageNames() []string {
	names := make([]string, 0, len(supportedLanguages))
	for _, l := range supportedLanguages {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

// IsRTLLanguage 目标语言是否从右向左书写
func IsRTLLanguage(name string) bool {
	return rtlNames[strings.ToLower(strings.TrimSpace(name))]
}

// SourceLanguageCode 源语言显示名对应的后端代码。
// 英语不在目标语言表里，单独映射；识别不了的名字
// 返回空串，交给后端自动检测。
func SourceLanguageCode(name string) string {
	query := strings.TrimSpace(name)
	if query == "" {
		return ""
	}
	if strings.EqualFold(query, "English") || strings.EqualFold(query, "EN") {
		return "EN"
	}
	if lang, err := ResolveLanguage(query); err == nil {
		return lang.Code
	}
	return ""
}

// ResolveLanguage 把用户输入解析为受支持的语言。
// 依次尝试显示名、DeepL 代码和 BCP 47 标签；都不中时
// 用模糊匹配找最接近的显示名放进错误提示。
func ResolveLanguage(input string) (Language, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return Language{}, fmt.Errorf("target language is empty; supported: %s", strings.Join(LanguageNames(), ", "))
	}

	for _, l := range supportedLanguages {
		if strings.EqualFold(l.Name, query) {
			return l, nil
		}
	}
	for _, l := range supportedLanguages {
		if strings.EqualFold(l.Code, query) {
			return l, nil
		}
	}

	// "fr-FR"、"zh-Hans" 这类标签取基础语言再比对代码
	if tag, err := language.Parse(query); err == nil {
		base, conf := tag.Base()
		if conf != language.No {
			code := strings.ToUpper(base.String())
			if code == "NO" {
				code = "NB"
			}
			for _, l := range supportedLanguages {
				if l.Code == code {
					return l, nil
				}
			}
		}
	}

	supported := strings.Join(LanguageNames(), ", ")
	if ranks := fuzzy.RankFindNormalizedFold(query, LanguageNames()); len(ranks) > 0 {
		sort.Sort(ranks)
		return Language{}, fmt.Errorf("unsupported target language %q (did you mean %s?); supported: %s",
			input, ranks[0].Target, supported)
	}
	return Language{}, fmt.Errorf("unsupported target language %q; supported: %s", input, supported)
}
