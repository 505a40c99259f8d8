package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// PredefinedTranslation 本地术语表。命中的文本直接使用给定译文，
// 不再发往远程服务，用于锁定产品名和法务措辞。
type PredefinedTranslation struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

func NewPredefinedTranslation(sourceLang, targetLang string, translations map[string]string) *PredefinedTranslation {
	return &PredefinedTranslation{
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		Translations: translations,
	}
}

// LoadPredefinedTranslations 从 TOML 文件加载术语表
func LoadPredefinedTranslations(path string) (*PredefinedTranslation, error) {
	// check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("predefined translations file not found: %s", path)
	}

	// load toml file
	translations := &PredefinedTranslation{}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predefined translations file: %w", err)
	}
	if err := toml.Unmarshal(content, translations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predefined translations: %w", err)
	}
	if translations.SourceLang == "" || translations.TargetLang == "" {
		return nil, fmt.Errorf("predefined translations file is missing source_lang or target_lang")
	}
	return translations, nil
}

// Matches 术语表是否适用于给定的目标语言
func (p *PredefinedTranslation) Matches(targetLanguage string) bool {
	return p != nil && strings.EqualFold(p.TargetLang, targetLanguage)
}

// Lookup 查找文本的固定译文。先按原文精确匹配，再按去除首尾
// 空白后的文本匹配，命中时保留原文本的前后空白。
func (p *PredefinedTranslation) Lookup(text string) (string, bool) {
	if p == nil || len(p.Translations) == 0 {
		return "", false
	}
	if out, ok := p.Translations[text]; ok {
		return out, true
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == text {
		return "", false
	}
	if out, ok := p.Translations[trimmed]; ok {
		prefix := text[:strings.Index(text, trimmed)]
		suffix := text[strings.Index(text, trimmed)+len(trimmed):]
		return prefix + out + suffix, true
	}
	return "", false
}
