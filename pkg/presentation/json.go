package presentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Load 从 JSON 文件读取演示文稿树
func Load(path string) (*Presentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return Decode(data)
}

// Decode 从 JSON 字节解析演示文稿树
func Decode(data []byte) (*Presentation, error) {
	var pres Presentation
	if err := json.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	return &pres, nil
}

// Save 将演示文稿树写入 JSON 文件，2 空格缩进，非 ASCII 字符不转义
func Save(pres *Presentation, path string) error {
	data, err := Encode(pres)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

// Encode 将演示文稿树编码为 JSON 字节
func Encode(pres *Presentation) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pres); err != nil {
		return nil, fmt.Errorf("编码 JSON 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Clone 深拷贝一张幻灯片，质量门控的多次尝试各自在副本上进行
func (s *Slide) Clone() (*Slide, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("拷贝幻灯片失败: %w", err)
	}
	var out Slide
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("拷贝幻灯片失败: %w", err)
	}
	return &out, nil
}

// String 返回 *string 指针，构造字面量时使用
func String(s string) *string { return &s }

// Int 返回 *int 指针
func Int(i int) *int { return &i }

// Int64 返回 *int64 指针
func Int64(i int64) *int64 { return &i }

// Float 返回 *float64 指针
func Float(f float64) *float64 { return &f }

// Bool 返回 *bool 指针
func Bool(b bool) *bool { return &b }
