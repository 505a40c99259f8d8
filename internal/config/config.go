package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config 保存翻译器的所有配置
type Config struct {
	SourceLanguage string `mapstructure:"source_language"` // 源语言显示名，目前固定为 English
	TargetLanguage string `mapstructure:"target_language"` // 目标语言显示名
	Provider       string `mapstructure:"provider"`        // 翻译服务: deepl、llm 或 raw

	// DeepL 配置
	DeepLAPIKey   string `mapstructure:"deepl_api_key"`
	DeepLEndpoint string `mapstructure:"deepl_endpoint"`
	Formality     string `mapstructure:"formality"`    // 语气偏好
	ModelType     string `mapstructure:"model_type"`   // 模型偏好
	UseGlossary   bool   `mapstructure:"use_glossary"` // 目标语言有术语表时是否启用

	// LLM 配置
	LLMModel       string  `mapstructure:"llm_model"`
	LLMBaseURL     string  `mapstructure:"llm_base_url"`
	LLMAPIKey      string  `mapstructure:"llm_api_key"`
	LLMTemperature float64 `mapstructure:"llm_temperature"`

	// 本地术语表，TOML 文件路径，命中的文本跳过远程调用
	GlossaryPath string `mapstructure:"glossary_path"`

	// 批量与重试
	BatchSize      int `mapstructure:"batch_size"`      // 单次 API 调用最多携带的文本数
	MaxAttempts    int `mapstructure:"max_attempts"`    // 单张幻灯片的翻译尝试上限
	Concurrency    int `mapstructure:"concurrency"`     // 并行翻译的幻灯片数
	RequestTimeout int `mapstructure:"request_timeout"` // 单次请求超时（秒）
	MaxRetries     int `mapstructure:"max_retries"`     // 网络层重试次数
	RetryDelay     int `mapstructure:"retry_delay"`     // 重试间隔（秒）

	// 重组行为
	MirrorRTLShapes bool `mapstructure:"mirror_rtl_shapes"` // RTL 目标语言时水平镜像形状
	AutoFitText     bool `mapstructure:"auto_fit_text"`     // 段落数变化后启用文本自动缩放

	// 输出
	OutputDir             string `mapstructure:"output_dir"`              // 为空时写到输入文件所在目录
	KeepIntermediateFiles bool   `mapstructure:"keep_intermediate_files"` // 保留提取与翻译的 JSON 工件
	ExportReport          bool   `mapstructure:"export_report"`           // 导出翻译记录工作簿

	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"` // 详细模式，显示翻译片段

	// HTTP 服务模式
	ServerAddr   string `mapstructure:"server_addr"`
	ServerAPIKey string `mapstructure:"server_api_key"`
	MaxUploadMB  int    `mapstructure:"max_upload_mb"`
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果配置路径已指定，则直接使用
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 查找家目录中的配置文件
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		// 添加可能的配置文件路径
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".pptx-translator")
		v.SetConfigType("yaml")
	}

	// 读取环境变量
	v.AutomaticEnv()
	v.SetEnvPrefix("PPTX_TRANSLATOR")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，则使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// 兼容历史部署习惯：密钥也接受不带前缀的环境变量
	if config.DeepLAPIKey == "" {
		config.DeepLAPIKey = os.Getenv("DEEPL_API_KEY")
	}
	if config.LLMAPIKey == "" {
		config.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}

	return &config, nil
}

// SaveConfig 将配置保存到文件
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ".pptx-translator.yaml")
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	// 添加所有配置项
	if err := v.MergeConfigMap(structToMap(config)); err != nil {
		return err
	}

	// 创建父目录（如果不存在）
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return v.WriteConfig()
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		SourceLanguage: "English",
		TargetLanguage: "French",
		Provider:       "deepl",

		DeepLEndpoint: "https://api.deepl.com/v2/translate",
		Formality:     "prefer_more",
		ModelType:     "prefer_quality_optimized",
		UseGlossary:   true,

		LLMModel:       "gpt-4o-mini",
		LLMTemperature: 0.3,

		BatchSize:      50,
		MaxAttempts:    3,
		Concurrency:    4,
		RequestTimeout: 30,
		MaxRetries:     3,
		RetryDelay:     1,

		MirrorRTLShapes: true,
		AutoFitText:     true,

		KeepIntermediateFiles: true,
		ExportReport:          false,

		Debug:   false,
		Verbose: false,

		ServerAddr:  ":8080",
		MaxUploadMB: 20,
	}
}

// Validate 检查配置是否可用于翻译
func (c *Config) Validate() error {
	switch c.Provider {
	case "deepl":
		if c.DeepLAPIKey == "" {
			return fmt.Errorf("缺少 DeepL API 密钥，请设置 deepl_api_key 或环境变量 DEEPL_API_KEY")
		}
	case "llm":
		if c.LLMAPIKey == "" {
			return fmt.Errorf("缺少 LLM API 密钥，请设置 llm_api_key 或环境变量 OPENAI_API_KEY")
		}
	case "raw":
		// 原样回写，无需密钥
	default:
		return fmt.Errorf("未知的翻译服务: %s", c.Provider)
	}

	if _, err := ResolveLanguage(c.TargetLanguage); err != nil {
		return err
	}
	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("source_language", "English")
	v.SetDefault("target_language", "French")
	v.SetDefault("provider", "deepl")
	v.SetDefault("deepl_endpoint", "https://api.deepl.com/v2/translate")
	v.SetDefault("formality", "prefer_more")
	v.SetDefault("model_type", "prefer_quality_optimized")
	v.SetDefault("use_glossary", true)
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("llm_temperature", 0.3)
	v.SetDefault("batch_size", 50)
	v.SetDefault("max_attempts", 3)
	v.SetDefault("concurrency", 4)
	v.SetDefault("request_timeout", 30)
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay", 1)
	v.SetDefault("mirror_rtl_shapes", true)
	v.SetDefault("auto_fit_text", true)
	v.SetDefault("keep_intermediate_files", true)
	v.SetDefault("export_report", false)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("max_upload_mb", 20)
}

// structToMap 将结构体转换为map
func structToMap(config *Config) map[string]interface{} {
	return map[string]interface{}{
		"source_language":         config.SourceLanguage,
		"target_language":         config.TargetLanguage,
		"provider":                config.Provider,
		"deepl_api_key":           config.DeepLAPIKey,
		"deepl_endpoint":          config.DeepLEndpoint,
		"formality":               config.Formality,
		"model_type":              config.ModelType,
		"use_glossary":            config.UseGlossary,
		"llm_model":               config.LLMModel,
		"llm_base_url":            config.LLMBaseURL,
		"llm_api_key":             config.LLMAPIKey,
		"llm_temperature":         config.LLMTemperature,
		"glossary_path":           config.GlossaryPath,
		"batch_size":              config.BatchSize,
		"max_attempts":            config.MaxAttempts,
		"concurrency":             config.Concurrency,
		"request_timeout":         config.RequestTimeout,
		"max_retries":             config.MaxRetries,
		"retry_delay":             config.RetryDelay,
		"mirror_rtl_shapes":       config.MirrorRTLShapes,
		"auto_fit_text":           config.AutoFitText,
		"output_dir":              config.OutputDir,
		"keep_intermediate_files": config.KeepIntermediateFiles,
		"export_report":           config.ExportReport,
		"debug":                   config.Debug,
		"verbose":                 config.Verbose,
		"server_addr":             config.ServerAddr,
		"server_api_key":          config.ServerAPIKey,
		"max_upload_mb":           config.MaxUploadMB,
	}
}
