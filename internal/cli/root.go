// Package cli 提供命令行入口：单阶段命令、完整流水线与 HTTP 服务模式。
package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
	"github.com/nerdneilsfield/go-pptx-translator/internal/logger"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers/deepl"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers/llm"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers/raw"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/providers/retry"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/translation"
)

var (
	// 命令行标志变量
	cfgFile      string
	targetLang   string
	providerName string
	outputPath   string
	outputDir    string
	glossaryPath string
	batchSize    int
	concurrency  int
	maxAttempts  int
	keepFiles    bool
	exportReport bool
	quietMode    bool
	debugMode    bool
	verboseMode  bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pptx-translator",
		Short: "保持格式的 PowerPoint 翻译工具",
		Long: `pptx-translator 把 .pptx 演示文稿翻译为目标语言并保留原有排版。

工作方式分三个阶段：先把文稿抽取为 JSON 中间树，再对树中的
叶子文本做批量翻译，最后把译文回写进原始容器。三个阶段可以
分步执行，也可以用 pipeline 一步跑完。

支持的翻译服务:
  - deepl: DeepL 专业翻译
  - llm:   OpenAI 兼容的聊天补全接口
  - raw:   原样直通，用于演练与排查`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径（默认查找 ~/.pptx-translator.yaml）")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "输出调试日志")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示翻译细节")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "不显示进度条")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "产物输出目录（默认与输入文件同目录）")

	rootCmd.AddCommand(
		newExtractCommand(),
		newTranslateCommand(),
		newReassembleCommand(),
		newPipelineCommand(),
		newServeCommand(),
		newLanguagesCommand(),
		newReportCommand(),
	)
	return rootCmd
}

// loadConfig 加载配置并用命令行标志覆盖
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if targetLang != "" {
		cfg.TargetLanguage = targetLang
	}
	if providerName != "" {
		cfg.Provider = providerName
	}
	if glossaryPath != "" {
		cfg.GlossaryPath = glossaryPath
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if keepFiles {
		cfg.KeepIntermediateFiles = true
	}
	if exportReport {
		cfg.ExportReport = true
	}
	cfg.Debug = cfg.Debug || debugMode
	cfg.Verbose = cfg.Verbose || verboseMode

	log := logger.NewLogger(cfg.Debug)
	return cfg, log, nil
}

// buildRegistry 注册全部可用的翻译后端，名称即 --provider 取值
func buildRegistry(cfg *config.Config, lang config.Language) (*providers.Registry, error) {
	glossaryID := ""
	if cfg.UseGlossary {
		glossaryID = lang.GlossaryID
	}

	registry := providers.NewRegistry()
	backends := map[string]providers.Provider{
		"deepl": deepl.New(deepl.Config{
			BaseConfig: providers.BaseConfig{
				APIKey:      cfg.DeepLAPIKey,
				APIEndpoint: cfg.DeepLEndpoint,
				Timeout:     time.Duration(cfg.RequestTimeout) * time.Second,
				MaxRetries:  cfg.MaxRetries,
				RetryDelay:  time.Duration(cfg.RetryDelay) * time.Second,
			},
			Formality:  cfg.Formality,
			ModelType:  cfg.ModelType,
			GlossaryID: glossaryID,
			RetryConfig: retry.Config{
				MaxAttempts: cfg.MaxRetries,
				BaseDelay:   time.Duration(cfg.RetryDelay) * time.Second,
			},
		}),
		"llm": llm.New(llm.Config{
			BaseConfig: providers.BaseConfig{
				APIKey:      cfg.LLMAPIKey,
				APIEndpoint: cfg.LLMBaseURL,
				Timeout:     time.Duration(cfg.RequestTimeout) * time.Second,
			},
			Model:       cfg.LLMModel,
			Temperature: float32(cfg.LLMTemperature),
		}),
		"raw": raw.New(),
	}
	for name, backend := range backends {
		if err := registry.Register(name, backend); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// buildService 按配置装配翻译服务
func buildService(cfg *config.Config, lang config.Language, log *zap.Logger) (*translation.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg, lang)
	if err != nil {
		return nil, err
	}
	provider, err := registry.Get(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("未知的翻译服务 %s，可用: %s",
			cfg.Provider, strings.Join(registry.List(), ", "))
	}

	var glossary translation.Glossary
	if cfg.GlossaryPath != "" {
		predefined, err := config.LoadPredefinedTranslations(cfg.GlossaryPath)
		if err != nil {
			return nil, fmt.Errorf("加载术语表失败: %w", err)
		}
		if predefined.Matches(lang.Name) {
			glossary = predefined
		} else {
			log.Warn("术语表目标语言不匹配，忽略",
				zap.String("glossary", cfg.GlossaryPath),
				zap.String("target", lang.Name))
		}
	}

	return translation.NewService(provider, translation.Options{
		SourceLang: config.SourceLanguageCode(cfg.SourceLanguage),
		TargetLang: lang.Code,
		BatchSize:  cfg.BatchSize,
		Glossary:   glossary,
	}, log), nil
}

// artifactPath 阶段产物的默认路径：{base}{suffix}，
// 指定了输出目录时放到该目录，否则与输入文件同目录。
func artifactPath(cfg *config.Config, inputPath, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	// 中间产物链上去掉上一阶段的后缀
	base = strings.TrimSuffix(base, "_extracted")
	base = strings.TrimSuffix(base, "_translated")

	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, base+suffix)
}

// translatedPptxPath 译文容器的默认路径：{base}_{lang}.pptx
func translatedPptxPath(cfg *config.Config, inputPath, langName string) string {
	lang := strings.ToLower(strings.ReplaceAll(langName, " ", "_"))
	return artifactPath(cfg, inputPath, "_"+lang+".pptx")
}
