package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
	"github.com/nerdneilsfield/go-pptx-translator/internal/extractor"
	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/internal/progress"
	"github.com/nerdneilsfield/go-pptx-translator/internal/reconciler"
	"github.com/nerdneilsfield/go-pptx-translator/internal/translator"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// newExtractCommand 抽取阶段：.pptx -> 中间树 JSON
func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract input.pptx",
		Short: "把演示文稿抽取为 JSON 中间树",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			inputPath := args[0]
			pkg, err := pptx.Open(inputPath)
			if err != nil {
				return fmt.Errorf("打开演示文稿失败: %w", err)
			}
			tree, err := extractor.New(log).Extract(pkg, inputPath)
			if err != nil {
				return fmt.Errorf("抽取失败: %w", err)
			}

			out := outputPath
			if out == "" {
				out = artifactPath(cfg, inputPath, "_extracted.json")
			}
			if err := presentation.Save(tree, out); err != nil {
				return fmt.Errorf("写出中间树失败: %w", err)
			}

			color.Green("✓ 抽取完成: %d 张幻灯片 -> %s", tree.TotalSlides, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "中间树 JSON 输出路径")
	return cmd
}

// newTranslateCommand 翻译阶段：中间树 JSON -> 翻译后的树 JSON
func newTranslateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate tree.json",
		Short: "翻译中间树中的全部文本",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			inputPath := args[0]
			tree, err := presentation.Load(inputPath)
			if err != nil {
				return fmt.Errorf("读取中间树失败: %w", err)
			}

			translated, _, err := translateTree(cmd, cfg, log, tree)
			if err != nil {
				return err
			}

			out := outputPath
			if out == "" {
				out = artifactPath(cfg, inputPath, "_translated.json")
			}
			if err := presentation.Save(translated, out); err != nil {
				return fmt.Errorf("写出翻译树失败: %w", err)
			}

			color.Green("✓ 翻译完成: %s -> %s", translated.TargetLanguage, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetLang, "to", "t", "", "目标语言（名称或代码）")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "翻译服务: deepl、llm 或 raw")
	cmd.Flags().StringVarP(&glossaryPath, "glossary", "g", "", "TOML 术语表路径")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "翻译树 JSON 输出路径")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "单次请求的最大文本数")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "并行翻译的幻灯片数")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "单张幻灯片的翻译尝试上限")
	return cmd
}

// newReassembleCommand 重组阶段：原始 .pptx + 翻译树 -> 翻译后的 .pptx
func newReassembleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reassemble input.pptx translated.json",
		Short: "把翻译后的树回写进原始演示文稿",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			inputPath, treePath := args[0], args[1]
			pkg, err := pptx.Open(inputPath)
			if err != nil {
				return fmt.Errorf("打开演示文稿失败: %w", err)
			}
			tree, err := presentation.Load(treePath)
			if err != nil {
				return fmt.Errorf("读取翻译树失败: %w", err)
			}

			st, err := reconciler.New(log, reconcilerOptions(cfg)).Reconcile(pkg, tree)
			if err != nil {
				return fmt.Errorf("回写失败: %w", err)
			}

			out := outputPath
			if out == "" {
				out = translatedPptxPath(cfg, inputPath, tree.TargetLanguage)
			}
			if err := pkg.Save(out); err != nil {
				return fmt.Errorf("保存演示文稿失败: %w", err)
			}

			color.Green("✓ 重组完成: %d 张幻灯片, %d 个元素 -> %s",
				st.SlidesProcessed, st.ElementsUpdated, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "翻译后演示文稿的输出路径")
	return cmd
}

// reconcilerOptions 回写开关取自配置
func reconcilerOptions(cfg *config.Config) reconciler.Options {
	return reconciler.Options{
		MirrorRTLShapes: cfg.MirrorRTLShapes,
		AutoFitText:     cfg.AutoFitText,
	}
}

// translateTree 解析目标语言、装配服务并翻译整棵树。
// 返回翻译树与本次运行的服务级计数。
func translateTree(cmd *cobra.Command, cfg *config.Config, log *zap.Logger, tree *presentation.Presentation) (*presentation.Presentation, *translateRun, error) {
	lang, err := config.ResolveLanguage(cfg.TargetLanguage)
	if err != nil {
		return nil, nil, err
	}

	service, err := buildService(cfg, lang, log)
	if err != nil {
		return nil, nil, err
	}

	tr := translator.New(service, cfg, log)
	tracker := progress.NewTracker("翻译幻灯片", len(tree.Slides), quietMode || cfg.Debug)
	tr.OnSlideDone(func(int) { tracker.Increment() })

	translated, trStats, err := tr.TranslatePresentation(cmd.Context(), tree, lang)
	tracker.Done()
	if err != nil {
		return nil, nil, fmt.Errorf("翻译失败: %w", err)
	}

	svcStats := service.Stats()
	run := &translateRun{
		APICalls:        svcStats.APICalls,
		TextsTranslated: svcStats.TextsTranslated,
		Characters:      svcStats.Characters,
		PredefinedHits:  svcStats.PredefinedHits,
		Untranslated:    trStats.UntranslatedLeaves,
	}
	return translated, run, nil
}

// translateRun 一次翻译运行的计数汇总
type translateRun struct {
	APICalls        int
	TextsTranslated int
	Characters      int64
	PredefinedHits  int
	Untranslated    int
}
