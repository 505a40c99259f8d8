package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/extractor"
	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/internal/reconciler"
	"github.com/nerdneilsfield/go-pptx-translator/internal/report"
	"github.com/nerdneilsfield/go-pptx-translator/internal/stats"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// newPipelineCommand 完整流水线：抽取、翻译、重组一步完成
func newPipelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipeline input.pptx",
		Aliases: []string{"full-pipeline"},
		Short:   "抽取、翻译并重组，一步得到翻译后的演示文稿",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			inputPath := args[0]
			startedAt := time.Now()

			// 阶段一：抽取
			pkg, err := pptx.Open(inputPath)
			if err != nil {
				return fmt.Errorf("打开演示文稿失败: %w", err)
			}
			tree, err := extractor.New(log).Extract(pkg, inputPath)
			if err != nil {
				return fmt.Errorf("抽取失败: %w", err)
			}
			log.Info("抽取完成", zap.Int("slides", tree.TotalSlides))

			if cfg.KeepIntermediateFiles {
				if err := presentation.Save(tree, artifactPath(cfg, inputPath, "_extracted.json")); err != nil {
					return fmt.Errorf("写出中间树失败: %w", err)
				}
			}

			// 阶段二：翻译
			translated, run, err := translateTree(cmd, cfg, log, tree)
			if err != nil {
				return err
			}

			if cfg.KeepIntermediateFiles {
				if err := presentation.Save(translated, artifactPath(cfg, inputPath, "_translated.json")); err != nil {
					return fmt.Errorf("写出翻译树失败: %w", err)
				}
			}

			// 阶段三：重组
			reassembly, err := reconciler.New(log, reconcilerOptions(cfg)).Reconcile(pkg, translated)
			if err != nil {
				return fmt.Errorf("回写失败: %w", err)
			}

			out := outputPath
			if out == "" {
				out = translatedPptxPath(cfg, inputPath, translated.TargetLanguage)
			}
			if err := pkg.Save(out); err != nil {
				return fmt.Errorf("保存演示文稿失败: %w", err)
			}

			summary := &stats.Pipeline{
				SourceFile:     inputPath,
				TargetLanguage: translated.TargetLanguage,
				SlideCount:     tree.TotalSlides,
				StartedAt:      startedAt,
				Duration:       time.Since(startedAt),
				Translation: stats.Translation{
					APICalls:             run.APICalls,
					TotalTextsTranslated: run.TextsTranslated,
					TotalCharacters:      run.Characters,
					PredefinedHits:       run.PredefinedHits,
					UntranslatedLeaves:   run.Untranslated,
				},
				Reassembly: *reassembly,
			}
			stats.NewVisualizer(os.Stdout).ShowPipeline(summary)

			if cfg.ExportReport {
				reportPath := artifactPath(cfg, inputPath, "_report.xlsx")
				if err := report.Save(reportPath, tree, translated); err != nil {
					return fmt.Errorf("导出翻译记录失败: %w", err)
				}
				color.Cyan("翻译记录: %s", reportPath)
			}

			color.Green("✓ 完成: %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetLang, "to", "t", "", "目标语言（名称或代码）")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "翻译服务: deepl、llm 或 raw")
	cmd.Flags().StringVarP(&glossaryPath, "glossary", "g", "", "TOML 术语表路径")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "翻译后演示文稿的输出路径")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "单次请求的最大文本数")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "并行翻译的幻灯片数")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "单张幻灯片的翻译尝试上限")
	cmd.Flags().BoolVar(&keepFiles, "keep-files", false, "保留抽取与翻译的 JSON 工件")
	cmd.Flags().BoolVar(&exportReport, "report", false, "导出翻译记录工作簿")
	return cmd
}
