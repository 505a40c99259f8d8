package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-pptx-translator/internal/report"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// newReportCommand 从抽取树与翻译树生成对照工作簿
func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report extracted.json translated.json",
		Short: "生成原译对照的 Excel 工作簿",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			src, err := presentation.Load(args[0])
			if err != nil {
				return fmt.Errorf("读取抽取树失败: %w", err)
			}
			dst, err := presentation.Load(args[1])
			if err != nil {
				return fmt.Errorf("读取翻译树失败: %w", err)
			}

			out := outputPath
			if out == "" {
				out = artifactPath(cfg, args[0], "_report.xlsx")
			}
			if err := report.Save(out, src, dst); err != nil {
				return fmt.Errorf("导出翻译记录失败: %w", err)
			}

			color.Green("✓ 翻译记录: %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "工作簿输出路径")
	return cmd
}
