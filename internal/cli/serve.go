package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
	"github.com/nerdneilsfield/go-pptx-translator/internal/server"
	"github.com/nerdneilsfield/go-pptx-translator/internal/stats"
	"github.com/nerdneilsfield/go-pptx-translator/internal/translator"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// newServeCommand HTTP 服务模式
func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "以 HTTP 服务方式提供翻译流水线",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			if addr == "" {
				addr = cfg.ServerAddr
			}

			translate := func(ctx context.Context, tree *presentation.Presentation, targetLang string) (*presentation.Presentation, *stats.Translation, error) {
				lang, err := config.ResolveLanguage(targetLang)
				if err != nil {
					return nil, nil, err
				}
				service, err := buildService(cfg, lang, log)
				if err != nil {
					return nil, nil, err
				}
				translated, trStats, err := translator.New(service, cfg, log).TranslatePresentation(ctx, tree, lang)
				if err != nil {
					return nil, nil, err
				}
				svcStats := service.Stats()
				return translated, &stats.Translation{
					APICalls:             svcStats.APICalls,
					TotalTextsTranslated: svcStats.TextsTranslated,
					TotalCharacters:      svcStats.Characters,
					PredefinedHits:       svcStats.PredefinedHits,
					UntranslatedLeaves:   trStats.UntranslatedLeaves,
				}, nil
			}

			srv := server.New(translate, server.Config{
				APIKey:         cfg.ServerAPIKey,
				MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
			}, log)

			fmt.Printf("HTTP 服务监听 %s\n", addr)
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "监听地址（默认取配置 server_addr）")
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "翻译服务: deepl、llm 或 raw")
	return cmd
}
