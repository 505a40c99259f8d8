package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-pptx-translator/internal/config"
)

// newLanguagesCommand 列出受支持的目标语言
func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "列出受支持的目标语言",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Language", "Code", "RTL", "Glossary"})
			for _, lang := range config.SupportedLanguages() {
				rtl := ""
				if lang.RTL {
					rtl = "yes"
				}
				glossary := ""
				if lang.GlossaryID != "" {
					glossary = "yes"
				}
				tw.AppendRow(table.Row{lang.Name, lang.Code, rtl, glossary})
			}
			tw.SetStyle(table.StyleLight)
			tw.Render()
		},
	}
}
