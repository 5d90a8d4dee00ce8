package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-seo-writer/internal/builder"
	"github.com/shouni/go-seo-writer/internal/config"
	"github.com/shouni/go-seo-writer/internal/pipeline"
)

// writeCmd は分析から執筆、挿絵、保存までを一括で実行するのだ。
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "分析・執筆・挿絵生成を一括で実行して保存するのだ。",
	Long: `キーワード分析の結果（提案アウトライン）をそのまま使って記事を書き、
<slug>.md と images/ 以下の挿絵を出力ディレクトリに保存するのだ。`,
	RunE: writeCommand,
}

func init() {
	addFormFlags(writeCmd)
	writeCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "出力ディレクトリなのだ（既定: "+config.DefaultOutputDir+" または設定値）。")
	writeCmd.Flags().BoolVar(&opts.WithImages, "images", false, "挿絵も生成するのだ。")
	writeCmd.Flags().BoolVar(&opts.WriteHTML, "html", false, "Markdown と同名の HTML も出力するのだ。")
}

func writeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := appCfg
	if opts.OutputDir != "" {
		cfg.Options.OutputDir = opts.OutputDir
	}
	cfg.Options.WithImages = opts.WithImages
	cfg.Options.WriteHTML = opts.WriteHTML

	appCtx, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	form, err := pipeline.BuildForm(appCtx.Catalog, opts)
	if err != nil {
		return err
	}

	result, err := pipeline.Execute(ctx, appCtx, form)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Publish.MarkdownPath)
	return err
}
