package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-seo-writer/internal/builder"
	"github.com/shouni/go-seo-writer/internal/pipeline"
	"github.com/shouni/go-seo-writer/pkg/domain"
)

// analyzeCmd はキーワード分析だけを実行して結果を JSON で出力するのだ。
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "キーワードを分析して JSON を出力するのだ。",
	Long: `Web 検索付きでキーワードの難易度、関連キーワード、競合トピック、アウトラインを分析するのだ。
結果は標準出力に JSON で書き出すのだよ。`,
	RunE: analyzeCommand,
}

func init() {
	addFormFlags(analyzeCmd)
}

// analysisOutput は analyze コマンドの出力形式なのだ。
type analysisOutput struct {
	Form     domain.FormData     `json:"form"`
	Analysis domain.AnalysisData `json:"analysis"`
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := builder.BuildAppContext(ctx, appCfg)
	if err != nil {
		return err
	}
	form, err := pipeline.BuildForm(appCtx.Catalog, opts)
	if err != nil {
		return err
	}

	analysis, err := pipeline.ExecuteAnalysis(ctx, appCtx, form)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(analysisOutput{Form: form, Analysis: analysis}, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON の変換に失敗したのだ: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
