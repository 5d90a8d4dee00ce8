package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shouni/go-seo-writer/internal/config"
)

const (
	appName           = "seo-writer"
	defaultConfigName = "seo-writer.yaml"
)

var (
	cfgFile  string
	provider string
	verbose  bool

	// opts はサブコマンドのフラグから埋められる実行時パラメータなのだ。
	opts config.GenerateOptions
	// appCfg は PersistentPreRunE で読み込んだ設定なのだ。
	appCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "検索結果に基づいて SEO 記事を分析・執筆するツールなのだ。",
	Long: `キーワードを Web 検索付きで分析し、アウトラインを提案して記事と挿絵を生成するのだ。
serve で対話的な Web 画面を起動し、analyze / write で CLI から一括実行できるのだよ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(serveCmd, analyzeCmd, writeCmd)
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "設定ファイルのパスなのだ（既定: ./"+defaultConfigName+" があれば読み込む）。")
	cmd.PersistentFlags().StringVar(&provider, "provider", "", "使用する AI プロバイダなのだ（gemini / openai）。")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
}

// addFormFlags は analyze / write で共通のフォーム入力フラグを定義するのだ。
func addFormFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&opts.Keyword, "keyword", "k", "", "分析するターゲットキーワードなのだ（必須）。")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "記事の言語なのだ（既定: English）。")
	cmd.Flags().IntVarP(&opts.WordCount, "word-count", "w", 0, "目安の語数なのだ（既定: 1000）。")
	cmd.Flags().StringVarP(&opts.ArticleStyle, "style", "s", "", "記事のスタイルなのだ（既定: Comprehensive Guide）。")
	cmd.Flags().StringVarP(&opts.CustomContext, "context", "c", "", "補足資料や参考 URL なのだ。")
	_ = cmd.MarkFlagRequired("keyword")
}

// preRunAppE は、コマンド実行前に設定を読み込み、API キーなどの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	path, err := resolveConfigPath(cfgFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if path != "" {
		slog.Debug("設定ファイルを読み込んだのだ", "path", path)
	}
	if provider != "" {
		cfg.Provider = provider
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("エラー: %w", err)
	}
	cfg.UseOpenAIDefaults()

	appCfg = cfg
	return nil
}

// resolveConfigPath は --config が無い場合にカレントディレクトリの既定ファイルを探すのだ。
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	candidate := filepath.Join(".", defaultConfigName)
	if _, err := os.Stat(candidate); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("設定ファイルの確認に失敗しました: %w", err)
	}
	return candidate, nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
