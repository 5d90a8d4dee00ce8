package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-seo-writer/internal/builder"
	"github.com/shouni/go-seo-writer/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

// serveCmd は対話的な Web 画面と JSON API を起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Web 画面と JSON API を起動するのだ。",
	RunE:  serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "待ち受けアドレスなのだ（既定: :8080 または設定値）。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := appCfg
	if serveAddr != "" {
		cfg.ServerAddr = serveAddr
	}

	appCtx, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	srv, err := server.New(appCtx.Manager, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("サーバーの初期化に失敗したのだ: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("サーバーを起動するのだ！", "addr", cfg.ServerAddr, "provider", cfg.Provider, "article_model", cfg.Runner.ArticleModel)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("サーバーが異常終了したのだ: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("サーバーを停止するのだ")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗したのだ: %w", err)
	}
	return nil
}
