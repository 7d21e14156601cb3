package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/api"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/mcp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, /metrics and the MCP streamable HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if a.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			if shouldWarm(cmd) {
				a.warmSpeech(ctx)
			}

			router := api.NewRouter(a.assistant, a.registry, a.registry)
			mcpHandler := gin.WrapH(mcp.NewHTTPServer(mcp.NewServer(a.assistant, version), "/mcp"))
			router.Any("/mcp", mcpHandler)

			server := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			log := logging.NewLogger(ctx)
			errCh := make(chan error, 1)
			go func() {
				log.Infof("learnnext listening addr=%s", addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	c.Flags().String("addr", "", "listen address (default from config, :8080)")
	addWarmFlag(c)
	return c
}

func newMCPCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the study tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if shouldWarm(cmd) {
				a.warmSpeech(ctx)
			}
			return mcp.ServeStdio(ctx, mcp.NewServer(a.assistant, version))
		},
	}
	addWarmFlag(c)
	return c
}

func addWarmFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("warm", true, "load the speech model at startup")
}

func shouldWarm(cmd *cobra.Command) bool {
	warm, err := cmd.Flags().GetBool("warm")
	return err == nil && warm
}
