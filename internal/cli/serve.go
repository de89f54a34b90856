package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reelkit/internal/logx"
	"reelkit/internal/render"
	"reelkit/internal/server"
)

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := commandContext(cmd)
	var renderer render.Renderer
	r, closeRenderer, err := ws.renderer(ctx, nil)
	if err != nil {
		ws.log.Warn("render endpoints disabled", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; render endpoints disabled\n", err)
	} else {
		renderer = r
		defer closeRenderer()
	}

	shutdownTracing := logx.SetupTracing()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			ws.log.Warn("tracing shutdown", "error", err)
		}
	}()

	addr := serveAddr
	if addr == "" {
		addr = ws.cfg.Server.Addr
	}
	srv := server.New(server.Deps{
		Projects: ws.projects,
		Assets:   ws.assets,
		Resolver: ws.resolver,
		Renderer: renderer,
		Logger:   ws.log,
	}, server.Options{
		Addr:             addr,
		RendersPerMinute: ws.cfg.Server.RendersPerMinute,
		AllowOrigins:     ws.cfg.Server.AllowOrigins,
		MaxUploadBytes:   int64(ws.cfg.Server.MaxUploadMB) << 20,
		RenderTimeout:    ws.cfg.Render.Timeout,
		RenderStatePath:  ws.pp.RenderStateFile,
		RendererHash:     ws.rendererHash(),
	})
	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
	return srv.Run(ctx)
}
