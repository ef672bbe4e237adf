package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"foreman/internal/app"
	"foreman/internal/server"
)

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.Open(cmd.Context(), runtimeOptions())
			if err != nil {
				return err
			}
			defer rt.Close(context.Background())

			if addr == "" {
				addr = rt.Config.Server.Addr
			}
			if basePath == "" {
				basePath = rt.Config.Server.BasePath
			}
			handler, err := server.New(server.Config{Engine: rt.Engine, BasePath: basePath, Logger: rt.Log, Version: app.Version})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					rt.Log.Error("shutdown", "err", err)
				}
			}()
			fmt.Fprintf(os.Stderr, "Serving Foreman API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at %s/docs)\n", addr, basePath, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default server.base_path)")
	return cmd
}
