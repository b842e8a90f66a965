package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rpattn/salesingest/internal/ingestion"
	"github.com/rpattn/salesingest/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and browse HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			st, err := openStore(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer st.close()

			handler := server.NewRouter(server.Deps{
				Ingestion:      ingestion.NewService(st.records, st.runs, a.logger, a.cfg.Ingestion.Options()),
				Records:        st.records,
				Runs:           st.runs,
				Logger:         a.logger,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Ping:           st.ping,
			})
			srv := server.NewHTTPServer(addr, handler)

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting server", "addr", addr, "driver", a.cfg.Database.Driver)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			a.logger.Info("server exited")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}
