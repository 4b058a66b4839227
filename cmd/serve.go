package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/yolosplit/internal/handlers"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP split service",
		Long: `Starts the yolosplit HTTP API on the specified port.

Upload a zip (multipart field "file") or post a JSON body naming a directory
on the server to /api/split. Each request runs in its own working directory
and the resulting archive can be downloaded from /api/jobs/{id}/archive.

Job files stay on disk until DELETE /api/jobs/{id} or until they are older
than job_ttl (config) / YOLOSPLIT_JOB_TTL, 24h by default. A TTL of 0 keeps
them until deleted.`,
		Example: `  # Start server on default port 8888
  yolosplit serve

  # Start server on custom port
  yolosplit serve --port 3000

  # Split an uploaded zip
  curl -F file=@dataset.zip -F train=0.8 -F val=0.2 -F test=0 localhost:8888/api/split`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			handler, err := handlers.New(cfg)
			if err != nil {
				return err
			}

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/split", handler.HandleSplit)
			mux.HandleFunc("/api/jobs", handler.HandleJobs)
			mux.HandleFunc("/api/jobs/", handler.HandleJobDetail)
			mux.HandleFunc("/api/ratio", handler.HandleRatio)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())

			g.Go(func() error {
				slog.Info("yolosplit API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			if cfg.JobTTL > 0 {
				g.Go(func() error {
					sweepJobs(ctx, handler, cfg.JobTTL)
					return nil
				})
			}

			// Shut down on Ctrl+C or when the listener fails
			g.Go(func() error {
				<-ctx.Done()
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}

// sweepJobs removes expired jobs until ctx is done
func sweepJobs(ctx context.Context, handler *handlers.Handler, ttl time.Duration) {
	interval := min(max(ttl/4, time.Minute), time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			handler.SweepExpired(now)
		}
	}
}
