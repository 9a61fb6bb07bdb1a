package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/logging"
	"github.com/escuriola/edaitorial/internal/server"
)

func NewServeCmd(opts *Options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Long: `Serve the analysis API. Interactive documentation is available under
/swagger/index.html.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr from config)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *Options, addr string) error {
	a, err := newApplication(cmd, opts, false)
	if err != nil {
		return err
	}
	defer closeApplication(cmd, a)

	if addr == "" {
		addr = a.Config.Server.Addr
	}
	srv, err := server.NewServer(server.Config{
		ListenAddr:     addr,
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		Logger:         a.Logger.With(logging.Field{Key: "component", Value: "server"}),
	}, a.Orch)
	if err != nil {
		return err
	}
	httpSrv := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", logging.Field{Key: "addr", Value: addr})
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
