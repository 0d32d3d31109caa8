package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journal over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := server.New(server.Config{
		Addr:        addr,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Log:         a.log,
		Service:     a.svc,
		Prices:      a.book,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
