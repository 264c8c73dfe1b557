package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/market-dashboard/internal/auth"
	"github.com/sells-group/market-dashboard/internal/server"
	"github.com/sells-group/market-dashboard/internal/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		counties, err := loadCounties()
		if err != nil {
			return err
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			return err
		}

		creds := cfg.Auth.Credentials
		gate := auth.NewGate(creds, store, cfg.Auth.LoginDelay())

		handler := server.Router(server.Options{
			Counties:      counties,
			Gate:          gate,
			Credentials:   creds,
			Realm:         cfg.Auth.Realm,
			ExcludedPaths: cfg.Server.ExcludedPaths,
			CORSOrigins:   cfg.Server.CORSOrigins,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: handler,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server",
				zap.Int("port", port),
				zap.Int("counties", len(counties)),
				zap.String("store", cfg.Store.Driver),
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// openStore builds the session backend named by the config.
func openStore(ctx context.Context) (session.Store, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return session.NewMemory(), nil
	case "sqlite":
		return session.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return session.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
