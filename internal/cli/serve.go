package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"depot-helpdesk/internal/handlers"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API the view layer calls, and the periodic reload when reload_interval is set`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	h := handlers.New(repo, cfg)
	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: handlers.SetupRouter(h),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("address", cfg.ServerAddress).Msg("🚀 Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start server")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server shutdown")
		}
		return nil
	})

	if cfg.ReloadInterval > 0 {
		g.Go(func() error {
			scheduler, err := gocron.NewScheduler()
			if err != nil {
				return err
			}
			_, err = scheduler.NewJob(
				gocron.DurationJob(cfg.ReloadInterval),
				gocron.NewTask(func() {
					if err := repo.Reload(ctx); err != nil {
						log.Error().Err(err).Msg("Periodic reload failed")
					}
				}),
			)
			if err != nil {
				return err
			}
			log.Info().Dur("interval", cfg.ReloadInterval).Msg("Periodic reload enabled")
			scheduler.Start()

			<-ctx.Done()
			return scheduler.Shutdown()
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}
