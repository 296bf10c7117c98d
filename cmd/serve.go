package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/screening"
	"github.com/spigell/scholarship-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve eligibility checks over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8080)")
	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lg, config := setup()
	lg.Info("starting the scholarship-matcher server", zap.String("version", version))

	offers, err := loadCatalog(ctx, config, screening.Default(), lg)
	if err != nil {
		lg.Fatal("loading the catalog", zap.Error(err))
	}

	srv := server.New(newEngine(config, lg), offers, lg)
	if err := srv.ListenAndServe(ctx, config.Server); err != nil {
		lg.Fatal("serving", zap.Error(err))
	}

	lg.Info("server stopped")
}
