package main

import (
	"os"
	"os/signal"

	"github.com/lecternhq/lectern/pkg/log"
	"github.com/lecternhq/lectern/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Lectern HTTP API",
	Long:  `Starts the query API backed by the indexed course materials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting lectern")

		services := NewServices(ctx, NewDeps(ctx))

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("lectern has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
