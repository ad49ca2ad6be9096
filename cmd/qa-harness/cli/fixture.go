package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/fixture"
	"github.com/davarch/qa-harness/internal/fixture/store"
	"github.com/davarch/qa-harness/internal/infrastructure/config"
	"github.com/davarch/qa-harness/internal/infrastructure/logging"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Serve the browser-agent test fixture app",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New()
		defer func() { _ = log.Sync() }()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal("config", zap.Error(err))
		}

		st, err := store.Open(cfg.Fixture.DBPath)
		if err != nil {
			log.Fatal("open store", zap.String("path", cfg.Fixture.DBPath), zap.Error(err))
		}
		defer func() { _ = st.Close() }()

		srv := fixture.NewServer(log, st, cfg.Fixture.JWTSecret, cfg.Fixture.StaticDir)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		if err := srv.Seed(ctx); err != nil {
			log.Fatal("seed", zap.Error(err))
		}

		log.Info("start",
			zap.String("version", version),
			zap.String("addr", cfg.Fixture.Addr),
			zap.String("db", cfg.Fixture.DBPath),
			zap.String("seed_user", fixture.SeedEmail),
		)

		if err := srv.Run(ctx, cfg.Fixture.Addr); err != nil {
			log.Fatal("serve", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(fixtureCmd)
}
