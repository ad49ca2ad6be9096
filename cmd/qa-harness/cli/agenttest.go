package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/application"
	"github.com/davarch/qa-harness/internal/domain"
	"github.com/davarch/qa-harness/internal/fixture"
	"github.com/davarch/qa-harness/internal/infrastructure/agent_http"
	"github.com/davarch/qa-harness/internal/infrastructure/config"
	"github.com/davarch/qa-harness/internal/infrastructure/fixture_http"
	"github.com/davarch/qa-harness/internal/infrastructure/httpjson"
	"github.com/davarch/qa-harness/internal/infrastructure/logging"
)

var agentTestCmd = &cobra.Command{
	Use:   "agent-test",
	Short: "Validate the browser agent against the hosted fixture app",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal("config", zap.Error(err))
		}

		hc := httpjson.New()
		fx := fixture_http.New(log, hc, cfg.Fixture.BaseURL, cfg.Fixture.WakeBudget)
		agent := agent_http.New(log, hc, cfg.Agent.BaseURL, agent_http.Options{
			ProbeTimeout:  cfg.Agent.ProbeTimeout,
			InvokeTimeout: cfg.Agent.InvokeTimeout,
			MaxIterations: cfg.Agent.MaxIterations,
			BudgetMS:      cfg.Agent.BudgetMS,
		})

		uc := application.NewAgentTestUseCase(log, fx, agent, cfg.Fixture.BaseURL, domain.Credentials{
			Email:    fixture.SeedEmail,
			Password: fixture.SeedPassword,
		}, nil)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log.Info("start",
			zap.String("version", version),
			zap.String("fixture", cfg.Fixture.BaseURL),
			zap.String("agent", cfg.Agent.BaseURL),
		)

		result, code := uc.Run(ctx)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal("encode result", zap.Error(err))
		}
		fmt.Println(string(out))

		_ = log.Sync()
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(agentTestCmd)
}
