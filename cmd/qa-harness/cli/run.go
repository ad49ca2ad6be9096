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
	"github.com/davarch/qa-harness/internal/infrastructure/agent_http"
	"github.com/davarch/qa-harness/internal/infrastructure/artifacts_fs"
	"github.com/davarch/qa-harness/internal/infrastructure/backend_http"
	"github.com/davarch/qa-harness/internal/infrastructure/config"
	"github.com/davarch/qa-harness/internal/infrastructure/features_fs"
	"github.com/davarch/qa-harness/internal/infrastructure/frontend_fs"
	"github.com/davarch/qa-harness/internal/infrastructure/httpjson"
	"github.com/davarch/qa-harness/internal/infrastructure/logging"
	"github.com/davarch/qa-harness/internal/infrastructure/ports_gh"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full QA smoke test against the deployed app",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal("config", zap.Error(err))
		}

		hc := httpjson.New()
		creds := artifacts_fs.NewCredentialsFile(cfg.Artifacts.Credentials)
		auth := backend_http.New(log, hc, cfg.Backend.BaseURL, cfg.Backend.Timeout, creds)
		agent := agent_http.New(log, hc, cfg.Agent.BaseURL, agent_http.Options{
			ProbeTimeout:  cfg.Agent.ProbeTimeout,
			InvokeTimeout: cfg.Agent.InvokeTimeout,
			MaxIterations: cfg.Agent.MaxIterations,
			BudgetMS:      cfg.Agent.BudgetMS,
		})
		ports := ports_gh.New(log, cfg.Ports.Codespace, cfg.Ports.BackendPort, cfg.Ports.FrontendPort, cfg.Ports.Timeout)
		features := features_fs.New(log, cfg.FeaturesFile)
		frontend := frontend_fs.New(cfg.FrontendDir)
		report := artifacts_fs.NewReportFile(cfg.Artifacts.Results)

		uc := application.NewSmokeUseCase(log, agent, auth, ports, features, frontend, report)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log.Info("start",
			zap.String("version", version),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("agent", cfg.Agent.BaseURL),
			zap.String("results", cfg.Artifacts.Results),
		)

		rep := uc.Run(ctx)

		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			log.Fatal("encode report", zap.Error(err))
		}
		fmt.Println(string(out))

		_ = log.Sync()
		os.Exit(rep.ExitCode)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
