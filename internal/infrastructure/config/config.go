package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backend"`

	Agent struct {
		BaseURL       string        `yaml:"base_url"`
		ProbeTimeout  time.Duration `yaml:"probe_timeout"`
		InvokeTimeout time.Duration `yaml:"invoke_timeout"`
		MaxIterations int           `yaml:"max_iterations"`
		BudgetMS      int           `yaml:"budget_ms"`
	} `yaml:"agent"`

	Ports struct {
		Codespace    string        `yaml:"codespace"`
		BackendPort  int           `yaml:"backend_port"`
		FrontendPort int           `yaml:"frontend_port"`
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"ports"`

	Fixture struct {
		BaseURL    string        `yaml:"base_url"`
		WakeBudget time.Duration `yaml:"wake_budget"`
		Addr       string        `yaml:"addr"`
		DBPath     string        `yaml:"db_path"`
		JWTSecret  string        `yaml:"jwt_secret"`
		StaticDir  string        `yaml:"static_dir"`
	} `yaml:"fixture"`

	Artifacts struct {
		Credentials string `yaml:"credentials"`
		Results     string `yaml:"results"`
	} `yaml:"artifacts"`

	FeaturesFile string `yaml:"features_file"`
	FrontendDir  string `yaml:"frontend_dir"`
}

func Load(path string) (Config, error) {
	var c Config

	c.Backend.BaseURL = "http://localhost:8000"
	c.Backend.Timeout = 30 * time.Second
	c.Agent.BaseURL = "https://claude-browser-agent.onrender.com"
	c.Agent.ProbeTimeout = 30 * time.Second
	c.Agent.InvokeTimeout = 3 * time.Minute
	c.Agent.MaxIterations = 15
	c.Agent.BudgetMS = 120000
	c.Ports.BackendPort = 8000
	c.Ports.FrontendPort = 3000
	c.Ports.Timeout = 15 * time.Second
	c.Fixture.BaseURL = "https://browser-agent-test-fixture.onrender.com"
	c.Fixture.WakeBudget = 90 * time.Second
	c.Fixture.Addr = ":8000"
	c.Fixture.DBPath = "fixture.db"
	c.Fixture.JWTSecret = "fixture-dev-secret"
	c.Fixture.StaticDir = "frontend/out"
	c.Artifacts.Credentials = "qa-test-credentials.json"
	c.Artifacts.Results = "qa-smoke-results.json"
	c.FeaturesFile = "features.json"
	c.FrontendDir = "frontend"

	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}

	if v := os.Getenv("QA_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}

	if v := os.Getenv("QA_AGENT_URL"); v != "" {
		c.Agent.BaseURL = v
	}

	if v := os.Getenv("QA_FIXTURE_URL"); v != "" {
		c.Fixture.BaseURL = v
	}

	if v := os.Getenv("CODESPACE_NAME"); v != "" {
		c.Ports.Codespace = v
	}

	if v := os.Getenv("QA_FRONTEND_DIR"); v != "" {
		c.FrontendDir = v
	}

	if v := os.Getenv("QA_FEATURES_FILE"); v != "" {
		c.FeaturesFile = v
	}

	if v := os.Getenv("QA_CREDENTIALS_FILE"); v != "" {
		c.Artifacts.Credentials = v
	}

	if v := os.Getenv("QA_RESULTS_FILE"); v != "" {
		c.Artifacts.Results = v
	}

	if v := os.Getenv("QA_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Backend.Timeout = d
		}
	}

	if v := os.Getenv("FIXTURE_ADDR"); v != "" {
		c.Fixture.Addr = v
	}

	if v := os.Getenv("FIXTURE_DB"); v != "" {
		c.Fixture.DBPath = v
	}

	if v := os.Getenv("FIXTURE_JWT_SECRET"); v != "" {
		c.Fixture.JWTSecret = v
	}

	if c.Backend.BaseURL == "" {
		return c, errors.New("backend base_url is required")
	}

	if c.Agent.BaseURL == "" {
		return c, errors.New("agent base_url is required")
	}

	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = 30 * time.Second
	}

	if c.Agent.MaxIterations <= 0 {
		c.Agent.MaxIterations = 15
	}

	if c.Agent.BudgetMS <= 0 {
		c.Agent.BudgetMS = 120000
	}

	return c, nil
}
