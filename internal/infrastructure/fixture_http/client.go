// Package fixture_http drives the hosted test fixture for the agent-test
// harness: wake it through its cold start, then reset state for isolation.
package fixture_http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/infrastructure/httpjson"
)

type Client struct {
	baseURL    string
	wakeBudget time.Duration
	interval   time.Duration
	http       *httpjson.Client
	log        *zap.Logger
}

func New(log *zap.Logger, hc *httpjson.Client, baseURL string, wakeBudget time.Duration) *Client {
	if wakeBudget <= 0 {
		wakeBudget = 90 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		wakeBudget: wakeBudget,
		interval:   5 * time.Second,
		http:       hc,
		log:        log,
	}
}

// Wake polls /api/health until it answers 200. Unlike the agent probe this
// demands semantic health: the fixture must be ready to serve CRUD calls
// before the agent is pointed at it.
func (c *Client) Wake(ctx context.Context) bool {
	c.log.Info("waking fixture", zap.String("url", c.baseURL))
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.wakeBudget)
	defer cancel()

	op := func() error {
		status, _ := c.http.Get(ctx, c.baseURL+"/api/health", nil, 10*time.Second)
		if status == http.StatusOK {
			return nil
		}
		c.log.Info("waiting for fixture", zap.Int("status", status))
		return fmt.Errorf("fixture not healthy (status=%d)", status)
	}

	bo := backoff.WithContext(backoff.NewConstantBackOff(c.interval), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		c.log.Warn("fixture did not wake", zap.Duration("waited", time.Since(start)), zap.Error(err))
		return false
	}

	c.log.Info("fixture healthy", zap.Duration("took", time.Since(start)))
	return true
}

// Reset wipes fixture state and reseeds the canonical test user.
func (c *Client) Reset(ctx context.Context) bool {
	c.log.Info("resetting fixture state")
	status, body := c.http.Post(ctx, c.baseURL+"/api/admin/reset", map[string]any{}, 30*time.Second)
	if status != http.StatusOK {
		c.log.Warn("fixture reset failed", zap.Int("status", status), zap.Any("body", body))
		return false
	}
	c.log.Info("fixture reset ok", zap.Any("seed_user", body["seed_user"]))
	return true
}
