// Package ports_gh publishes the codespace ports through the gh CLI and
// derives the public frontend URL.
package ports_gh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davarch/qa-harness/internal/domain"
)

type Publisher struct {
	bin          string
	codespace    string
	backendPort  int
	frontendPort int
	timeout      time.Duration
	log          *zap.Logger
}

func New(log *zap.Logger, codespace string, backendPort, frontendPort int, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Publisher{
		bin:          "gh",
		codespace:    codespace,
		backendPort:  backendPort,
		frontendPort: frontendPort,
		timeout:      timeout,
		log:          log,
	}
}

// Publish marks both ports public and returns the public login URL. Every
// failure mode maps to one of the closed PublishErrorKind values so the
// orchestrator never branches on error strings.
func (p *Publisher) Publish(ctx context.Context) domain.PublishOutcome {
	if p.codespace == "" {
		return domain.PublishOutcome{
			Success:   false,
			ErrorKind: domain.PublishNotConfigured,
			Error:     "CODESPACE_NAME env var not set -- not in a codespace?",
		}
	}

	p.log.Info("making ports public", zap.String("codespace", p.codespace))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := []string{
		"codespace", "ports", "visibility",
		fmt.Sprintf("%d:public", p.backendPort),
		fmt.Sprintf("%d:public", p.frontendPort),
		"-c", p.codespace,
	}

	cmd := exec.CommandContext(ctx, p.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.PublishOutcome{
			Success:   false,
			ErrorKind: domain.PublishTimedOut,
			Error:     "gh ports timed out",
		}
	case errors.Is(err, exec.ErrNotFound):
		return domain.PublishOutcome{
			Success:   false,
			ErrorKind: domain.PublishCommandNotFound,
			Error:     "gh CLI not found",
		}
	default:
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return domain.PublishOutcome{
			Success:   false,
			ErrorKind: domain.PublishNonZeroExit,
			Error:     "gh ports failed: " + detail,
		}
	}

	frontendURL := fmt.Sprintf("https://%s-%d.app.github.dev", p.codespace, p.frontendPort)
	// Land on /login directly: a client-side redirect on / can tear down the
	// page before the automation attaches.
	loginURL := frontendURL + "/login"

	p.log.Info("public URL derived",
		zap.String("frontend", frontendURL),
		zap.String("login", loginURL),
	)

	return domain.PublishOutcome{Success: true, FrontendURL: loginURL}
}
