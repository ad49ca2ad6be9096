// Package artifacts_fs writes the two run artifacts: the credentials file
// other tooling reuses, and the full run report.
package artifacts_fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/davarch/qa-harness/internal/domain"
)

type CredentialsFile struct {
	path string
}

func NewCredentialsFile(path string) *CredentialsFile { return &CredentialsFile{path: path} }

func (w *CredentialsFile) Write(c domain.Credentials) error {
	return writeJSON(w.path, c)
}

type ReportFile struct {
	path string
}

func NewReportFile(path string) *ReportFile { return &ReportFile{path: path} }

func (w *ReportFile) Write(_ context.Context, r domain.RunReport) error {
	return writeJSON(w.path, r)
}

func writeJSON(path string, v any) error {
	if path == "" {
		return errors.New("artifact path is empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
