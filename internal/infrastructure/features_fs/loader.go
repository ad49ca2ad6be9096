// Package features_fs reads the optional declarative features file. Every
// failure is non-fatal: the browser agent auto-discovers features when the
// list comes back empty.
package features_fs

import (
	"encoding/json"
	"errors"
	"os"

	"go.uber.org/zap"
)

type Loader struct {
	path string
	log  *zap.Logger
}

func New(log *zap.Logger, path string) *Loader {
	return &Loader{path: path, log: log}
}

type featuresDoc struct {
	Features []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"features"`
}

// Completed returns the names of completed features in file order.
func (l *Loader) Completed() []string {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.log.Info("features file not found -- agent will auto-discover", zap.String("path", l.path))
		} else {
			l.log.Warn("features file unreadable -- agent will auto-discover", zap.Error(err))
		}
		return nil
	}

	var doc featuresDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		l.log.Warn("features file undecodable -- agent will auto-discover", zap.Error(err))
		return nil
	}

	var names []string
	for _, f := range doc.Features {
		if f.Status == "completed" || f.Status == "done" {
			names = append(names, f.Name)
		}
	}
	l.log.Info("completed features loaded", zap.Int("count", len(names)))
	return names
}
