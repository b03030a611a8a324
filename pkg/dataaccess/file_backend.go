package dataaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const fileBackendName = "file_backend"

// FileBackend stores each document as a pretty printed JSON file in a directory.
type FileBackend struct {
	// l is the logger.
	l *slog.Logger

	// dir is the directory holding the documents.
	dir string
}

// NewFileBackend creates a file backend rooted at dir, creating the directory if needed.
func NewFileBackend(l *slog.Logger, dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}

	return &FileBackend{
		l:   l.With(slog.String(logging.KeyDal, fileBackendName)),
		dir: dir,
	}, nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

// Load reads the document file. A missing or empty file is reported as ErrDocumentNotFound.
func (f *FileBackend) Load(_ context.Context, name string, v any) error {
	monitoring.FileTotalRequests.WithLabelValues("load", name).Inc()
	t := prometheus.NewTimer(monitoring.FileLatency.WithLabelValues("load", name))
	defer t.ObserveDuration()

	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrDocumentNotFound
	} else if err != nil {
		return fmt.Errorf("error reading document %s: %w", name, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return ErrDocumentNotFound
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error decoding document %s: %w", name, err)
	}
	return nil
}

// Save writes the whole document to a temporary file and renames it over the old one.
func (f *FileBackend) Save(_ context.Context, name string, v any) error {
	monitoring.FileTotalRequests.WithLabelValues("save", name).Inc()
	t := prometheus.NewTimer(monitoring.FileLatency.WithLabelValues("save", name))
	defer t.ObserveDuration()

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding document %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(f.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("error writing document %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error closing document %s: %w", name, err)
	}

	if err := os.Rename(tmpName, f.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error replacing document %s: %w", name, err)
	}
	return nil
}

// Ping checks that the data directory still exists.
func (f *FileBackend) Ping(_ context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("error checking data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", f.dir)
	}
	return nil
}
