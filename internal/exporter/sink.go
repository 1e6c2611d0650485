package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Sink delivers a finished artifact, the equivalent of a browser download.
type Sink interface {
	Deliver(ctx context.Context, a Artifact) (string, error)
}

// DirSink saves artifacts into a directory under their fixed names,
// replacing earlier downloads.
type DirSink struct {
	dir    string
	logger *slog.Logger
}

// NewDirSink creates a sink writing into dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir, logger: slog.Default()}
}

// WithLogger sets the logger used for delivery messages.
func (s *DirSink) WithLogger(logger *slog.Logger) *DirSink {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Deliver writes the artifact and returns its path. The file is written
// to a temporary name first so a failed export never leaves a partial file.
func (s *DirSink) Deliver(ctx context.Context, a Artifact) (string, error) {
	if a.Name == "" {
		return "", fmt.Errorf("artifact has no file name")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	target := filepath.Join(s.dir, a.Name)
	tmp, err := os.CreateTemp(s.dir, "."+a.Name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", a.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close %s: %w", a.Name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move %s into place: %w", a.Name, err)
	}

	s.logger.InfoContext(ctx, "Artifact saved",
		slog.String("file", a.Name),
		slog.String("path", target),
		slog.Int("bytes", len(a.Data)))
	return target, nil
}
