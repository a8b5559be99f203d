// Package cmd provides common initialization for the command-line binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/loadsmith/cargoflow/pkg/persistence"
	"github.com/loadsmith/cargoflow/pkg/persistence/file"
	"github.com/loadsmith/cargoflow/pkg/persistence/postgres"
)

// NewPersistence selects a backend by URL scheme: postgres:// connects to
// PostgreSQL, anything else is treated as a file root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgres.NewPersistence(ctx, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to initialize postgres persistence: %w", err))
		}

		logger.InfoContext(ctx, "Using PostgreSQL persistence")

		return p
	default:
		logger.InfoContext(ctx, "Using file persistence", "root", databaseURL)

		return file.NewPersistence(databaseURL)
	}
}
