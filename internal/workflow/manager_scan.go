package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"scribe/internal/logging"
	"scribe/internal/scanner"
)

// enqueuePending discovers new recordings in the watch directory and inserts
// queue items for them. Recordings with an existing transcript or an existing
// queue item are skipped.
func (m *Manager) enqueuePending(ctx context.Context, logger *slog.Logger) error {
	pending, err := scanner.PendingFiles(m.cfg.Paths.WatchDir, m.cfg.OutputDirFor)
	if err != nil {
		return fmt.Errorf("scan watch directory: %w", err)
	}

	for _, path := range pending {
		existing, err := m.store.FindBySource(ctx, path)
		if err != nil {
			return fmt.Errorf("check queue for %s: %w", path, err)
		}
		if existing != nil {
			continue
		}

		fingerprint, err := scanner.Fingerprint(path)
		if err != nil {
			logger.Warn("could not fingerprint recording",
				logging.String(logging.FieldSource, path),
				logging.Error(err),
			)
			fingerprint = ""
		}

		item, err := m.store.NewRecording(ctx, path, fingerprint)
		if err != nil {
			return fmt.Errorf("enqueue %s: %w", path, err)
		}
		logger.Info("queued recording",
			logging.String(logging.FieldComponent, "workflow"),
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldSource, path),
		)
		m.noteBatchStarted()
	}
	return nil
}
