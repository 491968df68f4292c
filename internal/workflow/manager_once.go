package workflow

import (
	"context"
	"fmt"

	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/scanner"
)

// ProcessFile runs a single recording through every stage synchronously and
// returns the finished queue item. The file does not need to live inside the
// watch directory. An existing queue entry for the same path is resumed from
// its current status rather than enqueued again.
func (m *Manager) ProcessFile(ctx context.Context, sourcePath string) (*queue.Item, error) {
	if !scanner.IsSupportedAudio(sourcePath) {
		return nil, fmt.Errorf("unsupported audio format: %s", sourcePath)
	}

	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	item, err := m.store.FindBySource(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("check queue for %s: %w", sourcePath, err)
	}
	if item == nil {
		fingerprint, fpErr := scanner.Fingerprint(sourcePath)
		if fpErr != nil {
			logger.Warn("could not fingerprint recording",
				logging.String(logging.FieldSource, sourcePath),
				logging.Error(fpErr),
			)
		}
		item, err = m.store.NewRecording(ctx, sourcePath, fingerprint)
		if err != nil {
			return nil, fmt.Errorf("enqueue %s: %w", sourcePath, err)
		}
	}

	m.noteBatchStarted()
	for !item.Status.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return item, err
		}
		m.mu.RLock()
		_, known := m.stages[item.Status]
		m.mu.RUnlock()
		if !known {
			return item, fmt.Errorf("no stage registered for status %q", item.Status)
		}
		if err := m.processItem(ctx, logger, item); err != nil {
			return item, err
		}
		id := item.ID
		item, err = m.store.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reload item %d: %w", id, err)
		}
	}
	m.finishBatch(ctx)
	return item, nil
}
