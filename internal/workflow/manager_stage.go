package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"scribe/internal/logging"
	"scribe/internal/queue"
)

func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	m.mu.RLock()
	pipeline, ok := m.stages[item.Status]
	m.mu.RUnlock()
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.sleep(ctx, m.pollInterval)
		return nil
	}

	runID := uuid.NewString()
	stageLogger := logger.With(
		logging.String(logging.FieldComponent, pipeline.name),
		logging.String(logging.FieldRunID, runID),
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldStage, pipeline.name),
	)

	if err := m.transitionToProcessing(ctx, pipeline, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(ctx, stageLogger, pipeline, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, pipeline pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String("processing_status", string(pipeline.processingStatus)),
		logging.String(logging.FieldSource, strings.TrimSpace(item.SourcePath)),
	)

	handler := pipeline.handler
	if handler == nil {
		stageLogger.Warn("missing stage handler")
		item.Status = queue.StatusFailed
		item.ErrorMessage = fmt.Sprintf("stage %s missing handler", pipeline.name)
		if err := m.store.Update(ctx, item); err != nil {
			stageLogger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	if err := handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stageLogger, pipeline.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	if err := handler.Execute(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(ctx, stageLogger, pipeline.name, item, err)
		m.setLastError(err)
		return err
	}

	if item.Status == pipeline.processingStatus || item.Status == "" {
		item.Status = pipeline.doneStatus
	}
	if item.Status == queue.StatusCompleted {
		item.ProgressStage = "completed"
		if item.ProgressPercent < 100 {
			item.ProgressPercent = 100
		}
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)

	if item.Status == queue.StatusCompleted {
		m.noteItemCompleted()
		if m.notifier != nil {
			if err := m.notifier.NotifyProcessingCompleted(ctx, item.Title, item.MarkdownFile); err != nil {
				stageLogger.Warn("completion notification failed", logging.Error(err))
			}
		}
	}
	return nil
}

func (m *Manager) transitionToProcessing(ctx context.Context, pipeline pipelineStage, item *queue.Item) error {
	if pipeline.processingStatus == "" {
		return errors.New("processing status must not be empty")
	}

	firstStage := item.Status == queue.StatusPending
	item.Status = pipeline.processingStatus
	item.ProgressStage = pipeline.name
	item.ProgressMessage = fmt.Sprintf("%s started", pipeline.name)
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastItem(item)

	if firstStage && m.notifier != nil {
		if err := m.notifier.NotifyProcessingStarted(ctx, item.Title); err != nil && m.logger != nil {
			m.logger.Warn("start notification failed", logging.Error(err))
		}
	}
	return nil
}

// handleStageFailure marks the item failed and records the error. Other
// queue items keep processing; the failure stays visible in queue listings.
func (m *Manager) handleStageFailure(ctx context.Context, stageLogger *slog.Logger, stageName string, item *queue.Item, cause error) {
	stageLogger.Error("stage failed", logging.Error(cause))

	item.Status = queue.StatusFailed
	item.ErrorMessage = fmt.Sprintf("%s: %v", stageName, cause)
	if err := m.store.Update(ctx, item); err != nil {
		stageLogger.Error("failed to persist stage failure", logging.Error(err))
	}
	m.setLastItem(item)
	m.noteItemFailed()

	if m.notifier != nil {
		label := item.Title
		if label == "" {
			label = item.SourcePath
		}
		if err := m.notifier.NotifyError(ctx, cause, label); err != nil {
			stageLogger.Warn("error notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) noteBatchStarted() {
	m.mu.Lock()
	if !m.batchActive {
		m.batchActive = true
		m.batchStart = time.Now()
		m.batchProcessed = 0
		m.batchFailed = 0
	}
	m.mu.Unlock()
}

func (m *Manager) noteItemCompleted() {
	m.mu.Lock()
	m.batchProcessed++
	m.mu.Unlock()
}

func (m *Manager) noteItemFailed() {
	m.mu.Lock()
	m.batchFailed++
	m.mu.Unlock()
}

// finishBatch emits the batch summary once the queue drains.
func (m *Manager) finishBatch(ctx context.Context) {
	m.mu.Lock()
	if !m.batchActive {
		m.mu.Unlock()
		return
	}
	processed := m.batchProcessed
	failed := m.batchFailed
	duration := time.Since(m.batchStart)
	m.batchActive = false
	m.mu.Unlock()

	if processed == 0 && failed == 0 {
		return
	}
	if m.logger != nil {
		m.logger.Info("batch complete",
			logging.String(logging.FieldComponent, "workflow"),
			logging.Int("processed", processed),
			logging.Int("failed", failed),
			logging.Duration("batch_duration", duration),
		)
	}
	if m.notifier != nil {
		if err := m.notifier.NotifyBatchCompleted(ctx, processed, failed, duration); err != nil && m.logger != nil {
			m.logger.Warn("batch notification failed", logging.Error(err))
		}
	}
}
