package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/queue"
	"scribe/internal/stage"
)

// pipelineStage binds a stable status to the handler that advances it.
type pipelineStage struct {
	name             string
	processingStatus queue.Status
	doneStatus       queue.Status
	handler          stage.Handler
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration

	stages     map[queue.Status]pipelineStage
	stageOrder []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item

	batchActive    bool
	batchStart     time.Time
	batchProcessed int
	batchFailed    int
}

// NewManager constructs a workflow manager with the default stage pipeline.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.WatchPollInterval) * time.Second,
		stages:       make(map[queue.Status]pipelineStage),
	}
	m.ConfigureStages(DefaultStages(cfg, logger))
	return m
}

// StageBinding associates a stable status with its handler for registration.
type StageBinding struct {
	Name             string
	FromStatus       queue.Status
	ProcessingStatus queue.Status
	DoneStatus       queue.Status
	Handler          stage.Handler
}

// ConfigureStages replaces the stage pipeline. Bindings are consulted in the
// order given when picking up queue items.
func (m *Manager) ConfigureStages(bindings []StageBinding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = make(map[queue.Status]pipelineStage, len(bindings))
	m.stageOrder = m.stageOrder[:0]
	for _, binding := range bindings {
		m.stages[binding.FromStatus] = pipelineStage{
			name:             binding.Name,
			processingStatus: binding.ProcessingStatus,
			doneStatus:       binding.DoneStatus,
			handler:          binding.Handler,
		}
		m.stageOrder = append(m.stageOrder, binding.FromStatus)
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stageOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the manager loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastItem returns a copy of the most recently processed item.
func (m *Manager) LastItem() *queue.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastItem == nil {
		return nil
	}
	clone := *m.lastItem
	return &clone
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	if item == nil {
		return
	}
	clone := *item
	m.mu.Lock()
	m.lastItem = &clone
	m.mu.Unlock()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.enqueuePending(ctx, logger); err != nil {
			m.setLastError(err)
			logger.Error("watch directory scan failed",
				logging.Error(err),
				logging.String(logging.FieldComponent, "workflow"),
			)
		}

		item, err := m.nextItem(ctx)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to fetch next queue item", logging.Error(err))
			if !m.sleep(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second) {
				return
			}
			continue
		}
		if item == nil {
			m.finishBatch(ctx)
			if !m.sleep(ctx, m.pollInterval) {
				return
			}
			continue
		}

		if err := m.processItem(ctx, logger, item); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// nextItem returns the oldest item waiting at any stable status.
func (m *Manager) nextItem(ctx context.Context) (*queue.Item, error) {
	m.mu.RLock()
	order := append([]queue.Status(nil), m.stageOrder...)
	m.mu.RUnlock()

	items, err := m.store.List(ctx, order...)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}
