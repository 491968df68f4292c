package daemon_test

import (
	"context"
	"testing"

	"scribe/internal/daemon"
	"scribe/internal/logging"
	"scribe/internal/testsupport"
	"scribe/internal/workflow"
)

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	wf := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), nil)
	d, err := daemon.New(cfg, store, logging.NewNop(), wf)
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}
}

func TestDaemonRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestDaemonLockBlocksSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	wf1 := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), nil)
	wf2 := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), nil)

	first, err := daemon.New(cfg, store, logging.NewNop(), wf1)
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	second, err := daemon.New(cfg, store, logging.NewNop(), wf2)
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	defer first.Stop()

	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected lock contention for second instance")
	}
}
