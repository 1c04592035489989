// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

package wlclient

import (
	"context"
	"testing"
	"time"
)

func TestExecutorRunsTask(t *testing.T) {
	e := newExecutor()
	defer e.Close()

	ran := make(chan struct{})
	e.Add(func(ctx context.Context) {
		close(ran)
		<-ctx.Done()
	})
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestExecutorCloseCancelsTasks(t *testing.T) {
	e := newExecutor()
	cancelled := make(chan struct{})
	e.Add(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	})
	e.Close()
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was never cancelled on Close")
	}
}

func TestExecutorAddAfterCloseRunsCancelled(t *testing.T) {
	e := newExecutor()
	e.Close()
	seenDone := make(chan bool, 1)
	e.Add(func(ctx context.Context) {
		select {
		case <-ctx.Done():
			seenDone <- true
		default:
			seenDone <- false
		}
	})
	if !<-seenDone {
		t.Fatal("expected a task added after Close to observe an already-cancelled context")
	}
}

func TestExecuteRacesAgainstContext(t *testing.T) {
	e := newExecutor()
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := execute(e, ctx, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if err == nil {
		t.Fatal("expected execute to surface the cancelled context's error")
	}
}
