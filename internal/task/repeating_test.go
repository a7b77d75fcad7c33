package task

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRepeatingTask(t *testing.T) {
	executions := make(chan struct{}, 16)
	task := NewRepeating(func() {
		executions <- struct{}{}
	}, 10*time.Millisecond)

	task.Start()
	for i := 0; i < 2; i++ {
		select {
		case <-executions:
		case <-time.After(2 * time.Second):
			t.Fatal("expected the task to be executed repeatedly")
		}
	}
	task.Stop(false)
}

func TestRepeatingTaskStopForceExec(t *testing.T) {
	var executions int64
	task := NewRepeating(func() {
		atomic.AddInt64(&executions, 1)
	}, time.Hour)

	task.Start()
	task.Stop(true)

	if atomic.LoadInt64(&executions) != 1 {
		t.Errorf("expected exactly 1 forced execution, got %d", atomic.LoadInt64(&executions))
	}
}

func TestRepeatingTaskStopWithoutStart(t *testing.T) {
	task := NewRepeating(func() {
		t.Error("expected the task to never run")
	}, time.Hour)

	// Stopping a task that never ran is a no-op
	task.Stop(false)
}
