package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBarrierWaitsForAllTasks(t *testing.T) {
	s := New(1)
	defer s.Close()

	var done [10]atomic.Bool
	for i := range done {
		i := i
		s.Execute(func(int) {
			time.Sleep(time.Millisecond)
			done[i].Store(true)
		})
	}
	s.Wait()
	for i := range done {
		require.Truef(t, done[i].Load(), "task %d did not complete before Wait returned", i)
	}
}

func TestRecursiveExecuteDoesNotDeadlock(t *testing.T) {
	s := New(0.25)
	defer s.Close()

	var inner atomic.Bool
	done := make(chan struct{})
	s.Execute(func(int) {
		s.Execute(func(int) {
			inner.Store(true)
			close(done)
		})
	})
	s.Wait()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recursive Execute deadlocked")
	}
	require.True(t, inner.Load(), "inner task never ran")
}

func TestZeroWorkersAcceptsExecuteButNeverDrains(t *testing.T) {
	s := New(0)
	ran := false
	s.Execute(func(int) { ran = true })
	time.Sleep(10 * time.Millisecond)
	if ran {
		t.Fatal("task ran with zero workers")
	}
	s.Close() // no workers to join; must return promptly
}

func TestExecutePassesWorkerSlotInRange(t *testing.T) {
	s := New(1)
	defer s.Close()
	require.Greater(t, s.WorkerCount(), 0, "test host must have at least one CPU")

	const n = 50
	slots := make([]int, n)
	for i := range slots {
		i := i
		s.Execute(func(slot int) { slots[i] = slot })
	}
	s.Wait()
	for i, slot := range slots {
		require.GreaterOrEqualf(t, slot, 0, "task %d", i)
		require.Lessf(t, slot, s.WorkerCount(), "task %d", i)
	}
}
