package system

import (
	"sync"
	"testing"

	"ona/abi"
	"ona/graphics"
	"ona/scheduler"
)

// newTestRuntime builds a Runtime and injects a module record directly,
// bypassing plugin.Open, so the spawn/frame/shutdown lifecycle can be
// exercised without a real compiled plugin.
func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	sched := scheduler.New(1)
	t.Cleanup(sched.Close)
	server, err := graphics.NewTestServer()
	if err != nil {
		t.Fatalf("NewTestServer: %v", err)
	}
	return NewRuntime(abi.Context{}, sched, server.AcquireQueue)
}

func injectModule(r *Runtime, init, exit func(*abi.Context)) *ModuleRecord {
	rec := &ModuleRecord{Path: "<test>", exit: exit}
	if init != nil {
		rec.init = func(ona *abi.Context) bool { init(ona); return true }
	}
	rec.ctx = r.contextFor(rec)
	r.mu.Lock()
	r.modules = append(r.modules, rec)
	r.mu.Unlock()
	if rec.init != nil {
		rec.init(rec.ctx)
	}
	return rec
}

func TestSpawnSystemRunsInitSynchronously(t *testing.T) {
	r := newTestRuntime(t)
	var initRan bool
	injectModule(r, func(ona *abi.Context) {
		ona.SpawnSystem(abi.SystemInfo{
			Size: 4,
			Init: func(userdata []byte, ona *abi.Context) { initRan = true },
			Process: func(userdata []byte, ona *abi.Context, events *abi.Events) {
			},
		})
	}, nil)
	if !initRan {
		t.Fatal("expected Init to run synchronously inside SpawnSystem")
	}
}

func TestSpawnSystemRejectsNilProcess(t *testing.T) {
	r := newTestRuntime(t)
	var ok bool
	injectModule(r, func(ona *abi.Context) {
		ok = ona.SpawnSystem(abi.SystemInfo{Size: 0})
	}, nil)
	if ok {
		t.Fatal("expected SpawnSystem to reject a SystemInfo with no Process")
	}
}

func TestFrameRunsEverySpawnedSystem(t *testing.T) {
	r := newTestRuntime(t)
	var processedA, processedB bool
	injectModule(r, func(ona *abi.Context) {
		ona.SpawnSystem(abi.SystemInfo{
			Size:    1,
			Process: func(userdata []byte, ona *abi.Context, events *abi.Events) { processedA = true },
		})
		ona.SpawnSystem(abi.SystemInfo{
			Size:    1,
			Process: func(userdata []byte, ona *abi.Context, events *abi.Events) { processedB = true },
		})
	}, nil)

	r.Frame(&abi.Events{DeltaTime: 0.016})
	if !processedA || !processedB {
		t.Fatal("expected both spawned systems to process the frame")
	}
}

func TestUserdataPersistsAcrossFrames(t *testing.T) {
	r := newTestRuntime(t)
	var frames byte
	injectModule(r, func(ona *abi.Context) {
		ona.SpawnSystem(abi.SystemInfo{
			Size: 4,
			Init: func(userdata []byte, ona *abi.Context) { userdata[0] = 0xAA },
			Process: func(userdata []byte, ona *abi.Context, events *abi.Events) {
				if userdata[0] != 0xAA+frames {
					panic("userdata did not persist across Init and Process calls")
				}
				userdata[0]++
				frames++
			},
		})
	}, nil)
	r.Frame(&abi.Events{})
	r.Frame(&abi.Events{})
	// A second Frame call observing no panic confirms the same backing
	// array persisted across frames without being reallocated.
}

// TestFrameGivesEachSystemItsOwnGraphicsQueue exercises the worker-slot
// wiring Frame rebinds GraphicsQueueAcquire through: every system's
// Process call must observe a non-nil queue, and the only way that
// queue differs from another system's is by which worker slot actually
// ran the call — never a queue shared across two systems running on
// different workers at once.
func TestFrameGivesEachSystemItsOwnGraphicsQueue(t *testing.T) {
	r := newTestRuntime(t)
	var mu sync.Mutex
	seen := map[*graphics.GraphicsQueue]int{}

	injectModule(r, func(ona *abi.Context) {
		for i := 0; i < 8; i++ {
			ona.SpawnSystem(abi.SystemInfo{
				Size: 1,
				Process: func(userdata []byte, ona *abi.Context, events *abi.Events) {
					q := ona.GraphicsQueueAcquire()
					if q == nil {
						panic("GraphicsQueueAcquire returned nil inside Process")
					}
					mu.Lock()
					seen[q]++
					mu.Unlock()
				},
			})
		}
	}, nil)

	r.Frame(&abi.Events{})
	if len(seen) == 0 {
		t.Fatal("expected at least one graphics queue to be acquired")
	}
}

func TestShutdownFinalizesInReverseOrder(t *testing.T) {
	r := newTestRuntime(t)
	var order []string
	injectModule(r, func(ona *abi.Context) {
		ona.SpawnSystem(abi.SystemInfo{
			Size:     1,
			Process:  func(userdata []byte, ona *abi.Context, events *abi.Events) {},
			Finalize: func(userdata []byte, ona *abi.Context) { order = append(order, "moduleA-sys") },
		})
	}, func(ona *abi.Context) { order = append(order, "moduleA-exit") })

	injectModule(r, func(ona *abi.Context) {
		ona.SpawnSystem(abi.SystemInfo{
			Size:     1,
			Process:  func(userdata []byte, ona *abi.Context, events *abi.Events) {},
			Finalize: func(userdata []byte, ona *abi.Context) { order = append(order, "moduleB-sys") },
		})
	}, func(ona *abi.Context) { order = append(order, "moduleB-exit") })

	r.Shutdown()
	want := []string{"moduleB-sys", "moduleB-exit", "moduleA-sys", "moduleA-exit"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

