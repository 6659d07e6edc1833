// Package system discovers and drives dynamically-loaded modules: the
// Go analogue of the original host's dlopen/dlsym module loading
// (original_source/engine/modules.cpp's NativeModule). A module is a
// Go plugin exporting an OnaInit symbol, which the host calls once
// with a Context through which the module spawns one or more systems;
// each system's Process callback then runs once per frame on the
// scheduler until the host shuts down.
package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"sort"
	"sync"

	"ona/abi"
	"ona/graphics"
	"ona/scheduler"
)

// registeredSystem is one system spawned by a module via
// Context.SpawnSystem: its private userdata block and the three
// lifecycle callbacks the module supplied.
type registeredSystem struct {
	userdata    []byte
	process     func(userdata []byte, ona *abi.Context, events *abi.Events)
	finalize    func(userdata []byte, ona *abi.Context)
	initialized bool
}

// ModuleRecord is one loaded module: its plugin handle, its resolved
// OnaInit/OnaExit symbols (either may be absent), the Context it was
// handed, and the systems it spawned from OnaInit.
type ModuleRecord struct {
	Path string

	handle *plugin.Plugin
	init   func(*abi.Context) bool
	exit   func(*abi.Context)
	ctx    *abi.Context

	systems []*registeredSystem
}

// Runtime owns every loaded module and drives their systems' Process
// callbacks through a Scheduler once per frame.
type Runtime struct {
	base         abi.Context // host-provided vtable fields shared by every module
	sched        *scheduler.Scheduler
	queueForSlot func(workerSlot int) *graphics.GraphicsQueue

	mu      sync.Mutex
	modules []*ModuleRecord
}

// NewRuntime constructs a Runtime. base supplies every Context field
// except SpawnSystem, which Runtime overrides per module so each
// module's spawned systems are attributed to it, and
// GraphicsQueueAcquire, which Runtime rebinds per invocation to the
// scheduler worker slot actually running the call — see Frame.
// queueForSlot resolves a worker slot (or, outside Frame, any slot a
// caller chooses) to that slot's GraphicsQueue.
func NewRuntime(base abi.Context, sched *scheduler.Scheduler, queueForSlot func(workerSlot int) *graphics.GraphicsQueue) *Runtime {
	return &Runtime{base: base, sched: sched, queueForSlot: queueForSlot}
}

// LoadDir discovers every *.so file directly under dir and loads each
// as a module, in ascending filename order. Filename order is the
// load order this host commits to: the specification leaves module
// load order unspecified, and a deterministic order is required for
// frame behavior to be reproducible across runs. A module that fails
// to load is skipped and the remaining modules are still loaded; the
// returned error joins every such failure.
func (r *Runtime) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("system: reading module directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".so" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	var errs []error
	for _, name := range names {
		if err := r.Load(filepath.Join(dir, name)); err != nil {
			errs = append(errs, fmt.Errorf("system: loading %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Load opens the plugin at path, resolves OnaInit and OnaExit if
// present, and — if OnaInit is present — calls it with a fresh
// Context scoped to this module. OnaInit is expected to call
// Context.SpawnSystem for every system the module wants registered;
// each spawned system's Init callback runs synchronously, before
// SpawnSystem returns, per the original's own SpawnSystem contract.
//
// OnaInit reports whether it succeeded. On false, Load treats the
// module as never having loaded: its record (and any systems it
// already spawned before failing) is discarded and Load returns an
// error. Go's plugin package has no dlclose counterpart, so the
// module's code stays mapped in the process either way — only its
// bookkeeping in Runtime is rolled back.
func (r *Runtime) Load(path string) error {
	p, err := plugin.Open(path)
	if err != nil {
		return err
	}
	rec := &ModuleRecord{Path: path, handle: p}

	if sym, lookupErr := p.Lookup("OnaInit"); lookupErr == nil {
		init, ok := sym.(func(*abi.Context) bool)
		if !ok {
			return fmt.Errorf("OnaInit has an unexpected signature")
		}
		rec.init = init
	}
	if sym, lookupErr := p.Lookup("OnaExit"); lookupErr == nil {
		exit, ok := sym.(func(*abi.Context))
		if !ok {
			return fmt.Errorf("OnaExit has an unexpected signature")
		}
		rec.exit = exit
	}
	rec.ctx = r.contextFor(rec)

	if rec.init != nil {
		if ok := rec.init(rec.ctx); !ok {
			return fmt.Errorf("system: %s: OnaInit reported failure", path)
		}
	}

	r.mu.Lock()
	r.modules = append(r.modules, rec)
	r.mu.Unlock()
	return nil
}

// contextFor returns a Context copied from r.base with SpawnSystem
// bound to rec, so that systems spawned through it are recorded
// against the right module, and a default GraphicsQueueAcquire for
// calls made outside Frame (OnaInit/OnaExit and SpawnSystem's Init run
// synchronously on whichever goroutine called Load, never on a
// scheduler worker). Frame rebinds GraphicsQueueAcquire to the actual
// worker slot before handing a system its Process call.
func (r *Runtime) contextFor(rec *ModuleRecord) *abi.Context {
	ctx := r.base
	ctx.GraphicsQueueAcquire = func() *graphics.GraphicsQueue {
		return r.queueForSlot(r.sched.WorkerCount())
	}
	ctx.SpawnSystem = func(info abi.SystemInfo) bool {
		if info.Process == nil {
			return false
		}
		sys := &registeredSystem{
			userdata: make([]byte, info.Size),
			process:  info.Process,
			finalize: info.Finalize,
		}
		if info.Init != nil {
			info.Init(sys.userdata, rec.ctx)
		}
		// Finalize only ever runs for a system whose Init has already
		// run to completion — see the Worker-slot / lifecycle
		// resolution in the design notes. Init here is synchronous and
		// unconditional, so every spawned system reaches this state.
		sys.initialized = true

		r.mu.Lock()
		rec.systems = append(rec.systems, sys)
		r.mu.Unlock()
		return true
	}
	return &ctx
}

// Frame submits every registered system's Process callback to the
// scheduler and blocks until the frame's systems have all completed,
// mirroring the original's per-module ScheduleTask loop followed by a
// WaitGroup barrier.
func (r *Runtime) Frame(events *abi.Events) {
	r.mu.Lock()
	modules := r.modules
	r.mu.Unlock()

	for _, rec := range modules {
		for _, sys := range rec.systems {
			rec, sys := rec, sys
			r.sched.Execute(func(slot int) {
				ctx := *rec.ctx
				ctx.GraphicsQueueAcquire = func() *graphics.GraphicsQueue {
					return r.queueForSlot(slot)
				}
				sys.process(sys.userdata, &ctx, events)
			})
		}
	}
	r.sched.Wait()
}

// Shutdown finalizes every successfully-initialized system and calls
// each module's OnaExit, in reverse load order. Go's plugin package
// offers no counterpart to dlclose: once opened, a plugin's code stays
// mapped for the life of the process, so Shutdown releases every
// system's userdata and runs exit hooks but cannot unmap the module
// itself.
func (r *Runtime) Shutdown() {
	r.mu.Lock()
	modules := r.modules
	r.mu.Unlock()

	for i := len(modules) - 1; i >= 0; i-- {
		rec := modules[i]
		for j := len(rec.systems) - 1; j >= 0; j-- {
			sys := rec.systems[j]
			if sys.initialized && sys.finalize != nil {
				sys.finalize(sys.userdata, rec.ctx)
			}
			sys.userdata = nil
		}
		if rec.exit != nil {
			rec.exit(rec.ctx)
		}
	}
}

// Modules returns the currently loaded module records, in load order.
func (r *Runtime) Modules() []*ModuleRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ModuleRecord, len(r.modules))
	copy(out, r.modules)
	return out
}
