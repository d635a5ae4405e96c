package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/eval"
	"github.com/specialistvlad/texgraph/internal/graph"
	"github.com/specialistvlad/texgraph/internal/hcl_adapter"
	"github.com/specialistvlad/texgraph/internal/metrics"
	"github.com/specialistvlad/texgraph/internal/notify"
	"github.com/specialistvlad/texgraph/internal/registry"
	"github.com/specialistvlad/texgraph/internal/scheduler"
	"github.com/specialistvlad/texgraph/internal/shadergen"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	registry        *registry.Registry
	arena           *graph.Arena
	metricsRegistry *prometheus.Registry
	metrics         *metrics.Metrics
	loader          *hcl_adapter.Loader
	engine          *eval.Engine
	scheduler       *scheduler.Scheduler

	notifier *notify.Sink
	// files maps each loaded document to the ids of its top-level graphs.
	// Only the scheduler driver touches it.
	files map[string][]string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics registry.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New().Load(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	a := &App{
		outW:            outW,
		logger:          logger,
		config:          cfg,
		registry:        reg,
		arena:           graph.NewArena(reg, graph.WithLogger(logger)),
		metricsRegistry: promReg,
		metrics:         m,
		loader:          hcl_adapter.NewLoader(hcl_adapter.WithStrict(cfg.Strict)),
		files:           make(map[string][]string),
	}
	compiler := shadergen.New(a.arena, shadergen.WithMetrics(m), shadergen.WithSamplers(cfg.Samplers))
	a.engine = eval.New(a.arena,
		eval.WithCompiler(compiler),
		eval.WithSink(eval.SinkFunc(a.submitShader)),
		eval.WithWorkers(cfg.WorkerCount),
	)
	a.scheduler = scheduler.New(a.arena, a.engine, scheduler.WithLogger(logger), scheduler.WithMetrics(m))
	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Arena returns the arena holding every loaded graph.
func (a *App) Arena() *graph.Arena { return a.arena }

// Engine returns the evaluation engine.
func (a *App) Engine() *eval.Engine { return a.engine }

// Run loads the configured documents and evaluates them. In watch mode it
// keeps reloading changed documents until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	pub, err := a.openPublisher(ctx)
	if err != nil {
		return err
	}
	defer pub.Close()
	a.notifier = notify.NewSink(pub)

	files, err := a.loader.Files(a.config.Paths...)
	if err != nil {
		return fmt.Errorf("failed to find documents: %w", err)
	}
	if len(files) == 0 {
		a.logger.Warn("No graph documents found.", "paths", a.config.Paths)
	}
	for _, file := range files {
		if err := a.loadFile(ctx, file); err != nil {
			return err
		}
	}
	a.logger.Info("Documents loaded.", "files", len(files), "graphs", len(a.arena.Graphs()))

	if a.config.Watch {
		return a.watch(ctx)
	}

	a.logger.Info("🚀 Evaluating graphs...", "scheduled", a.scheduler.Len())
	if err := a.scheduler.Drain(ctx); err != nil {
		return fmt.Errorf("evaluation interrupted: %w", err)
	}
	if n := a.scheduler.Failures(); n > 0 {
		return fmt.Errorf("%d node evaluations failed", n)
	}
	a.logger.Info("🏁 Evaluation finished.")
	return nil
}

func (a *App) openPublisher(ctx context.Context) (notify.Publisher, error) {
	nc := a.config.Notify
	if nc.URL == "" {
		return notify.NewLog(a.logger), nil
	}
	pub, err := notify.DialSocketIO(ctx, notify.SocketIOConfig{
		URL:                nc.URL,
		Namespace:          nc.Namespace,
		InsecureSkipVerify: nc.InsecureSkipVerify,
		Timeout:            nc.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect notifier: %w", err)
	}
	return pub, nil
}

// loadFile (re)loads one document: graphs it produced earlier are removed,
// the new ones are announced and their roots scheduled.
func (a *App) loadFile(ctx context.Context, file string) error {
	file = filepath.Clean(file)
	logger := ctxlog.FromContext(ctx).With("file", file)
	a.unloadFile(file)

	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		logger.Info("Document removed.")
		return nil
	}
	graphs, err := a.loader.LoadFile(ctx, a.arena, file)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(graphs))
	for _, g := range graphs {
		ids = append(ids, g.ID)
		if err := a.notifier.GraphUpdated(ctx, g, file); err != nil {
			logger.Warn("Failed to publish graph update.", "graph", g.Name, "error", err)
		}
		scheduled := 0
		for _, n := range g.Roots() {
			if a.scheduler.NotifyChanged(ctx, n.ID) {
				scheduled++
			}
		}
		logger.Debug("Graph scheduled.", "graph", g.Name, "roots", scheduled)
	}
	a.files[file] = ids
	return nil
}

func (a *App) unloadFile(file string) {
	for _, id := range a.files[file] {
		a.arena.RemoveTree(id)
	}
	delete(a.files, file)
}
