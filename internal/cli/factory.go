package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/JanMattner/cuevox"
	"github.com/JanMattner/cuevox/internal/compiler"
	"github.com/JanMattner/cuevox/internal/config"
	"github.com/JanMattner/cuevox/pkg/adapters/bolt"
	"github.com/JanMattner/cuevox/pkg/adapters/file"
	"github.com/JanMattner/cuevox/pkg/adapters/memory"
	"github.com/JanMattner/cuevox/pkg/adapters/mqtt"
	"github.com/JanMattner/cuevox/pkg/adapters/openhab"
	"github.com/JanMattner/cuevox/pkg/adapters/redis"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/observability"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// App bundles an interpreter with the adapters it was built from.
type App struct {
	Config      config.Config
	Interpreter *cuevox.Interpreter
	Registry    *memory.Registry
	Source      ports.ItemSource
	Sink        domain.CommandSink
	Journal     ports.Journal
	Metrics     *observability.Metrics
	Logger      *slog.Logger

	mu      sync.Mutex
	closers []func() error
}

// Build wires the adapters selected by cfg. Relative paths are resolved
// against baseDir. The caller must Close the App.
func Build(ctx context.Context, cfg config.Config, baseDir string, logger *slog.Logger) (_ *App, err error) {
	cfg.Rules = Resolve(baseDir, cfg.Rules)
	cfg.Items.File = Resolve(baseDir, cfg.Items.File)
	cfg.Journal.Path = Resolve(baseDir, cfg.Journal.Path)

	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	var rdb *backend.Client
	redisClient := func() *backend.Client {
		if rdb == nil {
			rdb = redis.NewClient(cfg.Redis.Addr, "", 0)
			app.closers = append(app.closers, rdb.Close)
		}
		return rdb
	}

	var oh *openhab.Client
	openHAB := func() *openhab.Client {
		if oh == nil {
			oh = openhab.New(cfg.OpenHAB.URL,
				openhab.WithToken(cfg.OpenHAB.Token),
				openhab.WithTimeout(cfg.OpenHAB.Timeout),
			)
		}
		return oh
	}

	// 1. Command sink
	switch cfg.Sink {
	case config.SinkLog, "":
		app.Sink = memory.LogSink{Logger: logger}
	case config.SinkOpenHAB:
		app.Sink = openHAB()
	case config.SinkMQTT:
		client, err := mqtt.Connect(ctx, cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() error { client.Disconnect(250); return nil })
		app.Sink = mqtt.NewSink(client, mqtt.WithPrefix(cfg.MQTT.Prefix), mqtt.WithQoS(cfg.MQTT.QoS))
	case config.SinkRedis:
		app.Sink = redis.NewBus(redisClient(), cfg.Redis.Channel)
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}

	// 2. Item source
	switch cfg.Items.Source {
	case config.SourceFile, "":
		app.Source = file.NewSource(cfg.Items.File)
	case config.SourceOpenHAB:
		app.Source = openHAB()
	default:
		return nil, fmt.Errorf("unknown item source %q", cfg.Items.Source)
	}

	app.Registry = memory.NewRegistry()
	n, err := app.Registry.Load(ctx, app.Source, app.Sink)
	if err != nil {
		return nil, err
	}
	logger.Info("Items loaded", "count", n, "source", cfg.Items.Source)

	// 3. Journal
	switch cfg.Journal.Type {
	case config.JournalNone:
	case config.JournalMemory, "":
		app.Journal = memory.NewJournal(cfg.Journal.Size)
	case config.JournalBolt:
		j, err := bolt.Open(cfg.Journal.Path, cfg.Journal.Size)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, j.Close)
		app.Journal = j
	case config.JournalRedis:
		app.Journal = redis.NewJournal(redisClient(),
			redis.WithKey(cfg.Redis.JournalKey),
			redis.WithSize(cfg.Journal.Size),
		)
	default:
		return nil, fmt.Errorf("unknown journal %q", cfg.Journal.Type)
	}

	// 4. Interpreter
	app.Metrics = observability.NewMetrics(prometheus.NewRegistry())
	hooks := domain.ChainHooks(app.Metrics.Hooks(), observability.LogHooks(logger))

	opts := []cuevox.Option{
		cuevox.WithLogger(logger),
		cuevox.WithLifecycleHooks(hooks),
		cuevox.WithCompleteMatch(cfg.CompleteMatch),
	}
	if app.Journal != nil {
		opts = append(opts, cuevox.WithJournal(app.Journal))
	}
	app.Interpreter = cuevox.New(app.Registry, opts...)

	if err := app.LoadRules(); err != nil {
		return nil, err
	}
	return app, nil
}

// LoadRules (re)loads the built-in rule set and the rules file. A rules
// file that does not compile leaves the current rules in place.
func (a *App) LoadRules() error {
	if a.Config.Rules != "" {
		if _, err := compiler.NewParser(a.Interpreter.Actions()).ParseFile(a.Config.Rules); err != nil {
			return err
		}
	}
	a.Interpreter.ClearRules()
	if a.Config.Language != "" {
		if err := a.Interpreter.LoadRuleSet(a.Config.Language); err != nil {
			return err
		}
	}
	if a.Config.Rules != "" {
		if err := a.Interpreter.LoadRules(a.Config.Rules); err != nil {
			return err
		}
	}
	return nil
}

// ReloadItems replaces the registry content with the current items.
func (a *App) ReloadItems(ctx context.Context) error {
	n, err := a.Registry.Load(ctx, a.Source, a.Sink)
	if err != nil {
		return err
	}
	a.Logger.Info("Items reloaded", "count", n)
	return nil
}

// Close releases the adapters in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Resolve joins a relative path to base.
func Resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}
