// Command bootctl brings up the subsystems described in a YAML
// configuration file and serves their status reports over HTTP.
//
// Usage:
//
//	bootctl -config bootstrap.yaml -listen :8080
//
// The configuration file carries one section per subsystem, e.g.:
//
//	filesystem:
//	  path: /var/lib/myapp
//	  create: true
//	database:
//	  driver: sqlite
//	  dsn: file:/var/lib/myapp/app.db
//	  retry_attempts: 2
//	  retry_delay: 1
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/GoCodeAlone/bootstrap"
	"github.com/GoCodeAlone/bootstrap/feeders"
	"github.com/GoCodeAlone/bootstrap/initializers/cache"
	"github.com/GoCodeAlone/bootstrap/initializers/database"
	"github.com/GoCodeAlone/bootstrap/initializers/externalapi"
	"github.com/GoCodeAlone/bootstrap/initializers/filesystem"
	"github.com/GoCodeAlone/bootstrap/initializers/network"
	"github.com/GoCodeAlone/bootstrap/initializers/queue"
	"github.com/GoCodeAlone/bootstrap/reporthttp"
)

// slogLogger adapts log/slog to the bootstrap.Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// subsystems maps section names to driver constructors; only sections
// present in the configuration file are registered. Dependencies mirror a
// typical deployment: storage first, then connectivity, then clients.
var subsystems = []struct {
	name         string
	driver       func() bootstrap.Driver
	dependencies []string
}{
	{"filesystem", func() bootstrap.Driver { return filesystem.New() }, nil},
	{"network", func() bootstrap.Driver { return network.New() }, nil},
	{"database", func() bootstrap.Driver { return database.New() }, []string{"filesystem"}},
	{"cache", func() bootstrap.Driver { return cache.New() }, []string{"network"}},
	{"queue", func() bootstrap.Driver { return queue.New() }, []string{"network"}},
	{"externalapi", func() bootstrap.Driver { return externalapi.New() }, []string{"network"}},
}

func main() {
	configPath := flag.String("config", "bootstrap.yaml", "configuration file")
	listen := flag.String("listen", ":8080", "status report listen address")
	recheckSpec := flag.String("recheck", "", "cron spec for connection rechecks, e.g. @every 30s")
	flag.Parse()

	if err := run(*configPath, *listen, *recheckSpec); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, listen, recheckSpec string) error {
	logger := &slogLogger{logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	emitter := bootstrap.NewEventEmitter("bootctl", logger)
	emitter.RegisterObserver(bootstrap.ObserverFunc{
		ID: "bootctl-log",
		Fn: func(_ context.Context, event bootstrap.CloudEvent) error {
			logger.Debug("Lifecycle event", "type", event.Type(), "id", event.ID())
			return nil
		},
	})

	monitor := bootstrap.NewPerformanceMonitor()
	detector := bootstrap.NewErrorDetector()
	manager := bootstrap.NewStateManager(logger, bootstrap.WithManagerEmitter(emitter))

	feeder := feeders.NewYamlFeeder(configPath)
	for _, sub := range subsystems {
		var cfg bootstrap.Config
		if err := feeder.FeedSection(sub.name, &cfg); err != nil {
			return fmt.Errorf("failed to load %s configuration: %w", sub.name, err)
		}
		if cfg == nil {
			continue
		}
		instance := bootstrap.NewInitializer(sub.driver(),
			bootstrap.WithMonitor(monitor),
			bootstrap.WithErrorDetector(detector),
			bootstrap.WithEmitter(emitter),
			bootstrap.WithLogger(logger),
		)
		deps := registeredOnly(manager, sub.dependencies)
		if err := manager.Register(sub.name, instance, deps...); err != nil {
			return err
		}
		if err := manager.SetConfig(sub.name, cfg); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := manager.InitializeAll(ctx); err != nil {
		logger.Error("Initialization failed", "error", err)
		// Keep serving reports so operators can inspect the failure.
	}

	if recheckSpec != "" {
		rechecker := bootstrap.NewConnectionRechecker(manager, logger)
		if err := rechecker.ScheduleAll(recheckSpec); err != nil {
			return err
		}
		rechecker.Start()
		defer rechecker.Stop()
	}

	logger.Info("Serving status reports", "addr", listen)
	server := &http.Server{
		Addr:              listen,
		Handler:           reporthttp.Handler(manager),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("status server failed: %w", err)
	}
	return nil
}

// registeredOnly filters dependency names down to sections that were
// actually configured, so a minimal config file still forms a valid graph.
func registeredOnly(manager *bootstrap.StateManager, deps []string) []string {
	var out []string
	for _, dep := range deps {
		for _, name := range manager.Names() {
			if name == dep {
				out = append(out, dep)
				break
			}
		}
	}
	return out
}
