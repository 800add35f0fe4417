package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"guildstore/internal/controllers"
	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
	"guildstore/internal/structures"
)

const (
	notifyQueueSize = 64
	notifyTimeout   = 2 * time.Second
)

type App struct {
	WebServer *http.Server

	conf     *structures.Config
	logger   providers.Logger
	watcher  interfaces.WatcherInterface
	notifier providers.NotifierProviderInterface
	bridge   *notifierBridge
}

func NewApp(
	healthController *controllers.HealthController,
	conf *structures.Config,
	logger providers.Logger,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
	manager interfaces.SchemaManagerInterface,
	watcher interfaces.WatcherInterface,
	notifier providers.NotifierProviderInterface,
) (*App, error) {
	metrics.TrackStore(manager)

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      NewHandler(healthController, conf, router, metrics),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:     conf,
		logger:   logger,
		watcher:  watcher,
		notifier: notifier,
		bridge:   startNotifierBridge(manager, notifier, metrics, logger),
	}
	return app, nil
}

// NewHandler assembles the HTTP surface: instrumented API routes plus the
// health and metrics endpoints.
func NewHandler(healthController *controllers.HealthController, conf *structures.Config, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) http.Handler {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Wrap API routes with metrics middleware
	instrumentedAPI := providers.MetricsMiddleware(metrics, apiMux)

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)
	return mux
}

// Run serves HTTP until SIGINT/SIGTERM and then shuts everything down.
func (app *App) Run() error {
	app.logger.Infof(providers.TypeApp, "Starting %s", app.conf.AppName)

	if err := app.watcher.Start(); err != nil {
		app.logger.Errorf(providers.TypeApp, "Watcher start error: %s", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", app.conf.WebServer.Host, app.conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		app.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.WebServer.Shutdown(ctx); err != nil && runErr == nil {
		runErr = err
	}

	app.Close()
	if runErr == nil {
		app.logger.Infof(providers.TypeApp, "gracefully stopped")
	}
	return runErr
}

// Close stops the watcher and the notifier. The storage backend is released
// by the cleanup returned from the injector.
func (app *App) Close() {
	app.watcher.Stop()
	app.bridge.stop()
	app.notifier.Close()
}

// notifierBridge forwards this process's store changes to the notifier
// without blocking writers.
type notifierBridge struct {
	mu          sync.Mutex
	closed      bool
	unsubscribe func()
	queue       chan models.ChangeEvent
	done        chan struct{}
}

func startNotifierBridge(manager interfaces.SchemaManagerInterface, notifier providers.NotifierProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) *notifierBridge {
	b := &notifierBridge{
		queue: make(chan models.ChangeEvent, notifyQueueSize),
		done:  make(chan struct{}),
	}

	go func() {
		defer close(b.done)
		for e := range b.queue {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			err := notifier.Publish(ctx, e)
			cancel()
			if err != nil {
				logger.Warnf(providers.TypeApp, "Failed to publish change %d: %s", e.Snapshot, err)
				continue
			}
			metrics.IncEventsPublished(string(e.Reason))
		}
	}()

	b.unsubscribe = manager.SubscribeEvents(func(e models.ChangeEvent) {
		// Changes made elsewhere were already announced by their writer.
		if e.Reason == models.ReasonExternal {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		select {
		case b.queue <- e:
		default:
			logger.Warnf(providers.TypeApp, "Notifier queue full, dropping change %d", e.Snapshot)
		}
	})
	return b
}

func (b *notifierBridge) stop() {
	b.unsubscribe()
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()
	<-b.done
}
