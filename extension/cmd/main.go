package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"

	"github.com/scusemua/notebook-commands/common/configuration"
	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/metrics"
	"github.com/scusemua/notebook-commands/common/utils"
	"github.com/scusemua/notebook-commands/common/websocket"
	"github.com/scusemua/notebook-commands/extension/domain"
	"github.com/scusemua/notebook-commands/extension/internal/commands"
	"github.com/scusemua/notebook-commands/extension/internal/host"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
	"github.com/scusemua/notebook-commands/extension/internal/notifier"
)

const (
	shutdownTimeout = time.Second * 10
)

var (
	options      = domain.ExtensionOptions{}
	globalLogger = config.GetLogger("")
	sig          = make(chan os.Signal, 1)
)

func init() {
	lipgloss.SetColorProfile(termenv.ANSI256)

	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
}

// ValidateOptions ensures that the options/configuration is valid.
func ValidateOptions() {
	flags, err := config.ValidateOptions(&options)
	if errors.Is(err, config.ErrPrintUsage) {
		flags.PrintDefaults()
		os.Exit(0)
	} else if err != nil {
		log.Fatal(err)
	}
}

// createSettingsStore opens the configured settings backend.
func createSettingsStore(opts *domain.SettingsOptions) (configuration.Store, error) {
	switch opts.SettingsBackend {
	case domain.SettingsBackendFile:
		globalLogger.Info("Keeping settings in file \"%s\".", opts.SettingsFile)
		store, err := configuration.NewFileStore(opts.SettingsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open settings file \"%s\"", opts.SettingsFile)
		}
		return store, nil
	case domain.SettingsBackendRedis:
		globalLogger.Info("Keeping settings in Redis at %s.", opts.RedisAddress)
		store, err := configuration.NewRedisStore(configuration.RedisOptions{
			Address:   opts.RedisAddress,
			Password:  opts.RedisPassword,
			Database:  opts.RedisDatabase,
			KeyPrefix: opts.RedisKeyPrefix,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to connect to Redis at %s", opts.RedisAddress)
		}
		return store, nil
	default:
		globalLogger.Info("Keeping settings in memory.")
		return configuration.NewMemoryStore(), nil
	}
}

func main() {
	var done sync.WaitGroup

	// Ensure that the options/configuration is valid.
	ValidateOptions()

	options.ValidateExtensionOptions()

	if options.PrettyPrintOptions {
		globalLogger.Info("Starting the notebook command daemon with the following options:\n%s\n",
			options.PrettyString(2))
	} else {
		globalLogger.Info("Starting the notebook command daemon.")
	}

	settings, err := createSettingsStore(&options.SettingsOptions)
	if err != nil {
		log.Fatalf("Failed to create settings store: %v", err)
	}

	timeout := time.Duration(options.RequestTimeoutSec) * time.Second

	jupyterClient := jupyterapi.NewClient(options.JupyterServerUrl, options.JupyterToken, timeout)
	notebookHost := host.NewHost(jupyterClient, timeout)

	kernelNotifier := notifier.NewNotifier(notebookHost.Kernels, nil)
	notebookHost.SetReporter(kernelNotifier)

	registry := commands.NewRegistry()
	if err := notebookHost.RegisterBuiltins(registry); err != nil {
		log.Fatalf("Failed to register built-in notebook commands: %v", err)
	}
	if _, err := registry.RegisterListCommand(); err != nil {
		log.Fatalf("Failed to register %s: %v", commands.ListCommands, err)
	}

	var commandMetrics *metrics.CommandMetrics
	if !options.DisableMetrics {
		commandMetrics, err = metrics.NewCommandMetrics()
		if err != nil {
			log.Fatalf("Failed to register Prometheus metrics: %v", err)
		}
	}

	guard := kernel.NewGuard(notebookHost.Kernels, notebookHost.Controllers, notebookHost.Connector, kernelNotifier)
	guard.SetMetrics(commandMetrics)

	listener := commands.NewListener(registry, notebookHost.Workspace, notebookHost.Workspace, notebookHost.Kernels,
		notebookHost.Controllers, guard, settings, host.NewFixedPrompter(options.RestartPrompt))
	if err := listener.Register(); err != nil {
		log.Fatalf("Failed to register notebook commands: %v", err)
	}

	server := websocket.NewCommandServer(options.ListenAddress, registry, options.CommandsPerSecond, timeout)
	server.SetMetrics(commandMetrics)
	removeSink := kernelNotifier.AddSink(notifier.SinkFunc(func(ctx context.Context, notification notifier.Notification) {
		server.Broadcast(ctx, notification)
	}))

	if err := server.Listen(); err != nil {
		log.Fatalf("Failed to listen on %s: %v", options.ListenAddress, err)
	}
	globalLogger.Info("Serving %d commands at ws://%v%s", len(registry.Commands()), server.Addr(), websocket.CommandsPath)
	if commandMetrics != nil {
		globalLogger.Info("Serving Prometheus metrics at http://%v%s", server.Addr(), websocket.MetricsPath)
	}

	// Start detecting stop signals
	done.Add(1)
	go func() {
		defer done.Done()

		select {
		case <-sig:
			globalLogger.Info("Shutting down...")
		case serveErr, ok := <-server.Errors():
			if ok && serveErr != nil {
				globalLogger.Error(utils.RedStyle.Render("Error on serving command connections: %v"), serveErr)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		removeSink()
		if closeErr := server.Close(ctx); closeErr != nil {
			globalLogger.Warn("Failed to shut down command server cleanly: %v", closeErr)
		}

		listener.Dispose()
		notebookHost.Dispose()

		if closeErr := settings.Close(); closeErr != nil {
			globalLogger.Warn("Failed to close settings store: %v", closeErr)
		}
	}()

	done.Wait()
}
