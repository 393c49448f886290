// Gray Timer - single countdown timer service.
//
// Gray Timer holds one process-wide countdown timer in memory and exposes it
// over HTTP. Timer events are optionally published to MQTT, written to
// InfluxDB and recorded in a SQLite audit trail.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-timer/migrations"

	"github.com/nerrad567/gray-timer/internal/api"
	"github.com/nerrad567/gray-timer/internal/audit"
	"github.com/nerrad567/gray-timer/internal/infrastructure/config"
	"github.com/nerrad567/gray-timer/internal/infrastructure/database"
	"github.com/nerrad567/gray-timer/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-timer/internal/infrastructure/logging"
	"github.com/nerrad567/gray-timer/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-timer/internal/timer"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C or SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on a clean shutdown.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence with optional components
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Timer",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	store := timer.NewStore(nil)

	// Audit trail (optional)
	var db *database.DB
	var auditRepo audit.Repository
	if cfg.Audit.Enabled {
		db, err = database.Open(ctx, database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", cfg.Database.Path)

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database migrations complete")

		repo := audit.NewSQLiteRepository(db.DB)
		auditRepo = repo
		recorder := audit.NewRecorder(repo, log)
		recCtx, stopRecorder := context.WithCancel(context.Background())
		go recorder.Run(recCtx)
		// Registered after db.Close so it runs first: drain before closing.
		defer func() {
			stopRecorder()
			<-recorder.Done()
		}()
		store.AddObserver(recorder)
	} else {
		log.Info("audit trail disabled")
	}

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT (re)connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// API server
	deps := api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Logger:    log,
		Timer:     store,
		AuditRepo: auditRepo,
		Version:   version,
	}
	if db != nil {
		deps.DB = db.DB
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Remote commands are only accepted once every sink is wired.
	var commands commandSubscriber
	if mqttClient != nil {
		commands = mqttClient
	}
	opts := notifierOptions(cfg, log, server.Hub(), mqttClient, influxClient)
	if err := wireTimer(store, opts, commands, log); err != nil {
		return err
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal", "address", server.Addr())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, InfluxDB, MQTT, audit recorder drain, database.

	log.Info("Gray Timer stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYTIMER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYTIMER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// notifierOptions wires the enabled sinks. Disabled sinks stay nil
// interfaces rather than typed nil pointers.
func notifierOptions(cfg *config.Config, log *logging.Logger, hub *api.Hub, mqttClient *mqtt.Client, influxClient *influxdb.Client) timer.NotifierOptions {
	opts := timer.NotifierOptions{
		Hub:    hub,
		QoS:    byte(cfg.MQTT.QoS), //nolint:gosec // validated to 0..2
		Logger: log,
	}
	if mqttClient != nil {
		opts.MQTT = mqttClient
	}
	if influxClient != nil {
		opts.Metrics = influxClient
	}
	return opts
}

// commandSubscriber is the part of the MQTT client that receives remote
// timer commands.
type commandSubscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// wireTimer registers the event notifier and then, if commands is non-nil,
// subscribes to remote timer commands. The order matters: a command must
// never change state before its event has somewhere to go.
func wireTimer(store *timer.Store, opts timer.NotifierOptions, commands commandSubscriber, log *logging.Logger) error {
	store.AddObserver(timer.NewNotifier(opts))

	if commands == nil {
		return nil
	}
	commandTopic := mqtt.Topics{}.TimerCommand()
	if err := commands.Subscribe(commandTopic, opts.QoS, timer.CommandHandler(store, log)); err != nil {
		return fmt.Errorf("subscribing to %s: %w", commandTopic, err)
	}
	log.Info("listening for remote timer commands", "topic", commandTopic)
	return nil
}

// healthCheck verifies the enabled infrastructure connections. Nil
// components are disabled and skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
