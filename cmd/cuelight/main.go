// Cue Light Core - theatrical cue signalling over MQTT
//
// One binary serves both ends of the protocol. The configured role decides
// what comes up at startup:
//   - transmitter: the single authority over channel state, driving eight
//     cue light channels and the cue list
//   - receiver: one device watching one channel, answering standby
//     requests with confirmations
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/stagecue/cuelight-core/migrations"

	"github.com/stagecue/cuelight-core/internal/channel"
	"github.com/stagecue/cuelight-core/internal/infrastructure/config"
	"github.com/stagecue/cuelight-core/internal/infrastructure/database"
	"github.com/stagecue/cuelight-core/internal/infrastructure/influxdb"
	"github.com/stagecue/cuelight-core/internal/infrastructure/logging"
	"github.com/stagecue/cuelight-core/internal/infrastructure/mqtt"
	"github.com/stagecue/cuelight-core/internal/receiver"
	"github.com/stagecue/cuelight-core/internal/show"
	"github.com/stagecue/cuelight-core/internal/transmitter"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting cue light core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "role", cfg.App.Role)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	switch cfg.App.Role {
	case config.RoleTransmitter:
		return runTransmitter(ctx, cfg, log)
	default:
		return runReceiver(ctx, cfg, log)
	}
}

// runTransmitter wires up the transmitting side: show database, MQTT,
// optional show history, the transmitter adapter, and the console.
func runTransmitter(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	db, err := database.Open(database.Config{
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

	repo := show.NewSQLiteRepository(db)
	doc, err := repo.Load(ctx)
	if err != nil {
		log.Warn("show document unreadable, starting from defaults", "error", err)
		doc = show.DefaultDocument()
	}
	store := channel.NewStore(doc.Channels)
	log.Info("show loaded", "channels", store.Count(), "cues", len(doc.Cues))

	// Persist immediately so a first boot leaves a complete document behind.
	if saveErr := repo.SaveChannels(ctx, store.SnapshotAll()); saveErr != nil {
		log.Warn("persisting channel defaults failed", "error", saveErr)
	}

	mqttClient, err := mqtt.Connect(cfg.MQTT, cfg.App.ID)
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
	mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
	mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	adapter := transmitter.New(store, mqttClient, mqttClient.TopicSet(), mqttClient.QoS())
	adapter.SetLogger(log.With("component", "transmitter"))
	adapter.SetRepository(repo)
	adapter.AttachCues(doc.Cues, repo)

	// Show history is optional; the transmitter runs fine without it.
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
		adapter.SetHistory(influxClient)
		log.Info("show history enabled", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("show history disabled")
	}

	if err := adapter.Start(); err != nil {
		return fmt.Errorf("starting transmitter: %w", err)
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("transmitter ready", "instance_id", adapter.InstanceID())

	go runTransmitterConsole(ctx, adapter, log)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Final save so cue pointer edits made this session survive.
	saveCtx := context.Background()
	if saveErr := repo.SaveChannels(saveCtx, store.SnapshotAll()); saveErr != nil {
		log.Error("saving channels on shutdown", "error", saveErr)
	}
	if saveErr := repo.SaveCues(saveCtx, adapter.Cues()); saveErr != nil {
		log.Error("saving cues on shutdown", "error", saveErr)
	}

	log.Info("cue light core stopped")
	return nil
}

// runReceiver wires up the watching side. The loop exists for one reason:
// applying settings with a new broker address tears down the whole MQTT
// session and rebuilds it from the saved settings.
func runReceiver(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	settings := receiver.LoadSettings(cfg.Receiver.SettingsPath)
	identity, err := receiver.LoadOrCreateIdentity(cfg.Receiver.IdentityPath)
	if err != nil {
		return fmt.Errorf("loading receiver identity: %w", err)
	}
	log.Info("receiver identity loaded", "name", settings.Name, "channel", settings.ChannelID)

	// One stdin reader for the whole process; console goroutines come and
	// go with each session, the reader does not.
	lines := readLines(ctx)

	for {
		mqttCfg := cfg.MQTT
		if settings.BrokerIP != "" {
			mqttCfg.Broker.Host = settings.BrokerIP
		}

		mqttClient, err := mqtt.Connect(mqttCfg, cfg.App.ID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		log.Info("MQTT connected", "broker", fmt.Sprintf("%s:%d", mqttCfg.Broker.Host, mqttCfg.Broker.Port))

		adapter := receiver.New(settings, identity, mqttClient, mqttClient.TopicSet(), mqttClient.QoS(), cfg.Receiver.SettingsPath)
		adapter.SetLogger(log.With("component", "receiver"))
		adapter.SetOnUpdate(func(v receiver.View) {
			log.Debug("view updated", "status", v.Status, "can_confirm", v.CanConfirm, "confirmed", v.Confirmed)
		})

		mqttClient.SetOnConnect(func() { adapter.SetConnected(true) })
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
			adapter.SetConnected(false)
		})
		adapter.SetConnected(mqttClient.IsConnected())

		if err := adapter.Start(); err != nil {
			mqttClient.Close() //nolint:errcheck // Best effort cleanup on error path
			return fmt.Errorf("starting receiver: %w", err)
		}
		log.Info("receiver ready", "channel", adapter.Settings().ChannelID)

		reconnect := make(chan struct{}, 1)
		consoleCtx, cancelConsole := context.WithCancel(ctx)
		go runReceiverConsole(consoleCtx, adapter, log, lines, reconnect)

		select {
		case <-ctx.Done():
			cancelConsole()
			log.Info("shutdown signal received, cleaning up")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
			log.Info("cue light core stopped")
			return nil
		case <-reconnect:
			cancelConsole()
			log.Info("rebuilding MQTT session for new broker")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
			settings = adapter.Settings()
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses CUELIGHT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CUELIGHT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when history is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
