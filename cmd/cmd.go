package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bswanson58/NoiseHass/internal/pkg/config"
	"github.com/bswanson58/NoiseHass/internal/pkg/contxt"
	"github.com/bswanson58/NoiseHass/internal/pkg/model"
	"github.com/bswanson58/NoiseHass/internal/pkg/mqtt"
	"github.com/bswanson58/NoiseHass/internal/pkg/player"
	"github.com/bswanson58/NoiseHass/internal/pkg/publisher"
	"github.com/bswanson58/NoiseHass/internal/pkg/server"
	"github.com/bswanson58/NoiseHass/internal/pkg/topic"
)

var errCron = errors.New("cron error")

// BridgeCommand is the entry point for the noisehass CLI command. Flags
// override the environment-derived config.
func BridgeCommand(ctx *cli.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if v := ctx.String("mqtt-broker"); v != "" {
		cfg.Mqtt.Broker = v
	}
	if v := ctx.String("mqtt-user"); v != "" {
		cfg.Mqtt.Username = v
	}
	if v := ctx.String("mqtt-pass"); v != "" {
		cfg.Mqtt.Password = v
	}
	if v := ctx.String("mqtt-client-id"); v != "" {
		cfg.Mqtt.ClientID = v
	}
	if v := ctx.String("device-name"); v != "" {
		cfg.Device.Name = v
	}
	if v := ctx.String("device-id"); v != "" {
		cfg.Device.DeviceID = v
	}
	if v := ctx.String("namespace"); v != "" {
		cfg.Device.Namespace = v
	}
	if v := ctx.String("status-segment"); v != "" {
		cfg.Device.StatusSegment = v
	}
	if ctx.IsSet("derive-mute") {
		cfg.Device.DeriveMute = ctx.Bool("derive-mute")
	}
	if v := ctx.String("http-addr"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := ctx.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	bus := mqtt.New(mqtt.NewClient(&cfg.Mqtt), cfg.Device.Namespace, cfg.Device.DeviceID)
	errorChan := make(chan error, 1000)

	return run(ctx.Context, cfg, bus, errorChan, logger)
}

func run(ctx context.Context, cfg *config.Config, bus BusService, errorChan chan error, logger *zap.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	// The subscription handler must never wait on a sink: a blocked handler
	// stalls all ordered inbound dispatch. State changes are queued here and
	// published from a worker below; a drop under burst is recovered by the
	// periodic snapshot republish.
	snapshots := make(chan model.EntitySnapshot, 64)
	entity := player.New(cfg.Device.Name, cfg.Device.DeviceID, bus, func(snapshot model.EntitySnapshot) {
		select {
		case snapshots <- snapshot:
		default:
			logger.Warn("snapshot queue full, dropping update", zap.String("device", snapshot.DeviceID))
		}
	}, player.Options{
		Namespace:     cfg.Device.Namespace,
		StatusSegment: cfg.Device.StatusSegment,
		DeriveMute:    cfg.Device.DeriveMute,
	}, logger)

	if err := publisher.RegisterPublisher("mqtt", bus); err != nil {
		return err
	}
	defer publisher.UnregisterPublisher("mqtt")

	// Bus unavailable at setup is fatal to this entity.
	if err := bus.Connect(); err != nil {
		logger.Error("failed to connect to mqtt broker", zap.Error(err))
		return err
	}
	defer bus.Disconnect()

	if err := publisher.Announce(entity.AnnounceMessage()); err != nil {
		return err
	}

	subscription := topic.Subscription(cfg.Device.Namespace)
	if err := bus.Subscribe(subscription, entity.HandleMessage); err != nil {
		logger.Error("failed to subscribe", zap.String("filter", subscription), zap.Error(err))
		return err
	}
	defer func() {
		_ = bus.Unsubscribe(subscription)
	}()
	logger.Info("subscribed", zap.String("filter", subscription), zap.String("device", entity.DeviceID()))

	eg.Go(func() error {
		for {
			select {
			case snapshot := <-snapshots:
				if err := publisher.PublishState(contxt.NewContext(time.Second*5), snapshot); err != nil {
					errorChan <- err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	eg.Go(func() error {
		return cronSnapshotRepublish(ctx, bus, entity, errorChan)
	})

	eg.Go(func() error {
		srv := &http.Server{
			Handler:      server.New(entity, bus).Router(),
			Addr:         cfg.HTTPAddr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		// handle any async errors from services
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errCron) {
					logger.Error("cron error", zap.Error(err))
					return err
				}
				logger.Error("service error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

// cronSnapshotRepublish keeps the retained entity snapshot fresh for
// late-joining consumers even when the device is idle.
func cronSnapshotRepublish(ctx context.Context, bus BusService, entity *player.Entity, errChan chan error) error {
	c := cron.New()
	if _, err := c.AddFunc("@every 1m", func() {
		if err := bus.WriteState(contxt.NewContext(time.Second*5), entity.Snapshot()); err != nil {
			zap.L().Error("error republishing entity snapshot", zap.Error(err))
			errChan <- errCron
			return
		}
		zap.L().Debug("republished entity snapshot")
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
