package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/homedash/internal/pkg/config"
	"github.com/anicoll/homedash/internal/pkg/dispatcher"
	"github.com/anicoll/homedash/internal/pkg/fallback"
	"github.com/anicoll/homedash/internal/pkg/gateway"
	"github.com/anicoll/homedash/internal/pkg/model"
	"github.com/anicoll/homedash/internal/pkg/mqtt"
	"github.com/anicoll/homedash/internal/pkg/poller"
	"github.com/anicoll/homedash/internal/pkg/publisher"
	"github.com/anicoll/homedash/internal/pkg/server"
	"github.com/anicoll/homedash/internal/pkg/store"
	"github.com/anicoll/homedash/pkg/sockets"
)

const shutdownTimeout = 5 * time.Second

// DashboardCommand is the entry point of the dashboard CLI command. Flags
// override values read from the environment.
func DashboardCommand(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.StringSlice("env-file")...)
	if err != nil {
		return err
	}
	applyFlags(ctx, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	return run(ctx.Context, cfg, logger, dependencies{
		newMirror: newMqttMirror,
		listen:    net.Listen,
	})
}

func applyFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("api-base-url") {
		cfg.RemoteCfg.BaseURL = ctx.String("api-base-url")
	}
	if ctx.IsSet("devices-poll-interval") {
		cfg.PollCfg.DevicesInterval = ctx.Duration("devices-poll-interval")
	}
	if ctx.IsSet("events-poll-interval") {
		cfg.PollCfg.EventsInterval = ctx.Duration("events-poll-interval")
	}
	if ctx.IsSet("fetch-timeout") {
		cfg.PollCfg.FetchTimeout = ctx.Duration("fetch-timeout")
	}
	if ctx.IsSet("listen-addr") {
		cfg.ListenAddr = ctx.String("listen-addr")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("fallback-mode") {
		cfg.FallbackMode = config.FallbackMode(ctx.String("fallback-mode"))
	}
	if ctx.IsSet("mqtt-host") {
		cfg.MqttCfg.Host = ctx.String("mqtt-host")
	}
	if ctx.IsSet("mqtt-user") {
		cfg.MqttCfg.Username = ctx.String("mqtt-user")
	}
	if ctx.IsSet("mqtt-pass") {
		cfg.MqttCfg.Password = ctx.String("mqtt-pass")
	}
}

func newLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = lvl
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func newMqttMirror(cfg config.MqttConfig) (Mirror, error) {
	opts := mqtt.NewClientOptions(cfg.Host, cfg.Username, cfg.Password, "homedash-"+uuid.NewString())
	return mqtt.New(paho_mqtt.NewClient(opts), cfg.TopicPrefix), nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps dependencies) error {
	eg, ctx := errgroup.WithContext(ctx)

	hub := sockets.NewHub[model.View]()
	registry := publisher.New(publisher.WithLogger(logger))
	if err := registry.Register("websocket", hub); err != nil {
		return err
	}

	if cfg.MqttCfg.Enabled() {
		m, err := deps.newMirror(cfg.MqttCfg)
		if err != nil {
			return err
		}
		if err := m.Connect(); err != nil {
			return fmt.Errorf("connecting to mqtt broker: %w", err)
		}
		defer m.Close()
		if err := registry.Register("mqtt", m); err != nil {
			return err
		}
	}

	// changed coalesces change notifications so slow publishers never
	// block the store or the dispatcher.
	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	st := store.New(fallback.New(cfg.FallbackMode), store.WithOnChange(notify))
	gw := gateway.New(cfg.RemoteCfg.BaseURL,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.RemoteCfg.Timeout}),
		gateway.WithLogger(logger),
	)
	dsp := dispatcher.New(gw, dispatcher.WithLogger(logger), dispatcher.WithOnChange(notify))
	pl := poller.New(gw, st, cfg.PollCfg, poller.WithLogger(logger))

	lis, err := deps.listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      server.New(st, dsp, hub, server.WithLogger(logger)).Handler(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	eg.Go(func() error {
		return pl.Run(ctx)
	})

	eg.Go(func() error {
		for {
			select {
			case <-changed:
				registry.Publish(ctx, model.View{Snapshot: st.Snapshot(), Command: dsp.Result()})
			case <-ctx.Done():
				return nil
			}
		}
	})

	eg.Go(func() error {
		logger.Info("serving dashboard", zap.String("addr", lis.Addr().String()), zap.String("api", cfg.RemoteCfg.BaseURL))
		if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("context done, shutting down")
		st.Close()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		_ = hub.Close()
		return err
	})

	return eg.Wait()
}
