package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gorm.io/gorm"

	"github.com/wramwatch/wramwatch/internal/assembler"
	"github.com/wramwatch/wramwatch/internal/channel"
	"github.com/wramwatch/wramwatch/internal/config"
	"github.com/wramwatch/wramwatch/internal/database"
	"github.com/wramwatch/wramwatch/internal/dispatcher"
	"github.com/wramwatch/wramwatch/internal/influx"
	"github.com/wramwatch/wramwatch/internal/layout"
	"github.com/wramwatch/wramwatch/internal/logging"
	"github.com/wramwatch/wramwatch/internal/lookup"
	"github.com/wramwatch/wramwatch/internal/lookup/sqlstore"
	"github.com/wramwatch/wramwatch/internal/monitor"
	intOtel "github.com/wramwatch/wramwatch/internal/otel"
	"github.com/wramwatch/wramwatch/internal/overlay"
	"github.com/wramwatch/wramwatch/internal/poller"
	"github.com/wramwatch/wramwatch/internal/wram"
	"github.com/wramwatch/wramwatch/pkg/streaming"
)

// overlayBuffer bounds updates waiting for the jsonl writer.
const overlayBuffer = 256

// app owns every long-lived resource of one wramwatch run.
type app struct {
	sessionStart time.Time

	slogManager *logging.SlogManager
	logger      *slog.Logger
	pollContext *logging.PollContext

	logFile  *os.File
	otel     *intOtel.Provider
	graylog  *gelf.Writer
	db       *gorm.DB
	influx   *influx.Manager
	monitor  *monitor.Service
	closers  []func() error
	overlayQ channel.Channel[streaming.Update]
	drained  chan struct{}
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{
		sessionStart: time.Now(),
		slogManager:  logging.NewSlogManager(),
		pollContext:  &logging.PollContext{},
	}
	a.slogManager.SetContextProvider(a.pollContext.Attrs)

	level := viper.GetString("logLevel")
	a.slogManager.Setup(nil, level, nil)
	a.logger = a.slogManager.Logger()

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		a.logger.Error("Failed to create logs directory", "path", logsDir, "error", err)
	} else {
		path := logging.LogFilePath(logsDir, binaryName, a.sessionStart)
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			a.logger.Error("Failed to create/open log file!", "error", err, "path", path)
		} else {
			a.logFile = f
			a.logger.Info("Begin logging in logs directory", "path", path)
		}
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		p, err := intOtel.New(ctx, intOtel.Config{
			Enabled:      true,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    a.logWriter(),
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			a.logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			a.otel = p
			a.logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var extra []slog.Handler
	if gl := config.GetGraylogConfig(); gl.Enabled {
		h, w, err := logging.NewGraylogHandler(gl.Address, level)
		if err != nil {
			a.logger.Error("Failed to set up Graylog", "error", err)
		} else {
			a.graylog = w
			extra = append(extra, h)
		}
	}

	var provider *sdklog.LoggerProvider
	if a.otel != nil {
		provider = a.otel.LoggerProvider()
	}
	var file io.Writer
	if a.logFile != nil {
		file = a.logFile
	}
	a.slogManager.Setup(file, level, provider, extra...)
	a.logger = a.slogManager.Logger()
	a.logger.Info("Starting wramwatch", "version", Version, "build", BuildDate)

	if err := layout.Validate(wram.Size); err != nil {
		a.close()
		return nil, fmt.Errorf("memory layout does not fit the snapshot: %w", err)
	}

	a.setupInflux(ctx)
	a.monitor = monitor.NewService(monitor.Dependencies{
		Logger:     a.logger,
		Influx:     a.influxWriter(),
		StatusPath: filepath.Join(logsDir, "status.json"),
		Interval:   config.GetMonitorConfig().Interval,
	})
	return a, nil
}

// logWriter returns the log file, or stdout when none could be opened.
func (a *app) logWriter() io.Writer {
	if a.logFile != nil {
		return a.logFile
	}
	return os.Stdout
}

func (a *app) setupInflux(ctx context.Context) {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return
	}
	zlog := zerolog.New(a.logWriter()).With().Timestamp().Str("component", "influx").Logger()
	m := influx.NewManager(zlog, cfg)
	if err := m.Connect(ctx); err != nil {
		a.logger.Error("InfluxDB unavailable, poll telemetry disabled", "error", err)
		return
	}
	a.influx = m
}

func (a *app) influxWriter() monitor.PointWriter {
	if a.influx == nil {
		return nil
	}
	return a.influx
}

// lookupService picks the reference data backend named in config.
func (a *app) lookupService(ctx context.Context) (lookup.Service, error) {
	cfg := config.GetLookupConfig()
	switch cfg.Source {
	case "", "files":
		return lookup.LoadDir(cfg.DataDir, a.logger), nil
	case "sqlite", "postgres":
		db, err := openReferenceDB(cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		store, err := sqlstore.New(db, a.logger)
		if err != nil {
			return nil, err
		}
		for _, t := range lookup.Tables {
			n, err := store.Count(ctx, t)
			if err != nil {
				return nil, err
			}
			a.logger.Debug("Reference table available", "table", t, "rows", n)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown lookup source %q", cfg.Source)
	}
}

func openReferenceDB(cfg config.LookupConfig, log *slog.Logger) (*gorm.DB, error) {
	if cfg.Source == "postgres" {
		return database.OpenPostgres(config.GetDBConfig(), log)
	}
	return database.OpenSQLite(cfg.SQLitePath, log)
}

// overlaySink builds the configured sink. The jsonl sink is fed through a
// bounded channel so a slow writer never stalls the poll loop.
func (a *app) overlaySink() (overlay.Sink, error) {
	cfg := config.GetOverlayConfig()
	switch cfg.Sink {
	case "", "log":
		return overlay.LogSink{Logger: a.logger}, nil
	case "jsonl":
		var w io.Writer = os.Stdout
		if cfg.Output != "" {
			f, err := os.OpenFile(cfg.Output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
			if err != nil {
				return nil, fmt.Errorf("opening overlay output: %w", err)
			}
			a.closers = append(a.closers, f.Close)
			w = f
		}
		writer := overlay.NewWriterSink(w)
		a.overlayQ = channel.New[streaming.Update](overlayBuffer)
		a.drained = make(chan struct{})
		go func() {
			defer close(a.drained)
			for u := range a.overlayQ.Receive() {
				if err := writer.Publish(u); err != nil {
					a.logger.Error("Overlay write failed", "region", u.ID, "error", err)
				}
			}
		}()
		return overlay.NewChannelSink(a.overlayQ), nil
	default:
		return nil, fmt.Errorf("unknown overlay sink %q", cfg.Sink)
	}
}

func (a *app) run(ctx context.Context) error {
	refs, err := a.lookupService(ctx)
	if err != nil {
		return fmt.Errorf("reference data: %w", err)
	}
	sink, err := a.overlaySink()
	if err != nil {
		return err
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(a.logger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	var opts []dispatcher.Option
	if viper.GetString("logLevel") == "debug" {
		opts = append(opts, dispatcher.Logged())
	}
	assembler.RegisterPipelines(d, opts...)

	emu := config.GetEmulatorConfig()
	wcfg := wram.Config{
		Host:        emu.Host,
		Port:        emu.Port,
		RequestByte: byte(emu.RequestByte),
		Size:        emu.SnapshotSize,
		DialTimeout: emu.DialTimeout,
		ReadTimeout: emu.ReadTimeout,
	}
	a.logger.Info("Connecting to emulator", "address", wcfg.Address())
	client, err := wram.Dial(ctx, wcfg)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, client.Close)
	a.logger.Info("Connected to emulator", "remote", client.RemoteAddr())

	p, err := poller.New(poller.Dependencies{
		Source:     client,
		Dispatcher: d,
		Handler: overlay.NewPresenter(overlay.Dependencies{
			Lookup: refs,
			Sink:   sink,
			Logger: a.logger,
		}),
		Recorder: a.monitor,
		Scope:    a.pollContext,
		Logger:   a.logger,
		Interval: config.GetPollConfig().Interval,
	})
	if err != nil {
		return err
	}

	if err := a.monitor.Start(); err != nil {
		return err
	}
	return p.Run(ctx)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.overlayQ != nil {
		a.overlayQ.Close()
		<-a.drained
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	if a.db != nil {
		errs = append(errs, database.Close(a.db))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errs = append(errs, a.slogManager.Flush(shutdownCtx))
	if a.otel != nil {
		errs = append(errs, a.otel.Shutdown(shutdownCtx))
	}
	if a.graylog != nil {
		errs = append(errs, a.graylog.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("Errors during shutdown", "error", err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
