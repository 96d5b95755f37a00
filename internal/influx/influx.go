// Package influx writes poll telemetry to InfluxDB, falling back to a gzip
// line-protocol file when the server is unreachable.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/wramwatch/wramwatch/internal/config"
)

// MeasurementPoll is the measurement written once per poll.
const MeasurementPoll = "wram_poll"

// retention applied to buckets this manager creates
const retentionSeconds = 60 * 60 * 24 * 30

// ErrDisabled is returned by Connect when influx is turned off in config.
var ErrDisabled = errors.New("influx disabled")

// Manager handles the InfluxDB connection and writes.
type Manager struct {
	cfg    config.InfluxConfig
	Logger zerolog.Logger

	mu         sync.Mutex
	client     influxdb2.Client
	writer     influxdb2_api.WriteAPI
	backupFile *os.File
	backup     *gzip.Writer
	online     bool
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	return &Manager{cfg: cfg, Logger: log}
}

// URL returns the server URL.
func (m *Manager) URL() string {
	return fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port)
}

// Online reports whether points go to the server rather than the backup file.
func (m *Manager) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Connect pings the server. If it is unreachable, writes go to the backup file.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.client = influxdb2.NewClientWithOptions(m.URL(), m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(100).
			SetFlushInterval(1000),
	)

	running, err := m.client.Ping(ctx)
	if err != nil || !running {
		m.Logger.Warn().Err(err).Str("backupPath", m.cfg.BackupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		if err := m.openBackup(); err != nil {
			m.dropClient()
			return err
		}
		return nil
	}

	if err := m.ensureBucket(ctx); err != nil {
		m.dropClient()
		return err
	}

	m.writer = m.client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.writer.Errors())

	m.online = true
	m.Logger.Info().Str("url", m.URL()).Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

// dropClient releases a client that Connect could not put to use. Callers hold mu.
func (m *Manager) dropClient() {
	m.client.Close()
	m.client = nil
}

func (m *Manager) openBackup() error {
	if m.backup != nil {
		return nil
	}
	if dir := filepath.Dir(m.cfg.BackupPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating backup dir: %w", err)
		}
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Manager) ensureBucket(ctx context.Context) error {
	orgs := m.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.Logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("creating influx org %s: %w", m.cfg.Org, err)
		}
	}

	buckets := m.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}

	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = buckets.CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: retentionSeconds,
	})
	if err != nil {
		return fmt.Errorf("creating influx bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
}

// WritePoint sends a point to the server or appends it to the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online {
		m.writer.WritePoint(point)
		return nil
	}
	if m.backup == nil {
		return errors.New("influx not connected and no backup writer available")
	}

	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the client and backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.writer != nil {
		m.writer.Flush()
	}
	if m.client != nil {
		m.client.Close()
	}
	if m.backup != nil {
		errs = append(errs, m.backup.Close())
		errs = append(errs, m.backupFile.Close())
		m.backup = nil
	}
	m.online = false
	return errors.Join(errs...)
}

// PollSample is what one poll reports.
type PollSample struct {
	Time     time.Time
	Mode     string
	Duration time.Duration
	Bytes    int
	Issues   int
	Unknown  bool
}

// PollPoint converts a sample into a wram_poll point.
func PollPoint(s PollSample) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(MeasurementPoll,
		map[string]string{"mode": s.Mode},
		map[string]any{
			"duration_ms": float64(s.Duration.Microseconds()) / 1000,
			"bytes":       s.Bytes,
			"issues":      s.Issues,
			"unknown":     s.Unknown,
		},
		s.Time,
	)
}
