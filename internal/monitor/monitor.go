// Package monitor keeps running poll statistics and reports them on a ticker.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/wramwatch/wramwatch/internal/influx"
)

// PointWriter receives one point per recorded poll.
type PointWriter interface {
	WritePoint(*influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Logger     *slog.Logger
	Influx     PointWriter // optional
	StatusPath string      // optional status file rewritten on every tick
	Interval   time.Duration
}

// Stats is the running summary of the poll loop.
type Stats struct {
	Polls         uint64        `json:"polls"`
	Frames        uint64        `json:"frames"`
	Unknown       uint64        `json:"unknown"`
	Issues        uint64        `json:"issues"`
	HandlerErrors uint64        `json:"handlerErrors"`
	LastMode      string        `json:"lastMode"`
	LastDuration  time.Duration `json:"lastDuration"`
	LastPoll      time.Time     `json:"lastPoll"`
}

// Service manages status monitoring
type Service struct {
	deps Dependencies

	mu        sync.RWMutex
	stats     Stats
	isRunning bool
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Minute
	}
	return &Service{deps: deps}
}

// Record adds one poll to the statistics and forwards it to influx.
func (s *Service) Record(sample influx.PollSample) {
	s.mu.Lock()
	s.stats.Polls++
	if sample.Unknown {
		s.stats.Unknown++
	} else {
		s.stats.Frames++
	}
	s.stats.Issues += uint64(sample.Issues)
	s.stats.LastMode = sample.Mode
	s.stats.LastDuration = sample.Duration
	s.stats.LastPoll = sample.Time
	s.mu.Unlock()

	if s.deps.Influx == nil {
		return
	}
	if err := s.deps.Influx.WritePoint(influx.PollPoint(sample)); err != nil {
		s.deps.Logger.Warn("Failed to write poll point", "error", err)
	}
}

// RecordHandlerError counts a frame handler failure.
func (s *Service) RecordHandlerError() {
	s.mu.Lock()
	s.stats.HandlerErrors++
	s.mu.Unlock()
}

// Stats returns a copy of the current statistics.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Report logs the current statistics and rewrites the status file.
func (s *Service) Report() {
	st := s.Stats()
	s.deps.Logger.Info("Poll status",
		"polls", st.Polls,
		"frames", st.Frames,
		"unknown", st.Unknown,
		"issues", st.Issues,
		"handler_errors", st.HandlerErrors,
		"last_mode", st.LastMode,
		"last_duration", st.LastDuration,
	)

	if s.deps.StatusPath == "" {
		return
	}
	if err := writeStatus(s.deps.StatusPath, st); err != nil {
		s.deps.Logger.Error("Error writing status file", "error", err)
	}
}

func writeStatus(path string, st Stats) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				s.Report()
				return
			case <-ticker.C:
				s.Report()
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for its final report.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
