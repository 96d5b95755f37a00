// Package config loads wramwatch.cfg.json through viper and exposes typed views
// of each section.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "wramwatch.cfg.json"

// EmulatorConfig describes the emulator's memory server.
type EmulatorConfig struct {
	Host         string        `json:"host" mapstructure:"host"`
	Port         int           `json:"port" mapstructure:"port"`
	RequestByte  int           `json:"requestByte" mapstructure:"requestByte"`
	SnapshotSize int           `json:"snapshotSize" mapstructure:"snapshotSize"`
	DialTimeout  time.Duration `json:"dialTimeout" mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `json:"readTimeout" mapstructure:"readTimeout"`
}

// PollConfig controls the poll loop.
type PollConfig struct {
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// LookupConfig selects where reference data is resolved from.
type LookupConfig struct {
	Source     string `json:"source" mapstructure:"source"` // files, sqlite or postgres
	DataDir    string `json:"dataDir" mapstructure:"dataDir"`
	SQLitePath string `json:"sqlitePath" mapstructure:"sqlitePath"`
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// OverlayConfig selects the presentation sink.
type OverlayConfig struct {
	Sink   string `json:"sink" mapstructure:"sink"`     // log or jsonl
	Output string `json:"output" mapstructure:"output"` // jsonl target, stdout when empty
}

// InfluxConfig holds InfluxDB settings.
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// GraylogConfig holds the GELF input address.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// MonitorConfig controls the status reporter.
type MonitorConfig struct {
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

// SetDefaults registers every default value. Load calls it; commands that
// run without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./wramlogs")

	viper.SetDefault("emulator.host", "127.0.0.1")
	viper.SetDefault("emulator.port", 8888)
	viper.SetDefault("emulator.requestByte", 1)
	viper.SetDefault("emulator.snapshotSize", 32768)
	viper.SetDefault("emulator.dialTimeout", "5s")
	viper.SetDefault("emulator.readTimeout", "0s")

	viper.SetDefault("poll.interval", "1s")

	viper.SetDefault("lookup.source", "files")
	viper.SetDefault("lookup.dataDir", "./data")
	viper.SetDefault("lookup.sqlitePath", "./wramwatch_ref.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "wramwatch")

	viper.SetDefault("overlay.sink", "log")
	viper.SetDefault("overlay.output", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "wramwatch")
	viper.SetDefault("influx.bucket", "wramwatch")
	viper.SetDefault("influx.backupPath", "./wramlogs/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "wramwatch")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.interval", "1m")
}

// Load sets defaults and reads the JSON config file from configDir.
// On error the defaults remain in effect.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetEmulatorConfig returns the emulator section.
func GetEmulatorConfig() EmulatorConfig {
	return EmulatorConfig{
		Host:         viper.GetString("emulator.host"),
		Port:         viper.GetInt("emulator.port"),
		RequestByte:  viper.GetInt("emulator.requestByte"),
		SnapshotSize: viper.GetInt("emulator.snapshotSize"),
		DialTimeout:  viper.GetDuration("emulator.dialTimeout"),
		ReadTimeout:  viper.GetDuration("emulator.readTimeout"),
	}
}

// GetPollConfig returns the poll section.
func GetPollConfig() PollConfig {
	return PollConfig{Interval: viper.GetDuration("poll.interval")}
}

// GetLookupConfig returns the lookup section.
func GetLookupConfig() LookupConfig {
	return LookupConfig{
		Source:     viper.GetString("lookup.source"),
		DataDir:    viper.GetString("lookup.dataDir"),
		SQLitePath: viper.GetString("lookup.sqlitePath"),
	}
}

// GetDBConfig returns the Postgres section.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetOverlayConfig returns the overlay section.
func GetOverlayConfig() OverlayConfig {
	return OverlayConfig{
		Sink:   viper.GetString("overlay.sink"),
		Output: viper.GetString("overlay.output"),
	}
}

// GetInfluxConfig returns the influx section.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetGraylogConfig returns the graylog section.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetMonitorConfig returns the monitor section.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{Interval: viper.GetDuration("monitor.interval")}
}
