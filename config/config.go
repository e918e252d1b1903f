package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"
	_ "time/tzdata" // zone database for images without /usr/share/zoneinfo

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	Facility   FacilityConfig   `yaml:"facility"`
	Report     ReportConfig     `yaml:"report"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the GET cache lifetime.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// StorageConfig selects the key-value backend used by the checklist store.
type StorageConfig struct {
	Backend      string `yaml:"backend"` // database, file or memory
	FilePath     string `yaml:"file_path"`
	ChecklistKey string `yaml:"checklist_key"`
}

// FacilityConfig describes the sites being tracked.
type FacilityConfig struct {
	Locations []string        `yaml:"locations"`
	Timezone  string          `yaml:"timezone"`
	Location  *time.Location  `yaml:"-"` // Resolved from Timezone
	Seed      []SeedEquipment `yaml:"seed"`
}

// SeedEquipment is an equipment record loaded into the repository at startup.
type SeedEquipment struct {
	Name         string `yaml:"name"`
	Model        string `yaml:"model"`
	SerialNumber string `yaml:"serial_number"`
	Category     string `yaml:"category"`
	Status       string `yaml:"status"`
	LastChecked  string `yaml:"last_checked"`
	Location     string `yaml:"location"`
	Notes        string `yaml:"notes"`
}

// ReportConfig holds the wording of the generated report.
type ReportConfig struct {
	Title         string `yaml:"title"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// DefaultLocations are the sites used when the configuration lists none.
var DefaultLocations = []string{"Hawthorn Park", "The Encore", "The Regent"}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver != "sqlite" && cfg.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "equipment.db"
	}

	switch cfg.Storage.Backend {
	case "":
		cfg.Storage.Backend = "database"
	case "database", "memory":
	case "file":
		if cfg.Storage.FilePath == "" {
			cfg.Storage.FilePath = "maintenance_records.json"
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.ChecklistKey == "" {
		cfg.Storage.ChecklistKey = "maintenance_records"
	}

	if len(cfg.Facility.Locations) == 0 {
		log.Printf("facility.locations is not set; defaulting to %v", DefaultLocations)
		cfg.Facility.Locations = append([]string(nil), DefaultLocations...)
	}
	if cfg.Facility.Timezone == "" {
		cfg.Facility.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Facility.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Facility.Timezone, err)
	}
	cfg.Facility.Location = loc

	if cfg.Report.Title == "" {
		cfg.Report.Title = "FITNESS EQUIPMENT WEEKLY REPORT"
	}
	if cfg.Report.SubjectPrefix == "" {
		cfg.Report.SubjectPrefix = "Weekly Equipment Report"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	return nil
}

// Now returns the current time in the facility timezone.
func (cfg *Config) Now() time.Time {
	if cfg.Facility.Location == nil {
		return time.Now()
	}
	return time.Now().In(cfg.Facility.Location)
}
